package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

// ErrInitFailed is returned by WaitInitialized when the provider feed failed
// before reporting any identity.
var ErrInitFailed = errors.New("session: provider initialization failed")

// State is one consistent view of the session.
type State struct {
	Initialized bool
	Identity    *models.Identity
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool {
	return s.Identity != nil
}

// Store is the single source of truth for the session state.
type Store struct {
	log logging.Logger

	mu            sync.RWMutex
	state         State
	authenticated bool
	initErr       error
	subs          map[chan State]struct{}

	ready     chan struct{}
	failed    chan struct{}
	readyOnce sync.Once
	failOnce  sync.Once
}

func NewStore(log logging.Logger) *Store {
	return &Store{
		log:    log.With("component", "session"),
		subs:   make(map[chan State]struct{}),
		ready:  make(chan struct{}),
		failed: make(chan struct{}),
	}
}

// Publish applies one identity event from the provider. The identity, the
// initialized flag and the authenticated projection change together.
func (s *Store) Publish(identity *models.Identity) {
	s.mu.Lock()
	wasInitialized := s.state.Initialized
	s.state = State{Initialized: true, Identity: identity}
	s.authenticated = identity != nil
	st := s.state
	for ch := range s.subs {
		offer(ch, st)
	}
	s.mu.Unlock()

	if !wasInitialized {
		s.readyOnce.Do(func() { close(s.ready) })
		s.log.Debug(context.Background(), "session initialized", "authenticated", st.Authenticated())
		return
	}
	s.log.Debug(context.Background(), "identity changed", "authenticated", st.Authenticated())
}

// Fail records a provider feed failure. Before initialization the failure
// is handed to every WaitInitialized caller; afterwards the current state
// is kept and the error is only logged.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.state.Initialized {
		s.mu.Unlock()
		s.log.Warn(context.Background(), "identity feed error ignored", "error", err)
		return
	}
	if s.initErr == nil {
		s.initErr = fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	s.mu.Unlock()

	s.failOnce.Do(func() { close(s.failed) })
	s.log.Error(context.Background(), "identity feed failed before initialization", "error", err)
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Initialized() bool {
	return s.Snapshot().Initialized
}

func (s *Store) CurrentIdentity() *models.Identity {
	return s.Snapshot().Identity
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Ready is closed once the store is initialized.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// InitErr returns the recorded initialization failure, if any.
func (s *Store) InitErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initErr
}

// WaitInitialized blocks until the store is initialized and returns the
// first snapshot taken after that. It returns an error wrapping
// ErrInitFailed if the feed failed first, or ctx.Err().
func (s *Store) WaitInitialized(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.Snapshot(), nil
	default:
	}

	select {
	case <-s.ready:
		return s.Snapshot(), nil
	case <-s.failed:
		// a late Publish may have raced the failure
		select {
		case <-s.ready:
			return s.Snapshot(), nil
		default:
		}
		return State{}, s.InitErr()
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Subscribe returns a channel receiving the current state immediately and
// every later change. Slow readers skip intermediate states but never see
// them out of order. cancel releases the subscription and closes the
// channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// WaitFor blocks until pred holds for the current state and returns that
// state, or until ctx is done.
func (s *Store) WaitFor(ctx context.Context, pred func(State) bool) (State, error) {
	ch, cancel := s.Subscribe()
	defer cancel()

	for {
		select {
		case st := <-ch:
			if pred(st) {
				return st, nil
			}
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
}

// offer replaces any pending state in ch with st. Called with s.mu held,
// so there is no concurrent sender.
func offer(ch chan State, st State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Run consumes the provider identity stream until ctx is done or the
// stream is closed. It must be the only caller of Publish and Fail.
func (s *Store) Run(ctx context.Context, events <-chan client.IdentityEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				s.Fail(ev.Err)
				continue
			}
			s.Publish(ev.Identity)
		}
	}
}
