// Package screen holds the controller of the authentication screen: which
// modal is open and what happens after a successful sign-in.
package screen

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/nav"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

// DefaultNavigationDelay lets the modal close before the screen goes away.
const DefaultNavigationDelay = 100 * time.Millisecond

// afterFunc is a test seam for time.AfterFunc.
var afterFunc = func(d time.Duration, f func()) interface{ Stop() bool } {
	return time.AfterFunc(d, f)
}

// Modals is the visibility of the screen's modals.
type Modals struct {
	Login         bool
	Register      bool
	ResetPassword bool
}

// AuthScreen controls the authentication screen.
type AuthScreen struct {
	nav   nav.Navigator
	log   logging.Logger
	delay time.Duration

	mu      sync.Mutex
	modals  Modals
	pending map[uint64]interface{ Stop() bool }
	nextID  uint64
	closed  bool
}

// NewAuthScreen returns a controller navigating through n. A non-positive
// delay selects DefaultNavigationDelay.
func NewAuthScreen(n nav.Navigator, log logging.Logger, delay time.Duration) *AuthScreen {
	if delay <= 0 {
		delay = DefaultNavigationDelay
	}
	return &AuthScreen{
		nav:     n,
		log:     log.With("component", "auth-screen"),
		delay:   delay,
		pending: make(map[uint64]interface{ Stop() bool }),
	}
}

func (s *AuthScreen) set(fn func(m *Modals)) {
	s.mu.Lock()
	fn(&s.modals)
	s.mu.Unlock()
}

func (s *AuthScreen) OpenLogin()          { s.set(func(m *Modals) { m.Login = true }) }
func (s *AuthScreen) CloseLogin()         { s.set(func(m *Modals) { m.Login = false }) }
func (s *AuthScreen) OpenRegister()       { s.set(func(m *Modals) { m.Register = true }) }
func (s *AuthScreen) CloseRegister()      { s.set(func(m *Modals) { m.Register = false }) }
func (s *AuthScreen) OpenResetPassword()  { s.set(func(m *Modals) { m.ResetPassword = true }) }
func (s *AuthScreen) CloseResetPassword() { s.set(func(m *Modals) { m.ResetPassword = false }) }

func (s *AuthScreen) Modals() Modals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modals
}

func (s *AuthScreen) LoginOpen() bool         { return s.Modals().Login }
func (s *AuthScreen) RegisterOpen() bool      { return s.Modals().Register }
func (s *AuthScreen) ResetPasswordOpen() bool { return s.Modals().ResetPassword }

// OnAuthSuccess closes the login and register modals right away and
// navigates to the protected home after the configured delay.
func (s *AuthScreen) OnAuthSuccess(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modals.Login = false
	s.modals.Register = false
	if s.closed {
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.nextID++
	id := s.nextID
	s.pending[id] = afterFunc(s.delay, func() {
		if !s.take(id) {
			return
		}
		if err := s.nav.Navigate(ctx, nav.HomePath, nil); err != nil {
			s.log.Warn(ctx, "navigation after sign-in failed", "error", err)
		}
	})
}

// take removes a fired timer and reports whether it was still pending.
func (s *AuthScreen) take(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// Close cancels navigations that have not fired yet.
func (s *AuthScreen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
