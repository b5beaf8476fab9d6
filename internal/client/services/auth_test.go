package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/client/nav"
	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake provider ----

type fakeProvider struct {
	RegisterErr, LoginErr, SignOutErr, ResetErr, SocialErr, PingErr error

	// block, when set, holds every call until closed
	block chan struct{}
	calls atomic.Int32

	mu           sync.Mutex
	LastEmail    string
	LastPassword string
	LastSocial   models.SocialProvider
	SignOutCalls int
	SignOutAt    time.Time
}

func (f *fakeProvider) enter(ctx context.Context) error {
	f.calls.Add(1)
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) Register(ctx context.Context, email, password string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	f.LastEmail, f.LastPassword = email, password
	f.mu.Unlock()
	return f.RegisterErr
}

func (f *fakeProvider) Login(ctx context.Context, email, password string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	f.LastEmail, f.LastPassword = email, password
	f.mu.Unlock()
	return f.LoginErr
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	f.SignOutCalls++
	f.SignOutAt = time.Now()
	f.mu.Unlock()
	return f.SignOutErr
}

func (f *fakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	f.LastEmail = email
	f.mu.Unlock()
	return f.ResetErr
}

func (f *fakeProvider) SignInWithSocial(ctx context.Context, kind models.SocialProvider) error {
	if err := f.enter(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	f.LastSocial = kind
	f.mu.Unlock()
	return f.SocialErr
}

func (f *fakeProvider) Watch(context.Context) (<-chan client.IdentityEvent, error) {
	return nil, errors.New("not used")
}

func (f *fakeProvider) Ping(context.Context) error { return f.PingErr }
func (f *fakeProvider) Close() error               { return nil }

// ---- fake navigator ----

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
	at    time.Time
	err   error
}

func (n *fakeNavigator) Navigate(_ context.Context, path string, _ url.Values) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	n.at = time.Now()
	return n.err
}

// ---- fake session ----

// fakeSessions reports the session as signed out once signedOut is closed.
// A nil signedOut means the session is already signed out.
type fakeSessions struct {
	signedOut chan struct{}

	mu      sync.Mutex
	settled time.Time
}

func (s *fakeSessions) WaitFor(ctx context.Context, pred func(session.State) bool) (session.State, error) {
	st := session.State{Initialized: true}
	if s.signedOut != nil {
		select {
		case <-s.signedOut:
		case <-ctx.Done():
			return session.State{}, ctx.Err()
		}
	}
	if !pred(st) {
		return session.State{}, errors.New("predicate not satisfied")
	}
	s.mu.Lock()
	s.settled = time.Now()
	s.mu.Unlock()
	return st, nil
}

func newService(p *fakeProvider, n *fakeNavigator) AuthService {
	return NewAuthService(p, &fakeSessions{}, n, logging.Discard())
}

func requireOpErr(t *testing.T, err error, code, msg string) {
	t.Helper()
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, code, opErr.Code)
	assert.Equal(t, msg, opErr.Message)
}

// ---- tests ----

func TestRegisterAndLogin_Delegate(t *testing.T) {
	p := &fakeProvider{}
	svc := newService(p, &fakeNavigator{})
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@b.co", "secret1"))
	assert.Equal(t, "a@b.co", p.LastEmail)
	assert.Equal(t, "secret1", p.LastPassword)

	require.NoError(t, svc.Login(ctx, "c@d.co", "secret2"))
	assert.Equal(t, "c@d.co", p.LastEmail)
	assert.Equal(t, "secret2", p.LastPassword)
}

func TestOperations_MapErrors(t *testing.T) {
	p := &fakeProvider{
		RegisterErr: &client.ProviderError{Code: client.CodeEmailAlreadyInUse},
		LoginErr:    &client.ProviderError{Code: "auth/wrong-password", Message: "raw"},
		ResetErr:    &client.ProviderError{Code: client.CodeUserNotFound, Message: "raw"},
		SocialErr:   client.ErrUnavailable,
	}
	svc := newService(p, &fakeNavigator{})
	ctx := context.Background()

	requireOpErr(t, svc.Register(ctx, "a@b.co", "secret1"), "email-already-in-use", "email already in use")
	requireOpErr(t, svc.Login(ctx, "a@b.co", "secret1"), "wrong-password", "incorrect credentials")
	requireOpErr(t, svc.ResetPassword(ctx, "a@b.co"), "user-not-found", "no account found for this email")
	requireOpErr(t, svc.SocialSignIn(ctx, models.SocialGoogle), "network-request-failed", "network error")
}

func TestSocialSignIn_PassesKind(t *testing.T) {
	p := &fakeProvider{}
	svc := newService(p, &fakeNavigator{})

	require.NoError(t, svc.SocialSignIn(context.Background(), models.SocialApple))
	assert.Equal(t, models.SocialApple, p.LastSocial)
}

func TestLogout_RedirectsAfterSignOut(t *testing.T) {
	p := &fakeProvider{}
	n := &fakeNavigator{}
	svc := newService(p, n)

	require.NoError(t, svc.Logout(context.Background()))

	assert.Equal(t, 1, p.SignOutCalls)
	require.Equal(t, []string{nav.AuthPath}, n.paths)
	assert.False(t, n.at.Before(p.SignOutAt))
}

func TestLogout_NoRedirectOnFailure(t *testing.T) {
	p := &fakeProvider{SignOutErr: &client.ProviderError{Code: client.CodeNetworkRequestFailed}}
	n := &fakeNavigator{}
	svc := newService(p, n)

	requireOpErr(t, svc.Logout(context.Background()), "network-request-failed", "network error")
	assert.Empty(t, n.paths)
}

func TestLogout_RedirectErrorIsNotReturned(t *testing.T) {
	n := &fakeNavigator{err: errors.New("router gone")}
	svc := newService(&fakeProvider{}, n)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Len(t, n.paths, 1)
}

func TestSingleFlight_IdenticalCallsShareOneProviderCall(t *testing.T) {
	p := &fakeProvider{block: make(chan struct{}), LoginErr: &client.ProviderError{Code: client.CodeWrongPassword}}
	svc := newService(p, &fakeNavigator{})

	const n = 5
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() { errs <- svc.Login(context.Background(), "a@b.co", "secret1") }()
	}

	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond) // let the others join the flight
	close(p.block)

	for i := 0; i < n; i++ {
		requireOpErr(t, <-errs, "wrong-password", "incorrect credentials")
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestSingleFlight_DifferentArgumentsRunSeparately(t *testing.T) {
	p := &fakeProvider{}
	svc := newService(p, &fakeNavigator{})
	ctx := context.Background()

	require.NoError(t, svc.ResetPassword(ctx, "a@b.co"))
	require.NoError(t, svc.ResetPassword(ctx, "c@d.co"))
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestPing(t *testing.T) {
	p := &fakeProvider{PingErr: client.ErrUnavailable}
	svc := newService(p, &fakeNavigator{})

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
}

func TestLogout_RedirectsOnlyAfterSessionSignedOut(t *testing.T) {
	p := &fakeProvider{}
	n := &fakeNavigator{}
	sessions := &fakeSessions{signedOut: make(chan struct{})}
	svc := NewAuthService(p, sessions, n, logging.Discard())

	done := make(chan error, 1)
	go func() { done <- svc.Logout(context.Background()) }()

	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	n.mu.Lock()
	assert.Empty(t, n.paths, "no redirect while the session still holds the identity")
	n.mu.Unlock()

	close(sessions.signedOut)
	require.NoError(t, <-done)
	require.Equal(t, []string{nav.AuthPath}, n.paths)
	assert.False(t, n.at.Before(sessions.settled))
}

func TestLogout_RedirectsWhenSessionNeverSettles(t *testing.T) {
	orig := signOutSettleTimeout
	signOutSettleTimeout = 10 * time.Millisecond
	t.Cleanup(func() { signOutSettleTimeout = orig })

	n := &fakeNavigator{}
	svc := NewAuthService(&fakeProvider{}, &fakeSessions{signedOut: make(chan struct{})}, n, logging.Discard())

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, []string{nav.AuthPath}, n.paths)
}

func TestSingleFlight_CancelledCallerDoesNotFailOthers(t *testing.T) {
	p := &fakeProvider{block: make(chan struct{})}
	svc := newService(p, &fakeNavigator{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- svc.Login(firstCtx, "a@b.co", "secret1") }()
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- svc.Login(context.Background(), "a@b.co", "secret1") }()
	time.Sleep(20 * time.Millisecond) // let the second caller join the flight

	cancelFirst()
	requireOpErr(t, <-first, "", "context canceled")

	close(p.block)
	require.NoError(t, <-second)
	assert.Equal(t, int32(1), p.calls.Load())
}
