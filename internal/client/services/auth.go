// Package services contains application services for the client.
// This file defines the credential operation executor: register, login,
// logout, password reset and social sign-in, with normalized errors.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/client/nav"
	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"golang.org/x/sync/singleflight"
)

// AuthService defines credential operations.
//
// Contract:
//   - Every method either succeeds or returns an *OperationError.
//   - Successful Register, Login and SocialSignIn change the session only
//     through the provider's identity stream.
//   - Logout redirects to the auth area after the provider confirmed the
//     sign-out and the session reflects it, never before and never on
//     failure.
//   - Identical concurrent calls share one provider call and its result.
type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	SocialSignIn(ctx context.Context, kind models.SocialProvider) error
	Ping(ctx context.Context) error
}

// SessionWaiter lets Logout wait for the session to observe the sign-out.
// *session.Store implements it.
type SessionWaiter interface {
	WaitFor(ctx context.Context, pred func(session.State) bool) (session.State, error)
}

// signOutSettleTimeout bounds how long Logout waits for the session to
// drop the identity before redirecting anyway.
var signOutSettleTimeout = 5 * time.Second

// authService is the concrete AuthService backed by an identity provider.
type authService struct {
	provider client.Provider
	sessions SessionWaiter
	nav      nav.Navigator
	log      logging.Logger
	group    singleflight.Group
}

// NewAuthService constructs an AuthService bound to the given provider,
// session and navigator.
func NewAuthService(provider client.Provider, sessions SessionWaiter, n nav.Navigator, log logging.Logger) AuthService {
	return &authService{
		provider: provider,
		sessions: sessions,
		nav:      n,
		log:      log.With("component", "auth-service"),
	}
}

func flightKey(op string, args ...string) string {
	return op + "\x00" + strings.Join(args, "\x00")
}

// do runs fn once per key among concurrent callers and normalizes its
// error. The shared call is not cancelled by any one caller; each caller
// stops waiting when its own ctx is done.
func (a *authService) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	flightCtx := context.WithoutCancel(ctx)
	results := a.group.DoChan(key, func() (any, error) {
		return nil, fn(flightCtx)
	})

	var (
		err    error
		shared bool
	)
	select {
	case res := <-results:
		err, shared = res.Err, res.Shared
	case <-ctx.Done():
		err = ctx.Err()
	}
	err = MapError(err)
	if err != nil {
		code := ""
		if opErr, ok := err.(*OperationError); ok {
			code = opErr.Code
		}
		a.log.Warn(ctx, "operation failed", "op", op, "code", code, "shared", shared)
		return err
	}
	a.log.Info(ctx, "operation succeeded", "op", op, "shared", shared)
	return nil
}

func (a *authService) Register(ctx context.Context, email, password string) error {
	return a.do(ctx, "register", flightKey("register", email, password), func(ctx context.Context) error {
		return a.provider.Register(ctx, email, password)
	})
}

func (a *authService) Login(ctx context.Context, email, password string) error {
	return a.do(ctx, "login", flightKey("login", email, password), func(ctx context.Context) error {
		return a.provider.Login(ctx, email, password)
	})
}

// Logout signs out, waits until the session has dropped the identity and
// then sends the user to the auth area. A failed redirect is logged; the
// sign-out itself stands.
func (a *authService) Logout(ctx context.Context) error {
	err := a.do(ctx, "logout", flightKey("logout"), func(ctx context.Context) error {
		return a.provider.SignOut(ctx)
	})
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, signOutSettleTimeout)
	_, err = a.sessions.WaitFor(waitCtx, func(st session.State) bool { return !st.Authenticated() })
	cancel()
	if err != nil {
		a.log.Warn(ctx, "session still signed in after logout", "error", err)
	}

	if err := a.nav.Navigate(ctx, nav.AuthPath, nil); err != nil {
		a.log.Warn(ctx, "redirect after logout failed", "error", err)
	}
	return nil
}

func (a *authService) ResetPassword(ctx context.Context, email string) error {
	return a.do(ctx, "reset-password", flightKey("reset", email), func(ctx context.Context) error {
		return a.provider.SendPasswordReset(ctx, email)
	})
}

func (a *authService) SocialSignIn(ctx context.Context, kind models.SocialProvider) error {
	return a.do(ctx, "social-sign-in", flightKey("social", string(kind)), func(ctx context.Context) error {
		return a.provider.SignInWithSocial(ctx, kind)
	})
}

// Ping proxies a liveness check to the provider.
func (a *authService) Ping(ctx context.Context) error {
	return a.provider.Ping(ctx)
}
