// Package guards provides the two navigation predicates of the client:
// RequireAuth for the protected area and RequireGuest for the public
// authentication area.
//
// Both wait for the session to be initialized, look at exactly one
// snapshot and decide. They never keep a subscription and never return an
// error to the router. When the wait fails, RequireAuth denies (fail-closed)
// and RequireGuest admits (fail-open).
package guards

import (
	"context"
	"net/url"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/nav"
	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

// StateWaiter is the part of the session store the guards need.
type StateWaiter interface {
	WaitInitialized(ctx context.Context) (session.State, error)
}

type options struct {
	timeout time.Duration
}

type Option func(*options)

// WithTimeout bounds the wait for initialization. A timeout counts as an
// initialization failure. Zero means wait forever.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func wait(ctx context.Context, store StateWaiter, o options) (session.State, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return store.WaitInitialized(ctx)
}

// RequireAuth admits navigation only when an identity is present. Otherwise
// it redirects to the auth area, passing the requested location as
// returnUrl.
func RequireAuth(store StateWaiter, n nav.Navigator, log logging.Logger, opts ...Option) nav.Guard {
	o := buildOptions(opts)
	log = log.With("guard", "auth")

	return func(ctx context.Context, target *url.URL) bool {
		st, err := wait(ctx, store, o)
		if err != nil {
			log.Warn(ctx, "session state unavailable, denying", "target", target.String(), "error", err)
			redirect(ctx, n, log, nav.AuthPath, nil)
			return false
		}
		if st.Identity != nil {
			return true
		}
		redirect(ctx, n, log, nav.AuthPath, url.Values{nav.ReturnURLParam: {target.String()}})
		return false
	}
}

// RequireGuest admits navigation only when nobody is signed in. Otherwise
// it redirects to the protected area's home.
func RequireGuest(store StateWaiter, n nav.Navigator, log logging.Logger, opts ...Option) nav.Guard {
	o := buildOptions(opts)
	log = log.With("guard", "guest")

	return func(ctx context.Context, target *url.URL) bool {
		st, err := wait(ctx, store, o)
		if err != nil {
			log.Warn(ctx, "session state unavailable, admitting", "target", target.String(), "error", err)
			return true
		}
		if st.Identity == nil {
			return true
		}
		redirect(ctx, n, log, nav.HomePath, nil)
		return false
	}
}

func redirect(ctx context.Context, n nav.Navigator, log logging.Logger, path string, q url.Values) {
	if err := n.Navigate(ctx, path, q); err != nil {
		log.Warn(ctx, "redirect failed", "path", path, "error", err)
	}
}
