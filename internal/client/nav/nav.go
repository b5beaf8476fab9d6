// Package nav is the client's router: a route table guarded by predicates,
// plus imperative navigation used by guards, services and screens.
package nav

import (
	"context"
	"net/url"
)

// Fixed locations of the application.
const (
	// AuthPath is the public authentication area.
	AuthPath = "/auth"
	// HomePath is the default path of the protected area.
	HomePath = "/tabs/tab1"
	// ReturnURLParam carries the originally requested location to the
	// auth area.
	ReturnURLParam = "returnUrl"
)

// Navigator issues imperative navigations.
type Navigator interface {
	Navigate(ctx context.Context, path string, query url.Values) error
}

// Guard decides whether a navigation to target may proceed. A guard that
// denies is expected to issue its own redirect through a Navigator.
type Guard func(ctx context.Context, target *url.URL) bool

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string, query url.Values) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string, query url.Values) error {
	return f(ctx, path, query)
}
