package nav

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/gorilla/mux"
)

const defaultMaxRedirects = 8

var ErrTooManyRedirects = errors.New("too many redirects")

type routeEntry struct {
	guard    Guard
	redirect string
}

type depthKey struct{}

func redirectDepth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// Router matches locations against a route table and commits the ones
// their guard admits. Every navigation takes a sequence number; a decision
// is committed only if no newer navigation has started in the meantime, so
// a redirect issued by a guard always wins over the navigation it denied.
type Router struct {
	log          logging.Logger
	mux          *mux.Router
	entries      map[string]routeEntry
	fallback     string
	maxRedirects int

	seq atomic.Uint64

	mu      sync.RWMutex
	current *url.URL
	history []string
}

// NewRouter returns an empty router. Unknown locations redirect to fallback.
func NewRouter(log logging.Logger, fallback string) *Router {
	return &Router{
		log:          log.With("component", "router"),
		mux:          mux.NewRouter(),
		entries:      make(map[string]routeEntry),
		fallback:     fallback,
		maxRedirects: defaultMaxRedirects,
	}
}

// Handle registers a route template (gorilla/mux syntax) guarded by g.
// A nil guard admits everything.
func (r *Router) Handle(tpl string, g Guard) {
	r.mux.Path(tpl).Name(tpl)
	r.entries[tpl] = routeEntry{guard: g}
}

// Redirect registers a route that always forwards to target.
func (r *Router) Redirect(tpl, target string) {
	r.mux.Path(tpl).Name(tpl)
	r.entries[tpl] = routeEntry{redirect: target}
}

// Open navigates to a raw location such as "/auth?returnUrl=%2Ftabs%2Ftab2".
func (r *Router) Open(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	return r.Navigate(ctx, u.Path, u.Query())
}

func (r *Router) Navigate(ctx context.Context, path string, query url.Values) error {
	depth := redirectDepth(ctx)
	if depth > r.maxRedirects {
		return ErrTooManyRedirects
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := &url.URL{Path: path, RawQuery: query.Encode()}
	seq := r.seq.Add(1)
	nested := context.WithValue(ctx, depthKey{}, depth+1)

	entry, ok := r.match(ctx, target)
	switch {
	case !ok:
		r.log.Debug(ctx, "unknown location", "path", path, "redirect", r.fallback)
		return r.Navigate(nested, r.fallback, nil)
	case entry.redirect != "":
		return r.Navigate(nested, entry.redirect, nil)
	case entry.guard != nil && !entry.guard(nested, target):
		r.log.Debug(ctx, "navigation denied", "path", path)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq.Load() != seq {
		r.log.Debug(ctx, "stale navigation dropped", "path", path)
		return nil
	}
	r.current = target
	r.history = append(r.history, target.String())
	r.log.Debug(ctx, "navigated", "location", target.String())
	return nil
}

func (r *Router) match(ctx context.Context, target *url.URL) (routeEntry, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return routeEntry{}, false
	}
	var m mux.RouteMatch
	if !r.mux.Match(req, &m) || m.Route == nil {
		return routeEntry{}, false
	}
	e, ok := r.entries[m.Route.GetName()]
	return e, ok
}

// Current returns the committed location, or nil before the first one.
func (r *Router) Current() *url.URL {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil
	}
	u := *r.current
	return &u
}

// History returns every committed location, oldest first.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.history...)
}
