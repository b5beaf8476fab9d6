package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/config"
	"github.com/dmitrijs2005/authgate/internal/client/forms"
	"github.com/dmitrijs2005/authgate/internal/client/guards"
	"github.com/dmitrijs2005/authgate/internal/client/i18n"
	"github.com/dmitrijs2005/authgate/internal/client/nav"
	"github.com/dmitrijs2005/authgate/internal/client/screen"
	"github.com/dmitrijs2005/authgate/internal/client/services"
	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds a single connectivity probe.
const pingTimeout = 3 * time.Second

// App wires the session store, router, guards, credential service, forms
// and the auth screen behind an interactive prompt.
type App struct {
	config      *config.Config
	log         logging.Logger
	tr          *i18n.Translator
	provider    client.Provider
	db          *sql.DB
	store       *session.Store
	router      *nav.Router
	authService services.AuthService
	screen      *screen.AuthScreen

	loginForm    *forms.AuthForm
	registerForm *forms.AuthForm
	resetForm    *forms.ResetPasswordForm

	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode
}

// NewApp builds the identity provider selected by c and the application
// around it, reading commands from stdin.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	var (
		provider client.Provider
		db       *sql.DB
	)
	switch c.ProviderKind {
	case config.ProviderGRPC:
		var err error
		db, err = client.InitDatabase(ctx, c.TokenCachePath)
		if err != nil {
			log.Error(ctx, "error initializing token cache", "error", err)
			return nil, err
		}
		p, err := client.NewGRPCProvider(c.ProviderEndpointAddr, client.NewTokenCache(db), log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		provider = p
	case config.ProviderMemory:
		provider = client.NewMemoryProvider()
	default:
		return nil, fmt.Errorf("unknown provider kind %q", c.ProviderKind)
	}

	a := newApp(c, provider, log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

// newApp wires the application around an existing provider.
func newApp(c *config.Config, provider client.Provider, log logging.Logger, in io.Reader, out io.Writer) *App {
	store := session.NewStore(log)
	router := nav.NewRouter(log, nav.HomePath)

	var guardOpts []guards.Option
	if c.InitTimeout > 0 {
		guardOpts = append(guardOpts, guards.WithTimeout(c.InitTimeout))
	}
	router.Redirect("/", nav.HomePath)
	router.Redirect("/tabs", nav.HomePath)
	router.Handle("/tabs/{tab}", guards.RequireAuth(store, router, log, guardOpts...))
	router.Handle(nav.AuthPath, guards.RequireGuest(store, router, log, guardOpts...))

	authService := services.NewAuthService(provider, store, router, log)
	scr := screen.NewAuthScreen(router, log, c.NavigationDelay)

	a := &App{
		config:       c,
		log:          log.With("component", "cli"),
		tr:           i18n.New(c.Language),
		provider:     provider,
		store:        store,
		router:       router,
		authService:  authService,
		screen:       scr,
		loginForm:    forms.NewAuthForm(forms.ModeLogin, authService),
		registerForm: forms.NewAuthForm(forms.ModeRegister, authService),
		resetForm:    forms.NewResetPasswordForm(authService),
		reader:       bufio.NewReader(in),
		out:          out,
		mode:         ModeOnline,
	}

	onSuccess := func() { scr.OnAuthSuccess(context.Background()) }
	a.loginForm.OnSuccess(onSuccess)
	a.registerForm.OnSuccess(onSuccess)
	return a
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
		if mode == ModeOnline {
			printlnFn(a.tr.T("cli.online"))
		} else {
			printlnFn(a.tr.T("cli.offline"))
		}
	}
}

// Run starts the session feed and the connectivity watcher, then serves
// the prompt until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := a.provider.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch identity: %w", err)
	}
	go func() {
		if err := a.store.Run(ctx, events); err != nil && ctx.Err() == nil {
			a.log.Error(ctx, "session feed stopped", "error", err)
		}
	}()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
	return nil
}

func (a *App) close() {
	a.screen.Close()
	if err := a.provider.Close(); err != nil {
		a.log.Warn(context.Background(), "closing provider", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

// StartOnlineStatusWatcher probes the provider every interval and switches
// between online and offline mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
