package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	var parts []string
	if loc := a.router.Current(); loc != nil {
		parts = append(parts, loc.String())
	}
	if id := a.store.CurrentIdentity(); id != nil {
		parts = append(parts, id.Email)
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Root greets the user, lets the guards pick the landing location and runs
// the prompt until exit.
func (a *App) Root(ctx context.Context) {
	printlnFn(a.tr.T("cli.welcome"))

	if !a.store.Initialized() {
		printlnFn(a.tr.T("cli.initializing"))
	}
	if err := a.router.Open(ctx, "/"); err != nil {
		a.log.Warn(ctx, "initial navigation failed", "error", err)
	}

	runREPL(ctx, a, a.tr.T, a.getStatus, a.reader)
}
