package cli

import (
	"context"
)

// Open navigates to location; guards may redirect elsewhere.
func (a *App) Open(ctx context.Context, location string) error {
	if err := a.router.Open(ctx, location); err != nil {
		printlnFn(err.Error())
		return err
	}
	if loc := a.router.Current(); loc != nil {
		printlnFn(a.tr.T("cli.location", loc.String()))
	}
	return nil
}

// Status prints who is signed in, where the user is and the connectivity.
func (a *App) Status(ctx context.Context) error {
	switch st := a.store.Snapshot(); {
	case !st.Initialized:
		printlnFn(a.tr.T("cli.initializing"))
	case st.Identity != nil:
		printlnFn(a.tr.T("cli.signedInAs", st.Identity.Email))
	default:
		printlnFn(a.tr.T("cli.signedOut"))
	}
	if loc := a.router.Current(); loc != nil {
		printlnFn(a.tr.T("cli.location", loc.String()))
	}
	if a.Mode() == ModeOnline {
		printlnFn(a.tr.T("cli.online"))
	} else {
		printlnFn(a.tr.T("cli.offline"))
	}
	return nil
}
