package client

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/client/models"
)

// IdentityEvent is one item of the identity stream. Exactly one of the
// fields is meaningful: Err is set when the provider could not determine
// the current identity.
type IdentityEvent struct {
	Identity *models.Identity
	Err      error
}

// Provider is the identity-provider contract.
//
// Successful Register, Login and SignInWithSocial sign the user in; SignOut
// signs them out. The resulting identity change is reported asynchronously
// through Watch, never through the return value.
type Provider interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	SignInWithSocial(ctx context.Context, kind models.SocialProvider) error

	// Watch subscribes to identity changes until ctx is done.
	Watch(ctx context.Context) (<-chan IdentityEvent, error)

	Ping(ctx context.Context) error
	Close() error
}
