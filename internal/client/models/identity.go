package models

import "time"

// Identity represents a signed-in user as reported by the identity provider.
// Session-level code only cares whether an Identity is present; the fields
// are facts for display and for the provider adapters.
type Identity struct {
	UID       string
	Email     string
	Provider  string
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the identity token expiry is known and in the past.
func (i *Identity) Expired(now time.Time) bool {
	return i != nil && !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// SocialProvider names a federated sign-in provider.
type SocialProvider string

const (
	SocialGoogle SocialProvider = "google"
	SocialApple  SocialProvider = "apple"
)

// ProviderID returns the id the identity provider expects on the wire.
func (p SocialProvider) ProviderID() string {
	switch p {
	case SocialGoogle:
		return "google.com"
	case SocialApple:
		return "apple.com"
	default:
		return string(p)
	}
}

// ProviderPassword is the provider id of email/password identities.
const ProviderPassword = "password"
