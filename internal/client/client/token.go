package client

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// identityClaims is the payload of an identity-provider id token.
type identityClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// IdentityFromToken decodes an id token without verifying its signature.
// Verification is the provider's job; the client only needs the claims to
// describe who is signed in.
func IdentityFromToken(token string) (*models.Identity, error) {
	claims := &identityClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	id := &models.Identity{
		UID:      claims.Subject,
		Email:    claims.Email,
		Provider: claims.Provider,
		Token:    token,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// SignIdentityToken mints an HS256 id token for id. It is used by the
// in-memory provider and by test servers standing in for the real one.
func SignIdentityToken(id models.Identity, key []byte, now time.Time, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("%w: empty signing key", jwt.ErrInvalidKey)
	}
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    id.Email,
		Provider: id.Provider,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
