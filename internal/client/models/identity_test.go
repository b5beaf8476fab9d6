package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	var nilID *Identity
	assert.False(t, nilID.Expired(now))
	assert.False(t, (&Identity{}).Expired(now), "unknown expiry never expires")
	assert.True(t, (&Identity{ExpiresAt: now}).Expired(now))
	assert.False(t, (&Identity{ExpiresAt: now.Add(time.Minute)}).Expired(now))
}

func TestSocialProvider_ProviderID(t *testing.T) {
	assert.Equal(t, "google.com", SocialGoogle.ProviderID())
	assert.Equal(t, "apple.com", SocialApple.ProviderID())
	assert.Equal(t, "github.com", SocialProvider("github.com").ProviderID())
}
