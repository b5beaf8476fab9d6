// Package metadata is the key/value store backing the local token cache.
package metadata

// Well-known keys.
const (
	KeyIDToken   = "id_token"
	KeyUpdatedAt = "updated_at"
)
