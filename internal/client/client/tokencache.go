package client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authgate/internal/dbx"
)

// TokenCache persists the id token of the current session so the next
// start can restore it.
type TokenCache struct {
	db   *sql.DB
	repo *metadata.SQLiteRepository
	now  func() time.Time
}

// NewTokenCache returns a cache over a database prepared by InitDatabase.
func NewTokenCache(db *sql.DB) *TokenCache {
	return &TokenCache{db: db, repo: metadata.NewSQLiteRepository(db), now: time.Now}
}

// Load returns the cached token, or "" when there is none.
func (c *TokenCache) Load(ctx context.Context) (string, error) {
	b, err := c.repo.Get(ctx, metadata.KeyIDToken)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UpdatedAt reports when the token was last saved. The zero time means
// nothing is cached.
func (c *TokenCache) UpdatedAt(ctx context.Context) (time.Time, error) {
	b, err := c.repo.Get(ctx, metadata.KeyUpdatedAt)
	if err != nil || b == nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", metadata.KeyUpdatedAt, err)
	}
	return t, nil
}

// Save stores token and its timestamp in one transaction.
func (c *TokenCache) Save(ctx context.Context, token string) error {
	stamp := c.now().UTC().Format(time.RFC3339Nano)
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := c.repo.WithDB(tx)
		if err := repo.Set(ctx, metadata.KeyIDToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyUpdatedAt, []byte(stamp))
	})
}

// Clear forgets the cached session.
func (c *TokenCache) Clear(ctx context.Context) error {
	return c.repo.Clear(ctx)
}
