// Package tokenstore keeps the set of refresh tokens that may still be
// exchanged for access tokens. Tokens are stored by SHA-256 hash only;
// revoking a token removes it from the set.
package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is a revocable refresh-token set.
type Store interface {
	// Save records token for userID until expiresAt.
	Save(ctx context.Context, token, userID string, expiresAt time.Time) error
	// Exists reports whether token is recorded and not yet expired.
	Exists(ctx context.Context, token string) (bool, error)
	// Delete revokes token. Revoking an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteUser revokes every token of userID.
	DeleteUser(ctx context.Context, userID string) error
	// PurgeExpired drops tokens that expired before now and returns how
	// many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Hash returns the hex SHA-256 digest under which a token is stored.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
