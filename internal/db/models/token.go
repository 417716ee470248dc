// Package models - token.go defines the persisted form of issued bearer
// tokens. Only the SHA-256 hash of a token is stored; the raw value is shown
// to the user exactly once at creation time and is unrecoverable afterwards.
package models

import "time"

// Token kinds stored in the kind column.
const (
	TokenKindAPI = "api"
	TokenKindCLI = "cli"
)

// APIToken is one issued bearer credential (long-lived API key or short-lived
// CLI token), stored hash-only.
type APIToken struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"user_id"`
	TokenHash  string     `db:"token_hash" json:"-"`
	Kind       string     `db:"kind" json:"kind"`
	Label      string     `db:"label" json:"label"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at"` // nil = non-expiring API key
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the token has an expiry in the past.
func (t *APIToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
