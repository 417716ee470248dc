// Package session persists the ephemeral CLI login sessions used by the
// browser-delegated auth handshake. A session is created PENDING when the CLI
// starts the flow, transitions to COMPLETED exactly once when the user
// finishes browser sign-in, and is removed either by the CLI's first
// successful poll or by TTL expiry. Expired sessions behave as absent on read.
package session

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of a CLI login session.
type Status string

const (
	// StatusPending means the user has not finished browser sign-in yet.
	StatusPending Status = "pending"
	// StatusCompleted means a CLI token has been minted for the session.
	StatusCompleted Status = "completed"
)

// Session is one CLI login handshake in flight.
type Session struct {
	ID        string
	Status    Status
	UserID    string // empty until completion
	Token     string // raw CLI token; empty until completion, read once
	CreatedAt time.Time
	ExpiresAt time.Time
}

var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found or expired")

	// ErrAlreadyCompleted is returned when Complete is called on a session
	// that has already been completed. The handshake is single-use.
	ErrAlreadyCompleted = errors.New("session already completed")
)

// Store is the contract shared by the CLI polling endpoint and the web
// completion handler. The COMPLETED transition must be atomic: two concurrent
// Complete calls on the same session result in exactly one success.
type Store interface {
	Create(ctx context.Context, id string, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Complete(ctx context.Context, id, userID, token string) error
	Delete(ctx context.Context, id string) error
}
