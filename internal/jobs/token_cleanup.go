// Package jobs holds background maintenance loops started by the server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/oonkoo/oonkoo-registry/internal/db/repositories"
	"github.com/oonkoo/oonkoo-registry/internal/safego"
)

// DefaultCleanupInterval is how often expired tokens are purged.
const DefaultCleanupInterval = time.Hour

// TokenCleanup periodically deletes expired CLI tokens. Expired tokens are
// already rejected at auth time; this loop keeps the api_tokens table from
// accumulating dead rows (every browser login mints a fresh CLI token).
type TokenCleanup struct {
	tokens   *repositories.TokenRepository
	interval time.Duration
	stop     chan struct{}
}

// NewTokenCleanup creates the cleanup job. A non-positive interval selects
// DefaultCleanupInterval.
func NewTokenCleanup(tokens *repositories.TokenRepository, interval time.Duration) *TokenCleanup {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &TokenCleanup{
		tokens:   tokens,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs an initial sweep immediately, then repeats on the interval until
// ctx is cancelled or Stop is called. It returns without blocking.
func (j *TokenCleanup) Start(ctx context.Context) {
	safego.Go(func() {
		j.sweep(ctx)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-j.stop:
				return
			case <-ticker.C:
				j.sweep(ctx)
			}
		}
	})
}

// Stop terminates the loop. Safe to call once.
func (j *TokenCleanup) Stop() {
	close(j.stop)
}

func (j *TokenCleanup) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := j.tokens.DeleteExpired(ctx)
	if err != nil {
		slog.Error("expired token cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("deleted expired tokens", "count", deleted)
	}
}
