// token_repository.go implements TokenRepository, providing database queries
// for issued bearer tokens: hash lookup during verification, creation at
// issuance, and last-used bookkeeping.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
)

// TokenRepository handles issued-token database operations.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create persists a freshly issued token (hash only).
func (r *TokenRepository) Create(ctx context.Context, token *models.APIToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()

	query := `
		INSERT INTO api_tokens (id, user_id, token_hash, kind, label, last_used_at, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.Kind,
		token.Label,
		token.LastUsedAt,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByHash retrieves a token by its SHA-256 hash (for authentication).
// Returns (nil, nil) when no token matches.
func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*models.APIToken, error) {
	query := `
		SELECT id, user_id, token_hash, kind, label, last_used_at, expires_at, created_at
		FROM api_tokens
		WHERE token_hash = $1
	`

	token := &models.APIToken{}
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.Kind,
		&token.Label,
		&token.LastUsedAt,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token by hash: %w", err)
	}
	return token, nil
}

// UpdateLastUsed stamps a token's last-used time. Best-effort bookkeeping:
// callers fire this asynchronously and ignore failures.
func (r *TokenRepository) UpdateLastUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_tokens SET last_used_at = NOW() WHERE id = $1`, id)
	return err
}

// DeleteExpired removes tokens whose expiry has passed, returning the number
// of rows deleted. Run periodically so revoked CLI sessions do not pile up.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE expires_at IS NOT NULL AND expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected()
}
