// user_repository.go implements UserRepository. The registry only reads
// accounts — user CRUD belongs to the storefront.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
)

// UserRepository handles user database reads.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID. Returns (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, name, has_pro, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.HasPro,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
