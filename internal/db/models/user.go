// Package models - user.go defines the User model for marketplace accounts.
// Account CRUD lives in the storefront; the registry only reads users to
// answer token verification and to attribute issued tokens.
package models

import "time"

// User represents a marketplace account.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	HasPro    bool      `db:"has_pro" json:"has_pro"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
