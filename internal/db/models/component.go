// Package models defines the database model types for the component registry.
// Each type corresponds to a database table and uses struct tags for both JSON
// serialization and sqlx row scanning. Models are pure data types — query
// logic belongs in the repositories layer.
package models

import "time"

// Component types as published in the marketplace.
const (
	TypeBlock     = "block"
	TypeElement   = "element"
	TypeTemplate  = "template"
	TypeAnimation = "animation"
)

// Component tiers. Paid tiers gate full-descriptor fetches behind a verified
// pro account.
const (
	TierFree          = "free"
	TierPro           = "pro"
	TierCommunityFree = "community-free"
	TierCommunityPaid = "community-paid"
)

// ValidType reports whether t is a known component type.
func ValidType(t string) bool {
	switch t {
	case TypeBlock, TypeElement, TypeTemplate, TypeAnimation:
		return true
	}
	return false
}

// ValidTier reports whether t is a known component tier.
func ValidTier(t string) bool {
	switch t {
	case TierFree, TierPro, TierCommunityFree, TierCommunityPaid:
		return true
	}
	return false
}

// Component is one published marketplace component. The slug is globally
// unique and immutable once published; RegistryDependencies holds slugs of
// other components this one requires and must never (transitively) include
// the component itself.
type Component struct {
	ID                   string    `db:"id" json:"id"`
	Slug                 string    `db:"slug" json:"slug"`
	Name                 string    `db:"name" json:"name"`
	Description          string    `db:"description" json:"description"`
	Type                 string    `db:"type" json:"type"`
	Tier                 string    `db:"tier" json:"tier"`
	Category             string    `db:"category" json:"category"`
	NPMDependencies      []string  `db:"-" json:"npm_dependencies"`
	NPMDevDependencies   []string  `db:"-" json:"npm_dev_dependencies"`
	RegistryDependencies []string  `db:"-" json:"registry_dependencies"`
	Tags                 []string  `db:"-" json:"tags"`
	Published            bool      `db:"published" json:"published"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`

	// Files are only populated on full descriptor fetches, never on index
	// listings — file contents dominate the row size.
	Files []ComponentFile `db:"-" json:"files,omitempty"`
}

// ComponentFile is one source file of a component.
type ComponentFile struct {
	ID          string `db:"id" json:"-"`
	ComponentID string `db:"component_id" json:"-"`
	Name        string `db:"name" json:"name"`
	TargetPath  string `db:"target_path" json:"target_path"`
	Content     string `db:"content" json:"content"`
	Kind        string `db:"kind" json:"kind"` // component | util | hook | style
}

// IsPaid reports whether fetching this component's files requires a pro account.
func (c *Component) IsPaid() bool {
	return c.Tier == TierPro || c.Tier == TierCommunityPaid
}
