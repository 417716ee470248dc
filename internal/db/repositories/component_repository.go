// component_repository.go implements ComponentRepository, providing database
// queries for the published component index and full descriptor fetches.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
)

// MaxPageSize is the server-side clamp on index page sizes.
const MaxPageSize = 100

// DefaultPageSize is used when the caller does not ask for a specific limit.
const DefaultPageSize = 20

// ComponentFilter narrows an index query. Zero values mean "no filter".
type ComponentFilter struct {
	Query    string
	Type     string
	Tier     string
	Category string
	Tags     []string
	Sort     string // name | newest (default name)
	Page     int    // 1-based
	Limit    int
}

// componentRow mirrors the components table with JSONB columns still raw.
type componentRow struct {
	ID                   string    `db:"id"`
	Slug                 string    `db:"slug"`
	Name                 string    `db:"name"`
	Description          string    `db:"description"`
	Type                 string    `db:"type"`
	Tier                 string    `db:"tier"`
	Category             string    `db:"category"`
	NPMDependencies      []byte    `db:"npm_dependencies"`
	NPMDevDependencies   []byte    `db:"npm_dev_dependencies"`
	RegistryDependencies []byte    `db:"registry_dependencies"`
	Tags                 []byte    `db:"tags"`
	Published            bool      `db:"published"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

func (r *componentRow) toModel() (*models.Component, error) {
	c := &models.Component{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Tier:        r.Tier,
		Category:    r.Category,
		Published:   r.Published,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{r.NPMDependencies, &c.NPMDependencies},
		{r.NPMDevDependencies, &c.NPMDevDependencies},
		{r.RegistryDependencies, &c.RegistryDependencies},
		{r.Tags, &c.Tags},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("failed to decode component %s: %w", r.Slug, err)
		}
	}
	return c, nil
}

const componentColumns = `id, slug, name, description, type, tier, category,
	npm_dependencies, npm_dev_dependencies, registry_dependencies, tags,
	published, created_at, updated_at`

// ComponentRepository handles component database operations.
type ComponentRepository struct {
	db *sqlx.DB
}

// NewComponentRepository creates a new ComponentRepository.
func NewComponentRepository(db *sqlx.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// List returns one page of the published index plus the total match count.
// Index rows never include file contents.
func (r *ComponentRepository) List(ctx context.Context, filter ComponentFilter) ([]*models.Component, int, error) {
	where := []string{"published = TRUE"}
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR slug ILIKE %s)", p, p, p))
	}
	if filter.Type != "" {
		where = append(where, "type = "+arg(filter.Type))
	}
	if filter.Tier != "" {
		where = append(where, "tier = "+arg(filter.Tier))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if len(filter.Tags) > 0 {
		tagsJSON, err := json.Marshal(filter.Tags)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode tag filter: %w", err)
		}
		where = append(where, "tags @> "+arg(string(tagsJSON)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM components WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count components: %w", err)
	}

	orderBy := "name ASC"
	if filter.Sort == "newest" {
		orderBy = "created_at DESC"
	}

	limit := filter.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(
		"SELECT %s FROM components WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		componentColumns, whereClause, orderBy, arg(limit), arg(offset),
	)

	var rows []componentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list components: %w", err)
	}

	components := make([]*models.Component, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		components = append(components, c)
	}
	return components, total, nil
}

// GetBySlug retrieves one published component with its files.
// Returns (nil, nil) when the slug is unknown — an expected outcome, not an error.
func (r *ComponentRepository) GetBySlug(ctx context.Context, slug string) (*models.Component, error) {
	query := "SELECT " + componentColumns + " FROM components WHERE slug = $1 AND published = TRUE"

	var row componentRow
	err := r.db.GetContext(ctx, &row, query, slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get component %s: %w", slug, err)
	}

	component, err := row.toModel()
	if err != nil {
		return nil, err
	}

	filesQuery := `
		SELECT id, component_id, name, target_path, content, kind
		FROM component_files
		WHERE component_id = $1
		ORDER BY name ASC
	`
	if err := r.db.SelectContext(ctx, &component.Files, filesQuery, component.ID); err != nil {
		return nil, fmt.Errorf("failed to load files for %s: %w", slug, err)
	}

	return component, nil
}

// Create inserts a component and its files. Used by the publishing pipeline
// and by test fixtures; the CLI never writes to the registry.
func (r *ComponentRepository) Create(ctx context.Context, c *models.Component) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	encode := func(v []string) (string, error) {
		if v == nil {
			v = []string{}
		}
		raw, err := json.Marshal(v)
		return string(raw), err
	}

	npmDeps, err := encode(c.NPMDependencies)
	if err != nil {
		return err
	}
	npmDevDeps, err := encode(c.NPMDevDependencies)
	if err != nil {
		return err
	}
	registryDeps, err := encode(c.RegistryDependencies)
	if err != nil {
		return err
	}
	tags, err := encode(c.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO components (id, slug, name, description, type, tier, category,
			npm_dependencies, npm_dev_dependencies, registry_dependencies, tags,
			published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Slug, c.Name, c.Description, c.Type, c.Tier, c.Category,
		npmDeps, npmDevDeps, registryDeps, tags,
		c.Published, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create component %s: %w", c.Slug, err)
	}

	for i := range c.Files {
		f := &c.Files[i]
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		f.ComponentID = c.ID
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO component_files (id, component_id, name, target_path, content, kind)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			f.ID, f.ComponentID, f.Name, f.TargetPath, f.Content, f.Kind,
		)
		if err != nil {
			return fmt.Errorf("failed to create file %s for %s: %w", f.Name, c.Slug, err)
		}
	}

	return nil
}
