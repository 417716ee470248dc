// Package registry serves the published component index and full component
// descriptors. Index listings are public; full descriptors of paid-tier
// components require a verified pro account, so the routes run behind the
// optional-auth middleware and the tier check happens here.
package registry

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
	"github.com/oonkoo/oonkoo-registry/internal/db/repositories"
	"github.com/oonkoo/oonkoo-registry/internal/middleware"
	"github.com/oonkoo/oonkoo-registry/internal/telemetry"
)

// Handler serves the /registry routes.
type Handler struct {
	components *repositories.ComponentRepository
}

// NewHandler creates the registry handler.
func NewHandler(components *repositories.ComponentRepository) *Handler {
	return &Handler{components: components}
}

// Index handles GET /registry: one page of the published index.
//
// Query parameters: q, type, tier, category, tags (comma-separated), sort
// (name|newest), page, limit. Unknown type/tier values are rejected rather
// than silently returning an empty page. The limit is clamped server-side.
func (h *Handler) Index(c *gin.Context) {
	filter := repositories.ComponentFilter{
		Query:    c.Query("q"),
		Type:     c.Query("type"),
		Tier:     c.Query("tier"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}

	if filter.Type != "" && !models.ValidType(filter.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown component type: " + filter.Type})
		return
	}
	if filter.Tier != "" && !models.ValidTier(filter.Tier) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown component tier: " + filter.Tier})
		return
	}

	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))

	components, total, err := h.components.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list components"})
		return
	}

	telemetry.IndexQueriesTotal.Inc()

	pageSize := filter.Limit
	if pageSize < 1 {
		pageSize = repositories.DefaultPageSize
	}
	if pageSize > repositories.MaxPageSize {
		pageSize = repositories.MaxPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"components": components,
		"meta": gin.H{
			"page":     page,
			"pageSize": pageSize,
			"total":    total,
			"hasMore":  page*pageSize < total,
		},
	})
}

// Get handles GET /registry/:slug: the full descriptor including files.
// Paid tiers require an authenticated pro account; the anonymous index remains
// browsable so the CLI can always show what exists.
func (h *Handler) Get(c *gin.Context) {
	slug := c.Param("slug")

	component, err := h.components.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch component"})
		return
	}
	if component == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found: " + slug})
		return
	}

	if component.IsPaid() {
		v, ok := c.Get(middleware.UserKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required for " + component.Tier + " components"})
			return
		}
		user, _ := v.(*models.User)
		if user == nil || !user.HasPro {
			c.JSON(http.StatusForbidden, gin.H{"error": "a pro account is required for " + component.Tier + " components"})
			return
		}
	}

	telemetry.ComponentFetchesTotal.WithLabelValues(component.Type, component.Tier).Inc()
	c.JSON(http.StatusOK, component)
}
