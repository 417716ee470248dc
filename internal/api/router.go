// Package api wires together all HTTP routes for the component registry.
//
// Route grouping:
//   - /registry is public with optional auth: the index is always browsable,
//     and the per-slug handler gates paid tiers on the resolved user.
//   - /auth/verify requires a valid issued token (API key or CLI token).
//   - /auth/cli/start and /auth/cli/poll are unauthenticated; they operate on
//     unguessable 128-bit session IDs and never return anything but the one
//     token minted for that session.
//   - /auth/cli/complete requires a storefront browser-session JWT.
package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/oonkoo/oonkoo-registry/internal/api/authapi"
	"github.com/oonkoo/oonkoo-registry/internal/api/registry"
	"github.com/oonkoo/oonkoo-registry/internal/auth/session"
	"github.com/oonkoo/oonkoo-registry/internal/config"
	"github.com/oonkoo/oonkoo-registry/internal/db/repositories"
	"github.com/oonkoo/oonkoo-registry/internal/middleware"
)

// Version is the registry release version, overridable at build time with
// -ldflags "-X .../internal/api.Version=...".
var Version = "0.1.0"

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, db *sqlx.DB, sessions session.Store) *gin.Engine {
	router := gin.New()

	userRepo := repositories.NewUserRepository(db.DB)
	tokenRepo := repositories.NewTokenRepository(db.DB)
	componentRepo := repositories.NewComponentRepository(db)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeaders(middleware.APISecurityHeadersConfig()))

	router.GET("/health", healthCheckHandler(db.DB))
	router.GET("/version", versionHandler())

	registryHandlers := registry.NewHandler(componentRepo)
	registryGroup := router.Group("/registry")
	registryGroup.Use(middleware.OptionalToken(userRepo, tokenRepo))
	{
		registryGroup.GET("", registryHandlers.Index)
		registryGroup.GET("/:slug", registryHandlers.Get)
	}

	authHandlers := authapi.NewHandler(cfg, sessions, tokenRepo)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/verify", middleware.RequireToken(userRepo, tokenRepo), authHandlers.Verify)
		authGroup.POST("/cli/start", authHandlers.StartCLISession)
		authGroup.GET("/cli/poll", authHandlers.PollCLISession)
		authGroup.POST("/cli/complete", middleware.RequireSession(userRepo), authHandlers.CompleteCLISession)
	}

	return router
}

// healthCheckHandler returns the health status of the service.
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     Version,
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging via the process-wide
// slog handler installed by telemetry.SetupLogger.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)

		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS for the storefront's browser calls to
// /auth/cli/complete.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
