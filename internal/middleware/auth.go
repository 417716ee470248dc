// Package middleware provides Gin HTTP middleware for authentication,
// security headers, request IDs, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Recovery → RequestID → Metrics → Logger → CORS → Security → Auth → Handler
//
// Security headers run before auth so they appear on all responses including
// 401s. Auth populates the user identity; handlers read it from the context.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oonkoo/oonkoo-registry/internal/auth"
	"github.com/oonkoo/oonkoo-registry/internal/db/models"
	"github.com/oonkoo/oonkoo-registry/internal/db/repositories"
	"github.com/oonkoo/oonkoo-registry/internal/safego"
	"github.com/oonkoo/oonkoo-registry/internal/telemetry"
)

// Context keys set by the auth middleware.
const (
	UserKey       = "user"
	UserIDKey     = "user_id"
	TokenKey      = "token"
	TokenKindKey  = "token_kind"
	AuthMethodKey = "auth_method"
)

// bearerToken extracts the token from an Authorization: Bearer header.
// Returns "" when the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireToken validates an issued bearer token (API key or CLI token) and
// loads the owning user into the request context.
//
// Tokens that do not match the issued format are rejected before any database
// work — a malformed credential can never cost a query. Well-formed tokens are
// hashed and looked up by hash; the raw value is never stored or logged.
func RequireToken(userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		user, token, status, msg := authenticateToken(c, raw, userRepo, tokenRepo)
		if user == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(TokenKey, token)
		c.Set(TokenKindKey, token.Kind)
		c.Set(AuthMethodKey, "token")
		c.Next()
	}
}

// OptionalToken is RequireToken without the rejection: requests with no
// credential (or a bad one) proceed anonymously. Handlers that gate paid
// content check the context themselves.
func OptionalToken(userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw != "" {
			if user, token, _, _ := authenticateToken(c, raw, userRepo, tokenRepo); user != nil {
				c.Set(UserKey, user)
				c.Set(UserIDKey, user.ID)
				c.Set(TokenKey, token)
				c.Set(TokenKindKey, token.Kind)
				c.Set(AuthMethodKey, "token")
			}
		}
		c.Next()
	}
}

// authenticateToken resolves a raw bearer token to its user. On failure the
// returned user is nil and status/msg describe the rejection.
func authenticateToken(c *gin.Context, raw string, userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository) (user *models.User, token *models.APIToken, status int, msg string) {
	if auth.Classify(raw) == auth.TokenUnknown {
		telemetry.TokenVerificationsTotal.WithLabelValues("bad_format").Inc()
		return nil, nil, http.StatusUnauthorized, "invalid token format"
	}

	rec, err := tokenRepo.GetByHash(c.Request.Context(), auth.HashToken(raw))
	if err != nil {
		return nil, nil, http.StatusInternalServerError, "authentication failed"
	}
	if rec == nil {
		telemetry.TokenVerificationsTotal.WithLabelValues("unknown").Inc()
		return nil, nil, http.StatusUnauthorized, "invalid credentials"
	}
	if rec.Expired(time.Now()) {
		telemetry.TokenVerificationsTotal.WithLabelValues("expired").Inc()
		return nil, nil, http.StatusUnauthorized, "token expired"
	}

	u, err := userRepo.GetByID(c.Request.Context(), rec.UserID)
	if err != nil {
		return nil, nil, http.StatusInternalServerError, "failed to load user"
	}
	if u == nil {
		telemetry.TokenVerificationsTotal.WithLabelValues("unknown").Inc()
		return nil, nil, http.StatusUnauthorized, "invalid credentials"
	}

	// Last-used tracking is best-effort bookkeeping. A synchronous write here
	// would add a DB round-trip to every authenticated request; the timeout
	// prevents leaked goroutines when the DB is unreachable.
	safego.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tokenRepo.UpdateLastUsed(ctx, rec.ID)
	})

	telemetry.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return u, rec, 0, ""
}

// RequireSession validates a browser session JWT (minted by the storefront
// after login) and loads the user. Used by the endpoint that completes a CLI
// login handshake — only a logged-in browser may attach its identity to a
// pending CLI session.
func RequireSession(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing session token",
			})
			return
		}

		claims, err := auth.ValidateSessionJWT(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid session",
			})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "user not found",
			})
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(AuthMethodKey, "session")
		c.Next()
	}
}
