// Package authapi serves the /auth routes: token verification and the
// browser-delegated CLI login handshake.
//
// The handshake has three legs. The CLI calls start to create a PENDING
// session and opens the returned verify URL in a browser. The storefront,
// once the user is signed in, calls complete with its session JWT; the
// registry mints a CLI token and attaches it to the session. The CLI's poll
// loop then receives the token exactly once and the session is gone.
package authapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oonkoo/oonkoo-registry/internal/auth"
	"github.com/oonkoo/oonkoo-registry/internal/auth/session"
	"github.com/oonkoo/oonkoo-registry/internal/config"
	"github.com/oonkoo/oonkoo-registry/internal/db/models"
	"github.com/oonkoo/oonkoo-registry/internal/db/repositories"
	"github.com/oonkoo/oonkoo-registry/internal/middleware"
	"github.com/oonkoo/oonkoo-registry/internal/telemetry"
)

// Handler serves the /auth routes.
type Handler struct {
	cfg      *config.Config
	sessions session.Store
	tokens   *repositories.TokenRepository
}

// NewHandler creates the auth handler.
func NewHandler(cfg *config.Config, sessions session.Store, tokens *repositories.TokenRepository) *Handler {
	return &Handler{cfg: cfg, sessions: sessions, tokens: tokens}
}

// Verify handles POST /auth/verify. The RequireToken middleware has already
// authenticated the bearer token; this just echoes the resolved identity so
// the CLI can confirm a stored credential still works.
func (h *Handler) Verify(c *gin.Context) {
	v, _ := c.Get(middleware.UserKey)
	user, ok := v.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no authenticated user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"hasPro": user.HasPro,
	})
}

// newSessionID returns a 128-bit random hex session identifier.
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// StartCLISession handles POST /auth/cli/start: creates a PENDING session and
// returns the URL the CLI should open in a browser.
func (h *Handler) StartCLISession(c *gin.Context) {
	id, err := newSessionID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	ttl := h.cfg.Auth.CLISessionTTL
	if err := h.sessions.Create(c.Request.Context(), id, ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	telemetry.CLISessionsStartedTotal.Inc()

	c.JSON(http.StatusOK, gin.H{
		"sessionId": id,
		"verifyUrl": h.cfg.Server.GetPublicURL() + "/cli-auth?session=" + id,
		"expiresIn": int(ttl.Seconds()),
	})
}

// PollCLISession handles GET /auth/cli/poll?session_id=.
//
// PENDING sessions report status pending. A COMPLETED session returns the raw
// CLI token exactly once: the session is deleted before the response is
// written, so a replayed poll sees 404. Absent and expired sessions are
// indistinguishable from the caller's side.
func (h *Handler) PollCLISession(c *gin.Context) {
	id := c.Query("session_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	s, err := h.sessions.Get(c.Request.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read session"})
		return
	}

	if s.Status == session.StatusPending {
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to finalize session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "complete",
		"token":  s.Token,
	})
}

type completeRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// CompleteCLISession handles POST /auth/cli/complete. Requires a browser
// session JWT (RequireSession middleware). Mints a CLI token for the signed-in
// user, stores only its hash, and attaches the raw token to the session for
// the CLI's next poll.
func (h *Handler) CompleteCLISession(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	v, _ := c.Get(middleware.UserKey)
	user, ok := v.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no authenticated user"})
		return
	}

	// Reject unknown/expired/finished sessions before minting anything.
	s, err := h.sessions.Get(c.Request.Context(), req.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read session"})
		return
	}
	if s.Status == session.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session already completed"})
		return
	}

	raw, hash, err := auth.GenerateCLIToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint token"})
		return
	}

	expiresAt := time.Now().Add(h.cfg.Auth.CLITokenTTL)
	token := &models.APIToken{
		UserID:    user.ID,
		TokenHash: hash,
		Kind:      models.TokenKindCLI,
		Label:     "cli login",
		ExpiresAt: &expiresAt,
	}
	if err := h.tokens.Create(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store token"})
		return
	}

	// The store's Complete is atomic: if a concurrent completion won the race
	// between our Get and here, this reports ErrAlreadyCompleted and the token
	// minted above simply expires unused.
	err = h.sessions.Complete(c.Request.Context(), req.SessionID, user.ID, raw)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
		return
	}
	if errors.Is(err, session.ErrAlreadyCompleted) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session already completed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete session"})
		return
	}

	telemetry.CLISessionsCompletedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
