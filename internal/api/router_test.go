package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/oonkoo/oonkoo-registry/internal/auth/session"
	"github.com/oonkoo/oonkoo-registry/internal/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("OONKOO_JWT_SECRET", "test-jwt-secret-that-is-32-chars!!")
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.PublicURL = "https://oonkoo.example"
	cfg.Auth.CLISessionTTL = 5 * time.Minute
	cfg.Auth.CLITokenTTL = 720 * time.Hour
	cfg.Security.CORS.AllowedOrigins = []string{"https://oonkoo.example"}
	return cfg
}

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	router := NewRouter(testConfig(), sqlx.NewDb(db, "sqlmock"), session.NewMemoryStore())
	return router, mock
}

func TestRouter_Version(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("X-Request-ID"); got == "" {
		t.Error("missing X-Request-ID header")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestRouter_HealthReflectsDatabase(t *testing.T) {
	router, mock := newTestRouter(t)

	mock.ExpectPing()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("healthy status = %d", w.Code)
	}

	mock.ExpectPing().WillReturnError(sqlmock.ErrCancelled)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", w.Code)
	}
}

func TestRouter_VerifyRequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/verify", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/registry", nil)
	req.Header.Set("Origin", "https://oonkoo.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://oonkoo.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
