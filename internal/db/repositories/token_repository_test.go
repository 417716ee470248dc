package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/oonkoo/oonkoo-registry/internal/db/models"
)

// ---------------------------------------------------------------------------
// Column definitions
// ---------------------------------------------------------------------------

var tokenCols = []string{
	"id", "user_id", "token_hash", "kind", "label", "last_used_at", "expires_at", "created_at",
}

// ---------------------------------------------------------------------------
// Row builders
// ---------------------------------------------------------------------------

func sampleTokenRow() *sqlmock.Rows {
	return sqlmock.NewRows(tokenCols).
		AddRow("tok-1", "user-1", "abc123hash", models.TokenKindAPI, "default", nil, nil, time.Now())
}

func emptyTokenRow() *sqlmock.Rows {
	return sqlmock.NewRows(tokenCols)
}

func newTokenRepo(t *testing.T) (*TokenRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTokenRepository(db), mock
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreateToken_Success(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectExec("INSERT INTO api_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.APIToken{
		UserID:    "user-1",
		TokenHash: "abc123hash",
		Kind:      models.TokenKindCLI,
	}
	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.ID == "" {
		t.Error("expected generated ID")
	}
	if token.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCreateToken_DBError(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectExec("INSERT INTO api_tokens").
		WillReturnError(errDB)

	token := &models.APIToken{UserID: "user-1", TokenHash: "h", Kind: models.TokenKindAPI}
	if err := repo.Create(context.Background(), token); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetByHash
// ---------------------------------------------------------------------------

func TestGetTokenByHash_Found(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectQuery("SELECT.*FROM api_tokens.*WHERE token_hash").
		WithArgs("abc123hash").
		WillReturnRows(sampleTokenRow())

	token, err := repo.GetByHash(context.Background(), "abc123hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == nil {
		t.Fatal("expected token, got nil")
	}
	if token.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", token.UserID)
	}
	if token.ExpiresAt != nil {
		t.Error("expected non-expiring token")
	}
}

func TestGetTokenByHash_NotFound(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectQuery("SELECT.*FROM api_tokens.*WHERE token_hash").
		WillReturnRows(emptyTokenRow())

	token, err := repo.GetByHash(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != nil {
		t.Error("expected nil, got non-nil")
	}
}

func TestGetTokenByHash_DBError(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectQuery("SELECT.*FROM api_tokens.*WHERE token_hash").
		WillReturnError(errDB)

	if _, err := repo.GetByHash(context.Background(), "h"); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// UpdateLastUsed
// ---------------------------------------------------------------------------

func TestUpdateTokenLastUsed(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectExec("UPDATE api_tokens SET last_used_at").
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLastUsed(context.Background(), "tok-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// DeleteExpired
// ---------------------------------------------------------------------------

func TestDeleteExpiredTokens(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectExec("DELETE FROM api_tokens WHERE expires_at").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d, want 3", n)
	}
}
