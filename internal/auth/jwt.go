// Package auth - jwt.go handles the browser-session JWTs that the storefront
// issues at sign-in. The registry only needs to verify them: the CLI-session
// completion endpoint requires an authenticated browser, and that proof is the
// session JWT presented by the web app. Signing uses a shared HMAC secret with
// lazy initialization at startup.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret     string
	jwtSecretOnce sync.Once
	jwtSecretErr  error
)

// SessionClaims is the claims structure of a storefront browser-session JWT.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	HasPro bool   `json:"has_pro"`
	jwt.RegisteredClaims
}

func isDevMode() bool {
	devMode := os.Getenv("DEV_MODE")
	ginMode := os.Getenv("GIN_MODE")
	return devMode == "true" || devMode == "1" || ginMode == "debug"
}

func generateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a less secure but functional secret
		return fmt.Sprintf("dev-fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// ValidateJWTSecret checks that the session-JWT secret is configured.
// In production this fails if OONKOO_JWT_SECRET is not set; in dev mode a
// random per-process secret is generated and a warning is logged.
// Call this at server startup.
func ValidateJWTSecret() error {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("OONKOO_JWT_SECRET")

		if secret == "" {
			if isDevMode() {
				jwtSecret = generateRandomSecret()
				slog.Warn("OONKOO_JWT_SECRET not set, using auto-generated secret for development")
				slog.Warn("browser sessions will not survive a restart; set OONKOO_JWT_SECRET for persistent sessions")
			} else {
				jwtSecretErr = errors.New("OONKOO_JWT_SECRET environment variable is required in production; " +
					"generate one with: openssl rand -hex 32")
			}
			return
		}

		if len(secret) < 32 {
			slog.Warn("OONKOO_JWT_SECRET is shorter than the recommended 32 characters")
		}

		jwtSecret = secret
	})

	return jwtSecretErr
}

// GetJWTSecret retrieves the validated secret, validating on first use if
// ValidateJWTSecret was not called explicitly.
func GetJWTSecret() string {
	if jwtSecret == "" {
		if err := ValidateJWTSecret(); err != nil {
			panic(err)
		}
	}
	return jwtSecret
}

// GenerateSessionJWT creates a signed browser-session token for a user.
func GenerateSessionJWT(userID, email, name string, hasPro bool, expiresIn time.Duration) (string, error) {
	if expiresIn == 0 {
		expiresIn = 24 * time.Hour
	}

	claims := &SessionClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		HasPro: hasPro,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "oonkoo-registry",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetJWTSecret()))
}

// ValidateSessionJWT parses and verifies a browser-session token.
func ValidateSessionJWT(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(GetJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
