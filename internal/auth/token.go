// Package auth provides authentication primitives for the component registry:
// bearer-token generation/classification/hashing and JWT creation/verification
// for browser sessions.
// Two token families exist: long-lived API keys (oonkoo_ prefix, created from
// the account dashboard) and short-lived CLI tokens (cli_ prefix, minted by the
// browser-delegated login handshake). Only SHA-256 hashes of tokens are ever
// stored; the raw value is shown once at creation time.
// See internal/middleware/auth.go for the request-time authentication logic
// that uses these primitives.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// APIKeyPrefix marks long-lived API keys.
	APIKeyPrefix = "oonkoo_"

	// CLITokenPrefix marks short-lived tokens minted via the CLI login handshake.
	CLITokenPrefix = "cli_"

	// TokenBodyBytes is the entropy of the random token body in bytes (256 bits).
	TokenBodyBytes = 32

	// tokenBodyLength is the hex-encoded body length.
	tokenBodyLength = TokenBodyBytes * 2

	// maskedPlaceholder is returned by Mask for strings too short to mask safely.
	maskedPlaceholder = "****"
)

// TokenKind classifies a presented bearer token by its prefix and length.
type TokenKind int

const (
	// TokenUnknown means the string is not a well-formed registry token.
	TokenUnknown TokenKind = iota
	// TokenAPIKey is a long-lived API key (oonkoo_ prefix).
	TokenAPIKey
	// TokenCLI is a session-derived CLI token (cli_ prefix).
	TokenCLI
)

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenAPIKey:
		return "api_key"
	case TokenCLI:
		return "cli_token"
	default:
		return "unknown"
	}
}

// GenerateAPIToken creates a new random API key.
// Returns the full token (to show once) and its SHA-256 hash (to store).
func GenerateAPIToken() (token string, hash string, err error) {
	return generateToken(APIKeyPrefix)
}

// GenerateCLIToken creates a new random CLI token.
// Returns the full token (to show once) and its SHA-256 hash (to store).
func GenerateCLIToken() (token string, hash string, err error) {
	return generateToken(CLITokenPrefix)
}

func generateToken(prefix string) (string, string, error) {
	body := make([]byte, TokenBodyBytes)
	if _, err := rand.Read(body); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token := prefix + hex.EncodeToString(body)
	return token, HashToken(token), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a raw token. The hash is
// deterministic so a presented token can be looked up against stored hashes
// with a single indexed query.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Classify inspects a token string and reports its kind. This is pure string
// inspection (prefix match plus exact expected length for that prefix) and
// never touches the network or storage. Any mismatch yields TokenUnknown.
func Classify(token string) TokenKind {
	switch {
	case hasExactShape(token, APIKeyPrefix):
		return TokenAPIKey
	case hasExactShape(token, CLITokenPrefix):
		return TokenCLI
	default:
		return TokenUnknown
	}
}

// IsValid reports whether the string is a well-formed API key or CLI token.
func IsValid(token string) bool {
	return Classify(token) != TokenUnknown
}

// Mask returns a display-safe form of a token: the first 12 and last 4
// characters joined by an ellipsis. Strings shorter than 12 characters yield a
// fixed placeholder so a short secret is never echoed back.
func Mask(token string) string {
	if len(token) < 12 {
		return maskedPlaceholder
	}
	return token[:12] + "…" + token[len(token)-4:]
}

func hasExactShape(token, prefix string) bool {
	if len(token) != len(prefix)+tokenBodyLength {
		return false
	}
	if token[:len(prefix)] != prefix {
		return false
	}
	for i := len(prefix); i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
