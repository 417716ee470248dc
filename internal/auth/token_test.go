package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIToken(t *testing.T) {
	t.Run("returns token and hash", func(t *testing.T) {
		token, hash, err := GenerateAPIToken()
		if err != nil {
			t.Fatalf("GenerateAPIToken() error: %v", err)
		}
		if token == "" {
			t.Error("GenerateAPIToken() returned empty token")
		}
		if hash == "" {
			t.Error("GenerateAPIToken() returned empty hash")
		}
	})

	t.Run("token starts with oonkoo_", func(t *testing.T) {
		token, _, err := GenerateAPIToken()
		if err != nil {
			t.Fatalf("GenerateAPIToken() error: %v", err)
		}
		if !strings.HasPrefix(token, APIKeyPrefix) {
			t.Errorf("token = %q, want prefix %q", token, APIKeyPrefix)
		}
	})

	t.Run("hash matches HashToken of the raw value", func(t *testing.T) {
		token, hash, err := GenerateAPIToken()
		if err != nil {
			t.Fatalf("GenerateAPIToken() error: %v", err)
		}
		if HashToken(token) != hash {
			t.Error("stored hash does not equal HashToken(raw)")
		}
	})

	t.Run("two calls produce different tokens", func(t *testing.T) {
		token1, _, _ := GenerateAPIToken()
		token2, _, _ := GenerateAPIToken()
		if token1 == token2 {
			t.Error("GenerateAPIToken() produced identical tokens on consecutive calls")
		}
	})
}

func TestGenerateCLIToken(t *testing.T) {
	token, hash, err := GenerateCLIToken()
	if err != nil {
		t.Fatalf("GenerateCLIToken() error: %v", err)
	}
	if !strings.HasPrefix(token, CLITokenPrefix) {
		t.Errorf("token = %q, want prefix %q", token, CLITokenPrefix)
	}
	if HashToken(token) != hash {
		t.Error("stored hash does not equal HashToken(raw)")
	}
}

func TestHashToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		if HashToken("cli_abc") != HashToken("cli_abc") {
			t.Error("HashToken() is not deterministic")
		}
	})

	t.Run("different inputs produce different hashes", func(t *testing.T) {
		if HashToken("cli_abc") == HashToken("cli_abd") {
			t.Error("HashToken() collided on near-identical inputs")
		}
	})

	t.Run("emits hex sha256", func(t *testing.T) {
		if got := len(HashToken("anything")); got != 64 {
			t.Errorf("hash length = %d, want 64", got)
		}
	})
}

func TestClassify(t *testing.T) {
	apiToken, _, _ := GenerateAPIToken()
	cliToken, _, _ := GenerateCLIToken()

	tests := []struct {
		name  string
		token string
		want  TokenKind
	}{
		{"generated api key", apiToken, TokenAPIKey},
		{"generated cli token", cliToken, TokenCLI},
		{"empty string", "", TokenUnknown},
		{"bare prefix", "oonkoo_", TokenUnknown},
		{"truncated body", apiToken[:len(apiToken)-1], TokenUnknown},
		{"extended body", apiToken + "0", TokenUnknown},
		{"wrong prefix right length", "xxxxxx_" + strings.Repeat("0", 64), TokenUnknown},
		{"non-hex body", APIKeyPrefix + strings.Repeat("z", 64), TokenUnknown},
		{"uppercase hex body", APIKeyPrefix + strings.Repeat("A", 64), TokenUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.token); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	apiToken, _, _ := GenerateAPIToken()
	cliToken, _, _ := GenerateCLIToken()

	if !IsValid(apiToken) {
		t.Error("IsValid() = false for generated API key")
	}
	if !IsValid(cliToken) {
		t.Error("IsValid() = false for generated CLI token")
	}
	if IsValid("oonkoo_short") {
		t.Error("IsValid() = true for malformed token")
	}
}

func TestMask(t *testing.T) {
	t.Run("long token shows head and tail", func(t *testing.T) {
		token, _, _ := GenerateAPIToken()
		masked := Mask(token)
		if !strings.HasPrefix(masked, token[:12]) {
			t.Errorf("Mask() = %q, want prefix %q", masked, token[:12])
		}
		if !strings.HasSuffix(masked, token[len(token)-4:]) {
			t.Errorf("Mask() = %q, want suffix %q", masked, token[len(token)-4:])
		}
		if !strings.Contains(masked, "…") {
			t.Errorf("Mask() = %q, want ellipsis separator", masked)
		}
	})

	t.Run("short string yields placeholder", func(t *testing.T) {
		if got := Mask("cli_short"); got != "****" {
			t.Errorf("Mask() = %q, want %q", got, "****")
		}
	})

	t.Run("never echoes the full body", func(t *testing.T) {
		token, _, _ := GenerateCLIToken()
		if Mask(token) == token {
			t.Error("Mask() returned the raw token unchanged")
		}
	})
}
