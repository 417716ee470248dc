// security.go injects protective HTTP response headers. The registry is a
// JSON API consumed by the CLI and the storefront, so the defaults are the
// strict API profile: no framing, no content sniffing, deny-all CSP.
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int // seconds
	HSTSIncludeSubdomains bool
	FrameOptionsValue     string // DENY, SAMEORIGIN, or "" to omit
	ContentSecurityPolicy string
	ReferrerPolicy        string
}

// APISecurityHeadersConfig returns headers suitable for JSON API endpoints.
func APISecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,
		FrameOptionsValue:     "DENY",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	}
}

// SecurityHeaders adds security headers to all responses.
func SecurityHeaders(config SecurityHeadersConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.EnableHSTS {
			hsts := "max-age=" + strconv.Itoa(config.HSTSMaxAge)
			if config.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			c.Header("Strict-Transport-Security", hsts)
		}

		if config.FrameOptionsValue != "" {
			c.Header("X-Frame-Options", config.FrameOptionsValue)
		}

		c.Header("X-Content-Type-Options", "nosniff")

		if config.ContentSecurityPolicy != "" {
			c.Header("Content-Security-Policy", config.ContentSecurityPolicy)
		}
		if config.ReferrerPolicy != "" {
			c.Header("Referrer-Policy", config.ReferrerPolicy)
		}

		c.Next()
	}
}
