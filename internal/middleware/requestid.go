package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the canonical HTTP header used to propagate the request identifier.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key under which the request ID is stored.
	RequestIDKey = "request_id"
)

// RequestID ensures every request carries a unique identifier, propagated as
// an X-Request-ID header. An inbound header (set by a load balancer or the
// CLI) is reused unchanged; otherwise a UUID v4 is generated. The ID is echoed
// back in the response so clients can correlate requests with server logs.
//
// Register this early so all downstream logging includes the ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
