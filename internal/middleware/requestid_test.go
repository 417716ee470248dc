package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID_Generated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected generated request ID in response header")
	}
}

func TestRequestID_InboundReused(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		id, _ := c.Get(RequestIDKey)
		seen, _ = id.(string)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get(RequestIDHeader) != "upstream-id-42" {
		t.Errorf("response header = %q, want upstream-id-42", w.Header().Get(RequestIDHeader))
	}
	if seen != "upstream-id-42" {
		t.Errorf("context value = %q, want upstream-id-42", seen)
	}
}
