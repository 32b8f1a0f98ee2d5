package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWith(t *testing.T, handlers []gin.HandlerFunc, method string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(handlers...)
	r.Handle(method, "/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	req := httptest.NewRequest(method, "/test", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_DefaultAllowsNoOrigin(t *testing.T) {
	w := serveWith(t, []gin.HandlerFunc{CORS()}, http.MethodGet, map[string]string{"Origin": "http://evil.example"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example"}

	t.Run("allowed origin", func(t *testing.T) {
		w := serveWith(t, []gin.HandlerFunc{CORSWithConfig(cfg)}, http.MethodGet, map[string]string{"Origin": "https://shop.example"})
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), StoreIDHeader)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		w := serveWith(t, []gin.HandlerFunc{CORSWithConfig(cfg)}, http.MethodGet, map[string]string{"Origin": "https://other.example"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight ends with 204", func(t *testing.T) {
		w := serveWith(t, []gin.HandlerFunc{CORSWithConfig(cfg)}, http.MethodOptions, map[string]string{"Origin": "https://other.example"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		wild := DefaultCORSConfig()
		wild.AllowOrigins = []string{"*"}
		w := serveWith(t, []gin.HandlerFunc{CORSWithConfig(wild)}, http.MethodGet, map[string]string{"Origin": "https://any.example"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	capture := func(c *gin.Context) { seen = c.GetString(RequestIDKey); c.Next() }

	w := serveWith(t, []gin.HandlerFunc{RequestID(), capture}, http.MethodGet, nil)
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	w = serveWith(t, []gin.HandlerFunc{RequestID(), capture}, http.MethodGet, map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
}

func TestSecure(t *testing.T) {
	w := serveWith(t, []gin.HandlerFunc{Secure()}, http.MethodGet, nil)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecureWithConfig_HSTS(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.HSTSEnabled = true
	cfg.CSPDirective = ""

	w := serveWith(t, []gin.HandlerFunc{SecureWithConfig(cfg)}, http.MethodGet, nil)

	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/test", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)

	r = gin.New()
	r.Use(Timeout(0))
	r.GET("/test", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		assert.NoError(t, c.Request.Context().Err())
		assert.Equal(t, context.Background().Err(), c.Request.Context().Err())
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.False(t, hasDeadline)
}
