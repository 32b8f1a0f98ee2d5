package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveSwagger(t *testing.T, cfg SwaggerConfig, auth gin.HandlerFunc, remote, token string) int {
	t.Helper()
	r := gin.New()
	r.GET("/swagger/*any", SwaggerProtection(cfg, auth), func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remote + ":1234"
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSwaggerProtection(t *testing.T) {
	svc := newTestJWTService()
	auth := JWTAuth(JWTConfig{JWTService: svc})
	admin, _ := newTestTokenPair(t, svc, AdministratorsRole)
	shopper, _ := newTestTokenPair(t, svc, "Registered")

	assert.Equal(t, http.StatusNotFound, serveSwagger(t, SwaggerConfig{}, nil, "10.0.0.1", ""))
	assert.Equal(t, http.StatusOK, serveSwagger(t, SwaggerConfig{Enabled: true}, nil, "10.0.0.1", ""))

	ipCfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.1.0/24", "10.0.0.5"}}
	assert.Equal(t, http.StatusOK, serveSwagger(t, ipCfg, nil, "192.168.1.77", ""))
	assert.Equal(t, http.StatusOK, serveSwagger(t, ipCfg, nil, "10.0.0.5", ""))
	assert.Equal(t, http.StatusForbidden, serveSwagger(t, ipCfg, nil, "10.0.0.6", ""))

	authCfg := SwaggerConfig{Enabled: true, RequireAuth: true}
	assert.Equal(t, http.StatusUnauthorized, serveSwagger(t, authCfg, auth, "10.0.0.1", ""))
	assert.Equal(t, http.StatusForbidden, serveSwagger(t, authCfg, auth, "10.0.0.1", shopper.AccessToken))
	assert.Equal(t, http.StatusOK, serveSwagger(t, authCfg, auth, "10.0.0.1", admin.AccessToken))
}

func TestIPAllowed(t *testing.T) {
	prefixes := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	assert.True(t, ipAllowed("10.1.2.3", prefixes))
	assert.True(t, ipAllowed("::ffff:10.1.2.3", prefixes))
	assert.False(t, ipAllowed("11.0.0.1", prefixes))
	assert.False(t, ipAllowed("not-an-ip", prefixes))
}
