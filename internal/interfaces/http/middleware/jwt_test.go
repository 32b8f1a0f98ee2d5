package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func newTestTokenPair(t *testing.T, svc *auth.JWTService, roles ...string) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		StoreID:      uuid.New(),
		CustomerID:   uuid.New(),
		CustomerGUID: uuid.New(),
		Username:     "jane@example.com",
		Roles:        roles,
	}
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

type jwtResult struct {
	code       int
	body       string
	claims     *auth.Claims
	customerID string
}

func runJWT(t *testing.T, cfg JWTConfig, authHeader string) jwtResult {
	t.Helper()
	var res jwtResult
	r := gin.New()
	r.Use(JWTAuth(cfg))
	r.GET("/test", func(c *gin.Context) {
		res.claims = GetJWTClaims(c)
		res.customerID = logger.GetCustomerID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set(AuthHeaderKey, authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	res.code = w.Code
	res.body = w.Body.String()
	return res
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	pair, input := newTestTokenPair(t, svc, "Registered")

	res := runJWT(t, JWTConfig{JWTService: svc}, BearerPrefix+pair.AccessToken)

	require.Equal(t, http.StatusOK, res.code)
	require.NotNil(t, res.claims)
	assert.Equal(t, input.CustomerID.String(), res.claims.CustomerID)
	assert.Equal(t, input.StoreID.String(), res.claims.StoreID)
	assert.Equal(t, input.CustomerID.String(), res.customerID)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWTService()
	pair, _ := newTestTokenPair(t, svc)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "INVALID_TOKEN"},
		{"wrong scheme", "Basic abc", "INVALID_TOKEN"},
		{"garbage token", BearerPrefix + "not-a-token", "INVALID_TOKEN"},
		{"refresh token", BearerPrefix + pair.RefreshToken, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runJWT(t, JWTConfig{JWTService: svc}, tt.header)
			assert.Equal(t, http.StatusUnauthorized, res.code)
			assert.Contains(t, res.body, `"success":false`)
			assert.Nil(t, res.claims)
		})
	}
}

func TestJWTAuth_Optional(t *testing.T) {
	svc := newTestJWTService()
	cfg := JWTConfig{JWTService: svc, Optional: true}

	res := runJWT(t, cfg, "")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Nil(t, res.claims)

	res = runJWT(t, cfg, BearerPrefix+"broken")
	assert.Equal(t, http.StatusOK, res.code)
	assert.Nil(t, res.claims)
}

func TestJWTAuth_Blacklist(t *testing.T) {
	svc := newTestJWTService()
	ctx := context.Background()

	t.Run("revoked jti", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		pair, _ := newTestTokenPair(t, svc)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.AddToBlacklist(ctx, claims.ID, time.Minute))

		res := runJWT(t, JWTConfig{JWTService: svc, TokenBlacklist: blacklist}, BearerPrefix+pair.AccessToken)

		assert.Equal(t, http.StatusUnauthorized, res.code)
		assert.Contains(t, res.body, "TOKEN_REVOKED")
	})

	t.Run("customer tokens revoked after issue", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		pair, input := newTestTokenPair(t, svc)
		require.NoError(t, blacklist.RevokeCustomerTokens(ctx, input.CustomerID.String(), time.Hour))

		res := runJWT(t, JWTConfig{JWTService: svc, TokenBlacklist: blacklist}, BearerPrefix+pair.AccessToken)

		assert.Equal(t, http.StatusUnauthorized, res.code)
	})

	t.Run("other customer unaffected", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.RevokeCustomerTokens(ctx, uuid.NewString(), time.Hour))
		pair, _ := newTestTokenPair(t, svc)

		res := runJWT(t, JWTConfig{JWTService: svc, TokenBlacklist: blacklist}, BearerPrefix+pair.AccessToken)

		assert.Equal(t, http.StatusOK, res.code)
	})
}

func TestGetCustomerGUID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetCustomerGUID(c))

	c.Request.AddCookie(&http.Cookie{Name: CustomerGUIDCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", GetCustomerGUID(c))

	c.Request.Header.Set(CustomerGUIDHeader, "from-header")
	assert.Equal(t, "from-header", GetCustomerGUID(c))
}
