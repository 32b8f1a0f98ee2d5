package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

func newTestJWTService() *JWTService {
	return NewJWTService(testJWTConfig())
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		StoreID:      uuid.New(),
		CustomerID:   uuid.New(),
		CustomerGUID: uuid.New(),
		Username:     "jane@example.com",
		Roles:        []string{"Registered", "Administrators"},
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := testJWTConfig()
	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
	assert.Equal(t, []byte(cfg.RefreshSecret), svc.refreshSecret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.AccessTokenExpiration())
	assert.Equal(t, cfg.RefreshTokenExpiration, svc.RefreshTokenExpiration())
	assert.Equal(t, cfg.MaxRefreshCount, svc.maxRefreshCount)
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	storeID, err := claims.StoreUUID()
	require.NoError(t, err)
	customerID, err := claims.CustomerUUID()
	require.NoError(t, err)

	assert.Equal(t, input.StoreID, storeID)
	assert.Equal(t, input.CustomerID, customerID)
	assert.Equal(t, input.CustomerGUID.String(), claims.CustomerGUID)
	assert.Equal(t, input.Username, claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.True(t, claims.HasRole("administrators"))
	assert.False(t, claims.HasRole("Guests"))
	assert.Greater(t, claims.RemainingTTL(), time.Duration(0))
}

func TestValidateAccessToken_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenExpiration = -time.Hour
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	_, err := newTestJWTService().ValidateAccessToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	pair, err := newTestJWTService().GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	cfg := testJWTConfig()
	cfg.Secret = "different-secret-key-32-chars!!"
	_, err = NewJWTService(cfg).ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongTokenType(t *testing.T) {
	cfg := testJWTConfig()
	cfg.RefreshSecret = cfg.Secret
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.RefreshTokenPair(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidateToken_MissingIdentity(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()

	noStore := &Claims{
		RegisteredClaims: svc.registered("x", now, now.Add(time.Minute)),
		CustomerID:       uuid.NewString(),
		TokenType:        TokenTypeAccess,
	}
	token, err := svc.sign(noStore, svc.accessSecret)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMissingStoreID)

	noCustomer := &Claims{
		RegisteredClaims: svc.registered("x", now, now.Add(time.Minute)),
		StoreID:          uuid.NewString(),
		TokenType:        TokenTypeAccess,
	}
	token, err = svc.sign(noCustomer, svc.accessSecret)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMissingCustomerID)
}

func TestRefreshTokenPair_KeepsIdentityAndCountsRefreshes(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	for want := 1; want <= 2; want++ {
		next, err := svc.RefreshTokenPair(pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		refresh, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, want, refresh.RefreshCount)

		access, err := svc.ValidateAccessToken(next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.StoreID.String(), access.StoreID)
		assert.Equal(t, input.Roles, access.Roles)
		assert.Zero(t, access.RefreshCount)
		pair = next
	}
}

func TestRefreshTokenPair_MaxRefreshExceeded(t *testing.T) {
	cfg := testJWTConfig()
	cfg.MaxRefreshCount = 2
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	pair, err = svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)
	pair, err = svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestRefreshTokenPair_InvalidToken(t *testing.T) {
	_, err := newTestJWTService().RefreshTokenPair("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
