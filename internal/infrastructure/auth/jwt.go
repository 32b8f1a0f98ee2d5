package auth

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// TokenType distinguishes access from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingStoreID     = errors.New("missing store_id in claims")
	ErrMissingCustomerID  = errors.New("missing customer_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims identify a customer inside the store that issued the token
type Claims struct {
	jwt.RegisteredClaims
	StoreID      string    `json:"store_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerGUID string    `json:"customer_guid,omitempty"`
	Username     string    `json:"username,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is an access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// JWTService signs and validates customer tokens
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
	now               func() time.Time
}

// NewJWTService creates a new JWT service. The access secret signs refresh
// tokens too when no refresh secret is configured.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := []byte(cfg.RefreshSecret)
	if cfg.RefreshSecret == "" {
		refreshSecret = []byte(cfg.Secret)
	}

	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     refreshSecret,
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
		now:               time.Now,
	}
}

// GenerateTokenInput is the identity a token pair is issued for
type GenerateTokenInput struct {
	StoreID      uuid.UUID
	CustomerID   uuid.UUID
	CustomerGUID uuid.UUID
	Username     string
	Roles        []string
}

// GenerateTokenPair issues an access and a refresh token
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	guid := ""
	if input.CustomerGUID != uuid.Nil {
		guid = input.CustomerGUID.String()
	}
	return s.issue(Claims{
		StoreID:      input.StoreID.String(),
		CustomerID:   input.CustomerID.String(),
		CustomerGUID: guid,
		Username:     input.Username,
		Roles:        input.Roles,
	}, 0)
}

// issue signs a pair from the identity part of base. Refresh tokens carry
// no roles; they are re-read from the access claims on refresh.
func (s *JWTService) issue(base Claims, refreshCount int) (*TokenPair, error) {
	now := s.now()
	accessExpires := now.Add(s.accessExpiration)
	refreshExpires := now.Add(s.refreshExpiration)

	access := base
	access.RegisteredClaims = s.registered(base.CustomerID, now, accessExpires)
	access.TokenType = TokenTypeAccess
	access.RefreshCount = 0

	accessToken, err := s.sign(&access, s.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh := Claims{
		RegisteredClaims: s.registered(base.CustomerID, now, refreshExpires),
		StoreID:          base.StoreID,
		CustomerID:       base.CustomerID,
		CustomerGUID:     base.CustomerGUID,
		Username:         base.Username,
		Roles:            base.Roles,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	}
	refreshToken, err := s.sign(&refresh, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpires,
		RefreshTokenExpiresAt: refreshExpires,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(subject string, now, expires time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(expires),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) sign(claims *Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, TokenTypeRefresh)
}

func (s *JWTService) validate(tokenString string, secret []byte, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != expected {
		return nil, ErrInvalidTokenType
	}
	if claims.StoreID == "" {
		return nil, ErrMissingStoreID
	}
	if claims.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}
	return claims, nil
}

// RefreshTokenPair exchanges a valid refresh token for a new pair.
// The refresh count travels with the chain and is capped.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if s.maxRefreshCount > 0 && claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	if _, err := claims.StoreUUID(); err != nil {
		return nil, ErrInvalidClaims
	}
	if _, err := claims.CustomerUUID(); err != nil {
		return nil, ErrInvalidClaims
	}
	return s.issue(*claims, claims.RefreshCount+1)
}

// StoreUUID parses the store id
func (c *Claims) StoreUUID() (uuid.UUID, error) {
	return uuid.Parse(c.StoreID)
}

// CustomerUUID parses the customer id
func (c *Claims) CustomerUUID() (uuid.UUID, error) {
	return uuid.Parse(c.CustomerID)
}

// HasRole reports whether the token carries the role system name
func (c *Claims) HasRole(systemName string) bool {
	return slices.ContainsFunc(c.Roles, func(r string) bool {
		return strings.EqualFold(r, systemName)
	})
}

// IssuedAtTime returns the issued-at time
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time left until the token expires
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.accessExpiration
}

// RefreshTokenExpiration returns the refresh token lifetime
func (s *JWTService) RefreshTokenExpiration() time.Duration {
	return s.refreshExpiration
}
