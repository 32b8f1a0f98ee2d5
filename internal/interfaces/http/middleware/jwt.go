package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "

	// CustomerGUIDHeader carries the guest customer GUID between requests
	CustomerGUIDHeader = "X-Customer-GUID"
	// CustomerGUIDCookie is the cookie fallback for CustomerGUIDHeader
	CustomerGUIDCookie = "customer_guid"
)

// JWTConfig configures JWTAuth
type JWTConfig struct {
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist // optional
	// Optional lets requests without a valid token through as guests
	Optional bool
	Logger   *zap.Logger
}

// JWTAuth validates the bearer token and stores its claims in the context.
// Blacklist lookups fail open so a Redis outage does not log everyone out.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cfg.Optional {
				c.Next()
				return
			}
			rejectToken(c, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err == nil {
			err = checkRevoked(c, cfg.TokenBlacklist, claims, log)
		}
		if err != nil {
			if cfg.Optional {
				c.Next()
				return
			}
			log.Debug("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			rejectToken(c, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		ctx, _ := logger.WithCustomerID(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.CustomerID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
}

func checkRevoked(c *gin.Context, blacklist auth.TokenBlacklist, claims *auth.Claims, log *zap.Logger) error {
	if blacklist == nil {
		return nil
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			return auth.ErrTokenBlacklisted
		}
	}

	revoked, err := blacklist.IsCustomerTokenRevoked(ctx, claims.CustomerID, claims.IssuedAtTime())
	if err != nil {
		log.Error("Failed to check customer token revocation", zap.String("customer_id", claims.CustomerID), zap.Error(err))
	} else if revoked {
		return auth.ErrTokenBlacklisted
	}
	return nil
}

func rejectToken(c *gin.Context, err error) {
	code, message := "INVALID_TOKEN", "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = "INVALID_TOKEN_TYPE", "Invalid token type"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = "TOKEN_NOT_VALID", "Token is not yet valid"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = "TOKEN_REVOKED", "Token has been revoked"
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims returns the claims set by JWTAuth, or nil for guests
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetCustomerGUID returns the guest GUID the client sent, header first
func GetCustomerGUID(c *gin.Context) string {
	if guid := strings.TrimSpace(c.GetHeader(CustomerGUIDHeader)); guid != "" {
		return guid
	}
	guid, _ := c.Cookie(CustomerGUIDCookie)
	return guid
}
