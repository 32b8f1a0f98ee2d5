package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appstore "github.com/storefront/backend/internal/application/store"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// StoreKey holds the resolved *store.Store in the gin context
const StoreKey = "current_store"

// StoreResolver picks the store that serves a request
type StoreResolver interface {
	ResolveStore(ctx context.Context, r appstore.Resolution) (*store.Store, error)
}

// StoreContext resolves the current store from the token, the X-Store-ID
// header or the host, in that order. It must run after JWTAuth.
func StoreContext(resolver StoreResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := appstore.Resolution{
			HeaderStoreID: c.GetHeader(StoreIDHeader),
			Host:          c.Request.Host,
		}
		if claims := GetJWTClaims(c); claims != nil {
			if id, err := claims.StoreUUID(); err == nil {
				r.ClaimStoreID = id
			}
		}

		ctx := c.Request.Context()
		st, err := resolver.ResolveStore(ctx, r)
		if err != nil {
			logger.FromContext(ctx).Error("Failed to resolve store", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to resolve store")
			return
		}

		c.Set(StoreKey, st)
		ctx, _ = logger.WithStoreID(ctx, logger.FromContext(ctx), st.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetStore returns the store resolved by StoreContext
func GetStore(c *gin.Context) *store.Store {
	if v, ok := c.Get(StoreKey); ok {
		if st, ok := v.(*store.Store); ok {
			return st
		}
	}
	return nil
}

// GetStoreID returns the current store id, or the default store when
// StoreContext did not run
func GetStoreID(c *gin.Context) uuid.UUID {
	if st := GetStore(c); st != nil {
		return st.ID
	}
	return store.DefaultStoreID
}
