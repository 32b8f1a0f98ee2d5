package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// guestCookieMaxAge keeps the guest cookie for a year
const guestCookieMaxAge = 365 * 24 * 60 * 60

// CustomerResolver looks up the customer behind a request
type CustomerResolver interface {
	GetCustomer(ctx context.Context, storeID, id uuid.UUID) (*customer.Customer, error)
	GetCustomerByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error)
	InsertGuestCustomer(ctx context.Context, storeID uuid.UUID) (*customer.Customer, error)
}

// currentCustomer finds the customer for the request. Authenticated requests
// use the token's customer; anonymous ones use the guest guid header or
// cookie. With create set, a visitor without a usable guest gets a new one and
// its guid is returned in the response header and cookie. Without create the
// result may be nil.
func currentCustomer(c *gin.Context, customers CustomerResolver, create bool) (*customer.Customer, error) {
	ctx := c.Request.Context()

	if cl := claims(c); cl != nil {
		sid, err := cl.StoreUUID()
		if err != nil {
			return nil, auth.ErrInvalidClaims
		}
		cid, err := cl.CustomerUUID()
		if err != nil {
			return nil, auth.ErrInvalidClaims
		}
		cust, err := customers.GetCustomer(ctx, sid, cid)
		if err != nil {
			return nil, err
		}
		if cust.IsDeleted() || !cust.Active {
			return nil, shared.NewDomainError("UNAUTHORIZED", "Customer account is not active")
		}
		return cust, nil
	}

	if guest, err := guestFromRequest(c, customers); err != nil {
		return nil, err
	} else if guest != nil {
		return guest, nil
	}

	if !create {
		return nil, nil
	}
	guest, err := customers.InsertGuestCustomer(ctx, storeID(c))
	if err != nil {
		return nil, err
	}
	guid := guest.CustomerGUID.String()
	c.Header(middleware.CustomerGUIDHeader, guid)
	c.SetCookie(middleware.CustomerGUIDCookie, guid, guestCookieMaxAge, "/", "", false, true)
	return guest, nil
}

// guestFromRequest resolves the guest guid sent by the client. Unknown,
// malformed and foreign-store guids are treated as absent; only guests can be
// addressed this way.
func guestFromRequest(c *gin.Context, customers CustomerResolver) (*customer.Customer, error) {
	raw := middleware.GetCustomerGUID(c)
	if raw == "" {
		return nil, nil
	}
	guid, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	guest, err := customers.GetCustomerByGUID(c.Request.Context(), guid)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if guest.TenantID != storeID(c) || guest.IsDeleted() || !guest.IsGuest() {
		return nil, nil
	}
	return guest, nil
}
