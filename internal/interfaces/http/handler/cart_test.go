package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

func cartLine(t *testing.T, customerID uuid.UUID, price string, qty int) cartapp.Line {
	t.Helper()
	p, err := catalog.NewProduct(testStoreID, "Blue shirt", "SHIRT-BLUE", decimal.RequireFromString(price))
	require.NoError(t, err)
	item, err := cart.NewItem(testStoreID, customerID, p.ID, cart.TypeShoppingCart, qty)
	require.NoError(t, err)
	return cartapp.Line{Item: *item, Product: p}
}

func TestCartHandler_GetCart(t *testing.T) {
	t.Run("anonymous visitor gets an empty cart", func(t *testing.T) {
		carts := new(MockCartService)
		h := NewCartHandler(carts, new(MockCustomerService))

		c, w := newTestContext(http.MethodGet, "/api/v1/cart", nil)
		h.GetCart(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp CartResponse
		decodeData(t, w, &resp)
		assert.Empty(t, resp.Items)
		assert.True(t, resp.Subtotal.IsZero())
		carts.AssertNotCalled(t, "GetShoppingCartLines", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("guest cart with warnings", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		guest := newGuest()
		lines := []cartapp.Line{cartLine(t, guest.ID, "10.50", 2)}

		customers.On("GetCustomerByGUID", mock.Anything, guest.CustomerGUID).Return(guest, nil)
		carts.On("GetShoppingCartLines", mock.Anything, testStoreID, guest.ID, cart.TypeShoppingCart).Return(lines, nil)
		carts.On("GetShoppingCartWarnings", lines).Return(cart.Warnings{"Minimum order subtotal is 50.00"})

		c, w := newTestContext(http.MethodGet, "/api/v1/cart", nil)
		c.Request.Header.Set(middleware.CustomerGUIDHeader, guest.CustomerGUID.String())
		h.GetCart(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp CartResponse
		decodeData(t, w, &resp)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Blue shirt", resp.Items[0].ProductName)
		assert.True(t, decimal.RequireFromString("21").Equal(resp.Subtotal), resp.Subtotal.String())
		assert.Equal(t, []string{"Minimum order subtotal is 50.00"}, resp.Warnings)
	})

	t.Run("wishlist skips cart warnings", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		guest := newGuest()

		customers.On("GetCustomerByGUID", mock.Anything, guest.CustomerGUID).Return(guest, nil)
		carts.On("GetShoppingCartLines", mock.Anything, testStoreID, guest.ID, cart.TypeWishlist).Return([]cartapp.Line{}, nil)

		c, w := newTestContext(http.MethodGet, "/api/v1/wishlist", nil)
		c.Request.Header.Set(middleware.CustomerGUIDHeader, guest.CustomerGUID.String())
		h.GetWishlist(c)

		assert.Equal(t, http.StatusOK, w.Code)
		carts.AssertNotCalled(t, "GetShoppingCartWarnings", mock.Anything)
	})
}

func TestCartHandler_AddToCart(t *testing.T) {
	t.Run("new visitor gets a guest", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		guest := newGuest()
		productID := uuid.New()

		customers.On("InsertGuestCustomer", mock.Anything, testStoreID).Return(guest, nil)
		carts.On("AddToCart", mock.Anything, mock.MatchedBy(func(in cartapp.AddToCartInput) bool {
			return in.Customer == guest && in.ProductID == productID && in.Quantity == 3 &&
				in.CartType == cart.TypeShoppingCart && in.StoreID == testStoreID
		})).Return(cart.Warnings(nil), nil)
		carts.On("GetShoppingCartLines", mock.Anything, testStoreID, guest.ID, cart.TypeShoppingCart).Return([]cartapp.Line{}, nil)
		carts.On("GetShoppingCartWarnings", mock.Anything).Return(nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/cart/items", AddToCartRequest{ProductID: productID, Quantity: 3})
		h.AddToCart(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, guest.CustomerGUID.String(), w.Header().Get(middleware.CustomerGUIDHeader))
		assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.CustomerGUIDCookie+"="+guest.CustomerGUID.String())
		carts.AssertExpectations(t)
	})

	t.Run("warnings from add are returned", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		guest := newGuest()

		customers.On("GetCustomerByGUID", mock.Anything, guest.CustomerGUID).Return(guest, nil)
		carts.On("AddToCart", mock.Anything, mock.Anything).Return(cart.Warnings{"Product is out of stock"}, nil)
		carts.On("GetShoppingCartLines", mock.Anything, testStoreID, guest.ID, cart.TypeShoppingCart).Return([]cartapp.Line{}, nil)
		carts.On("GetShoppingCartWarnings", mock.Anything).Return(nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/cart/items", AddToCartRequest{ProductID: uuid.New(), Quantity: 1})
		c.Request.Header.Set(middleware.CustomerGUIDHeader, guest.CustomerGUID.String())
		h.AddToCart(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp CartResponse
		decodeData(t, w, &resp)
		assert.Equal(t, []string{"Product is out of stock"}, resp.Warnings)
		customers.AssertNotCalled(t, "InsertGuestCustomer", mock.Anything, mock.Anything)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)

		c, w := newTestContext(http.MethodPost, "/api/v1/cart/items", AddToCartRequest{ProductID: uuid.New()})
		h.AddToCart(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		customers.AssertNotCalled(t, "InsertGuestCustomer", mock.Anything, mock.Anything)
	})
}

func TestCartHandler_UpdateItem(t *testing.T) {
	t.Run("no customer means no cart", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService), new(MockCustomerService))

		c, w := newTestContext(http.MethodPut, "/api/v1/cart/items/x", UpdateCartItemRequest{Quantity: 2})
		withParams(c, "id", uuid.NewString())
		h.UpdateItem(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("signed in customer", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		registered := newRegistered("jane@example.com")
		itemID := uuid.New()

		customers.On("GetCustomer", mock.Anything, testStoreID, registered.ID).Return(registered, nil)
		carts.On("UpdateShoppingCartItem", mock.Anything, testStoreID, registered.ID, itemID, 2).Return(cart.Warnings(nil), nil)
		carts.On("GetShoppingCartLines", mock.Anything, testStoreID, registered.ID, cart.TypeShoppingCart).Return([]cartapp.Line{}, nil)
		carts.On("GetShoppingCartWarnings", mock.Anything).Return(nil)

		c, w := newTestContext(http.MethodPut, "/api/v1/cart/items/x", UpdateCartItemRequest{Quantity: 2})
		withParams(c, "id", itemID.String())
		withClaims(c, registered.ID)
		h.UpdateItem(c)

		assert.Equal(t, http.StatusOK, w.Code)
		carts.AssertExpectations(t)
	})
}

func TestCartHandler_Clear(t *testing.T) {
	t.Run("anonymous is a no-op", func(t *testing.T) {
		carts := new(MockCartService)
		h := NewCartHandler(carts, new(MockCustomerService))

		c, w := newTestContext(http.MethodDelete, "/api/v1/cart", nil)
		h.Clear(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		carts.AssertNotCalled(t, "ClearShoppingCart", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("guest cart is cleared", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		guest := newGuest()

		customers.On("GetCustomerByGUID", mock.Anything, guest.CustomerGUID).Return(guest, nil)
		carts.On("ClearShoppingCart", mock.Anything, testStoreID, guest.ID).Return(nil)

		c, w := newTestContext(http.MethodDelete, "/api/v1/cart", nil)
		c.Request.Header.Set(middleware.CustomerGUIDHeader, guest.CustomerGUID.String())
		h.Clear(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		carts.AssertExpectations(t)
	})

	t.Run("foreign store guest is ignored", func(t *testing.T) {
		carts := new(MockCartService)
		customers := new(MockCustomerService)
		h := NewCartHandler(carts, customers)
		other := newGuest()
		other.TenantID = uuid.New()

		customers.On("GetCustomerByGUID", mock.Anything, other.CustomerGUID).Return(other, nil)

		c, w := newTestContext(http.MethodDelete, "/api/v1/cart", nil)
		c.Request.Header.Set(middleware.CustomerGUIDHeader, other.CustomerGUID.String())
		h.Clear(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		carts.AssertNotCalled(t, "ClearShoppingCart", mock.Anything, mock.Anything, mock.Anything)
	})
}
