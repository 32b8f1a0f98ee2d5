package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/customer"
)

// CartService is the cart surface used by CartHandler
type CartService interface {
	GetShoppingCartLines(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]cartapp.Line, error)
	GetShoppingCartWarnings(lines []cartapp.Line) cart.Warnings
	AddToCart(ctx context.Context, in cartapp.AddToCartInput) (cart.Warnings, error)
	UpdateShoppingCartItem(ctx context.Context, storeID, customerID, itemID uuid.UUID, quantity int) (cart.Warnings, error)
	DeleteShoppingCartItem(ctx context.Context, storeID, customerID, itemID uuid.UUID) error
	ClearShoppingCart(ctx context.Context, storeID, customerID uuid.UUID) error
	MoveWishlistToCart(ctx context.Context, storeID uuid.UUID, c *customer.Customer) (cart.Warnings, error)
}

// CartHandler serves the shopping cart and the wishlist. Both are keyed by
// the current customer, which is a guest for anonymous visitors.
type CartHandler struct {
	BaseHandler
	carts     CartService
	customers CustomerResolver
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService, customers CustomerResolver) *CartHandler {
	return &CartHandler{carts: carts, customers: customers}
}

// GetCart godoc
// @Summary      Get the shopping cart
// @Tags         cart
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) { h.get(c, cart.TypeShoppingCart) }

// GetWishlist godoc
// @Summary      Get the wishlist
// @Tags         cart
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Router       /wishlist [get]
func (h *CartHandler) GetWishlist(c *gin.Context) { h.get(c, cart.TypeWishlist) }

func (h *CartHandler) get(c *gin.Context, cartType cart.Type) {
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cust == nil {
		h.Success(c, toCartResponse(cartType, nil, nil))
		return
	}
	h.respondWithCart(c, cust, cartType, nil)
}

func (h *CartHandler) respondWithCart(c *gin.Context, cust *customer.Customer, cartType cart.Type, warnings cart.Warnings) {
	lines, err := h.carts.GetShoppingCartLines(c.Request.Context(), storeID(c), cust.ID, cartType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cartType == cart.TypeShoppingCart {
		warnings = append(warnings, h.carts.GetShoppingCartWarnings(lines)...)
	}
	h.Success(c, toCartResponse(cartType, lines, warnings))
}

// AddToCart godoc
// @Summary      Add to the shopping cart
// @Description  Adds a product, creating a guest customer for new visitors. Warnings explain why nothing was added.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Param        request body AddToCartRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddToCart(c *gin.Context) { h.add(c, cart.TypeShoppingCart) }

// AddToWishlist godoc
// @Summary      Add to the wishlist
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Param        request body AddToCartRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /wishlist/items [post]
func (h *CartHandler) AddToWishlist(c *gin.Context) { h.add(c, cart.TypeWishlist) }

func (h *CartHandler) add(c *gin.Context, cartType cart.Type) {
	var req AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cust, err := currentCustomer(c, h.customers, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	warnings, err := h.carts.AddToCart(c.Request.Context(), cartapp.AddToCartInput{
		StoreID:              storeID(c),
		Customer:             cust,
		ProductID:            req.ProductID,
		CartType:             cartType,
		Quantity:             req.Quantity,
		CustomerEnteredPrice: req.CustomerEnteredPrice,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondWithCart(c, cust, cartType, warnings)
}

// UpdateItem godoc
// @Summary      Change a line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart item ID"
// @Param        request body UpdateCartItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cust, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	warnings, err := h.carts.UpdateShoppingCartItem(c.Request.Context(), storeID(c), cust.ID, itemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondWithCart(c, cust, cart.TypeShoppingCart, warnings)
}

// RemoveItem godoc
// @Summary      Remove a cart or wishlist line
// @Tags         cart
// @Param        id path string true "Cart item ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cust, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	if err := h.carts.DeleteShoppingCartItem(c.Request.Context(), storeID(c), cust.ID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Clear godoc
// @Summary      Empty the shopping cart
// @Tags         cart
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cust != nil {
		if err := h.carts.ClearShoppingCart(c.Request.Context(), storeID(c), cust.ID); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.NoContent(c)
}

// MoveWishlistToCart godoc
// @Summary      Move the wishlist into the cart
// @Description  Moves every wishlist line that passes the cart checks; the rest stay with warnings
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=CartResponse}
// @Router       /wishlist/move-to-cart [post]
func (h *CartHandler) MoveWishlistToCart(c *gin.Context) {
	cust, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	warnings, err := h.carts.MoveWishlistToCart(c.Request.Context(), storeID(c), cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondWithCart(c, cust, cart.TypeShoppingCart, warnings)
}

// requireCustomer resolves the current customer, answering 404 when there is none
func (h *CartHandler) requireCustomer(c *gin.Context) (*customer.Customer, bool) {
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if cust == nil {
		h.NotFound(c, "Shopping cart not found")
		return nil, false
	}
	return cust, true
}
