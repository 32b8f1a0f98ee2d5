package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddToCartRequest adds a product to the cart or wishlist
type AddToCartRequest struct {
	ProductID            uuid.UUID       `json:"product_id" binding:"required"`
	Quantity             int             `json:"quantity" binding:"required,min=1,max=100000"`
	CustomerEnteredPrice decimal.Decimal `json:"customer_entered_price"`
}

// UpdateCartItemRequest sets a line's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=100000"`
}

// CartLineResponse is one cart line with its product
type CartLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Sku         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CartResponse is a cart or wishlist with its current warnings
type CartResponse struct {
	CartType  cart.Type          `json:"cart_type"`
	Items     []CartLineResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Warnings  []string           `json:"warnings,omitempty"`
}

func toCartResponse(cartType cart.Type, lines []cartapp.Line, warnings cart.Warnings) CartResponse {
	resp := CartResponse{
		CartType: cartType,
		Items:    make([]CartLineResponse, 0, len(lines)),
		Subtotal: decimal.Zero,
		Warnings: warnings,
	}
	for _, l := range lines {
		line := CartLineResponse{
			ID:        l.Item.ID,
			ProductID: l.Item.ProductID,
			Quantity:  l.Item.Quantity,
		}
		if l.Product != nil {
			line.ProductName = l.Product.Name
			line.Sku = l.Product.Sku
			line.UnitPrice = l.Product.Price
			if l.Item.CustomerEnteredPrice.IsPositive() {
				line.UnitPrice = l.Item.CustomerEnteredPrice
			}
			line.Subtotal = l.Subtotal()
		}
		resp.Items = append(resp.Items, line)
		resp.ItemCount += l.Item.Quantity
		resp.Subtotal = resp.Subtotal.Add(line.Subtotal)
	}
	return resp
}
