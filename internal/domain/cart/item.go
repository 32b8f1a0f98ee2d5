package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// EntityShoppingCartItem is the entity name used in mutation events
const EntityShoppingCartItem = "shopping_cart_item"

// Type distinguishes the shopping cart from the wishlist
type Type string

const (
	TypeShoppingCart Type = "shopping_cart"
	TypeWishlist     Type = "wishlist"
)

// IsValid reports whether the cart type is known
func (t Type) IsValid() bool {
	return t == TypeShoppingCart || t == TypeWishlist
}

// Item is one product line in a customer's cart or wishlist
type Item struct {
	shared.TenantAggregateRoot
	CustomerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CartType             Type            `gorm:"type:varchar(20);not null;index"`
	Quantity             int             `gorm:"not null"`
	CustomerEnteredPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "shopping_cart_items"
}

// NewItem creates a cart line
func NewItem(tenantID, customerID, productID uuid.UUID, cartType Type, quantity int) (*Item, error) {
	if !cartType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CART_TYPE", "Unknown shopping cart type")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	item := &Item{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(tenantID),
		CustomerID:           customerID,
		ProductID:            productID,
		CartType:             cartType,
		Quantity:             quantity,
		CustomerEnteredPrice: decimal.Zero,
	}
	item.AddDomainEvent(shared.NewEntityEvent(EntityShoppingCartItem, shared.EntityInserted, item.ID, tenantID).
		WithRef("customer_id", customerID))
	return item, nil
}

// SetQuantity replaces the line quantity
func (i *Item) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	i.AddDomainEvent(shared.NewEntityEvent(EntityShoppingCartItem, shared.EntityUpdated, i.ID, i.TenantID).
		WithRef("customer_id", i.CustomerID))
	return nil
}

// MoveTo reassigns the line to another customer
func (i *Item) MoveTo(customerID uuid.UUID) {
	i.CustomerID = customerID
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	i.AddDomainEvent(shared.NewEntityEvent(EntityShoppingCartItem, shared.EntityUpdated, i.ID, i.TenantID).
		WithRef("customer_id", customerID))
}

// Warnings collects user-facing problems found while validating a cart.
// A non-empty list blocks the operation without being an error.
type Warnings []string

// Add appends a warning
func (w *Warnings) Add(msg string) {
	*w = append(*w, msg)
}

// Empty reports whether no warnings were collected
func (w Warnings) Empty() bool {
	return len(w) == 0
}

// Repository persists cart lines
type Repository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	// FindForCustomer returns lines of the given type; a nil tenant returns lines from every store
	FindForCustomer(ctx context.Context, tenantID *uuid.UUID, customerID uuid.UUID, cartType Type) ([]Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteForCustomer removes lines of one type; a nil store removes them in every store
	DeleteForCustomer(ctx context.Context, tenantID *uuid.UUID, customerID uuid.UUID, cartType Type) error
	CountForCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}
