package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SearchFilter narrows order listings
type SearchFilter struct {
	shared.Filter
	CustomerID     *uuid.UUID
	OrderStatus    *Status
	PaymentStatus  *PaymentStatus
	ShippingStatus *ShippingStatus
}

// Repository persists orders with their items and notes
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)
	FindByGUID(ctx context.Context, guid uuid.UUID) (*Order, error)
	Search(ctx context.Context, tenantID uuid.UUID, filter SearchFilter) ([]Order, int64, error)
	// Save inserts or updates the order together with its items and notes
	Save(ctx context.Context, o *Order) error
	CountForCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}
