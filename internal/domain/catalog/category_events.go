package catalog

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// Entity names used in mutation events
const (
	EntityCategory            = "category"
	EntityManufacturer        = "manufacturer"
	EntityProduct             = "product"
	EntityProductCategory     = "product_category"
	EntityProductManufacturer = "product_manufacturer"
	EntityProductPicture      = "product_picture"
	EntityPicture             = "picture"
)

// Event type constants for catalog-specific events
const (
	EventTypeProductStockChanged = "product.stock_changed"
)

func newCategoryEvent(c *Category, action shared.EntityAction) *shared.EntityEvent {
	e := shared.NewEntityEvent(EntityCategory, action, c.ID, c.TenantID)
	if c.ParentID != nil {
		e.WithRef("parent_id", *c.ParentID)
	}
	return e
}

func newManufacturerEvent(m *Manufacturer, action shared.EntityAction) *shared.EntityEvent {
	return shared.NewEntityEvent(EntityManufacturer, action, m.ID, m.TenantID)
}

func newProductEvent(p *Product, action shared.EntityAction) *shared.EntityEvent {
	return shared.NewEntityEvent(EntityProduct, action, p.ID, p.TenantID)
}

// ProductStockChangedEvent is published when stock quantity changes
type ProductStockChangedEvent struct {
	shared.BaseDomainEvent
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// NewProductStockChangedEvent creates a stock change event
func NewProductStockChangedEvent(p *Product, oldQty int, reason string) *ProductStockChangedEvent {
	return &ProductStockChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockChanged, EntityProduct, p.ID, p.TenantID),
		OldQuantity:     oldQty,
		NewQuantity:     p.StockQuantity,
		Reason:          reason,
	}
}
