package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/order"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func withOrderLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

// FindByIDForTenant loads an order with items and notes
func (r *GormOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := conn(ctx, r.db).Scopes(withOrderLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// FindByGUID loads an order by its public guid
func (r *GormOrderRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := conn(ctx, r.db).Scopes(withOrderLines).
		Where("order_guid = ?", guid).
		First(&o).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// Search lists non-deleted orders without their lines
func (r *GormOrderRepository) Search(ctx context.Context, tenantID uuid.UUID, filter order.SearchFilter) ([]order.Order, int64, error) {
	query := conn(ctx, r.db).Model(&order.Order{}).
		Where("tenant_id = ?", tenantID).
		Scopes(notDeleted)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OrderStatus != nil {
		query = query.Where("order_status = ?", *filter.OrderStatus)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.ShippingStatus != nil {
		query = query.Where("shipping_status = ?", *filter.ShippingStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	if err := query.
		Scopes(orderBy(filter.Filter, OrderSortFields, "created_at"), paginate(filter.Filter)).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Save writes the order, its items and its notes in one transaction
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Notes").Save(o).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := tx.Save(&o.Items[i]).Error; err != nil {
				return err
			}
		}
		for i := range o.Notes {
			o.Notes[i].OrderID = o.ID
			if err := tx.Save(&o.Notes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountForCustomer counts a customer's non-deleted orders
func (r *GormOrderRepository) CountForCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&order.Order{}).
		Where("customer_id = ?", customerID).
		Scopes(notDeleted).
		Count(&count).Error
	return count, err
}

var _ order.Repository = (*GormOrderRepository)(nil)
