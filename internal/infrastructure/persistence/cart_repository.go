package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/cart"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID finds a cart line within a store
func (r *GormCartRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*cart.Item, error) {
	var item cart.Item
	if err := conn(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).First(&item).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// FindForCustomer lists a customer's lines of one type, oldest first.
// A nil store returns lines from every store.
func (r *GormCartRepository) FindForCustomer(ctx context.Context, tenantID *uuid.UUID, customerID uuid.UUID, cartType cart.Type) ([]cart.Item, error) {
	var items []cart.Item
	query := conn(ctx, r.db).Where("customer_id = ? AND cart_type = ?", customerID, cartType)
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a cart line
func (r *GormCartRepository) Save(ctx context.Context, item *cart.Item) error {
	return conn(ctx, r.db).Save(item).Error
}

// Delete removes a cart line
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&cart.Item{}, "id = ?", id))
}

// DeleteForCustomer empties a customer's cart or wishlist. A nil store
// empties it in every store.
func (r *GormCartRepository) DeleteForCustomer(ctx context.Context, tenantID *uuid.UUID, customerID uuid.UUID, cartType cart.Type) error {
	query := conn(ctx, r.db).Where("customer_id = ? AND cart_type = ?", customerID, cartType)
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	return query.Delete(&cart.Item{}).Error
}

// CountForCustomer counts every cart and wishlist line of a customer
func (r *GormCartRepository) CountForCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&cart.Item{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

var _ cart.Repository = (*GormCartRepository)(nil)
