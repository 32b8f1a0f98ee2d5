package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/discount"
)

// GormDiscountRepository implements discount.Repository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByIDForTenant finds a discount by ID within a store
func (r *GormDiscountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*discount.Discount, error) {
	var d discount.Discount
	if err := conn(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).First(&d).Error; err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

// FindAllForTenant lists a store's discounts, optionally of one type
func (r *GormDiscountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, discountType *discount.Type) ([]discount.Discount, error) {
	var discounts []discount.Discount
	query := conn(ctx, r.db).Where("tenant_id = ?", tenantID)
	if discountType != nil {
		query = query.Where("discount_type = ?", *discountType)
	}
	if err := query.Order("name ASC").Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// FindByCouponCode finds a discount by coupon code, ignoring case
func (r *GormDiscountRepository) FindByCouponCode(ctx context.Context, tenantID uuid.UUID, couponCode string) (*discount.Discount, error) {
	var d discount.Discount
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND requires_coupon_code = ? AND LOWER(coupon_code) = ?",
			tenantID, true, strings.ToLower(strings.TrimSpace(couponCode))).
		First(&d).Error; err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

// Save creates or updates a discount
func (r *GormDiscountRepository) Save(ctx context.Context, d *discount.Discount) error {
	return conn(ctx, r.db).Save(d).Error
}

// Delete removes a discount and its usage history
func (r *GormDiscountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("discount_id = ?", id).Delete(&discount.UsageHistory{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&discount.Discount{}))
	})
}

// CountUsage counts how often a discount was used, optionally by one customer
func (r *GormDiscountRepository) CountUsage(ctx context.Context, discountID uuid.UUID, customerID *uuid.UUID) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&discount.UsageHistory{}).Where("discount_id = ?", discountID)
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	err := query.Count(&count).Error
	return count, err
}

// SaveUsage records one use of a discount
func (r *GormDiscountRepository) SaveUsage(ctx context.Context, usage *discount.UsageHistory) error {
	return conn(ctx, r.db).Create(usage).Error
}

// DeleteUsageForOrder removes the usage rows of a cancelled order
func (r *GormDiscountRepository) DeleteUsageForOrder(ctx context.Context, orderID uuid.UUID) error {
	return conn(ctx, r.db).Where("order_id = ?", orderID).Delete(&discount.UsageHistory{}).Error
}

var _ discount.Repository = (*GormDiscountRepository)(nil)
