package discount

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// EntityDiscount is the entity name used in mutation events
const EntityDiscount = "discount"

// Type selects what a discount applies to
type Type string

const (
	TypeAssignedToOrderTotal    Type = "order_total"
	TypeAssignedToSkus          Type = "skus"
	TypeAssignedToCategories    Type = "categories"
	TypeAssignedToShipping      Type = "shipping"
	TypeAssignedToOrderSubTotal Type = "order_subtotal"
)

// Limitation restricts how often a discount may be used
type Limitation string

const (
	LimitationUnlimited         Limitation = "unlimited"
	LimitationNTimesOnly        Limitation = "n_times_only"
	LimitationNTimesPerCustomer Limitation = "n_times_per_customer"
)

// Discount is a price reduction with an optional coupon code
type Discount struct {
	shared.TenantAggregateRoot
	Name                  string           `gorm:"type:varchar(200);not null"`
	DiscountType          Type             `gorm:"type:varchar(30);not null;index"`
	UsePercentage         bool             `gorm:"not null;default:false"`
	DiscountPercentage    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	MaximumDiscountAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	StartDate             *time.Time
	EndDate               *time.Time
	RequiresCouponCode    bool       `gorm:"not null;default:false"`
	CouponCode            string     `gorm:"type:varchar(100);index"`
	Limitation            Limitation `gorm:"type:varchar(30);not null;default:'unlimited'"`
	LimitationTimes       int        `gorm:"not null;default:0"`
	AppliedProductIDs     string     `gorm:"type:text"` // comma separated
	AppliedCategoryIDs    string     `gorm:"type:text"` // comma separated
}

// TableName returns the table name for GORM
func (Discount) TableName() string {
	return "discounts"
}

// NewPercentageDiscount creates a percentage discount
func NewPercentageDiscount(tenantID uuid.UUID, name string, discountType Type, percentage decimal.Decimal) (*Discount, error) {
	if percentage.LessThanOrEqual(decimal.Zero) || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Discount percentage must be between 0 and 100")
	}
	d, err := newDiscount(tenantID, name, discountType)
	if err != nil {
		return nil, err
	}
	d.UsePercentage = true
	d.DiscountPercentage = percentage
	return d, nil
}

// NewAmountDiscount creates a fixed amount discount
func NewAmountDiscount(tenantID uuid.UUID, name string, discountType Type, amount decimal.Decimal) (*Discount, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Discount amount must be positive")
	}
	d, err := newDiscount(tenantID, name, discountType)
	if err != nil {
		return nil, err
	}
	d.DiscountAmount = amount
	return d, nil
}

func newDiscount(tenantID uuid.UUID, name string, discountType Type) (*Discount, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Discount name must be 1-200 characters")
	}
	switch discountType {
	case TypeAssignedToOrderTotal, TypeAssignedToSkus, TypeAssignedToCategories, TypeAssignedToShipping, TypeAssignedToOrderSubTotal:
	default:
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Unknown discount type")
	}
	d := &Discount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		DiscountType:        discountType,
		DiscountPercentage:  decimal.Zero,
		DiscountAmount:      decimal.Zero,
		Limitation:          LimitationUnlimited,
	}
	d.AddDomainEvent(shared.NewEntityEvent(EntityDiscount, shared.EntityInserted, d.ID, tenantID))
	return d, nil
}

// Update renames the discount and replaces its value. A percentage must lie
// in (0, 100]; an amount must be positive.
func (d *Discount) Update(name string, usePercentage bool, percentage, amount decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Discount name must be 1-200 characters")
	}
	if usePercentage {
		if percentage.LessThanOrEqual(decimal.Zero) || percentage.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewDomainError("INVALID_PERCENTAGE", "Discount percentage must be between 0 and 100")
		}
		amount = decimal.Zero
	} else {
		if !amount.IsPositive() {
			return shared.NewDomainError("INVALID_AMOUNT", "Discount amount must be positive")
		}
		percentage = decimal.Zero
	}
	d.Name = name
	d.UsePercentage = usePercentage
	d.DiscountPercentage = percentage
	d.DiscountAmount = amount
	d.changed()
	return nil
}

// SetCouponCode requires the given code at checkout; empty clears it
func (d *Discount) SetCouponCode(code string) {
	code = strings.TrimSpace(code)
	d.CouponCode = code
	d.RequiresCouponCode = code != ""
	d.changed()
}

// SetPeriod restricts the discount to a date window
func (d *Discount) SetPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must be after the start date")
	}
	d.StartDate = start
	d.EndDate = end
	d.changed()
	return nil
}

// SetLimitation sets usage limits
func (d *Discount) SetLimitation(limitation Limitation, times int) error {
	switch limitation {
	case LimitationUnlimited:
		times = 0
	case LimitationNTimesOnly, LimitationNTimesPerCustomer:
		if times <= 0 {
			return shared.NewDomainError("INVALID_LIMITATION", "Limitation times must be positive")
		}
	default:
		return shared.NewDomainError("INVALID_LIMITATION", "Unknown discount limitation")
	}
	d.Limitation = limitation
	d.LimitationTimes = times
	d.changed()
	return nil
}

// SetMaximumAmount caps percentage discounts; nil removes the cap
func (d *Discount) SetMaximumAmount(amount *decimal.Decimal) {
	d.MaximumDiscountAmount = amount
	d.changed()
}

// ApplyToProducts sets the products a SKU discount covers
func (d *Discount) ApplyToProducts(ids []uuid.UUID) {
	d.AppliedProductIDs = joinIDs(ids)
	d.changed()
}

// ApplyToCategories sets the categories a category discount covers
func (d *Discount) ApplyToCategories(ids []uuid.UUID) {
	d.AppliedCategoryIDs = joinIDs(ids)
	d.changed()
}

// ProductIDs returns the products a SKU discount covers
func (d *Discount) ProductIDs() []uuid.UUID {
	return splitIDs(d.AppliedProductIDs)
}

// CategoryIDs returns the categories a category discount covers
func (d *Discount) CategoryIDs() []uuid.UUID {
	return splitIDs(d.AppliedCategoryIDs)
}

// AppliesToProduct reports whether a SKU or category discount covers the product
func (d *Discount) AppliesToProduct(productID uuid.UUID, categoryIDs []uuid.UUID) bool {
	switch d.DiscountType {
	case TypeAssignedToSkus:
		for _, id := range d.ProductIDs() {
			if id == productID {
				return true
			}
		}
	case TypeAssignedToCategories:
		for _, applied := range d.CategoryIDs() {
			for _, id := range categoryIDs {
				if applied == id {
					return true
				}
			}
		}
	}
	return false
}

// IsActiveAt reports whether t falls inside the discount window
func (d *Discount) IsActiveAt(t time.Time) bool {
	if d.StartDate != nil && t.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && t.After(*d.EndDate) {
		return false
	}
	return true
}

// GetDiscountAmount returns the reduction for the given amount.
// The result is never negative and never exceeds the amount.
func (d *Discount) GetDiscountAmount(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	var result decimal.Decimal
	if d.UsePercentage {
		result = amount.Mul(d.DiscountPercentage).Div(decimal.NewFromInt(100))
	} else {
		result = d.DiscountAmount
	}
	if d.UsePercentage && d.MaximumDiscountAmount != nil && result.GreaterThan(*d.MaximumDiscountAmount) {
		result = *d.MaximumDiscountAmount
	}
	if result.IsNegative() {
		result = decimal.Zero
	}
	if result.GreaterThan(amount) {
		result = amount
	}
	return result.Round(2)
}

// Delete removes the discount
func (d *Discount) Delete() {
	d.AddDomainEvent(shared.NewEntityEvent(EntityDiscount, shared.EntityDeleted, d.ID, d.TenantID))
}

func (d *Discount) changed() {
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	d.AddDomainEvent(shared.NewEntityEvent(EntityDiscount, shared.EntityUpdated, d.ID, d.TenantID))
}

// GetPreferredDiscount picks the discount giving the largest reduction
func GetPreferredDiscount(discounts []Discount, amount decimal.Decimal) (*Discount, decimal.Decimal) {
	var preferred *Discount
	best := decimal.Zero
	for i := range discounts {
		value := discounts[i].GetDiscountAmount(amount)
		if preferred == nil || value.GreaterThan(best) {
			preferred = &discounts[i]
			best = value
		}
	}
	if preferred == nil || best.IsZero() {
		return nil, decimal.Zero
	}
	return preferred, best
}

// UsageHistory records a discount applied to an order
type UsageHistory struct {
	shared.BaseEntity
	DiscountID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (UsageHistory) TableName() string {
	return "discount_usage_history"
}

// NewUsageHistory records a discount use
func NewUsageHistory(discountID, orderID, customerID uuid.UUID) *UsageHistory {
	return &UsageHistory{
		BaseEntity: shared.NewBaseEntity(),
		DiscountID: discountID,
		OrderID:    orderID,
		CustomerID: customerID,
	}
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []uuid.UUID {
	var ids []uuid.UUID
	for _, part := range strings.Split(s, ",") {
		if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Repository persists discounts and their usage history
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Discount, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, discountType *Type) ([]Discount, error)
	FindByCouponCode(ctx context.Context, tenantID uuid.UUID, couponCode string) (*Discount, error)
	Save(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	CountUsage(ctx context.Context, discountID uuid.UUID, customerID *uuid.UUID) (int64, error)
	SaveUsage(ctx context.Context, usage *UsageHistory) error
	DeleteUsageForOrder(ctx context.Context, orderID uuid.UUID) error
}
