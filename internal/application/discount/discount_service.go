package discount

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// ValidationResult explains why a discount cannot be used
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

func invalid(msg string) ValidationResult {
	return ValidationResult{Errors: []string{msg}}
}

// DiscountService reads, validates and records discounts
type DiscountService struct {
	repo      discount.Repository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDiscountService creates a new DiscountService
func NewDiscountService(repo discount.Repository, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *DiscountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscountService{repo: repo, cache: cacheManager, publisher: publisher, logger: logger, now: time.Now}
}

// GetAllDiscounts returns a store's discounts of a type, or of every type
// when discountType is nil. Expired discounts are left out unless asked for.
func (s *DiscountService) GetAllDiscounts(ctx context.Context, storeID uuid.UUID, discountType *discount.Type, includeExpired bool) ([]discount.Discount, error) {
	typeArg := "all"
	if discountType != nil {
		typeArg = string(*discountType)
	}
	key := cache.DiscountsAllKey.Create(storeID, typeArg, includeExpired)
	all, err := cache.Get(ctx, s.cache, key, func() ([]discount.Discount, error) {
		return s.repo.FindAllForTenant(ctx, storeID, discountType)
	})
	if err != nil || includeExpired {
		return all, err
	}

	now := s.now()
	active := make([]discount.Discount, 0, len(all))
	for _, d := range all {
		if d.EndDate == nil || !now.After(*d.EndDate) {
			active = append(active, d)
		}
	}
	return active, nil
}

// GetDiscount returns one discount
func (s *DiscountService) GetDiscount(ctx context.Context, storeID, id uuid.UUID) (*discount.Discount, error) {
	return s.repo.FindByIDForTenant(ctx, storeID, id)
}

// GetDiscountByCouponCode returns the discount using a coupon code
func (s *DiscountService) GetDiscountByCouponCode(ctx context.Context, storeID uuid.UUID, couponCode string) (*discount.Discount, error) {
	couponCode = strings.TrimSpace(couponCode)
	if couponCode == "" {
		return nil, shared.ErrNotFound
	}
	return s.repo.FindByCouponCode(ctx, storeID, couponCode)
}

// SaveDiscount inserts or updates a discount
func (s *DiscountService) SaveDiscount(ctx context.Context, d *discount.Discount) error {
	if err := s.repo.Save(ctx, d); err != nil {
		return err
	}
	s.publish(ctx, d)
	return nil
}

// DeleteDiscount removes a discount
func (s *DiscountService) DeleteDiscount(ctx context.Context, storeID, id uuid.UUID) error {
	d, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return err
	}
	d.Delete()
	s.publish(ctx, d)
	return nil
}

// ValidateDiscount checks the date window, the coupon code and the usage
// limitation for a customer
func (s *DiscountService) ValidateDiscount(ctx context.Context, d *discount.Discount, c *customer.Customer, couponCode string) (ValidationResult, error) {
	if d == nil {
		return invalid("Discount is not found"), nil
	}
	if c == nil {
		return invalid("Customer is not found"), nil
	}
	if d.RequiresCouponCode && !strings.EqualFold(strings.TrimSpace(couponCode), d.CouponCode) {
		return invalid("The coupon code is not valid"), nil
	}
	now := s.now()
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return invalid("Sorry, this offer is not started yet"), nil
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return invalid("Sorry, this offer is expired"), nil
	}

	switch d.Limitation {
	case discount.LimitationNTimesOnly:
		used, err := s.repo.CountUsage(ctx, d.ID, nil)
		if err != nil {
			return ValidationResult{}, err
		}
		if used >= int64(d.LimitationTimes) {
			return invalid("This discount has been used up"), nil
		}
	case discount.LimitationNTimesPerCustomer:
		if !c.IsRegistered() {
			return invalid("This discount is available to registered customers only"), nil
		}
		used, err := s.repo.CountUsage(ctx, d.ID, &c.ID)
		if err != nil {
			return ValidationResult{}, err
		}
		if used >= int64(d.LimitationTimes) {
			return invalid("You have already used this discount"), nil
		}
	}
	return ValidationResult{IsValid: true}, nil
}

// GetApplicableDiscounts returns the discounts of a type the customer may use
func (s *DiscountService) GetApplicableDiscounts(ctx context.Context, storeID uuid.UUID, discountType discount.Type, c *customer.Customer, couponCode string) ([]discount.Discount, error) {
	all, err := s.GetAllDiscounts(ctx, storeID, &discountType, false)
	if err != nil {
		return nil, err
	}
	applicable := make([]discount.Discount, 0, len(all))
	for i := range all {
		result, err := s.ValidateDiscount(ctx, &all[i], c, couponCode)
		if err != nil {
			return nil, err
		}
		if result.IsValid {
			applicable = append(applicable, all[i])
		}
	}
	return applicable, nil
}

// GetPreferredDiscount returns the applicable discount of a type giving the
// largest reduction of amount
func (s *DiscountService) GetPreferredDiscount(ctx context.Context, storeID uuid.UUID, discountType discount.Type, c *customer.Customer, couponCode string, amount decimal.Decimal) (*discount.Discount, decimal.Decimal, error) {
	applicable, err := s.GetApplicableDiscounts(ctx, storeID, discountType, c, couponCode)
	if err != nil {
		return nil, decimal.Zero, err
	}
	d, value := discount.GetPreferredDiscount(applicable, amount)
	return d, value, nil
}

// RecordUsage stores one usage row per applied discount
func (s *DiscountService) RecordUsage(ctx context.Context, discountIDs []uuid.UUID, orderID, customerID uuid.UUID) error {
	for _, id := range discountIDs {
		if err := s.repo.SaveUsage(ctx, discount.NewUsageHistory(id, orderID, customerID)); err != nil {
			return err
		}
	}
	return nil
}

// DeleteUsageForOrder forgets usage recorded by an order, e.g. on cancel
func (s *DiscountService) DeleteUsageForOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.repo.DeleteUsageForOrder(ctx, orderID)
}

func (s *DiscountService) publish(ctx context.Context, d *discount.Discount) {
	err := shared.PublishPending(ctx, s.publisher, d)
	if err != nil {
		s.logger.Warn("Failed to publish discount events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixDiscounts)
	}
}
