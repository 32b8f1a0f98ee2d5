package discount

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// MockDiscountRepository is a mock implementation of discount.Repository
type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*discount.Discount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, discountType *discount.Type) ([]discount.Discount, error) {
	args := m.Called(ctx, tenantID, discountType)
	return args.Get(0).([]discount.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindByCouponCode(ctx context.Context, tenantID uuid.UUID, couponCode string) (*discount.Discount, error) {
	args := m.Called(ctx, tenantID, couponCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discount.Discount), args.Error(1)
}

func (m *MockDiscountRepository) Save(ctx context.Context, d *discount.Discount) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDiscountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockDiscountRepository) CountUsage(ctx context.Context, discountID uuid.UUID, customerID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, discountID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscountRepository) SaveUsage(ctx context.Context, usage *discount.UsageHistory) error {
	return m.Called(ctx, usage).Error(0)
}

func (m *MockDiscountRepository) DeleteUsageForOrder(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

var storeID = uuid.MustParse("6f1c1a44-2d1e-4f0c-9a7e-3f7d2b1e0c11")

func percentOff(t *testing.T, pct string) *discount.Discount {
	t.Helper()
	d, err := discount.NewPercentageDiscount(storeID, pct+"% off", discount.TypeAssignedToOrderTotal, decimal.RequireFromString(pct))
	require.NoError(t, err)
	d.ClearDomainEvents()
	return d
}

func guest() *customer.Customer {
	return customer.NewGuestCustomer(storeID, customer.NewSystemRole(customer.RoleGuests))
}

func registered(t *testing.T) *customer.Customer {
	t.Helper()
	c := guest()
	require.NoError(t, c.Register("", "jane@example.com", "secret123", 6, customer.NewSystemRole(customer.RoleRegistered)))
	return c
}

func newService(repo *MockDiscountRepository, now time.Time) *DiscountService {
	svc := NewDiscountService(repo, cache.NewMemoryManager(), nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDiscountService_ValidateDiscount(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	t.Run("coupon required", func(t *testing.T) {
		d := percentOff(t, "10")
		d.SetCouponCode("SPRING")
		svc := newService(new(MockDiscountRepository), now)

		res, err := svc.ValidateDiscount(ctx, d, guest(), "")
		require.NoError(t, err)
		assert.False(t, res.IsValid)

		res, err = svc.ValidateDiscount(ctx, d, guest(), " spring ")
		require.NoError(t, err)
		assert.True(t, res.IsValid)
	})

	t.Run("outside date window", func(t *testing.T) {
		notStarted := percentOff(t, "10")
		require.NoError(t, notStarted.SetPeriod(&tomorrow, nil))
		expired := percentOff(t, "10")
		require.NoError(t, expired.SetPeriod(&past, &yesterday))
		svc := newService(new(MockDiscountRepository), now)

		res, err := svc.ValidateDiscount(ctx, notStarted, guest(), "")
		require.NoError(t, err)
		assert.False(t, res.IsValid)

		res, err = svc.ValidateDiscount(ctx, expired, guest(), "")
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Contains(t, res.Errors[0], "expired")
	})

	t.Run("n times only", func(t *testing.T) {
		d := percentOff(t, "10")
		require.NoError(t, d.SetLimitation(discount.LimitationNTimesOnly, 2))
		repo := new(MockDiscountRepository)
		repo.On("CountUsage", mock.Anything, d.ID, (*uuid.UUID)(nil)).Return(int64(1), nil).Once()
		repo.On("CountUsage", mock.Anything, d.ID, (*uuid.UUID)(nil)).Return(int64(2), nil).Once()
		svc := newService(repo, now)

		res, err := svc.ValidateDiscount(ctx, d, guest(), "")
		require.NoError(t, err)
		assert.True(t, res.IsValid)

		res, err = svc.ValidateDiscount(ctx, d, guest(), "")
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		repo.AssertExpectations(t)
	})

	t.Run("n times per customer", func(t *testing.T) {
		d := percentOff(t, "10")
		require.NoError(t, d.SetLimitation(discount.LimitationNTimesPerCustomer, 1))
		c := registered(t)
		repo := new(MockDiscountRepository)
		repo.On("CountUsage", mock.Anything, d.ID, &c.ID).Return(int64(1), nil)
		svc := newService(repo, now)

		res, err := svc.ValidateDiscount(ctx, d, guest(), "")
		require.NoError(t, err)
		assert.False(t, res.IsValid, "guests cannot use per-customer discounts")

		res, err = svc.ValidateDiscount(ctx, d, c, "")
		require.NoError(t, err)
		assert.False(t, res.IsValid)
	})
}

func TestDiscountService_GetPreferredDiscount(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	small := percentOff(t, "5")
	big := percentOff(t, "20")
	coupon := percentOff(t, "50")
	coupon.SetCouponCode("HALF")
	expired := percentOff(t, "90")
	require.NoError(t, expired.SetPeriod(nil, &yesterday))

	orderTotal := discount.TypeAssignedToOrderTotal
	repo := new(MockDiscountRepository)
	repo.On("FindAllForTenant", mock.Anything, storeID, &orderTotal).
		Return([]discount.Discount{*small, *big, *coupon, *expired}, nil).Once()
	svc := newService(repo, now)

	d, amount, err := svc.GetPreferredDiscount(ctx, storeID, orderTotal, guest(), "", decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, big.ID, d.ID)
	assert.True(t, amount.Equal(decimal.NewFromInt(40)), amount.String())

	// second call is served from cache
	d, amount, err = svc.GetPreferredDiscount(ctx, storeID, orderTotal, guest(), "half", decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, d.ID)
	assert.True(t, amount.Equal(decimal.NewFromInt(100)))
	repo.AssertExpectations(t)
}

func TestDiscountService_SaveDropsCache(t *testing.T) {
	ctx := context.Background()
	d := percentOff(t, "10")
	repo := new(MockDiscountRepository)
	repo.On("FindAllForTenant", mock.Anything, storeID, (*discount.Type)(nil)).Return([]discount.Discount{*d}, nil).Twice()
	repo.On("Save", mock.Anything, d).Return(nil)
	svc := newService(repo, time.Now())

	_, err := svc.GetAllDiscounts(ctx, storeID, nil, true)
	require.NoError(t, err)
	require.NoError(t, svc.SaveDiscount(ctx, d))
	_, err = svc.GetAllDiscounts(ctx, storeID, nil, true)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestDiscountService_RecordUsage(t *testing.T) {
	repo := new(MockDiscountRepository)
	repo.On("SaveUsage", mock.Anything, mock.MatchedBy(func(u *discount.UsageHistory) bool { return u != nil })).Return(nil).Twice()
	svc := newService(repo, time.Now())

	err := svc.RecordUsage(context.Background(), []uuid.UUID{uuid.New(), uuid.New()}, uuid.New(), uuid.New())

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
