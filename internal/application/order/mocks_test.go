package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/plugin"
)

var storeID = uuid.MustParse("5f0c3bde-0d5e-4f8e-9d55-1c1a3b1f7a10")

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, guid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Search(ctx context.Context, tenantID uuid.UUID, filter order.SearchFilter) ([]order.Order, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) CountForCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySku(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindHomePageProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, criteria catalog.ProductSearchCriteria) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, product *catalog.Product, delta int) error {
	if err := m.Called(ctx, product, delta).Error(0); err != nil {
		return err
	}
	product.StockQuantity += delta
	return nil
}

func (m *MockProductRepository) FindProductCategories(ctx context.Context, productID uuid.UUID) ([]catalog.ProductCategory, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductCategory), args.Error(1)
}

func (m *MockProductRepository) SaveProductCategory(ctx context.Context, pc *catalog.ProductCategory) error {
	return m.Called(ctx, pc).Error(0)
}

func (m *MockProductRepository) DeleteProductCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) HasProductsInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindProductManufacturers(ctx context.Context, productID uuid.UUID) ([]catalog.ProductManufacturer, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductManufacturer), args.Error(1)
}

func (m *MockProductRepository) SaveProductManufacturer(ctx context.Context, pm *catalog.ProductManufacturer) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *MockProductRepository) DeleteProductManufacturer(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) FindProductPictures(ctx context.Context, productID uuid.UUID) ([]catalog.ProductPicture, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductPicture), args.Error(1)
}

func (m *MockProductRepository) SaveProductPicture(ctx context.Context, pp *catalog.ProductPicture) error {
	return m.Called(ctx, pp).Error(0)
}

func (m *MockProductRepository) DeleteProductPicture(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockDiscounts implements DiscountSource and DiscountRecorder
type MockDiscounts struct {
	mock.Mock
}

func (m *MockDiscounts) GetApplicableDiscounts(ctx context.Context, storeID uuid.UUID, discountType discount.Type, c *customer.Customer, couponCode string) ([]discount.Discount, error) {
	args := m.Called(ctx, storeID, discountType, c, couponCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]discount.Discount), args.Error(1)
}

func (m *MockDiscounts) RecordUsage(ctx context.Context, discountIDs []uuid.UUID, orderID, customerID uuid.UUID) error {
	return m.Called(ctx, discountIDs, orderID, customerID).Error(0)
}

func (m *MockDiscounts) DeleteUsageForOrder(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

// MockCartManager is a mock implementation of CartManager
type MockCartManager struct {
	mock.Mock
}

func (m *MockCartManager) GetShoppingCartLines(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]cartapp.Line, error) {
	args := m.Called(ctx, storeID, customerID, cartType)
	return args.Get(0).([]cartapp.Line), args.Error(1)
}

func (m *MockCartManager) GetShoppingCartWarnings(lines []cartapp.Line) cart.Warnings {
	args := m.Called(lines)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(cart.Warnings)
}

func (m *MockCartManager) ClearShoppingCart(ctx context.Context, storeID, customerID uuid.UUID) error {
	return m.Called(ctx, storeID, customerID).Error(0)
}

func (m *MockCartManager) AddToCart(ctx context.Context, in cartapp.AddToCartInput) (cart.Warnings, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Warnings), args.Error(1)
}

// testSettings answers LoadSettings with fixed typed settings
type testSettings struct {
	order    configuration.OrderSettings
	tax      configuration.TaxSettings
	shipping configuration.ShippingSettings
	payment  configuration.PaymentSettings
	currency configuration.CurrencySettings
}

func defaultTestSettings() *testSettings {
	return &testSettings{
		order:    configuration.DefaultOrderSettings(),
		tax:      configuration.DefaultTaxSettings(),
		shipping: configuration.DefaultShippingSettings(),
		payment:  configuration.DefaultPaymentSettings(),
		currency: configuration.DefaultCurrencySettings(),
	}
}

func (s *testSettings) LoadSettings(_ context.Context, _ uuid.UUID, settings any) error {
	switch v := settings.(type) {
	case *configuration.OrderSettings:
		*v = s.order
	case *configuration.TaxSettings:
		*v = s.tax
	case *configuration.ShippingSettings:
		*v = s.shipping
	case *configuration.PaymentSettings:
		*v = s.payment
	case *configuration.CurrencySettings:
		*v = s.currency
	}
	return nil
}

type stubPlugin struct {
	name string
	kind plugin.Kind
}

func (p stubPlugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{SystemName: p.name, FriendlyName: p.name, Kind: p.kind}
}

func (stubPlugin) Install(context.Context) error   { return nil }
func (stubPlugin) Uninstall(context.Context) error { return nil }

// stubPayment approves payments with a fixed status
type stubPayment struct {
	stubPlugin
	status        order.PaymentStatus
	fee           decimal.Decimal
	declined      []string
	supportRefund bool
	processed     int
}

func newStubPayment(name string, status order.PaymentStatus) *stubPayment {
	return &stubPayment{stubPlugin: stubPlugin{name: name, kind: plugin.KindPayment}, status: status, fee: decimal.Zero}
}

func (p *stubPayment) ProcessPayment(_ context.Context, _ *plugin.ProcessPaymentRequest) (*plugin.ProcessPaymentResult, error) {
	p.processed++
	return &plugin.ProcessPaymentResult{NewPaymentStatus: p.status, Errors: p.declined}, nil
}

func (p *stubPayment) Capture(_ context.Context, _ *order.Order) (*plugin.PaymentOperationResult, error) {
	return &plugin.PaymentOperationResult{NewPaymentStatus: order.PaymentStatusPaid, TransactionID: "cap-1"}, nil
}

func (p *stubPayment) Refund(_ context.Context, _ *order.Order, _ decimal.Decimal, _ bool) (*plugin.PaymentOperationResult, error) {
	return &plugin.PaymentOperationResult{}, nil
}

func (p *stubPayment) Void(_ context.Context, _ *order.Order) (*plugin.PaymentOperationResult, error) {
	return &plugin.PaymentOperationResult{NewPaymentStatus: order.PaymentStatusVoided}, nil
}

func (p *stubPayment) PaymentMethodType() plugin.PaymentMethodType {
	return plugin.PaymentMethodStandard
}
func (p *stubPayment) SupportCapture() bool         { return false }
func (p *stubPayment) SupportRefund() bool          { return p.supportRefund }
func (p *stubPayment) SupportPartiallyRefund() bool { return p.supportRefund }
func (p *stubPayment) SupportVoid() bool            { return false }

func (p *stubPayment) AdditionalHandlingFee(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return p.fee, nil
}

// stubTax applies one rate to everything
type stubTax struct {
	stubPlugin
	rate decimal.Decimal
}

func (p *stubTax) GetTaxRate(_ context.Context, _ *plugin.CalculateTaxRequest) (*plugin.CalculateTaxResult, error) {
	return &plugin.CalculateTaxResult{TaxRate: p.rate}, nil
}

// stubShipping offers one option at a fixed rate; a nil rate means no fixed rate
type stubShipping struct {
	stubPlugin
	rate *decimal.Decimal
}

func (p *stubShipping) GetShippingOptions(_ context.Context, _ *plugin.GetShippingOptionRequest) (*plugin.GetShippingOptionResponse, error) {
	if p.rate == nil {
		return &plugin.GetShippingOptionResponse{Errors: []string{"no rates"}}, nil
	}
	return &plugin.GetShippingOptionResponse{Options: []plugin.ShippingOption{{
		Name: "Ground", Rate: *p.rate, RateComputationMethodSystem: p.name,
	}}}, nil
}

func (p *stubShipping) GetFixedRate(_ context.Context, _ *plugin.GetShippingOptionRequest) (*decimal.Decimal, error) {
	return p.rate, nil
}

// testPlugins registers and installs a payment method, a 10% tax provider
// and a 10.00 fixed rate shipping method under the default system names
func testPlugins(t *testing.T, payment *stubPayment) *plugin.Manager {
	t.Helper()
	ten := decimal.NewFromInt(10)
	m := plugin.NewManager()
	for _, p := range []plugin.Plugin{
		payment,
		&stubTax{stubPlugin: stubPlugin{name: "Tax.FixedRate", kind: plugin.KindTax}, rate: ten},
		&stubShipping{stubPlugin: stubPlugin{name: "Shipping.FixedRate", kind: plugin.KindShipping}, rate: &ten},
	} {
		require.NoError(t, m.Register(p))
		require.NoError(t, m.SetInstalled(p.Descriptor().SystemName, true))
	}
	return m
}

func testAddress() customer.Address {
	country := uuid.MustParse("a4e2f0d1-7b1c-4c1e-8a1a-0c2b8e6f9d33")
	return customer.Address{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@example.com",
		Address1:  "1 Main St",
		City:      "Springfield",
		CountryID: &country,
	}
}

func testCustomer() *customer.Customer {
	c := customer.NewGuestCustomer(storeID, customer.NewSystemRole(customer.RoleGuests))
	c.BillingAddress = testAddress()
	c.ShippingAddress = testAddress()
	c.ClearDomainEvents()
	return c
}

func testProduct(t *testing.T, name string, price int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(storeID, name, "SKU-"+name, decimal.NewFromInt(price))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func testLine(t *testing.T, c *customer.Customer, p *catalog.Product, qty int) cartapp.Line {
	t.Helper()
	item, err := cart.NewItem(storeID, c.ID, p.ID, cart.TypeShoppingCart, qty)
	require.NoError(t, err)
	return cartapp.Line{Item: *item, Product: p}
}

// noDiscounts makes every discount lookup return nothing
func noDiscounts(m *MockDiscounts) {
	m.On("GetApplicableDiscounts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]discount.Discount{}, nil)
}

type txMarker struct{}

// recordingTx runs work under a marked ctx and keeps the unit's outcome
type recordingTx struct {
	calls int
	err   error
}

func (r *recordingTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	r.err = fn(context.WithValue(ctx, txMarker{}, true))
	return r.err
}

func insideTx(ctx context.Context) bool {
	in, _ := ctx.Value(txMarker{}).(bool)
	return in
}
