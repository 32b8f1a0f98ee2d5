package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// MockCurrencyRepository is a mock implementation of directory.CurrencyRepository
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Currency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindByCode(ctx context.Context, code string) (*directory.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindAll(ctx context.Context, showHidden bool) ([]directory.Currency, error) {
	args := m.Called(ctx, showHidden)
	return args.Get(0).([]directory.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Save(ctx context.Context, c *directory.Currency) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type currencySettings configuration.CurrencySettings

func (c currencySettings) LoadSettings(_ context.Context, _ uuid.UUID, settings any) error {
	if cs, ok := settings.(*configuration.CurrencySettings); ok {
		*cs = configuration.CurrencySettings(c)
	}
	return nil
}

// staticRates is an exchange rate provider with fixed answers
type staticRates struct {
	rates []directory.ExchangeRate
	base  string
}

func (p *staticRates) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{SystemName: "CurrencyExchange.Static", FriendlyName: "Static", Kind: plugin.KindExchangeRate}
}
func (p *staticRates) Install(context.Context) error   { return nil }
func (p *staticRates) Uninstall(context.Context) error { return nil }
func (p *staticRates) GetCurrencyLiveRates(_ context.Context, base string) ([]directory.ExchangeRate, error) {
	p.base = base
	return p.rates, nil
}

func mustCurrency(t *testing.T, code, rate, locale string) *directory.Currency {
	t.Helper()
	c, err := directory.NewCurrency(code+" currency", code, decimal.RequireFromString(rate), locale)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func TestConvertBetween(t *testing.T) {
	usd := mustCurrency(t, "USD", "1", "en-US")
	eur := mustCurrency(t, "EUR", "0.8", "de-DE")
	gbp := mustCurrency(t, "GBP", "0.5", "en-GB")

	got, err := ConvertBetween(decimal.NewFromInt(100), usd, eur)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(80)), got.String())

	got, err = ConvertBetween(decimal.NewFromInt(80), eur, gbp)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(50)), got.String())

	got, err = ConvertBetween(decimal.NewFromInt(7), usd, usd)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))

	broken := mustCurrency(t, "XXX", "1", "")
	broken.Rate = decimal.Zero
	_, err = ConvertBetween(decimal.NewFromInt(1), broken, usd)
	assert.Error(t, err)

	assert.True(t, ConvertCurrency(decimal.NewFromInt(10), decimal.RequireFromString("1.5")).Equal(decimal.NewFromInt(15)))
	assert.True(t, ConvertCurrency(decimal.NewFromInt(10), decimal.Zero).IsZero())
}

func TestCurrencyService_ConvertWithPrimaryStoreCurrency(t *testing.T) {
	ctx := context.Background()
	usd := mustCurrency(t, "USD", "1", "en-US")
	eur := mustCurrency(t, "EUR", "0.8", "de-DE")

	repo := new(MockCurrencyRepository)
	repo.On("FindAll", mock.Anything, true).Return([]directory.Currency{*usd, *eur}, nil).Once()

	cs := currencySettings(configuration.DefaultCurrencySettings())
	cs.PrimaryStoreCurrencyCode = "EUR"
	svc := NewCurrencyService(repo, cs, plugin.NewManager(), cache.NewMemoryManager(), nil, nil)

	toPrimary, err := svc.ConvertToPrimaryStoreCurrency(ctx, uuid.Nil, decimal.NewFromInt(10), usd)
	require.NoError(t, err)
	assert.True(t, toPrimary.Equal(decimal.NewFromInt(8)), toPrimary.String())

	fromPrimary, err := svc.ConvertFromPrimaryStoreCurrency(ctx, uuid.Nil, decimal.NewFromInt(8), usd)
	require.NoError(t, err)
	assert.True(t, fromPrimary.Equal(decimal.NewFromInt(10)), fromPrimary.String())

	repo.AssertExpectations(t)
}

func TestFormatPrice(t *testing.T) {
	usd := mustCurrency(t, "USD", "1", "en-US")
	got := FormatPrice(decimal.RequireFromString("1234.5"), usd, false)
	assert.Contains(t, got, "1,234.50")
	assert.Contains(t, got, "$")

	eur := mustCurrency(t, "EUR", "0.8", "de-DE")
	assert.Contains(t, FormatPrice(decimal.RequireFromString("1234.5"), eur, false), "1.234,50")

	custom := mustCurrency(t, "USD", "1", "en-US")
	custom.CustomFormatting = "{0} dollars"
	assert.Equal(t, "12.00 dollars (USD)", FormatPrice(decimal.NewFromInt(12), custom, true))
}

func TestCurrencyService_UpdateExchangeRates(t *testing.T) {
	ctx := context.Background()
	eur := mustCurrency(t, "EUR", "0.8", "de-DE")
	gbp := mustCurrency(t, "GBP", "0.5", "en-GB")

	provider := &staticRates{rates: []directory.ExchangeRate{
		{CurrencyCode: "EUR", Rate: decimal.RequireFromString("0.9"), UpdatedOn: time.Now()},
		{CurrencyCode: "GBP", Rate: decimal.RequireFromString("0.5"), UpdatedOn: time.Now()},
		{CurrencyCode: "JPY", Rate: decimal.NewFromInt(150), UpdatedOn: time.Now()},
	}}
	plugins := plugin.NewManager()
	require.NoError(t, plugins.Register(provider))

	repo := new(MockCurrencyRepository)
	repo.On("FindByCode", mock.Anything, "EUR").Return(eur, nil)
	repo.On("FindByCode", mock.Anything, "GBP").Return(gbp, nil)
	repo.On("FindByCode", mock.Anything, "JPY").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, eur).Return(nil).Once()

	cs := currencySettings(configuration.DefaultCurrencySettings())
	cs.ActiveExchangeRateProviderSystemName = "CurrencyExchange.Static"
	cs.PrimaryExchangeRateCurrencyCode = "USD"
	svc := NewCurrencyService(repo, cs, plugins, cache.NewMemoryManager(), nil, nil)

	_, err := svc.UpdateExchangeRates(ctx, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrPluginNotFound, "provider must be installed first")

	require.NoError(t, plugins.SetInstalled("CurrencyExchange.Static", true))
	updated, err := svc.UpdateExchangeRates(ctx, uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, "USD", provider.base)
	assert.True(t, eur.Rate.Equal(decimal.RequireFromString("0.9")))
	repo.AssertExpectations(t)
}

func TestCurrencyService_DeletePrimaryCurrency(t *testing.T) {
	usd := mustCurrency(t, "USD", "1", "en-US")
	repo := new(MockCurrencyRepository)
	repo.On("FindByID", mock.Anything, usd.ID).Return(usd, nil)

	cs := currencySettings(configuration.DefaultCurrencySettings())
	cs.PrimaryStoreCurrencyCode = "USD"
	svc := NewCurrencyService(repo, cs, plugin.NewManager(), cache.NewMemoryManager(), nil, nil)

	err := svc.DeleteCurrency(context.Background(), uuid.Nil, usd.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRIMARY_CURRENCY", domainErr.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
