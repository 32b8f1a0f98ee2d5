package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// CurrencyService converts and formats amounts and keeps rates current
type CurrencyService struct {
	repo      directory.CurrencyRepository
	settings  SettingsLoader
	plugins   *plugin.Manager
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCurrencyService creates a new CurrencyService
func NewCurrencyService(
	repo directory.CurrencyRepository,
	settings SettingsLoader,
	plugins *plugin.Manager,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CurrencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurrencyService{
		repo:      repo,
		settings:  settings,
		plugins:   plugins,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllCurrencies returns currencies, cached per showHidden
func (s *CurrencyService) GetAllCurrencies(ctx context.Context, showHidden bool) ([]directory.Currency, error) {
	return cache.Get(ctx, s.cache, cache.CurrenciesAllKey.Create(showHidden), func() ([]directory.Currency, error) {
		return s.repo.FindAll(ctx, showHidden)
	})
}

// GetCurrencyByCode returns a currency from the cached list
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*directory.Currency, error) {
	all, err := s.GetAllCurrencies(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(all[i].CurrencyCode, code) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: currency %s", shared.ErrNotFound, code)
}

// SaveCurrency inserts or updates a currency
func (s *CurrencyService) SaveCurrency(ctx context.Context, c *directory.Currency) error {
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	s.changed(ctx, c)
	return nil
}

// DeleteCurrency removes a currency. The primary store and exchange rate
// currencies cannot be removed.
func (s *CurrencyService) DeleteCurrency(ctx context.Context, storeID, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	cs, err := s.currencySettings(ctx, storeID)
	if err != nil {
		return err
	}
	if strings.EqualFold(c.CurrencyCode, cs.PrimaryStoreCurrencyCode) || strings.EqualFold(c.CurrencyCode, cs.PrimaryExchangeRateCurrencyCode) {
		return shared.NewDomainError("PRIMARY_CURRENCY", "The primary currency cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.AddDomainEvent(shared.NewEntityEvent(directory.EntityCurrency, shared.EntityDeleted, c.ID, uuid.Nil))
	s.changed(ctx, c)
	return nil
}

// ConvertCurrency multiplies an amount by an exchange rate
func ConvertCurrency(amount, exchangeRate decimal.Decimal) decimal.Decimal {
	if amount.IsZero() || exchangeRate.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(exchangeRate)
}

// ConvertBetween converts an amount from one currency to another through
// the primary exchange rate currency
func ConvertBetween(amount decimal.Decimal, source, target *directory.Currency) (decimal.Decimal, error) {
	if source.CurrencyCode == target.CurrencyCode {
		return amount, nil
	}
	primary, err := toPrimaryExchangeRateCurrency(amount, source)
	if err != nil {
		return decimal.Zero, err
	}
	return primary.Mul(target.Rate), nil
}

func toPrimaryExchangeRateCurrency(amount decimal.Decimal, source *directory.Currency) (decimal.Decimal, error) {
	if source.Rate.IsZero() {
		return decimal.Zero, shared.NewDomainError("INVALID_RATE", "Exchange rate not found for currency "+source.CurrencyCode)
	}
	return amount.Div(source.Rate), nil
}

// ConvertToPrimaryStoreCurrency converts an amount in source to the store's primary currency
func (s *CurrencyService) ConvertToPrimaryStoreCurrency(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal, source *directory.Currency) (decimal.Decimal, error) {
	primary, err := s.primaryStoreCurrency(ctx, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	return ConvertBetween(amount, source, primary)
}

// ConvertFromPrimaryStoreCurrency converts an amount in the store's primary currency to target
func (s *CurrencyService) ConvertFromPrimaryStoreCurrency(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal, target *directory.Currency) (decimal.Decimal, error) {
	primary, err := s.primaryStoreCurrency(ctx, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	return ConvertBetween(amount, primary, target)
}

func (s *CurrencyService) primaryStoreCurrency(ctx context.Context, storeID uuid.UUID) (*directory.Currency, error) {
	cs, err := s.currencySettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.GetCurrencyByCode(ctx, cs.PrimaryStoreCurrencyCode)
}

func (s *CurrencyService) currencySettings(ctx context.Context, storeID uuid.UUID) (configuration.CurrencySettings, error) {
	cs := configuration.DefaultCurrencySettings()
	err := s.settings.LoadSettings(ctx, storeID, &cs)
	return cs, err
}

// FormatPrice renders an amount in the currency's display locale.
// CustomFormatting, when set, replaces {0} with the localized number.
func FormatPrice(amount decimal.Decimal, c *directory.Currency, showCurrencyCode bool) string {
	tag := language.AmericanEnglish
	if c.DisplayLocale != "" {
		if parsed, err := language.Parse(c.DisplayLocale); err == nil {
			tag = parsed
		}
	}
	p := message.NewPrinter(tag)

	value, _ := amount.Round(2).Float64()
	formatted := p.Sprint(number.Decimal(value, number.Scale(2)))

	var result string
	switch {
	case c.CustomFormatting != "":
		result = strings.ReplaceAll(c.CustomFormatting, "{0}", formatted)
	default:
		unit, err := currency.ParseISO(c.CurrencyCode)
		if err != nil {
			result = formatted + " " + c.CurrencyCode
			showCurrencyCode = false
			break
		}
		symbol := p.Sprint(currency.NarrowSymbol(unit))
		result = symbol + formatted
	}
	if showCurrencyCode {
		result += " (" + c.CurrencyCode + ")"
	}
	return result
}

// FormatPriceForStore formats an amount already expressed in c, appending
// the code when the store is configured to show it
func (s *CurrencyService) FormatPriceForStore(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal, c *directory.Currency) (string, error) {
	cs, err := s.currencySettings(ctx, storeID)
	if err != nil {
		return "", err
	}
	return FormatPrice(amount, c, cs.DisplayCurrencyLabel), nil
}

// UpdateExchangeRates pulls live rates from the store's active exchange rate
// provider and applies them to known currencies. It returns how many
// currencies changed.
func (s *CurrencyService) UpdateExchangeRates(ctx context.Context, storeID uuid.UUID) (int, error) {
	cs, err := s.currencySettings(ctx, storeID)
	if err != nil {
		return 0, err
	}
	if cs.ActiveExchangeRateProviderSystemName == "" {
		return 0, shared.NewDomainError("NO_RATE_PROVIDER", "No active exchange rate provider")
	}
	provider, err := plugin.GetPluginBySystemName[plugin.ExchangeRateProvider](s.plugins, cs.ActiveExchangeRateProviderSystemName, storeID)
	if err != nil {
		return 0, err
	}

	rates, err := provider.GetCurrencyLiveRates(ctx, cs.PrimaryExchangeRateCurrencyCode)
	if err != nil {
		return 0, fmt.Errorf("get live rates: %w", err)
	}

	updated := 0
	for _, rate := range rates {
		c, err := s.repo.FindByCode(ctx, rate.CurrencyCode)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, err
		}
		if c.Rate.Equal(rate.Rate) {
			continue
		}
		if err := c.UpdateRate(rate.Rate); err != nil {
			s.logger.Warn("Skipping exchange rate", zap.String("currency", rate.CurrencyCode), zap.Error(err))
			continue
		}
		if err := s.repo.Save(ctx, c); err != nil {
			return updated, err
		}
		s.changed(ctx, c)
		updated++
	}

	s.logger.Info("Exchange rates updated",
		zap.String("provider", cs.ActiveExchangeRateProviderSystemName),
		zap.Int("received", len(rates)),
		zap.Int("updated", updated),
		zap.Time("at", time.Now()))
	return updated, nil
}

func (s *CurrencyService) changed(ctx context.Context, c *directory.Currency) {
	err := shared.PublishPending(ctx, s.publisher, c)
	if err != nil {
		s.logger.Warn("Failed to publish currency events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixCurrencies)
	}
}
