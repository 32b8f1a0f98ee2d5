package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// CountryService serves countries and their states
type CountryService struct {
	countries directory.CountryRepository
	states    directory.StateProvinceRepository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCountryService creates a new CountryService
func NewCountryService(
	countries directory.CountryRepository,
	states directory.StateProvinceRepository,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CountryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountryService{countries: countries, states: states, cache: cacheManager, publisher: publisher, logger: logger}
}

// GetAllCountries returns countries, cached per showHidden
func (s *CountryService) GetAllCountries(ctx context.Context, showHidden bool) ([]directory.Country, error) {
	return cache.Get(ctx, s.cache, cache.CountriesAllKey.Create(showHidden), func() ([]directory.Country, error) {
		return s.countries.FindAll(ctx, showHidden)
	})
}

// GetAllCountriesForBilling returns published countries that allow billing
func (s *CountryService) GetAllCountriesForBilling(ctx context.Context) ([]directory.Country, error) {
	return s.filter(ctx, func(c directory.Country) bool { return c.AllowsBilling })
}

// GetAllCountriesForShipping returns published countries that allow shipping
func (s *CountryService) GetAllCountriesForShipping(ctx context.Context) ([]directory.Country, error) {
	return s.filter(ctx, func(c directory.Country) bool { return c.AllowsShipping })
}

func (s *CountryService) filter(ctx context.Context, keep func(directory.Country) bool) ([]directory.Country, error) {
	all, err := s.GetAllCountries(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]directory.Country, 0, len(all))
	for _, c := range all {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetCountryByTwoLetterIsoCode returns a country by its ISO code
func (s *CountryService) GetCountryByTwoLetterIsoCode(ctx context.Context, code string) (*directory.Country, error) {
	return s.countries.FindByTwoLetterIsoCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// GetCountry returns a country by id
func (s *CountryService) GetCountry(ctx context.Context, id uuid.UUID) (*directory.Country, error) {
	return s.countries.FindByID(ctx, id)
}

// SaveCountry inserts or updates a country
func (s *CountryService) SaveCountry(ctx context.Context, c *directory.Country) error {
	if err := s.countries.Save(ctx, c); err != nil {
		return err
	}
	s.publish(ctx, c, cache.PrefixCountries)
	return nil
}

// GetStateProvincesByCountryID returns a country's states, cached per showHidden
func (s *CountryService) GetStateProvincesByCountryID(ctx context.Context, countryID uuid.UUID, showHidden bool) ([]directory.StateProvince, error) {
	key := cache.StateProvincesByCountryKey.Create(countryID, showHidden)
	return cache.Get(ctx, s.cache, key, func() ([]directory.StateProvince, error) {
		return s.states.FindByCountryID(ctx, countryID, showHidden)
	})
}

// GetStateProvinceByAbbreviation returns a state of a country by abbreviation
func (s *CountryService) GetStateProvinceByAbbreviation(ctx context.Context, countryID uuid.UUID, abbreviation string) (*directory.StateProvince, error) {
	return s.states.FindByAbbreviation(ctx, countryID, strings.TrimSpace(abbreviation))
}

// SaveStateProvince inserts or updates a state
func (s *CountryService) SaveStateProvince(ctx context.Context, sp *directory.StateProvince) error {
	if _, err := s.countries.FindByID(ctx, sp.CountryID); err != nil {
		return err
	}
	if err := s.states.Save(ctx, sp); err != nil {
		return err
	}
	s.publish(ctx, sp, cache.PrefixStateProvinces)
	return nil
}

func (s *CountryService) publish(ctx context.Context, agg shared.AggregateRoot, prefix string) {
	err := shared.PublishPending(ctx, s.publisher, agg)
	if err != nil {
		s.logger.Warn("Failed to publish directory events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, prefix)
	}
}
