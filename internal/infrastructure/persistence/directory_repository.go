package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/directory"
)

// GormCountryRepository implements directory.CountryRepository using GORM
type GormCountryRepository struct {
	db *gorm.DB
}

// NewGormCountryRepository creates a new GormCountryRepository
func NewGormCountryRepository(db *gorm.DB) *GormCountryRepository {
	return &GormCountryRepository{db: db}
}

// FindByID finds a country by ID
func (r *GormCountryRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Country, error) {
	var c directory.Country
	if err := conn(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindByTwoLetterIsoCode finds a country by its ISO 3166-1 alpha-2 code
func (r *GormCountryRepository) FindByTwoLetterIsoCode(ctx context.Context, code string) (*directory.Country, error) {
	var c directory.Country
	if err := conn(ctx, r.db).
		Where("two_letter_iso_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindAll lists countries; unpublished ones only when showHidden is set
func (r *GormCountryRepository) FindAll(ctx context.Context, showHidden bool) ([]directory.Country, error) {
	var countries []directory.Country
	query := conn(ctx, r.db).Model(&directory.Country{})
	if !showHidden {
		query = query.Where("published = ?", true)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

// Save creates or updates a country
func (r *GormCountryRepository) Save(ctx context.Context, c *directory.Country) error {
	return conn(ctx, r.db).Save(c).Error
}

// Delete removes a country and its states
func (r *GormCountryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&directory.StateProvince{}, "country_id = ?", id).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&directory.Country{}, "id = ?", id))
	})
}

// GormStateProvinceRepository implements directory.StateProvinceRepository using GORM
type GormStateProvinceRepository struct {
	db *gorm.DB
}

// NewGormStateProvinceRepository creates a new GormStateProvinceRepository
func NewGormStateProvinceRepository(db *gorm.DB) *GormStateProvinceRepository {
	return &GormStateProvinceRepository{db: db}
}

// FindByID finds a state by ID
func (r *GormStateProvinceRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.StateProvince, error) {
	var s directory.StateProvince
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// FindByCountryID lists the states of a country
func (r *GormStateProvinceRepository) FindByCountryID(ctx context.Context, countryID uuid.UUID, showHidden bool) ([]directory.StateProvince, error) {
	var states []directory.StateProvince
	query := conn(ctx, r.db).Where("country_id = ?", countryID)
	if !showHidden {
		query = query.Where("published = ?", true)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

// FindByAbbreviation finds a state of a country by its abbreviation, ignoring case
func (r *GormStateProvinceRepository) FindByAbbreviation(ctx context.Context, countryID uuid.UUID, abbreviation string) (*directory.StateProvince, error) {
	var s directory.StateProvince
	if err := conn(ctx, r.db).
		Where("country_id = ? AND LOWER(abbreviation) = ?", countryID, strings.ToLower(strings.TrimSpace(abbreviation))).
		First(&s).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// Save creates or updates a state
func (r *GormStateProvinceRepository) Save(ctx context.Context, s *directory.StateProvince) error {
	return conn(ctx, r.db).Save(s).Error
}

// Delete removes a state
func (r *GormStateProvinceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&directory.StateProvince{}, "id = ?", id))
}

// GormCurrencyRepository implements directory.CurrencyRepository using GORM
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// FindByID finds a currency by ID
func (r *GormCurrencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Currency, error) {
	var c directory.Currency
	if err := conn(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindByCode finds a currency by its ISO code
func (r *GormCurrencyRepository) FindByCode(ctx context.Context, code string) (*directory.Currency, error) {
	var c directory.Currency
	if err := conn(ctx, r.db).
		Where("currency_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindAll lists currencies; unpublished ones only when showHidden is set
func (r *GormCurrencyRepository) FindAll(ctx context.Context, showHidden bool) ([]directory.Currency, error) {
	var currencies []directory.Currency
	query := conn(ctx, r.db).Model(&directory.Currency{})
	if !showHidden {
		query = query.Where("published = ?", true)
	}
	if err := query.Order("display_order ASC, currency_code ASC").Find(&currencies).Error; err != nil {
		return nil, err
	}
	return currencies, nil
}

// Save creates or updates a currency
func (r *GormCurrencyRepository) Save(ctx context.Context, c *directory.Currency) error {
	return conn(ctx, r.db).Save(c).Error
}

// Delete removes a currency
func (r *GormCurrencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&directory.Currency{}, "id = ?", id))
}

var (
	_ directory.CountryRepository       = (*GormCountryRepository)(nil)
	_ directory.StateProvinceRepository = (*GormStateProvinceRepository)(nil)
	_ directory.CurrencyRepository      = (*GormCurrencyRepository)(nil)
)
