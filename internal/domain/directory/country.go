package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Entity names used in mutation events
const (
	EntityCountry       = "country"
	EntityStateProvince = "state_province"
	EntityCurrency      = "currency"
)

// Country is a country customers can bill or ship to
type Country struct {
	shared.BaseAggregateRoot
	Name               string `gorm:"type:varchar(100);not null"`
	TwoLetterIsoCode   string `gorm:"type:varchar(2);not null;uniqueIndex"`
	ThreeLetterIsoCode string `gorm:"type:varchar(3);not null"`
	NumericIsoCode     int    `gorm:"not null;default:0"`
	AllowsBilling      bool   `gorm:"not null;default:true"`
	AllowsShipping     bool   `gorm:"not null;default:true"`
	SubjectToVat       bool   `gorm:"not null;default:false"`
	Published          bool   `gorm:"not null;default:true"`
	DisplayOrder       int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Country) TableName() string {
	return "countries"
}

// NewCountry creates a published country
func NewCountry(name, twoLetter, threeLetter string, numeric int) (*Country, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Country name must be 1-100 characters")
	}
	if len(twoLetter) != 2 {
		return nil, shared.NewDomainError("INVALID_ISO_CODE", "Two-letter ISO code must have 2 characters")
	}
	if len(threeLetter) != 3 {
		return nil, shared.NewDomainError("INVALID_ISO_CODE", "Three-letter ISO code must have 3 characters")
	}
	c := &Country{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		TwoLetterIsoCode:   strings.ToUpper(twoLetter),
		ThreeLetterIsoCode: strings.ToUpper(threeLetter),
		NumericIsoCode:     numeric,
		AllowsBilling:      true,
		AllowsShipping:     true,
		Published:          true,
	}
	c.AddDomainEvent(shared.NewEntityEvent(EntityCountry, shared.EntityInserted, c.ID, uuid.Nil))
	return c, nil
}

// StateProvince is a subdivision of a country
type StateProvince struct {
	shared.BaseAggregateRoot
	CountryID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Abbreviation string    `gorm:"type:varchar(100)"`
	Published    bool      `gorm:"not null;default:true"`
	DisplayOrder int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StateProvince) TableName() string {
	return "state_provinces"
}

// NewStateProvince creates a published state or province
func NewStateProvince(countryID uuid.UUID, name, abbreviation string) (*StateProvince, error) {
	name = strings.TrimSpace(name)
	if countryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTRY", "State must belong to a country")
	}
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "State name must be 1-100 characters")
	}
	s := &StateProvince{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CountryID:         countryID,
		Name:              name,
		Abbreviation:      strings.TrimSpace(abbreviation),
		Published:         true,
	}
	s.AddDomainEvent(shared.NewEntityEvent(EntityStateProvince, shared.EntityInserted, s.ID, uuid.Nil).
		WithRef("country_id", countryID))
	return s, nil
}

// CountryRepository persists countries
type CountryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Country, error)
	FindByTwoLetterIsoCode(ctx context.Context, code string) (*Country, error)
	FindAll(ctx context.Context, showHidden bool) ([]Country, error)
	Save(ctx context.Context, c *Country) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StateProvinceRepository persists states and provinces
type StateProvinceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StateProvince, error)
	FindByCountryID(ctx context.Context, countryID uuid.UUID, showHidden bool) ([]StateProvince, error)
	FindByAbbreviation(ctx context.Context, countryID uuid.UUID, abbreviation string) (*StateProvince, error)
	Save(ctx context.Context, s *StateProvince) error
	Delete(ctx context.Context, id uuid.UUID) error
}
