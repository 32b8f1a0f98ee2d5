package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Currency is a currency prices can be displayed in.
// Rate is relative to the primary exchange rate currency.
type Currency struct {
	shared.BaseAggregateRoot
	Name             string          `gorm:"type:varchar(50);not null"`
	CurrencyCode     string          `gorm:"type:varchar(5);not null;uniqueIndex"`
	Rate             decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
	DisplayLocale    string          `gorm:"type:varchar(50)"`
	CustomFormatting string          `gorm:"type:varchar(50)"`
	Published        bool            `gorm:"not null;default:true"`
	DisplayOrder     int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Currency) TableName() string {
	return "currencies"
}

// NewCurrency creates a published currency
func NewCurrency(name, code string, rate decimal.Decimal, displayLocale string) (*Currency, error) {
	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" || len(name) > 50 {
		return nil, shared.NewDomainError("INVALID_NAME", "Currency name must be 1-50 characters")
	}
	if len(code) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY_CODE", "Currency code must have 3 characters")
	}
	if !rate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RATE", "Currency rate must be positive")
	}
	c := &Currency{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CurrencyCode:      code,
		Rate:              rate,
		DisplayLocale:     displayLocale,
		Published:         true,
	}
	c.AddDomainEvent(shared.NewEntityEvent(EntityCurrency, shared.EntityInserted, c.ID, uuid.Nil))
	return c, nil
}

// UpdateRate sets a new exchange rate
func (c *Currency) UpdateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_RATE", "Currency rate must be positive")
	}
	c.Rate = rate
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(shared.NewEntityEvent(EntityCurrency, shared.EntityUpdated, c.ID, uuid.Nil))
	return nil
}

// Update changes the display properties and the rate
func (c *Currency) Update(name string, rate decimal.Decimal, displayLocale, customFormatting string, published bool, displayOrder int) error {
	if name = strings.TrimSpace(name); name == "" || len(name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Currency name must be 1-50 characters")
	}
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_RATE", "Currency rate must be positive")
	}
	c.Name = name
	c.Rate = rate
	c.DisplayLocale = displayLocale
	c.CustomFormatting = customFormatting
	c.Published = published
	c.DisplayOrder = displayOrder
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(shared.NewEntityEvent(EntityCurrency, shared.EntityUpdated, c.ID, uuid.Nil))
	return nil
}

// ExchangeRate is a live rate reported by an exchange rate provider
type ExchangeRate struct {
	CurrencyCode string          `json:"currency_code"`
	Rate         decimal.Decimal `json:"rate"`
	UpdatedOn    time.Time       `json:"updated_on"`
}

// CurrencyRepository persists currencies
type CurrencyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Currency, error)
	FindByCode(ctx context.Context, code string) (*Currency, error)
	FindAll(ctx context.Context, showHidden bool) ([]Currency, error)
	Save(ctx context.Context, c *Currency) error
	Delete(ctx context.Context, id uuid.UUID) error
}
