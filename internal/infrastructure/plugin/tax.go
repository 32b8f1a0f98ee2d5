package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/plugin"
)

// System names of the built-in tax providers
const (
	FixedRateTaxSystemName       = "Tax.FixedRate"
	CountryStateZipTaxSystemName = "Tax.CountryStateZip"
)

// FixedRateTaxSettings holds one rate per tax category as "categoryID:rate"
// pairs. DefaultRate applies to categories without a pair.
type FixedRateTaxSettings struct {
	Rates       []string
	DefaultRate decimal.Decimal
}

// RateFor returns the percentage of a tax category
func (s *FixedRateTaxSettings) RateFor(taxCategoryID uuid.UUID) decimal.Decimal {
	for _, pair := range s.Rates {
		id, rate, ok := strings.Cut(pair, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(id), taxCategoryID.String()) {
			continue
		}
		if d, err := decimal.NewFromString(strings.TrimSpace(rate)); err == nil {
			return d
		}
	}
	return s.DefaultRate
}

// FixedRateTaxPlugin applies a flat rate per tax category
type FixedRateTaxPlugin struct {
	base
}

// NewFixedRateTaxPlugin creates the fixed rate tax provider
func NewFixedRateTaxPlugin(settings SettingStore) *FixedRateTaxPlugin {
	return &FixedRateTaxPlugin{
		base: newBase(FixedRateTaxSystemName, "fixed rate tax provider", "Tax providers", plugin.KindTax, 1, settings,
			func() any { return &FixedRateTaxSettings{DefaultRate: decimal.Zero} }),
	}
}

// GetTaxRate returns the configured rate of the request's tax category
func (p *FixedRateTaxPlugin) GetTaxRate(ctx context.Context, req *plugin.CalculateTaxRequest) (*plugin.CalculateTaxResult, error) {
	s, err := load[FixedRateTaxSettings](ctx, &p.base, req.StoreID)
	if err != nil {
		return nil, err
	}
	return &plugin.CalculateTaxResult{TaxRate: s.RateFor(req.TaxCategoryID)}, nil
}

// TaxRateRecord is one row of the country / state / zip rate table.
// Empty state and zip match any address in the country.
type TaxRateRecord struct {
	CountryID       uuid.UUID       `json:"country_id"`
	StateProvinceID uuid.UUID       `json:"state_province_id"`
	Zip             string          `json:"zip"`
	TaxCategoryID   uuid.UUID       `json:"tax_category_id"`
	Percentage      decimal.Decimal `json:"percentage"`
}

// CountryStateZipSettings stores the rate table as a JSON array
type CountryStateZipSettings struct {
	Records string
}

// ParseRecords decodes the rate table
func (s *CountryStateZipSettings) ParseRecords() ([]TaxRateRecord, error) {
	if strings.TrimSpace(s.Records) == "" {
		return nil, nil
	}
	var records []TaxRateRecord
	if err := json.Unmarshal([]byte(s.Records), &records); err != nil {
		return nil, fmt.Errorf("invalid tax rate table: %w", err)
	}
	return records, nil
}

// CountryStateZipTaxPlugin looks rates up by address
type CountryStateZipTaxPlugin struct {
	base
}

// NewCountryStateZipTaxPlugin creates the country / state / zip tax provider
func NewCountryStateZipTaxPlugin(settings SettingStore) *CountryStateZipTaxPlugin {
	return &CountryStateZipTaxPlugin{
		base: newBase(CountryStateZipTaxSystemName, "tax by country / state / zip", "Tax providers", plugin.KindTax, 2, settings,
			func() any { return &CountryStateZipSettings{Records: "[]"} }),
	}
}

// GetTaxRate returns the rate of the most specific matching record,
// or zero when no record matches.
func (p *CountryStateZipTaxPlugin) GetTaxRate(ctx context.Context, req *plugin.CalculateTaxRequest) (*plugin.CalculateTaxResult, error) {
	s, err := load[CountryStateZipSettings](ctx, &p.base, req.StoreID)
	if err != nil {
		return nil, err
	}
	records, err := s.ParseRecords()
	if err != nil {
		return &plugin.CalculateTaxResult{TaxRate: decimal.Zero, Errors: []string{err.Error()}}, nil
	}

	var countryID, stateID uuid.UUID
	if req.Address.CountryID != nil {
		countryID = *req.Address.CountryID
	}
	if req.Address.StateProvinceID != nil {
		stateID = *req.Address.StateProvinceID
	}
	rec, ok := MatchTaxRate(records, countryID, stateID, req.Address.ZipPostalCode, req.TaxCategoryID)
	if !ok {
		return &plugin.CalculateTaxResult{TaxRate: decimal.Zero}, nil
	}
	return &plugin.CalculateTaxResult{TaxRate: rec.Percentage}, nil
}

// MatchTaxRate picks the most specific record for an address. A matching
// state outranks a matching zip; both outrank a country-wide record.
func MatchTaxRate(records []TaxRateRecord, countryID, stateID uuid.UUID, zip string, taxCategoryID uuid.UUID) (TaxRateRecord, bool) {
	zip = strings.TrimSpace(zip)
	best, bestScore := TaxRateRecord{}, -1
	for _, r := range records {
		if r.CountryID != countryID || r.TaxCategoryID != taxCategoryID {
			continue
		}
		score := 0
		if r.StateProvinceID != uuid.Nil {
			if r.StateProvinceID != stateID {
				continue
			}
			score += 2
		}
		if r.Zip != "" {
			if !strings.EqualFold(r.Zip, zip) {
				continue
			}
			score++
		}
		if score > bestScore {
			best, bestScore = r, score
		}
	}
	return best, bestScore >= 0
}

var (
	_ plugin.TaxProvider = (*FixedRateTaxPlugin)(nil)
	_ plugin.TaxProvider = (*CountryStateZipTaxPlugin)(nil)
)
