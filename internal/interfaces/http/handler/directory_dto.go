package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/directory"
)

// CountryResponse is a country a customer can pick in an address form
type CountryResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	TwoLetterIsoCode   string    `json:"two_letter_iso_code"`
	ThreeLetterIsoCode string    `json:"three_letter_iso_code"`
	NumericIsoCode     int       `json:"numeric_iso_code"`
	AllowsBilling      bool      `json:"allows_billing"`
	AllowsShipping     bool      `json:"allows_shipping"`
	SubjectToVat       bool      `json:"subject_to_vat"`
	Published          bool      `json:"published"`
	DisplayOrder       int       `json:"display_order"`
}

// StateProvinceResponse is a subdivision of a country
type StateProvinceResponse struct {
	ID           uuid.UUID `json:"id"`
	CountryID    uuid.UUID `json:"country_id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	Published    bool      `json:"published"`
	DisplayOrder int       `json:"display_order"`
}

// CurrencyResponse is a currency with its rate against the exchange rate currency
type CurrencyResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	CurrencyCode     string          `json:"currency_code"`
	Rate             decimal.Decimal `json:"rate"`
	DisplayLocale    string          `json:"display_locale,omitempty"`
	CustomFormatting string          `json:"custom_formatting,omitempty"`
	Published        bool            `json:"published"`
	DisplayOrder     int             `json:"display_order"`
}

// CountryQuery narrows the country list to an address kind
type CountryQuery struct {
	For string `form:"for" binding:"omitempty,oneof=billing shipping"`
}

// SaveCurrencyRequest creates or updates the currency named by the path code
type SaveCurrencyRequest struct {
	Name             string          `json:"name" binding:"required,max=50"`
	Rate             decimal.Decimal `json:"rate"`
	DisplayLocale    string          `json:"display_locale" binding:"max=50"`
	CustomFormatting string          `json:"custom_formatting" binding:"max=50"`
	Published        bool            `json:"published"`
	DisplayOrder     int             `json:"display_order"`
}

// UpdateRatesResponse reports how many currencies got a new rate
type UpdateRatesResponse struct {
	Updated int `json:"updated"`
}

func toCountryResponses(countries []directory.Country) []CountryResponse {
	out := make([]CountryResponse, len(countries))
	for i, c := range countries {
		out[i] = CountryResponse{
			ID:                 c.ID,
			Name:               c.Name,
			TwoLetterIsoCode:   c.TwoLetterIsoCode,
			ThreeLetterIsoCode: c.ThreeLetterIsoCode,
			NumericIsoCode:     c.NumericIsoCode,
			AllowsBilling:      c.AllowsBilling,
			AllowsShipping:     c.AllowsShipping,
			SubjectToVat:       c.SubjectToVat,
			Published:          c.Published,
			DisplayOrder:       c.DisplayOrder,
		}
	}
	return out
}

func toStateProvinceResponses(states []directory.StateProvince) []StateProvinceResponse {
	out := make([]StateProvinceResponse, len(states))
	for i, s := range states {
		out[i] = StateProvinceResponse{
			ID:           s.ID,
			CountryID:    s.CountryID,
			Name:         s.Name,
			Abbreviation: s.Abbreviation,
			Published:    s.Published,
			DisplayOrder: s.DisplayOrder,
		}
	}
	return out
}

func toCurrencyResponse(c *directory.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:               c.ID,
		Name:             c.Name,
		CurrencyCode:     c.CurrencyCode,
		Rate:             c.Rate,
		DisplayLocale:    c.DisplayLocale,
		CustomFormatting: c.CustomFormatting,
		Published:        c.Published,
		DisplayOrder:     c.DisplayOrder,
	}
}

func toCurrencyResponses(currencies []directory.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		out[i] = toCurrencyResponse(&currencies[i])
	}
	return out
}
