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

// System names of the built-in shipping rate computation methods
const (
	FixedRateShippingSystemName = "Shipping.FixedRate"
	ByWeightShippingSystemName  = "Shipping.ByWeight"
)

var hundred = decimal.NewFromInt(100)

// FixedRateShippingSettings holds one rate per shipping method as
// "method name:rate" pairs
type FixedRateShippingSettings struct {
	Rates []string
}

type methodRate struct {
	name string
	rate decimal.Decimal
}

func (s *FixedRateShippingSettings) methods() []methodRate {
	out := make([]methodRate, 0, len(s.Rates))
	for _, pair := range s.Rates {
		i := strings.LastIndex(pair, ":")
		if i <= 0 {
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(pair[i+1:]))
		if err != nil {
			continue
		}
		out = append(out, methodRate{name: strings.TrimSpace(pair[:i]), rate: rate})
	}
	return out
}

// FixedRateShippingPlugin offers every configured method at its flat rate
type FixedRateShippingPlugin struct {
	base
}

// NewFixedRateShippingPlugin creates the fixed rate shipping method
func NewFixedRateShippingPlugin(settings SettingStore) *FixedRateShippingPlugin {
	return &FixedRateShippingPlugin{
		base: newBase(FixedRateShippingSystemName, "fixed rate shipping", "Shipping rate computation", plugin.KindShipping, 1, settings,
			func() any {
				return &FixedRateShippingSettings{Rates: []string{"Ground:10", "Next Day Air:25", "2nd Day Air:15"}}
			}),
	}
}

// GetShippingOptions returns one option per configured method
func (p *FixedRateShippingPlugin) GetShippingOptions(ctx context.Context, req *plugin.GetShippingOptionRequest) (*plugin.GetShippingOptionResponse, error) {
	resp := &plugin.GetShippingOptionResponse{}
	if len(req.Items) == 0 {
		resp.Errors = append(resp.Errors, "No shipment items")
		return resp, nil
	}
	s, err := load[FixedRateShippingSettings](ctx, &p.base, req.StoreID)
	if err != nil {
		return nil, err
	}
	for _, m := range s.methods() {
		resp.Options = append(resp.Options, plugin.ShippingOption{
			Name:                        m.name,
			Rate:                        m.rate,
			RateComputationMethodSystem: FixedRateShippingSystemName,
		})
	}
	if len(resp.Options) == 0 {
		resp.Errors = append(resp.Errors, "No shipping methods configured")
	}
	return resp, nil
}

// GetFixedRate returns the rate when exactly one method is configured
func (p *FixedRateShippingPlugin) GetFixedRate(ctx context.Context, req *plugin.GetShippingOptionRequest) (*decimal.Decimal, error) {
	s, err := load[FixedRateShippingSettings](ctx, &p.base, req.StoreID)
	if err != nil {
		return nil, err
	}
	methods := s.methods()
	if len(methods) != 1 {
		return nil, nil
	}
	return &methods[0].rate, nil
}

// WeightRateRecord is one weight range of the by-weight table.
// A nil country or state and an empty zip match every address.
type WeightRateRecord struct {
	ShippingMethod           string          `json:"shipping_method"`
	CountryID                uuid.UUID       `json:"country_id"`
	StateProvinceID          uuid.UUID       `json:"state_province_id"`
	Zip                      string          `json:"zip"`
	WeightFrom               decimal.Decimal `json:"weight_from"`
	WeightTo                 decimal.Decimal `json:"weight_to"`
	AdditionalFixedCost      decimal.Decimal `json:"additional_fixed_cost"`
	PercentageRateOfSubtotal decimal.Decimal `json:"percentage_rate_of_subtotal"`
	RatePerWeightUnit        decimal.Decimal `json:"rate_per_weight_unit"`
	LowerWeightLimit         decimal.Decimal `json:"lower_weight_limit"`
}

// Charge computes the rate for a cart: the fixed cost, plus a percentage of
// the subtotal, plus the per-unit rate for weight above the lower limit.
func (r WeightRateRecord) Charge(subtotal, weight decimal.Decimal) decimal.Decimal {
	total := r.AdditionalFixedCost
	if r.PercentageRateOfSubtotal.IsPositive() {
		total = total.Add(subtotal.Mul(r.PercentageRateOfSubtotal).Div(hundred))
	}
	if weight.GreaterThan(r.LowerWeightLimit) {
		total = total.Add(weight.Sub(r.LowerWeightLimit).Mul(r.RatePerWeightUnit))
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

// ByWeightSettings stores the weight table as a JSON array
type ByWeightSettings struct {
	Records string
}

// ParseRecords decodes the weight table
func (s *ByWeightSettings) ParseRecords() ([]WeightRateRecord, error) {
	if strings.TrimSpace(s.Records) == "" {
		return nil, nil
	}
	var records []WeightRateRecord
	if err := json.Unmarshal([]byte(s.Records), &records); err != nil {
		return nil, fmt.Errorf("invalid shipping rate table: %w", err)
	}
	return records, nil
}

// ByWeightShippingPlugin charges by total cart weight and destination
type ByWeightShippingPlugin struct {
	base
}

// NewByWeightShippingPlugin creates the by-weight shipping method
func NewByWeightShippingPlugin(settings SettingStore) *ByWeightShippingPlugin {
	return &ByWeightShippingPlugin{
		base: newBase(ByWeightShippingSystemName, "shipping by weight", "Shipping rate computation", plugin.KindShipping, 2, settings,
			func() any { return &ByWeightSettings{Records: "[]"} }),
	}
}

// GetShippingOptions returns, per shipping method, the charge of the most
// specific record covering the cart weight
func (p *ByWeightShippingPlugin) GetShippingOptions(ctx context.Context, req *plugin.GetShippingOptionRequest) (*plugin.GetShippingOptionResponse, error) {
	resp := &plugin.GetShippingOptionResponse{}
	if len(req.Items) == 0 {
		resp.Errors = append(resp.Errors, "No shipment items")
		return resp, nil
	}
	s, err := load[ByWeightSettings](ctx, &p.base, req.StoreID)
	if err != nil {
		return nil, err
	}
	records, err := s.ParseRecords()
	if err != nil {
		resp.Errors = append(resp.Errors, err.Error())
		return resp, nil
	}

	var countryID, stateID uuid.UUID
	if req.ShippingAddress.CountryID != nil {
		countryID = *req.ShippingAddress.CountryID
	}
	if req.ShippingAddress.StateProvinceID != nil {
		stateID = *req.ShippingAddress.StateProvinceID
	}
	weight := req.TotalWeight()
	subtotal := req.Subtotal()

	for _, rec := range MatchWeightRates(records, countryID, stateID, req.ShippingAddress.ZipPostalCode, weight) {
		resp.Options = append(resp.Options, plugin.ShippingOption{
			Name:                        rec.ShippingMethod,
			Rate:                        rec.Charge(subtotal, weight),
			RateComputationMethodSystem: ByWeightShippingSystemName,
		})
	}
	if len(resp.Options) == 0 {
		resp.Errors = append(resp.Errors, "Shipping options could not be loaded")
	}
	return resp, nil
}

// GetFixedRate is never fixed for weight based rates
func (p *ByWeightShippingPlugin) GetFixedRate(_ context.Context, _ *plugin.GetShippingOptionRequest) (*decimal.Decimal, error) {
	return nil, nil
}

// MatchWeightRates keeps, for each shipping method, the most specific record
// whose weight range covers weight. Order of first appearance is kept.
func MatchWeightRates(records []WeightRateRecord, countryID, stateID uuid.UUID, zip string, weight decimal.Decimal) []WeightRateRecord {
	zip = strings.TrimSpace(zip)
	type scored struct {
		rec   WeightRateRecord
		score int
	}
	best := make(map[string]scored)
	var order []string

	for _, r := range records {
		if weight.LessThan(r.WeightFrom) || weight.GreaterThan(r.WeightTo) {
			continue
		}
		score := 0
		if r.CountryID != uuid.Nil {
			if r.CountryID != countryID {
				continue
			}
			score += 4
		}
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
		cur, seen := best[r.ShippingMethod]
		if !seen {
			order = append(order, r.ShippingMethod)
		}
		if !seen || score > cur.score {
			best[r.ShippingMethod] = scored{rec: r, score: score}
		}
	}

	out := make([]WeightRateRecord, 0, len(order))
	for _, name := range order {
		out = append(out, best[name].rec)
	}
	return out
}

var (
	_ plugin.ShippingRateComputationMethod = (*FixedRateShippingPlugin)(nil)
	_ plugin.ShippingRateComputationMethod = (*ByWeightShippingPlugin)(nil)
)
