package plugin

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/plugin"
)

// ECBSystemName is the system name of the ECB exchange rate provider
const ECBSystemName = "CurrencyExchange.ECB"

// DefaultECBURL is the daily reference rate feed
const DefaultECBURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// ECBSettings configures the feed location
type ECBSettings struct {
	URL string
}

// ECBExchangeRatePlugin reads the European Central Bank reference rates,
// which are quoted against EUR, and rebases them on any listed currency.
type ECBExchangeRatePlugin struct {
	base
	client *http.Client
}

// NewECBExchangeRatePlugin creates the ECB provider; a nil client uses a
// client with a 30 second timeout
func NewECBExchangeRatePlugin(settings SettingStore, client *http.Client) *ECBExchangeRatePlugin {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ECBExchangeRatePlugin{
		base: newBase(ECBSystemName, "european central bank exchange rate provider", "Exchange rate providers", plugin.KindExchangeRate, 1, settings,
			func() any { return &ECBSettings{URL: DefaultECBURL} }),
		client: client,
	}
}

type ecbEnvelope struct {
	Cube struct {
		Days []struct {
			Time  string `xml:"time,attr"`
			Rates []struct {
				Currency string `xml:"currency,attr"`
				Rate     string `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

// GetCurrencyLiveRates fetches the feed and returns rates relative to
// baseCurrencyCode
func (p *ECBExchangeRatePlugin) GetCurrencyLiveRates(ctx context.Context, baseCurrencyCode string) ([]directory.ExchangeRate, error) {
	s, err := load[ECBSettings](ctx, &p.base, uuid.Nil)
	if err != nil {
		return nil, err
	}
	url := s.URL
	if url == "" {
		url = DefaultECBURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ecb request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ecb request failed: unexpected status %d", resp.StatusCode)
	}

	var env ecbEnvelope
	if err := xml.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("ecb response could not be parsed: %w", err)
	}
	return rebase(env, baseCurrencyCode)
}

func rebase(env ecbEnvelope, baseCurrencyCode string) ([]directory.ExchangeRate, error) {
	if len(env.Cube.Days) == 0 {
		return nil, fmt.Errorf("ecb response contains no rates")
	}
	day := env.Cube.Days[0]
	updatedOn, err := time.Parse("2006-01-02", day.Time)
	if err != nil {
		updatedOn = time.Now().UTC()
	}

	eurRates := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}
	codes := []string{"EUR"}
	for _, r := range day.Rates {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil || !rate.IsPositive() {
			continue
		}
		code := strings.ToUpper(r.Currency)
		eurRates[code] = rate
		codes = append(codes, code)
	}

	base := strings.ToUpper(strings.TrimSpace(baseCurrencyCode))
	if base == "" {
		base = "EUR"
	}
	baseRate, ok := eurRates[base]
	if !ok {
		return nil, fmt.Errorf("ecb provides no rate for %s", base)
	}

	out := make([]directory.ExchangeRate, 0, len(codes))
	for _, code := range codes {
		out = append(out, directory.ExchangeRate{
			CurrencyCode: code,
			Rate:         eurRates[code].DivRound(baseRate, 6),
			UpdatedOn:    updatedOn,
		})
	}
	return out, nil
}

var _ plugin.ExchangeRateProvider = (*ECBExchangeRatePlugin)(nil)
