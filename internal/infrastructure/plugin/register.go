package plugin

import (
	"fmt"
	"net/http"

	"github.com/storefront/backend/internal/domain/plugin"
)

// Builtins returns every compiled-in plugin
func Builtins(settings SettingStore, client *http.Client) []plugin.Plugin {
	return []plugin.Plugin{
		NewCheckMoneyOrderPlugin(settings),
		NewManualPlugin(settings),
		NewFixedRateTaxPlugin(settings),
		NewCountryStateZipTaxPlugin(settings),
		NewFixedRateShippingPlugin(settings),
		NewByWeightShippingPlugin(settings),
		NewECBExchangeRatePlugin(settings, client),
		NewGoogleAnalyticsPlugin(settings),
	}
}

// RegisterBuiltins adds every compiled-in plugin to the manager
func RegisterBuiltins(m *plugin.Manager, settings SettingStore, client *http.Client) error {
	for _, p := range Builtins(settings, client) {
		if err := m.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Descriptor().SystemName, err)
		}
	}
	return nil
}
