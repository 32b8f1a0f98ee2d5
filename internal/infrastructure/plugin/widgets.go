package plugin

import (
	"context"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/plugin"
)

// GoogleAnalyticsSystemName is the system name of the analytics widget
const GoogleAnalyticsSystemName = "Widgets.GoogleAnalytics"

// HeadHTMLTagZone is rendered inside the page head
const HeadHTMLTagZone = "head_html_tag"

const defaultTrackingScript = `<!-- Google tag (gtag.js) -->
<script async src="https://www.googletagmanager.com/gtag/js?id={GOOGLEID}"></script>
<script>
  window.dataLayer = window.dataLayer || [];
  function gtag(){dataLayer.push(arguments);}
  gtag('js', new Date());
  gtag('config', '{GOOGLEID}');
</script>`

// GoogleAnalyticsSettings configures the tracking snippet
type GoogleAnalyticsSettings struct {
	GoogleID       string
	TrackingScript string
}

// GoogleAnalyticsPlugin injects the analytics snippet into the page head
type GoogleAnalyticsPlugin struct {
	base
}

// NewGoogleAnalyticsPlugin creates the analytics widget
func NewGoogleAnalyticsPlugin(settings SettingStore) *GoogleAnalyticsPlugin {
	return &GoogleAnalyticsPlugin{
		base: newBase(GoogleAnalyticsSystemName, "google analytics", "Widgets", plugin.KindWidget, 1, settings,
			func() any {
				return &GoogleAnalyticsSettings{GoogleID: "UA-0000000-0", TrackingScript: defaultTrackingScript}
			}),
	}
}

// GetWidgetZones lists the zones the widget renders into
func (p *GoogleAnalyticsPlugin) GetWidgetZones() []string {
	return []string{HeadHTMLTagZone}
}

// RenderWidget returns the tracking script with the store's id filled in
func (p *GoogleAnalyticsPlugin) RenderWidget(ctx context.Context, zone string, storeID uuid.UUID) (string, error) {
	if zone != HeadHTMLTagZone {
		return "", nil
	}
	s, err := load[GoogleAnalyticsSettings](ctx, &p.base, storeID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s.GoogleID) == "" {
		return "", nil
	}
	script := s.TrackingScript
	if script == "" {
		script = defaultTrackingScript
	}
	return strings.ReplaceAll(script, "{GOOGLEID}", template.JSEscapeString(strings.TrimSpace(s.GoogleID))), nil
}

var _ plugin.Widget = (*GoogleAnalyticsPlugin)(nil)
