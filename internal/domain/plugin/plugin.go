package plugin

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntityPlugin is the entity name used in install/uninstall events
const EntityPlugin = "plugin"

// Kind classifies a plugin by the extension point it implements
type Kind string

const (
	KindPayment      Kind = "payment"
	KindTax          Kind = "tax"
	KindShipping     Kind = "shipping"
	KindWidget       Kind = "widget"
	KindExchangeRate Kind = "exchange_rate"
	KindMisc         Kind = "misc"
)

// Descriptor describes a plugin to the admin and to the finder
type Descriptor struct {
	SystemName      string      `json:"system_name"`
	FriendlyName    string      `json:"friendly_name"`
	Group           string      `json:"group"`
	Version         string      `json:"version"`
	Author          string      `json:"author"`
	Description     string      `json:"description"`
	DisplayOrder    int         `json:"display_order"`
	Kind            Kind        `json:"kind"`
	Installed       bool        `json:"installed"`
	LimitedToStores []uuid.UUID `json:"limited_to_stores,omitempty"`
}

// AuthenticateStore reports whether the plugin is available in a store.
// An empty store list or a nil store id means every store.
func (d Descriptor) AuthenticateStore(storeID uuid.UUID) bool {
	if storeID == uuid.Nil || len(d.LimitedToStores) == 0 {
		return true
	}
	for _, id := range d.LimitedToStores {
		if id == storeID {
			return true
		}
	}
	return false
}

// Plugin is implemented by every extension registered with the Manager
type Plugin interface {
	// Descriptor returns static metadata; Installed is filled in by the Manager
	Descriptor() Descriptor
	// Install seeds settings and resources the plugin needs
	Install(ctx context.Context) error
	// Uninstall removes what Install created
	Uninstall(ctx context.Context) error
}

// InstalledPlugin is the persisted install marker of a plugin
type InstalledPlugin struct {
	SystemName  string    `gorm:"type:varchar(200);primaryKey"`
	InstalledAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InstalledPlugin) TableName() string {
	return "installed_plugins"
}

// InstalledPluginRepository persists install markers
type InstalledPluginRepository interface {
	FindAll(ctx context.Context) ([]InstalledPlugin, error)
	Save(ctx context.Context, p *InstalledPlugin) error
	Delete(ctx context.Context, systemName string) error
}
