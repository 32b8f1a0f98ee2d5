package plugin

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/storefront/backend/internal/domain/plugin"
)

// SettingStore persists the typed settings of a plugin
type SettingStore interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
	SaveSettings(ctx context.Context, storeID uuid.UUID, settings any) error
	DeleteSettings(ctx context.Context, settings any, storeID uuid.UUID) error
}

var titleCaser = cases.Title(language.English)

// base implements the descriptor and install lifecycle shared by built-ins.
// defaults returns a fresh pointer to the plugin's settings struct.
type base struct {
	descriptor plugin.Descriptor
	settings   SettingStore
	defaults   func() any
}

func newBase(systemName, friendlyName, group string, kind plugin.Kind, displayOrder int, settings SettingStore, defaults func() any) base {
	return base{
		descriptor: plugin.Descriptor{
			SystemName:   systemName,
			FriendlyName: titleCaser.String(friendlyName),
			Group:        group,
			Version:      "1.0",
			Author:       "Storefront team",
			DisplayOrder: displayOrder,
			Kind:         kind,
		},
		settings: settings,
		defaults: defaults,
	}
}

// Descriptor returns static plugin metadata
func (b *base) Descriptor() plugin.Descriptor {
	return b.descriptor
}

// Install writes the default settings as global rows
func (b *base) Install(ctx context.Context) error {
	if b.defaults == nil {
		return nil
	}
	return b.settings.SaveSettings(ctx, uuid.Nil, b.defaults())
}

// Uninstall removes the global settings rows
func (b *base) Uninstall(ctx context.Context) error {
	if b.defaults == nil {
		return nil
	}
	return b.settings.DeleteSettings(ctx, b.defaults(), uuid.Nil)
}

// load reads settings for a store on top of the defaults
func load[T any](ctx context.Context, b *base, storeID uuid.UUID) (*T, error) {
	settings, ok := b.defaults().(*T)
	if !ok {
		settings = new(T)
	}
	if err := b.settings.LoadSettings(ctx, storeID, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
