package configuration

import (
	"context"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// EntitySetting is the entity name used in mutation events
const EntitySetting = "setting"

// Setting is a single string-keyed configuration row.
// TenantID uuid.Nil holds the value shared by all stores.
type Setting struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_setting_name_tenant,priority:2"`
	Name     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_setting_name_tenant,priority:1"`
	Value    string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// NewSetting creates a new setting row with a normalized key
func NewSetting(tenantID uuid.UUID, name, value string) (*Setting, error) {
	name = NormalizeKey(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key cannot exceed 200 characters")
	}
	return &Setting{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Name:       name,
		Value:      value,
	}, nil
}

// IsShared reports whether the row applies to every store
func (s *Setting) IsShared() bool {
	return s.TenantID == uuid.Nil
}

// NormalizeKey trims and lower-cases a setting key
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// SettingKey formats the key of a typed settings field,
// e.g. SettingKey(CatalogSettings{}, "DefaultPageSize") = "catalogsettings.defaultpagesize".
func SettingKey(settings any, field string) string {
	return NormalizeKey(TypeKeyPrefix(settings) + field)
}

// TypeKeyPrefix returns "<typename>." for a settings struct or pointer to one
func TypeKeyPrefix(settings any) string {
	t := reflect.TypeOf(settings)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return strings.ToLower(t.Name()) + "."
}

// SettingRepository persists setting rows
type SettingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Setting, error)
	// FindByKey returns the row for the exact (key, tenant) pair
	FindByKey(ctx context.Context, tenantID uuid.UUID, key string) (*Setting, error)
	FindAll(ctx context.Context) ([]Setting, error)
	FindByPrefix(ctx context.Context, prefix string) ([]Setting, error)
	Save(ctx context.Context, setting *Setting) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
}

// NewSettingEvent reports a change to the rows of a store.
// id is uuid.Nil when several rows changed at once.
func NewSettingEvent(action shared.EntityAction, id, tenantID uuid.UUID) *shared.EntityEvent {
	return shared.NewEntityEvent(EntitySetting, action, id, tenantID)
}
