package localization

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EntityLanguage             = "language"
	EntityLocaleStringResource = "locale_string_resource"
	EntityLocalizedProperty    = "localized_property"
)

// Language is a storefront display language
type Language struct {
	shared.BaseAggregateRoot
	Name              string `gorm:"type:varchar(100);not null"`
	LanguageCulture   string `gorm:"type:varchar(20);not null"`
	UniqueSeoCode     string `gorm:"type:varchar(2);not null;uniqueIndex"`
	FlagImageFileName string `gorm:"type:varchar(50)"`
	Rtl               bool   `gorm:"not null;default:false"`
	Published         bool   `gorm:"not null;default:true"`
	DisplayOrder      int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Language) TableName() string {
	return "languages"
}

// NewLanguage creates a language; culture must be a valid BCP 47 tag
func NewLanguage(name, culture, seoCode string) (*Language, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Language name must be 1-100 characters")
	}
	tag, err := language.Parse(culture)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CULTURE", "Language culture is not a valid tag")
	}
	seoCode = strings.ToLower(strings.TrimSpace(seoCode))
	if len(seoCode) != 2 {
		return nil, shared.NewDomainError("INVALID_SEO_CODE", "Unique SEO code must be 2 characters")
	}
	l := &Language{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		LanguageCulture:   tag.String(),
		UniqueSeoCode:     seoCode,
		Published:         true,
	}
	l.AddDomainEvent(shared.NewEntityEvent(EntityLanguage, shared.EntityInserted, l.ID, uuid.Nil))
	return l, nil
}

// Tag returns the parsed culture, falling back to English
func (l *Language) Tag() language.Tag {
	tag, err := language.Parse(l.LanguageCulture)
	if err != nil {
		return language.English
	}
	return tag
}

// Update changes display properties
func (l *Language) Update(name string, rtl, published bool, displayOrder int) {
	if name = strings.TrimSpace(name); name != "" {
		l.Name = name
	}
	l.Rtl = rtl
	l.Published = published
	l.DisplayOrder = displayOrder
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	l.AddDomainEvent(shared.NewEntityEvent(EntityLanguage, shared.EntityUpdated, l.ID, uuid.Nil))
}

// Delete removes the language
func (l *Language) Delete() {
	l.AddDomainEvent(shared.NewEntityEvent(EntityLanguage, shared.EntityDeleted, l.ID, uuid.Nil))
}

// LocaleStringResource is a translated UI string
type LocaleStringResource struct {
	shared.BaseEntity
	LanguageID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_locale_resource_lang_name"`
	ResourceName  string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_locale_resource_lang_name"`
	ResourceValue string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (LocaleStringResource) TableName() string {
	return "locale_string_resources"
}

// NewLocaleStringResource creates a resource; names are stored lower-cased
func NewLocaleStringResource(languageID uuid.UUID, name, value string) (*LocaleStringResource, error) {
	name = NormalizeResourceName(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_RESOURCE_NAME", "Resource name must be 1-200 characters")
	}
	return &LocaleStringResource{
		BaseEntity:    shared.NewBaseEntity(),
		LanguageID:    languageID,
		ResourceName:  name,
		ResourceValue: value,
	}, nil
}

// NormalizeResourceName trims and lower-cases a resource key
func NormalizeResourceName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LocalizedProperty is a translated value of an entity field
type LocalizedProperty struct {
	shared.BaseEntity
	EntityID       uuid.UUID `gorm:"type:uuid;not null;index:idx_localized_property_lookup"`
	LanguageID     uuid.UUID `gorm:"type:uuid;not null;index:idx_localized_property_lookup"`
	LocaleKeyGroup string    `gorm:"type:varchar(400);not null;index:idx_localized_property_lookup"`
	LocaleKey      string    `gorm:"type:varchar(400);not null"`
	LocaleValue    string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (LocalizedProperty) TableName() string {
	return "localized_properties"
}

// LanguageRepository persists languages
type LanguageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Language, error)
	FindAll(ctx context.Context, showHidden bool) ([]Language, error)
	Save(ctx context.Context, l *Language) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResourceRepository persists locale string resources
type ResourceRepository interface {
	FindByName(ctx context.Context, languageID uuid.UUID, name string) (*LocaleStringResource, error)
	FindAllByLanguage(ctx context.Context, languageID uuid.UUID) ([]LocaleStringResource, error)
	Save(ctx context.Context, r *LocaleStringResource) error
	// SaveAll upserts resources by (language, name)
	SaveAll(ctx context.Context, resources []LocaleStringResource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LocalizedPropertyRepository persists localized entity values
type LocalizedPropertyRepository interface {
	Find(ctx context.Context, entityID, languageID uuid.UUID, keyGroup, key string) (*LocalizedProperty, error)
	FindByEntity(ctx context.Context, entityID uuid.UUID, keyGroup string) ([]LocalizedProperty, error)
	Save(ctx context.Context, p *LocalizedProperty) error
	Delete(ctx context.Context, id uuid.UUID) error
}
