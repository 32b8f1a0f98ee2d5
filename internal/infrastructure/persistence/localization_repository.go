package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/localization"
)

// GormLanguageRepository implements localization.LanguageRepository using GORM
type GormLanguageRepository struct {
	db *gorm.DB
}

// NewGormLanguageRepository creates a new GormLanguageRepository
func NewGormLanguageRepository(db *gorm.DB) *GormLanguageRepository {
	return &GormLanguageRepository{db: db}
}

// FindByID finds a language by ID
func (r *GormLanguageRepository) FindByID(ctx context.Context, id uuid.UUID) (*localization.Language, error) {
	var l localization.Language
	if err := conn(ctx, r.db).First(&l, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &l, nil
}

// FindAll lists languages; unpublished ones only when showHidden is set
func (r *GormLanguageRepository) FindAll(ctx context.Context, showHidden bool) ([]localization.Language, error) {
	var languages []localization.Language
	query := conn(ctx, r.db).Model(&localization.Language{})
	if !showHidden {
		query = query.Where("published = ?", true)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&languages).Error; err != nil {
		return nil, err
	}
	return languages, nil
}

// Save creates or updates a language
func (r *GormLanguageRepository) Save(ctx context.Context, l *localization.Language) error {
	return conn(ctx, r.db).Save(l).Error
}

// Delete removes a language with its resources and localized values
func (r *GormLanguageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("language_id = ?", id).Delete(&localization.LocaleStringResource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("language_id = ?", id).Delete(&localization.LocalizedProperty{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&localization.Language{}, "id = ?", id))
	})
}

// GormResourceRepository implements localization.ResourceRepository using GORM
type GormResourceRepository struct {
	db *gorm.DB
}

// NewGormResourceRepository creates a new GormResourceRepository
func NewGormResourceRepository(db *gorm.DB) *GormResourceRepository {
	return &GormResourceRepository{db: db}
}

// FindByName finds a resource by language and normalized name
func (r *GormResourceRepository) FindByName(ctx context.Context, languageID uuid.UUID, name string) (*localization.LocaleStringResource, error) {
	var res localization.LocaleStringResource
	if err := conn(ctx, r.db).
		Where("language_id = ? AND resource_name = ?", languageID, localization.NormalizeResourceName(name)).
		First(&res).Error; err != nil {
		return nil, translateError(err)
	}
	return &res, nil
}

// FindAllByLanguage lists a language's resources ordered by name
func (r *GormResourceRepository) FindAllByLanguage(ctx context.Context, languageID uuid.UUID) ([]localization.LocaleStringResource, error) {
	var resources []localization.LocaleStringResource
	if err := conn(ctx, r.db).
		Where("language_id = ?", languageID).
		Order("resource_name ASC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

// Save creates or updates a resource
func (r *GormResourceRepository) Save(ctx context.Context, res *localization.LocaleStringResource) error {
	return conn(ctx, r.db).Save(res).Error
}

// SaveAll upserts resources on (language, name), updating only the value
func (r *GormResourceRepository) SaveAll(ctx context.Context, resources []localization.LocaleStringResource) error {
	if len(resources) == 0 {
		return nil
	}
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "language_id"}, {Name: "resource_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"resource_value", "updated_at"}),
		}).
		CreateInBatches(resources, 500).Error
}

// Delete removes a resource
func (r *GormResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&localization.LocaleStringResource{}, "id = ?", id))
}

// GormLocalizedPropertyRepository implements localization.LocalizedPropertyRepository using GORM
type GormLocalizedPropertyRepository struct {
	db *gorm.DB
}

// NewGormLocalizedPropertyRepository creates a new GormLocalizedPropertyRepository
func NewGormLocalizedPropertyRepository(db *gorm.DB) *GormLocalizedPropertyRepository {
	return &GormLocalizedPropertyRepository{db: db}
}

// Find returns one localized value
func (r *GormLocalizedPropertyRepository) Find(ctx context.Context, entityID, languageID uuid.UUID, keyGroup, key string) (*localization.LocalizedProperty, error) {
	var p localization.LocalizedProperty
	if err := conn(ctx, r.db).
		Where("entity_id = ? AND language_id = ? AND locale_key_group = ? AND locale_key = ?", entityID, languageID, keyGroup, key).
		First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// FindByEntity lists every localized value of an entity
func (r *GormLocalizedPropertyRepository) FindByEntity(ctx context.Context, entityID uuid.UUID, keyGroup string) ([]localization.LocalizedProperty, error) {
	var props []localization.LocalizedProperty
	if err := conn(ctx, r.db).
		Where("entity_id = ? AND locale_key_group = ?", entityID, keyGroup).
		Order("locale_key ASC").
		Find(&props).Error; err != nil {
		return nil, err
	}
	return props, nil
}

// Save creates or updates a localized value
func (r *GormLocalizedPropertyRepository) Save(ctx context.Context, p *localization.LocalizedProperty) error {
	return conn(ctx, r.db).Save(p).Error
}

// Delete removes a localized value
func (r *GormLocalizedPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&localization.LocalizedProperty{}, "id = ?", id))
}

var (
	_ localization.LanguageRepository          = (*GormLanguageRepository)(nil)
	_ localization.ResourceRepository          = (*GormResourceRepository)(nil)
	_ localization.LocalizedPropertyRepository = (*GormLocalizedPropertyRepository)(nil)
)
