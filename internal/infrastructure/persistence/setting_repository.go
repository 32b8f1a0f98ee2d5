package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/configuration"
)

// GormSettingRepository implements configuration.SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// FindByID finds a setting row by ID
func (r *GormSettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*configuration.Setting, error) {
	var s configuration.Setting
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// FindByKey returns the row for an exact (key, store) pair
func (r *GormSettingRepository) FindByKey(ctx context.Context, tenantID uuid.UUID, key string) (*configuration.Setting, error) {
	var s configuration.Setting
	if err := conn(ctx, r.db).
		Where("name = ? AND tenant_id = ?", configuration.NormalizeKey(key), tenantID).
		First(&s).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// FindAll returns every setting row ordered by name
func (r *GormSettingRepository) FindAll(ctx context.Context) ([]configuration.Setting, error) {
	var settings []configuration.Setting
	if err := conn(ctx, r.db).Order("name ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// FindByPrefix returns rows whose key starts with prefix, for all stores
func (r *GormSettingRepository) FindByPrefix(ctx context.Context, prefix string) ([]configuration.Setting, error) {
	var settings []configuration.Setting
	if err := conn(ctx, r.db).
		Where("name LIKE ?", configuration.NormalizeKey(prefix)+"%").
		Order("name ASC").
		Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Save creates or updates a setting row
func (r *GormSettingRepository) Save(ctx context.Context, setting *configuration.Setting) error {
	return conn(ctx, r.db).Save(setting).Error
}

// Delete removes a setting row
func (r *GormSettingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&configuration.Setting{}, "id = ?", id))
}

// DeleteByPrefix removes a store's rows whose key starts with prefix
func (r *GormSettingRepository) DeleteByPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	result := conn(ctx, r.db).
		Where("tenant_id = ? AND name LIKE ?", tenantID, configuration.NormalizeKey(prefix)+"%").
		Delete(&configuration.Setting{})
	return result.RowsAffected, result.Error
}

var _ configuration.SettingRepository = (*GormSettingRepository)(nil)
