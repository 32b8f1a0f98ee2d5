package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/scheduling"
)

// GormScheduleTaskRepository implements scheduling.Repository using GORM
type GormScheduleTaskRepository struct {
	db *gorm.DB
}

// NewGormScheduleTaskRepository creates a new GormScheduleTaskRepository
func NewGormScheduleTaskRepository(db *gorm.DB) *GormScheduleTaskRepository {
	return &GormScheduleTaskRepository{db: db}
}

// FindByType finds a task by its type key
func (r *GormScheduleTaskRepository) FindByType(ctx context.Context, taskType string) (*scheduling.ScheduleTask, error) {
	var t scheduling.ScheduleTask
	if err := conn(ctx, r.db).Where("type = ?", taskType).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// FindAll lists tasks; disabled ones only when showHidden is set
func (r *GormScheduleTaskRepository) FindAll(ctx context.Context, showHidden bool) ([]scheduling.ScheduleTask, error) {
	var tasks []scheduling.ScheduleTask
	query := conn(ctx, r.db).Model(&scheduling.ScheduleTask{})
	if !showHidden {
		query = query.Where("enabled = ?", true)
	}
	if err := query.Order("seconds ASC, name ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save creates or updates a task
func (r *GormScheduleTaskRepository) Save(ctx context.Context, t *scheduling.ScheduleTask) error {
	return conn(ctx, r.db).Save(t).Error
}

// GormInstalledPluginRepository implements plugin.InstalledPluginRepository using GORM
type GormInstalledPluginRepository struct {
	db *gorm.DB
}

// NewGormInstalledPluginRepository creates a new GormInstalledPluginRepository
func NewGormInstalledPluginRepository(db *gorm.DB) *GormInstalledPluginRepository {
	return &GormInstalledPluginRepository{db: db}
}

// FindAll lists installed plugins
func (r *GormInstalledPluginRepository) FindAll(ctx context.Context) ([]plugin.InstalledPlugin, error) {
	var installed []plugin.InstalledPlugin
	if err := conn(ctx, r.db).Order("system_name ASC").Find(&installed).Error; err != nil {
		return nil, err
	}
	return installed, nil
}

// Save marks a plugin as installed
func (r *GormInstalledPluginRepository) Save(ctx context.Context, p *plugin.InstalledPlugin) error {
	return conn(ctx, r.db).Save(p).Error
}

// Delete marks a plugin as not installed
func (r *GormInstalledPluginRepository) Delete(ctx context.Context, systemName string) error {
	return conn(ctx, r.db).Where("system_name = ?", systemName).Delete(&plugin.InstalledPlugin{}).Error
}

var (
	_ scheduling.Repository            = (*GormScheduleTaskRepository)(nil)
	_ plugin.InstalledPluginRepository = (*GormInstalledPluginRepository)(nil)
)
