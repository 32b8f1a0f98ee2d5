package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func visibleRows(showHidden bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = notDeleted(db)
		if !showHidden {
			db = db.Where("published = ?", true)
		}
		return db
	}
}

// FindByIDForTenant finds a category by ID within a store
func (r *GormCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&category).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// FindAllForTenant lists non-deleted categories ordered for tree building
func (r *GormCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, showHidden bool) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := conn(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Scopes(visibleRows(showHidden)).
		Order("level ASC, display_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindChildren finds the direct children of a category
func (r *GormCategoryRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID, showHidden bool) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Scopes(visibleRows(showHidden)).
		Order("display_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindDescendantIDs returns the ids of every non-deleted category below the given one
func (r *GormCategoryRepository) FindDescendantIDs(ctx context.Context, tenantID, categoryID uuid.UUID) ([]uuid.UUID, error) {
	parent, err := r.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := conn(ctx, r.db).
		Model(&catalog.Category{}).
		Where("tenant_id = ? AND path LIKE ?", tenantID, parent.Path+"/%").
		Scopes(notDeleted).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindHomePageCategories lists visible categories flagged for the home page
func (r *GormCategoryRepository) FindHomePageCategories(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND show_on_home_page = ?", tenantID, true).
		Scopes(visibleRows(false)).
		Order("display_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return conn(ctx, r.db).Save(category).Error
}

// HasChildren checks if a non-deleted category sits below the given one
func (r *GormCategoryRepository) HasChildren(ctx context.Context, tenantID, categoryID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&catalog.Category{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, categoryID).
		Scopes(notDeleted).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormManufacturerRepository implements catalog.ManufacturerRepository using GORM
type GormManufacturerRepository struct {
	db *gorm.DB
}

// NewGormManufacturerRepository creates a new GormManufacturerRepository
func NewGormManufacturerRepository(db *gorm.DB) *GormManufacturerRepository {
	return &GormManufacturerRepository{db: db}
}

// FindByIDForTenant finds a manufacturer by ID within a store
func (r *GormManufacturerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Manufacturer, error) {
	var m catalog.Manufacturer
	if err := conn(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

func (r *GormManufacturerRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) *gorm.DB {
	query := conn(ctx, r.db).Model(&catalog.Manufacturer{}).
		Where("tenant_id = ?", tenantID).
		Scopes(visibleRows(showHidden))
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}
	return query
}

// FindAllForTenant lists a page of manufacturers
func (r *GormManufacturerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) ([]catalog.Manufacturer, error) {
	var manufacturers []catalog.Manufacturer
	if err := r.filtered(ctx, tenantID, filter, showHidden).
		Scopes(orderBy(filter, ManufacturerSortFields, "display_order"), paginate(filter)).
		Find(&manufacturers).Error; err != nil {
		return nil, err
	}
	return manufacturers, nil
}

// CountForTenant counts manufacturers matching the filter
func (r *GormManufacturerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) (int64, error) {
	var count int64
	err := r.filtered(ctx, tenantID, filter, showHidden).Count(&count).Error
	return count, err
}

// Save creates or updates a manufacturer
func (r *GormManufacturerRepository) Save(ctx context.Context, m *catalog.Manufacturer) error {
	return conn(ctx, r.db).Save(m).Error
}

// GormPictureRepository implements catalog.PictureRepository using GORM
type GormPictureRepository struct {
	db *gorm.DB
}

// NewGormPictureRepository creates a new GormPictureRepository
func NewGormPictureRepository(db *gorm.DB) *GormPictureRepository {
	return &GormPictureRepository{db: db}
}

// FindByIDForTenant finds picture metadata by ID within a store
func (r *GormPictureRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Picture, error) {
	var p catalog.Picture
	if err := conn(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// FindByProductID lists a product's pictures in mapping order
func (r *GormPictureRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]catalog.Picture, error) {
	var pictures []catalog.Picture
	if err := conn(ctx, r.db).
		Joins("JOIN product_picture_mappings pp ON pp.picture_id = pictures.id").
		Where("pp.product_id = ?", productID).
		Order("pp.display_order ASC").
		Find(&pictures).Error; err != nil {
		return nil, err
	}
	return pictures, nil
}

// Save creates or updates picture metadata
func (r *GormPictureRepository) Save(ctx context.Context, p *catalog.Picture) error {
	return conn(ctx, r.db).Save(p).Error
}

// Delete removes a picture and its product mappings
func (r *GormPictureRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("picture_id = ?", id).Delete(&catalog.ProductPicture{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&catalog.Picture{}))
	})
}

var (
	_ catalog.CategoryRepository     = (*GormCategoryRepository)(nil)
	_ catalog.ManufacturerRepository = (*GormManufacturerRepository)(nil)
	_ catalog.PictureRepository      = (*GormPictureRepository)(nil)
)
