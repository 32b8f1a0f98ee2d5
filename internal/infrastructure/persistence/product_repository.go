package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a store
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindByIDs loads several products at once; missing ids are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindBySku finds a non-deleted product by SKU, ignoring case
func (r *GormProductRepository) FindBySku(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND LOWER(sku) = ?", tenantID, strings.ToLower(strings.TrimSpace(sku))).
		Scopes(notDeleted).
		First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindHomePageProducts lists visible products flagged for the home page
func (r *GormProductRepository) FindHomePageProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND show_on_home_page = ? AND published = ?", tenantID, true, true).
		Scopes(notDeleted).
		Order("display_order ASC, name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Search returns one page of products and the total number of matches
func (r *GormProductRepository) Search(ctx context.Context, c catalog.ProductSearchCriteria) ([]catalog.Product, int64, error) {
	query := conn(ctx, r.db).Model(&catalog.Product{}).
		Where("products.tenant_id = ? AND products.deleted = ?", c.TenantID, false)

	if !c.ShowHidden {
		query = query.Where("products.published = ?", true)
	}
	if kw := strings.TrimSpace(c.Keywords); kw != "" {
		pattern := likePattern(kw)
		if c.SearchDescriptions {
			query = query.Where("(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(products.sku) LIKE ? ESCAPE '\\' OR LOWER(products.short_description) LIKE ? ESCAPE '\\' OR LOWER(products.full_description) LIKE ? ESCAPE '\\')",
				pattern, pattern, pattern, pattern)
		} else {
			query = query.Where("(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(products.sku) LIKE ? ESCAPE '\\')", pattern, pattern)
		}
	}
	if len(c.CategoryIDs) > 0 {
		sub := r.db.Model(&catalog.ProductCategory{}).Select("product_id").Where("category_id IN ?", c.CategoryIDs)
		if c.FeaturedOnly {
			sub = sub.Where("is_featured_product = ?", true)
		}
		query = query.Where("products.id IN (?)", sub)
	}
	if c.ManufacturerID != nil {
		sub := r.db.Model(&catalog.ProductManufacturer{}).Select("product_id").Where("manufacturer_id = ?", *c.ManufacturerID)
		if c.FeaturedOnly {
			sub = sub.Where("is_featured_product = ?", true)
		}
		query = query.Where("products.id IN (?)", sub)
	}
	if c.PriceMin != nil {
		query = query.Where("products.price >= ?", *c.PriceMin)
	}
	if c.PriceMax != nil {
		query = query.Where("products.price <= ?", *c.PriceMax)
	}
	if c.MarkedAsNewOnly {
		query = query.Where("products.mark_as_new = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(productOrder(c.OrderBy))
	if c.PageSize > 0 {
		page := max(c.Page, 1)
		query = query.Offset((page - 1) * c.PageSize).Limit(c.PageSize)
	}

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func productOrder(sortBy catalog.ProductSortBy) string {
	switch sortBy {
	case catalog.ProductSortNameAsc:
		return "products.name ASC"
	case catalog.ProductSortNameDesc:
		return "products.name DESC"
	case catalog.ProductSortPriceAsc:
		return "products.price ASC, products.name ASC"
	case catalog.ProductSortPriceDesc:
		return "products.price DESC, products.name ASC"
	case catalog.ProductSortCreatedOn:
		return "products.created_at DESC"
	default:
		return "products.display_order ASC, products.name ASC"
	}
}

// Save creates a product or updates it under an optimistic version check.
// The stored version must equal product.Version; it is bumped by one on
// every successful update.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var versions []int
		if err := tx.Model(&catalog.Product{}).
			Where("id = ?", product.ID).
			Pluck("version", &versions).Error; err != nil {
			return err
		}
		if len(versions) == 0 {
			return tx.Create(product).Error
		}
		if versions[0] != product.Version {
			return shared.ErrConcurrencyConflict
		}

		expected := product.Version
		product.Version++
		result := tx.Model(product).
			Where("version = ?", expected).
			Select("*").Omit("id", "created_at").
			Updates(product)
		if result.Error != nil {
			product.Version = expected
			return result.Error
		}
		if result.RowsAffected == 0 {
			product.Version = expected
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// AdjustStock moves stock_quantity by delta with a single UPDATE, so
// concurrent orders never overwrite each other's change
func (r *GormProductRepository) AdjustStock(ctx context.Context, product *catalog.Product, delta int) error {
	db := conn(ctx, r.db)
	err := requireAffected(db.Model(&catalog.Product{}).
		Where("id = ? AND tenant_id = ?", product.ID, product.TenantID).
		UpdateColumns(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now(),
		}))
	if err != nil {
		return err
	}

	var stored catalog.Product
	if err := db.Select("stock_quantity", "version", "updated_at").
		Where("id = ?", product.ID).
		Take(&stored).Error; err != nil {
		return translateError(err)
	}
	product.StockQuantity = stored.StockQuantity
	product.Version = stored.Version
	product.UpdatedAt = stored.UpdatedAt
	return nil
}

// FindProductCategories lists a product's category mappings
func (r *GormProductRepository) FindProductCategories(ctx context.Context, productID uuid.UUID) ([]catalog.ProductCategory, error) {
	var mappings []catalog.ProductCategory
	if err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("display_order ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// SaveProductCategory creates or updates a category mapping
func (r *GormProductRepository) SaveProductCategory(ctx context.Context, pc *catalog.ProductCategory) error {
	return conn(ctx, r.db).Save(pc).Error
}

// DeleteProductCategory removes a category mapping
func (r *GormProductRepository) DeleteProductCategory(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&catalog.ProductCategory{}, "id = ?", id))
}

// HasProductsInCategory reports whether any non-deleted product is mapped to the category
func (r *GormProductRepository) HasProductsInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&catalog.ProductCategory{}).
		Joins("JOIN products p ON p.id = product_category_mappings.product_id").
		Where("product_category_mappings.category_id = ? AND p.deleted = ?", categoryID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindProductManufacturers lists a product's manufacturer mappings
func (r *GormProductRepository) FindProductManufacturers(ctx context.Context, productID uuid.UUID) ([]catalog.ProductManufacturer, error) {
	var mappings []catalog.ProductManufacturer
	if err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("display_order ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// SaveProductManufacturer creates or updates a manufacturer mapping
func (r *GormProductRepository) SaveProductManufacturer(ctx context.Context, pm *catalog.ProductManufacturer) error {
	return conn(ctx, r.db).Save(pm).Error
}

// DeleteProductManufacturer removes a manufacturer mapping
func (r *GormProductRepository) DeleteProductManufacturer(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&catalog.ProductManufacturer{}, "id = ?", id))
}

// FindProductPictures lists a product's picture mappings
func (r *GormProductRepository) FindProductPictures(ctx context.Context, productID uuid.UUID) ([]catalog.ProductPicture, error) {
	var mappings []catalog.ProductPicture
	if err := conn(ctx, r.db).
		Where("product_id = ?", productID).
		Order("display_order ASC").
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// SaveProductPicture creates or updates a picture mapping
func (r *GormProductRepository) SaveProductPicture(ctx context.Context, pp *catalog.ProductPicture) error {
	return conn(ctx, r.db).Save(pp).Error
}

// DeleteProductPicture removes a picture mapping
func (r *GormProductRepository) DeleteProductPicture(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&catalog.ProductPicture{}, "id = ?", id))
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
