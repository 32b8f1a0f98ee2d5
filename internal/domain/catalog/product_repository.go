package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSortBy selects the order of product search results
type ProductSortBy string

const (
	ProductSortPosition  ProductSortBy = "position"
	ProductSortNameAsc   ProductSortBy = "name_asc"
	ProductSortNameDesc  ProductSortBy = "name_desc"
	ProductSortPriceAsc  ProductSortBy = "price_asc"
	ProductSortPriceDesc ProductSortBy = "price_desc"
	ProductSortCreatedOn ProductSortBy = "created_on"
)

// ProductSearchCriteria describes a catalog search
type ProductSearchCriteria struct {
	TenantID           uuid.UUID
	Keywords           string
	SearchDescriptions bool
	CategoryIDs        []uuid.UUID
	ManufacturerID     *uuid.UUID
	PriceMin           *decimal.Decimal
	PriceMax           *decimal.Decimal
	FeaturedOnly       bool
	MarkedAsNewOnly    bool
	ShowHidden         bool
	OrderBy            ProductSortBy
	Page               int
	PageSize           int
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	FindBySku(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	FindHomePageProducts(ctx context.Context, tenantID uuid.UUID) ([]Product, error)

	// Search returns one page of products matching the criteria and the total count
	Search(ctx context.Context, criteria ProductSearchCriteria) ([]Product, int64, error)

	// Save creates the product or updates it when the stored version still
	// matches product.Version; a stale copy gets shared.ErrConcurrencyConflict
	Save(ctx context.Context, product *Product) error

	// AdjustStock adds delta to the stored stock in one statement and loads
	// the resulting stock and version back into product
	AdjustStock(ctx context.Context, product *Product, delta int) error

	FindProductCategories(ctx context.Context, productID uuid.UUID) ([]ProductCategory, error)
	SaveProductCategory(ctx context.Context, pc *ProductCategory) error
	DeleteProductCategory(ctx context.Context, id uuid.UUID) error
	HasProductsInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error)

	FindProductManufacturers(ctx context.Context, productID uuid.UUID) ([]ProductManufacturer, error)
	SaveProductManufacturer(ctx context.Context, pm *ProductManufacturer) error
	DeleteProductManufacturer(ctx context.Context, id uuid.UUID) error

	FindProductPictures(ctx context.Context, productID uuid.UUID) ([]ProductPicture, error)
	SaveProductPicture(ctx context.Context, pp *ProductPicture) error
	DeleteProductPicture(ctx context.Context, id uuid.UUID) error
}
