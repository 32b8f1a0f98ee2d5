package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryReader is the read side of the category service
type CategoryReader interface {
	GetCategoryByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Category, error)
	GetCategoryTree(ctx context.Context, storeID uuid.UUID, showHidden bool) ([]*catalogapp.CategoryTreeNode, error)
	GetCategoryBreadcrumb(ctx context.Context, storeID, id uuid.UUID) ([]catalogapp.CategoryResponse, error)
	GetHomePageCategories(ctx context.Context, storeID uuid.UUID) ([]catalog.Category, error)
}

// ManufacturerReader is the read side of the manufacturer service
type ManufacturerReader interface {
	GetManufacturerByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Manufacturer, error)
	ListManufacturers(ctx context.Context, storeID uuid.UUID, filter shared.Filter, showHidden bool) (shared.Paginated[catalogapp.ManufacturerResponse], error)
}

// ProductReader is the read side of the product service
type ProductReader interface {
	GetProductByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Product, error)
	GetHomePageProducts(ctx context.Context, storeID uuid.UUID) ([]catalog.Product, error)
	SearchProducts(ctx context.Context, storeID uuid.UUID, req catalogapp.SearchProductsRequest) (shared.Paginated[catalogapp.ProductResponse], error)
}

// PictureReader lists product pictures with download URLs
type PictureReader interface {
	GetProductPictures(ctx context.Context, storeID, productID uuid.UUID) ([]catalogapp.PictureResponse, error)
}

// CatalogHandler serves the public catalog: categories, manufacturers and
// product search. Hidden entities are never returned here.
type CatalogHandler struct {
	BaseHandler
	categories    CategoryReader
	manufacturers ManufacturerReader
	products      ProductReader
	pictures      PictureReader
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(categories CategoryReader, manufacturers ManufacturerReader, products ProductReader, pictures PictureReader) *CatalogHandler {
	return &CatalogHandler{categories: categories, manufacturers: manufacturers, products: products, pictures: pictures}
}

// CategoryTree godoc
// @Summary      Category tree
// @Description  Returns the published categories as a tree ordered by display order
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryTreeNode}
// @Router       /categories [get]
func (h *CatalogHandler) CategoryTree(c *gin.Context) {
	tree, err := h.categories.GetCategoryTree(c.Request.Context(), storeID(c), false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// HomePageCategories godoc
// @Summary      Home page categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Router       /home/categories [get]
func (h *CatalogHandler) HomePageCategories(c *gin.Context) {
	cats, err := h.categories.GetHomePageCategories(c.Request.Context(), storeID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCategoryResponses(cats))
}

// GetCategory godoc
// @Summary      Get a category
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cat, err := h.categories.GetCategoryByID(c.Request.Context(), storeID(c), id, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.ToCategoryResponse(cat))
}

// CategoryBreadcrumb godoc
// @Summary      Category breadcrumb
// @Description  Returns the path from the root category down to this one
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id}/breadcrumb [get]
func (h *CatalogHandler) CategoryBreadcrumb(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	crumbs, err := h.categories.GetCategoryBreadcrumb(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, crumbs)
}

// ListManufacturers godoc
// @Summary      List manufacturers
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name filter"
// @Success      200 {object} dto.Response{data=[]catalogapp.ManufacturerResponse,meta=dto.Meta}
// @Router       /manufacturers [get]
func (h *CatalogHandler) ListManufacturers(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.manufacturers.ListManufacturers(c.Request.Context(), storeID(c), filter, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetManufacturer godoc
// @Summary      Get a manufacturer
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Manufacturer ID"
// @Success      200 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /manufacturers/{id} [get]
func (h *CatalogHandler) GetManufacturer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.manufacturers.GetManufacturerByID(c.Request.Context(), storeID(c), id, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.ToManufacturerResponse(m))
}

// SearchProducts godoc
// @Summary      Search products
// @Description  Keyword, category, manufacturer and price filtered product search
// @Tags         catalog
// @Produce      json
// @Param        q query string false "Keywords"
// @Param        sid query bool false "Search descriptions too"
// @Param        category_id query []string false "Category IDs" collectionFormat(multi)
// @Param        isc query bool false "Include subcategories"
// @Param        manufacturer_id query string false "Manufacturer ID"
// @Param        price_min query number false "Minimum price"
// @Param        price_max query number false "Maximum price"
// @Param        featured query bool false "Featured products only"
// @Param        new query bool false "Products marked as new only"
// @Param        order_by query string false "Sort order" Enums(position, name_asc, name_desc, price_asc, price_desc, created_on)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	var q ProductSearchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.products.SearchProducts(c.Request.Context(), storeID(c), q.toRequest(false))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// HomePageProducts godoc
// @Summary      Home page products
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Router       /home/products [get]
func (h *CatalogHandler) HomePageProducts(c *gin.Context) {
	products, err := h.products.GetHomePageProducts(c.Request.Context(), storeID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.ToProductResponses(products))
}

// GetProduct godoc
// @Summary      Product details
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=ProductDetailsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.products.GetProductByID(ctx, storeID(c), id, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pictures, err := h.pictures.GetProductPictures(ctx, storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if pictures == nil {
		pictures = []catalogapp.PictureResponse{}
	}
	h.Success(c, ProductDetailsResponse{ProductResponse: catalogapp.ToProductResponse(p), Pictures: pictures})
}
