package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// Upload limits for the admin catalog endpoints
const (
	maxPictureUploadBytes = 10 << 20
	maxImportUploadBytes  = 20 << 20
)

// CategoryManager is the write side of the category service
type CategoryManager interface {
	CategoryReader
	GetAllCategories(ctx context.Context, storeID uuid.UUID, showHidden bool) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, storeID uuid.UUID, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	UpdateCategory(ctx context.Context, storeID, id uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error)
	DeleteCategory(ctx context.Context, storeID, id uuid.UUID) error
}

// ManufacturerManager is the write side of the manufacturer service
type ManufacturerManager interface {
	ManufacturerReader
	CreateManufacturer(ctx context.Context, storeID uuid.UUID, req catalogapp.ManufacturerRequest) (*catalogapp.ManufacturerResponse, error)
	UpdateManufacturer(ctx context.Context, storeID, id uuid.UUID, req catalogapp.ManufacturerRequest) (*catalogapp.ManufacturerResponse, error)
	DeleteManufacturer(ctx context.Context, storeID, id uuid.UUID) error
}

// ProductManager is the write side of the product service
type ProductManager interface {
	ProductReader
	CreateProduct(ctx context.Context, storeID uuid.UUID, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error)
	UpdateProduct(ctx context.Context, storeID, id uuid.UUID, req catalogapp.ProductRequest) (*catalogapp.ProductResponse, error)
	DeleteProduct(ctx context.Context, storeID, id uuid.UUID) error
	AdjustInventory(ctx context.Context, storeID, id uuid.UUID, req catalogapp.AdjustInventoryRequest) (*catalogapp.ProductResponse, error)
	GetProductCategories(ctx context.Context, storeID, productID uuid.UUID, showHidden bool) ([]catalog.ProductCategory, error)
	AddProductCategory(ctx context.Context, storeID, productID uuid.UUID, req catalogapp.ProductMappingRequest) (*catalog.ProductCategory, error)
	RemoveProductCategory(ctx context.Context, storeID, productID, mappingID uuid.UUID) error
	GetProductManufacturers(ctx context.Context, storeID, productID uuid.UUID, showHidden bool) ([]catalog.ProductManufacturer, error)
	AddProductManufacturer(ctx context.Context, storeID, productID uuid.UUID, req catalogapp.ProductMappingRequest) (*catalog.ProductManufacturer, error)
	RemoveProductManufacturer(ctx context.Context, storeID, productID, mappingID uuid.UUID) error
}

// PictureManager stores and removes product pictures
type PictureManager interface {
	PictureReader
	UploadProductPicture(ctx context.Context, storeID, productID uuid.UUID, data []byte, mimeType, seoFilename string, displayOrder int) (*catalogapp.PictureResponse, error)
	RemoveProductPicture(ctx context.Context, storeID, productID, mappingID uuid.UUID) error
	SetPictureAttributes(ctx context.Context, storeID, id uuid.UUID, req catalogapp.PictureAttributesRequest) (*catalog.Picture, error)
	DeletePicture(ctx context.Context, storeID, id uuid.UUID) error
}

// ProductTransfer moves products in and out of XLSX workbooks
type ProductTransfer interface {
	ExportProductsToXlsx(ctx context.Context, storeID uuid.UUID, w io.Writer) (int, error)
	ImportProductsFromXlsx(ctx context.Context, storeID uuid.UUID, r io.Reader) (*catalogapp.ImportResult, error)
}

// CatalogAdminHandler maintains categories, manufacturers and products
type CatalogAdminHandler struct {
	BaseHandler
	categories    CategoryManager
	manufacturers ManufacturerManager
	products      ProductManager
	pictures      PictureManager
	transfer      ProductTransfer
}

// NewCatalogAdminHandler creates a new CatalogAdminHandler
func NewCatalogAdminHandler(categories CategoryManager, manufacturers ManufacturerManager, products ProductManager, pictures PictureManager, transfer ProductTransfer) *CatalogAdminHandler {
	return &CatalogAdminHandler{
		categories:    categories,
		manufacturers: manufacturers,
		products:      products,
		pictures:      pictures,
		transfer:      transfer,
	}
}

// ListCategories godoc
// @Summary      List all categories
// @Description  Flat list including unpublished categories
// @Tags         admin-catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Security     BearerAuth
// @Router       /admin/categories [get]
func (h *CatalogAdminHandler) ListCategories(c *gin.Context) {
	cats, err := h.categories.GetAllCategories(c.Request.Context(), storeID(c), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCategoryResponses(cats))
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories [post]
func (h *CatalogAdminHandler) CreateCategory(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.CreateCategory(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cat)
}

// UpdateCategory godoc
// @Summary      Update a category
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body catalogapp.UpdateCategoryRequest true "Category"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [put]
func (h *CatalogAdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.categories.UpdateCategory(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cat)
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Description  Soft deletes the category; children are moved up to its parent
// @Tags         admin-catalog
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/categories/{id} [delete]
func (h *CatalogAdminHandler) DeleteCategory(c *gin.Context) {
	h.deleteByID(c, h.categories.DeleteCategory)
}

// ListManufacturers godoc
// @Summary      List manufacturers including unpublished ones
// @Tags         admin-catalog
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ManufacturerResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/manufacturers [get]
func (h *CatalogAdminHandler) ListManufacturers(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.manufacturers.ListManufacturers(c.Request.Context(), storeID(c), filter, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// CreateManufacturer godoc
// @Summary      Create a manufacturer
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ManufacturerRequest true "Manufacturer"
// @Success      201 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/manufacturers [post]
func (h *CatalogAdminHandler) CreateManufacturer(c *gin.Context) {
	var req catalogapp.ManufacturerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.manufacturers.CreateManufacturer(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// UpdateManufacturer godoc
// @Summary      Update a manufacturer
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Manufacturer ID"
// @Param        request body catalogapp.ManufacturerRequest true "Manufacturer"
// @Success      200 {object} dto.Response{data=catalogapp.ManufacturerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/manufacturers/{id} [put]
func (h *CatalogAdminHandler) UpdateManufacturer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ManufacturerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.manufacturers.UpdateManufacturer(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// DeleteManufacturer godoc
// @Summary      Delete a manufacturer
// @Tags         admin-catalog
// @Param        id path string true "Manufacturer ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/manufacturers/{id} [delete]
func (h *CatalogAdminHandler) DeleteManufacturer(c *gin.Context) {
	h.deleteByID(c, h.manufacturers.DeleteManufacturer)
}

// SearchProducts godoc
// @Summary      Search products including unpublished ones
// @Tags         admin-catalog
// @Produce      json
// @Param        q query string false "Keywords"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *CatalogAdminHandler) SearchProducts(c *gin.Context) {
	var q ProductSearchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	req := q.toRequest(true)
	req.SkipKeywordLengthCheck = true
	page, err := h.products.SearchProducts(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetProduct godoc
// @Summary      Get a product including unpublished ones
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *CatalogAdminHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetProductByID(c.Request.Context(), storeID(c), id, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, catalogapp.ToProductResponse(p))
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *CatalogAdminHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.products.CreateProduct(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *CatalogAdminHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.products.UpdateProduct(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         admin-catalog
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *CatalogAdminHandler) DeleteProduct(c *gin.Context) {
	h.deleteByID(c, h.products.DeleteProduct)
}

// AdjustInventory godoc
// @Summary      Adjust stock
// @Description  Changes the stock quantity of a product that manages inventory by a signed delta
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.AdjustInventoryRequest true "Delta"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/inventory [post]
func (h *CatalogAdminHandler) AdjustInventory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AdjustInventoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.products.AdjustInventory(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ProductCategories godoc
// @Summary      Categories of a product
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=[]ProductMappingResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/categories [get]
func (h *CatalogAdminHandler) ProductCategories(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	mappings, err := h.products.GetProductCategories(c.Request.Context(), storeID(c), id, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCategoryMappings(mappings))
}

// AddProductCategory godoc
// @Summary      Put a product in a category
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.ProductMappingRequest true "Category mapping"
// @Success      201 {object} dto.Response{data=ProductMappingResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/categories [post]
func (h *CatalogAdminHandler) AddProductCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductMappingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.products.AddProductCategory(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCategoryMappings([]catalog.ProductCategory{*m})[0])
}

// RemoveProductCategory godoc
// @Summary      Take a product out of a category
// @Tags         admin-catalog
// @Param        id path string true "Product ID"
// @Param        mappingId path string true "Mapping ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/products/{id}/categories/{mappingId} [delete]
func (h *CatalogAdminHandler) RemoveProductCategory(c *gin.Context) {
	h.deleteMapping(c, h.products.RemoveProductCategory)
}

// ProductManufacturers godoc
// @Summary      Manufacturers of a product
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=[]ProductMappingResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/manufacturers [get]
func (h *CatalogAdminHandler) ProductManufacturers(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	mappings, err := h.products.GetProductManufacturers(c.Request.Context(), storeID(c), id, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toManufacturerMappings(mappings))
}

// AddProductManufacturer godoc
// @Summary      Link a product to a manufacturer
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.ProductMappingRequest true "Manufacturer mapping"
// @Success      201 {object} dto.Response{data=ProductMappingResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/manufacturers [post]
func (h *CatalogAdminHandler) AddProductManufacturer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductMappingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	m, err := h.products.AddProductManufacturer(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toManufacturerMappings([]catalog.ProductManufacturer{*m})[0])
}

// RemoveProductManufacturer godoc
// @Summary      Unlink a product from a manufacturer
// @Tags         admin-catalog
// @Param        id path string true "Product ID"
// @Param        mappingId path string true "Mapping ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/products/{id}/manufacturers/{mappingId} [delete]
func (h *CatalogAdminHandler) RemoveProductManufacturer(c *gin.Context) {
	h.deleteMapping(c, h.products.RemoveProductManufacturer)
}

// ProductPictures godoc
// @Summary      Pictures of a product
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=[]catalogapp.PictureResponse}
// @Security     BearerAuth
// @Router       /admin/products/{id}/pictures [get]
func (h *CatalogAdminHandler) ProductPictures(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	pictures, err := h.pictures.GetProductPictures(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pictures)
}

// UploadProductPicture godoc
// @Summary      Upload a product picture
// @Tags         admin-catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        file formData file true "Image"
// @Param        seo_filename formData string false "SEO file name"
// @Param        display_order formData int false "Display order"
// @Success      201 {object} dto.Response{data=catalogapp.PictureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id}/pictures [post]
func (h *CatalogAdminHandler) UploadProductPicture(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	data, mimeType, ok := h.readUpload(c, maxPictureUploadBytes)
	if !ok {
		return
	}
	displayOrder, _ := strconv.Atoi(c.PostForm("display_order"))

	pic, err := h.pictures.UploadProductPicture(c.Request.Context(), storeID(c), id, data, mimeType, c.PostForm("seo_filename"), displayOrder)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pic)
}

// RemoveProductPicture godoc
// @Summary      Detach a picture from a product
// @Tags         admin-catalog
// @Param        id path string true "Product ID"
// @Param        mappingId path string true "Mapping ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/products/{id}/pictures/{mappingId} [delete]
func (h *CatalogAdminHandler) RemoveProductPicture(c *gin.Context) {
	h.deleteMapping(c, h.pictures.RemoveProductPicture)
}

// UpdatePicture godoc
// @Summary      Update picture attributes
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Picture ID"
// @Param        request body catalogapp.PictureAttributesRequest true "Attributes"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pictures/{id} [put]
func (h *CatalogAdminHandler) UpdatePicture(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.PictureAttributesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if _, err := h.pictures.SetPictureAttributes(c.Request.Context(), storeID(c), id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Picture updated"})
}

// DeletePicture godoc
// @Summary      Delete a picture
// @Description  Removes the picture, its product links and the stored binary
// @Tags         admin-catalog
// @Param        id path string true "Picture ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/pictures/{id} [delete]
func (h *CatalogAdminHandler) DeletePicture(c *gin.Context) {
	h.deleteByID(c, h.pictures.DeletePicture)
}

// ExportProducts godoc
// @Summary      Export products
// @Description  Downloads every product of the store as an XLSX workbook
// @Tags         admin-catalog
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /admin/export/products [get]
func (h *CatalogAdminHandler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.transfer.ExportProductsToXlsx(c.Request.Context(), storeID(c), &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("Products exported", zap.Int("count", n))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, productExportFilename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportProducts godoc
// @Summary      Import products
// @Description  Creates or updates products from an XLSX workbook, matching on SKU. Row errors are reported without aborting the import.
// @Tags         admin-catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "XLSX workbook"
// @Success      200 {object} dto.Response{data=catalogapp.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/import/products [post]
func (h *CatalogAdminHandler) ImportProducts(c *gin.Context) {
	data, _, ok := h.readUpload(c, maxImportUploadBytes)
	if !ok {
		return
	}
	result, err := h.transfer.ImportProductsFromXlsx(c.Request.Context(), storeID(c), bytes.NewReader(data))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *CatalogAdminHandler) deleteMapping(c *gin.Context, del func(ctx context.Context, storeID, productID, mappingID uuid.UUID) error) {
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	mappingID, ok := h.pathID(c, "mappingId")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), storeID(c), productID, mappingID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
