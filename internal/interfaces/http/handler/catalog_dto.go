package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductSearchQuery is the storefront search query string. Identifiers and
// prices arrive as text and are parsed after validation.
type ProductSearchQuery struct {
	Keywords             string   `form:"q" binding:"max=400"`
	SearchDescriptions   bool     `form:"sid"`
	CategoryIDs          []string `form:"category_id" binding:"omitempty,dive,uuid"`
	IncludeSubcategories bool     `form:"isc"`
	ManufacturerID       string   `form:"manufacturer_id" binding:"omitempty,uuid"`
	PriceMin             string   `form:"price_min" binding:"omitempty,numeric"`
	PriceMax             string   `form:"price_max" binding:"omitempty,numeric"`
	FeaturedOnly         bool     `form:"featured"`
	MarkedAsNewOnly      bool     `form:"new"`
	OrderBy              string   `form:"order_by" binding:"omitempty,oneof=position name_asc name_desc price_asc price_desc created_on"`
	Page                 int      `form:"page" binding:"omitempty,min=1"`
	PageSize             int      `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q ProductSearchQuery) toRequest(showHidden bool) catalogapp.SearchProductsRequest {
	req := catalogapp.SearchProductsRequest{
		Keywords:             q.Keywords,
		SearchDescriptions:   q.SearchDescriptions,
		IncludeSubcategories: q.IncludeSubcategories,
		FeaturedOnly:         q.FeaturedOnly,
		MarkedAsNewOnly:      q.MarkedAsNewOnly,
		OrderBy:              q.OrderBy,
		Page:                 q.Page,
		PageSize:             q.PageSize,
		ShowHidden:           showHidden,
	}
	for _, raw := range q.CategoryIDs {
		req.CategoryIDs = append(req.CategoryIDs, uuid.MustParse(raw))
	}
	if q.ManufacturerID != "" {
		id := uuid.MustParse(q.ManufacturerID)
		req.ManufacturerID = &id
	}
	if d, err := decimal.NewFromString(q.PriceMin); err == nil {
		req.PriceMin = &d
	}
	if d, err := decimal.NewFromString(q.PriceMax); err == nil {
		req.PriceMax = &d
	}
	return req
}

// ProductDetailsResponse is a product page: the product and its pictures
type ProductDetailsResponse struct {
	catalogapp.ProductResponse
	Pictures []catalogapp.PictureResponse `json:"pictures"`
}

// ProductMappingResponse links a product to a category or manufacturer
type ProductMappingResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	TargetID          uuid.UUID `json:"target_id"`
	IsFeaturedProduct bool      `json:"is_featured_product"`
	DisplayOrder      int       `json:"display_order"`
}

func toCategoryMappings(in []catalog.ProductCategory) []ProductMappingResponse {
	out := make([]ProductMappingResponse, len(in))
	for i, m := range in {
		out[i] = ProductMappingResponse{ID: m.ID, ProductID: m.ProductID, TargetID: m.CategoryID, IsFeaturedProduct: m.IsFeaturedProduct, DisplayOrder: m.DisplayOrder}
	}
	return out
}

func toManufacturerMappings(in []catalog.ProductManufacturer) []ProductMappingResponse {
	out := make([]ProductMappingResponse, len(in))
	for i, m := range in {
		out[i] = ProductMappingResponse{ID: m.ID, ProductID: m.ProductID, TargetID: m.ManufacturerID, IsFeaturedProduct: m.IsFeaturedProduct, DisplayOrder: m.DisplayOrder}
	}
	return out
}

func toCategoryResponses(in []catalog.Category) []catalogapp.CategoryResponse {
	out := make([]catalogapp.CategoryResponse, len(in))
	for i := range in {
		out[i] = catalogapp.ToCategoryResponse(&in[i])
	}
	return out
}

func toManufacturerResponses(in []catalog.Manufacturer) []catalogapp.ManufacturerResponse {
	out := make([]catalogapp.ManufacturerResponse, len(in))
	for i := range in {
		out[i] = catalogapp.ToManufacturerResponse(&in[i])
	}
	return out
}

const (
	productExportFilename = "products.xlsx"
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
