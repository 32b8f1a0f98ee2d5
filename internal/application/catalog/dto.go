package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name           string     `json:"name" binding:"required,min=1,max=400"`
	Description    string     `json:"description"`
	ParentID       *uuid.UUID `json:"parent_id"`
	PictureID      *uuid.UUID `json:"picture_id"`
	PageSize       int        `json:"page_size" binding:"min=0,max=1000"`
	DisplayOrder   int        `json:"display_order"`
	ShowOnHomePage bool       `json:"show_on_home_page"`
	Published      *bool      `json:"published"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name           string     `json:"name" binding:"required,min=1,max=400"`
	Description    string     `json:"description"`
	PictureID      *uuid.UUID `json:"picture_id"`
	PageSize       int        `json:"page_size" binding:"min=0,max=1000"`
	DisplayOrder   int        `json:"display_order"`
	ShowOnHomePage bool       `json:"show_on_home_page"`
	Published      bool       `json:"published"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
	Level          int        `json:"level"`
	PictureID      *uuid.UUID `json:"picture_id,omitempty"`
	PageSize       int        `json:"page_size"`
	ShowOnHomePage bool       `json:"show_on_home_page"`
	Published      bool       `json:"published"`
	DisplayOrder   int        `json:"display_order"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// CategoryTreeNode is a category with its children
type CategoryTreeNode struct {
	CategoryResponse
	Children []*CategoryTreeNode `json:"children"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		ParentID:       c.ParentID,
		Level:          c.Level,
		PictureID:      c.PictureID,
		PageSize:       c.PageSize,
		ShowOnHomePage: c.ShowOnHomePage,
		Published:      c.Published,
		DisplayOrder:   c.DisplayOrder,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ManufacturerRequest creates or updates a manufacturer
type ManufacturerRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=400"`
	Description  string     `json:"description"`
	PictureID    *uuid.UUID `json:"picture_id"`
	PageSize     int        `json:"page_size" binding:"min=0,max=1000"`
	DisplayOrder int        `json:"display_order"`
	Published    *bool      `json:"published"`
}

// ManufacturerResponse represents a manufacturer in API responses
type ManufacturerResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	PictureID    *uuid.UUID `json:"picture_id,omitempty"`
	PageSize     int        `json:"page_size"`
	Published    bool       `json:"published"`
	DisplayOrder int        `json:"display_order"`
}

// ToManufacturerResponse converts a domain Manufacturer to ManufacturerResponse
func ToManufacturerResponse(m *catalog.Manufacturer) ManufacturerResponse {
	return ManufacturerResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		PictureID:    m.PictureID,
		PageSize:     m.PageSize,
		Published:    m.Published,
		DisplayOrder: m.DisplayOrder,
	}
}

// ProductRequest creates or fully updates a product. Optional fields keep
// their current (or default) value when nil.
type ProductRequest struct {
	Name                     string           `json:"name" binding:"required,min=1,max=400"`
	Sku                      string           `json:"sku" binding:"max=400"`
	ShortDescription         string           `json:"short_description"`
	FullDescription          string           `json:"full_description"`
	Price                    decimal.Decimal  `json:"price"`
	OldPrice                 *decimal.Decimal `json:"old_price"`
	ProductCost              *decimal.Decimal `json:"product_cost"`
	TaxCategoryID            *uuid.UUID       `json:"tax_category_id"`
	IsTaxExempt              bool             `json:"is_tax_exempt"`
	IsShipEnabled            *bool            `json:"is_ship_enabled"`
	IsFreeShipping           bool             `json:"is_free_shipping"`
	Weight                   *decimal.Decimal `json:"weight"`
	AdditionalShippingCharge *decimal.Decimal `json:"additional_shipping_charge"`
	ManageStock              bool             `json:"manage_stock"`
	StockQuantity            int              `json:"stock_quantity"`
	OrderMinimumQuantity     *int             `json:"order_minimum_quantity" binding:"omitempty,min=1"`
	OrderMaximumQuantity     *int             `json:"order_maximum_quantity" binding:"omitempty,min=1"`
	DisableBuyButton         bool             `json:"disable_buy_button"`
	DisableWishlistButton    bool             `json:"disable_wishlist_button"`
	AvailableStartDate       *time.Time       `json:"available_start_date"`
	AvailableEndDate         *time.Time       `json:"available_end_date"`
	MarkAsNew                bool             `json:"mark_as_new"`
	ShowOnHomePage           bool             `json:"show_on_home_page"`
	Published                *bool            `json:"published"`
	DisplayOrder             int              `json:"display_order"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                       uuid.UUID       `json:"id"`
	Name                     string          `json:"name"`
	Sku                      string          `json:"sku"`
	ShortDescription         string          `json:"short_description"`
	FullDescription          string          `json:"full_description"`
	Price                    decimal.Decimal `json:"price"`
	OldPrice                 decimal.Decimal `json:"old_price"`
	TaxCategoryID            uuid.UUID       `json:"tax_category_id"`
	IsShipEnabled            bool            `json:"is_ship_enabled"`
	IsFreeShipping           bool            `json:"is_free_shipping"`
	Weight                   decimal.Decimal `json:"weight"`
	AdditionalShippingCharge decimal.Decimal `json:"additional_shipping_charge"`
	ManageStock              bool            `json:"manage_stock"`
	StockQuantity            int             `json:"stock_quantity"`
	OrderMinimumQuantity     int             `json:"order_minimum_quantity"`
	OrderMaximumQuantity     int             `json:"order_maximum_quantity"`
	DisableBuyButton         bool            `json:"disable_buy_button"`
	AvailableStartDate       *time.Time      `json:"available_start_date,omitempty"`
	AvailableEndDate         *time.Time      `json:"available_end_date,omitempty"`
	MarkAsNew                bool            `json:"mark_as_new"`
	ShowOnHomePage           bool            `json:"show_on_home_page"`
	Published                bool            `json:"published"`
	DisplayOrder             int             `json:"display_order"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
	Version                  int             `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse. Cost is
// not exposed.
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                       p.ID,
		Name:                     p.Name,
		Sku:                      p.Sku,
		ShortDescription:         p.ShortDescription,
		FullDescription:          p.FullDescription,
		Price:                    p.Price,
		OldPrice:                 p.OldPrice,
		TaxCategoryID:            p.TaxCategoryID,
		IsShipEnabled:            p.IsShipEnabled,
		IsFreeShipping:           p.IsFreeShipping,
		Weight:                   p.Weight,
		AdditionalShippingCharge: p.AdditionalShippingCharge,
		ManageStock:              p.ManagesStock(),
		StockQuantity:            p.StockQuantity,
		OrderMinimumQuantity:     p.OrderMinimumQuantity,
		OrderMaximumQuantity:     p.OrderMaximumQuantity,
		DisableBuyButton:         p.DisableBuyButton,
		AvailableStartDate:       p.AvailableStartDate,
		AvailableEndDate:         p.AvailableEndDate,
		MarkAsNew:                p.MarkAsNew,
		ShowOnHomePage:           p.ShowOnHomePage,
		Published:                p.Published,
		DisplayOrder:             p.DisplayOrder,
		CreatedAt:                p.CreatedAt,
		UpdatedAt:                p.UpdatedAt,
		Version:                  p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// SearchProductsRequest holds the storefront search query
type SearchProductsRequest struct {
	Keywords               string           `form:"q" json:"keywords"`
	SearchDescriptions     bool             `form:"sid" json:"search_descriptions"`
	CategoryIDs            []uuid.UUID      `form:"category_id" json:"category_ids"`
	IncludeSubcategories   bool             `form:"isc" json:"include_subcategories"`
	ManufacturerID         *uuid.UUID       `form:"manufacturer_id" json:"manufacturer_id"`
	PriceMin               *decimal.Decimal `form:"price_min" json:"price_min"`
	PriceMax               *decimal.Decimal `form:"price_max" json:"price_max"`
	FeaturedOnly           bool             `form:"featured" json:"featured_only"`
	MarkedAsNewOnly        bool             `form:"new" json:"marked_as_new_only"`
	OrderBy                string           `form:"order_by" json:"order_by" binding:"omitempty,oneof=position name_asc name_desc price_asc price_desc created_on"`
	Page                   int              `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize               int              `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"`
	ShowHidden             bool             `form:"-" json:"-"`
	SkipKeywordLengthCheck bool             `form:"-" json:"-"`
}

// ProductMappingRequest adds a product to a category or manufacturer
type ProductMappingRequest struct {
	TargetID          uuid.UUID `json:"target_id" binding:"required"`
	IsFeaturedProduct bool      `json:"is_featured_product"`
	DisplayOrder      int       `json:"display_order"`
}

// AdjustInventoryRequest changes stock by a signed delta
type AdjustInventoryRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// PictureAttributesRequest updates SEO and HTML attributes of a picture
type PictureAttributesRequest struct {
	SeoFilename string `json:"seo_filename" binding:"max=300"`
	Alt         string `json:"alt" binding:"max=400"`
	Title       string `json:"title" binding:"max=400"`
}

// PictureResponse is a picture with a time-limited download URL
type PictureResponse struct {
	ID           uuid.UUID `json:"id"`
	MimeType     string    `json:"mime_type"`
	SeoFilename  string    `json:"seo_filename"`
	Alt          string    `json:"alt"`
	Title        string    `json:"title"`
	Size         int64     `json:"size"`
	DisplayOrder int       `json:"display_order"`
	URL          string    `json:"url"`
	URLExpiresAt time.Time `json:"url_expires_at"`
}
