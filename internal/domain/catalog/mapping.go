package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductCategory links a product to a category
type ProductCategory struct {
	shared.BaseEntity
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_category,priority:1"`
	CategoryID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_category,priority:2;index"`
	IsFeaturedProduct bool      `gorm:"not null;default:false"`
	DisplayOrder      int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_category_mappings"
}

// NewProductCategory creates a product-category link
func NewProductCategory(productID, categoryID uuid.UUID, featured bool, displayOrder int) *ProductCategory {
	return &ProductCategory{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		CategoryID:        categoryID,
		IsFeaturedProduct: featured,
		DisplayOrder:      displayOrder,
	}
}

// ProductManufacturer links a product to a manufacturer
type ProductManufacturer struct {
	shared.BaseEntity
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_manufacturer,priority:1"`
	ManufacturerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_manufacturer,priority:2;index"`
	IsFeaturedProduct bool      `gorm:"not null;default:false"`
	DisplayOrder      int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductManufacturer) TableName() string {
	return "product_manufacturer_mappings"
}

// NewProductManufacturer creates a product-manufacturer link
func NewProductManufacturer(productID, manufacturerID uuid.UUID, featured bool, displayOrder int) *ProductManufacturer {
	return &ProductManufacturer{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		ManufacturerID:    manufacturerID,
		IsFeaturedProduct: featured,
		DisplayOrder:      displayOrder,
	}
}

// ProductPicture links a product to a picture
type ProductPicture struct {
	shared.BaseEntity
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PictureID    uuid.UUID `gorm:"type:uuid;not null;index"`
	DisplayOrder int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductPicture) TableName() string {
	return "product_picture_mappings"
}

// NewProductPicture creates a product-picture link
func NewProductPicture(productID, pictureID uuid.UUID, displayOrder int) *ProductPicture {
	return &ProductPicture{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		PictureID:    pictureID,
		DisplayOrder: displayOrder,
	}
}
