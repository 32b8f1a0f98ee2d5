package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ManageInventoryMethod selects how stock is tracked
type ManageInventoryMethod string

const (
	ManageInventoryDontManage ManageInventoryMethod = "dont_manage"
	ManageInventoryStock      ManageInventoryMethod = "manage_stock"
)

// Default order quantity limits
const (
	DefaultOrderMinimumQuantity = 1
	DefaultOrderMaximumQuantity = 10000
)

// Product is a sellable catalog item
type Product struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	Name                     string                `gorm:"type:varchar(400);not null"`
	Sku                      string                `gorm:"type:varchar(400);index"`
	ShortDescription         string                `gorm:"type:text"`
	FullDescription          string                `gorm:"type:text"`
	Price                    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	OldPrice                 decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ProductCost              decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxCategoryID            uuid.UUID             `gorm:"type:uuid"`
	IsTaxExempt              bool                  `gorm:"not null;default:false"`
	IsShipEnabled            bool                  `gorm:"not null;default:true"`
	IsFreeShipping           bool                  `gorm:"not null;default:false"`
	AdditionalShippingCharge decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Weight                   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ManageInventoryMethod    ManageInventoryMethod `gorm:"type:varchar(20);not null;default:'dont_manage'"`
	StockQuantity            int                   `gorm:"not null;default:0"`
	OrderMinimumQuantity     int                   `gorm:"not null;default:1"`
	OrderMaximumQuantity     int                   `gorm:"not null;default:10000"`
	DisableBuyButton         bool                  `gorm:"not null;default:false"`
	DisableWishlistButton    bool                  `gorm:"not null;default:false"`
	AvailableStartDate       *time.Time
	AvailableEndDate         *time.Time
	MarkAsNew                bool `gorm:"not null;default:false"`
	ShowOnHomePage           bool `gorm:"not null;default:false"`
	Published                bool `gorm:"not null;default:true"`
	DisplayOrder             int  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a published product without inventory tracking
func NewProduct(tenantID uuid.UUID, name, sku string, price decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateSku(sku); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p := &Product{
		TenantAggregateRoot:      shared.NewTenantAggregateRoot(tenantID),
		Name:                     strings.TrimSpace(name),
		Sku:                      strings.TrimSpace(sku),
		Price:                    price,
		OldPrice:                 decimal.Zero,
		ProductCost:              decimal.Zero,
		Weight:                   decimal.Zero,
		AdditionalShippingCharge: decimal.Zero,
		IsShipEnabled:            true,
		ManageInventoryMethod:    ManageInventoryDontManage,
		OrderMinimumQuantity:     DefaultOrderMinimumQuantity,
		OrderMaximumQuantity:     DefaultOrderMaximumQuantity,
		Published:                true,
	}
	p.AddDomainEvent(newProductEvent(p, shared.EntityInserted))
	return p, nil
}

// UpdateDetails updates the descriptive fields
func (p *Product) UpdateDetails(name, sku, shortDescription, fullDescription string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateSku(sku); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Sku = strings.TrimSpace(sku)
	p.ShortDescription = shortDescription
	p.FullDescription = fullDescription
	p.changed()
	return nil
}

// SetPrices sets price, old (strike-through) price and cost
func (p *Product) SetPrices(price, oldPrice, cost decimal.Decimal) error {
	if price.IsNegative() || oldPrice.IsNegative() || cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.Price = price
	p.OldPrice = oldPrice
	p.ProductCost = cost
	p.changed()
	return nil
}

// SetTax assigns the tax category
func (p *Product) SetTax(taxCategoryID uuid.UUID, exempt bool) {
	p.TaxCategoryID = taxCategoryID
	p.IsTaxExempt = exempt
	p.changed()
}

// SetShipping sets shipping attributes
func (p *Product) SetShipping(shipEnabled, freeShipping bool, weight, additionalCharge decimal.Decimal) error {
	if weight.IsNegative() || additionalCharge.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Weight and shipping charge cannot be negative")
	}
	p.IsShipEnabled = shipEnabled
	p.IsFreeShipping = freeShipping
	p.Weight = weight
	p.AdditionalShippingCharge = additionalCharge
	p.changed()
	return nil
}

// SetInventory configures stock tracking and order quantity limits
func (p *Product) SetInventory(method ManageInventoryMethod, stock, minQty, maxQty int) error {
	if method != ManageInventoryDontManage && method != ManageInventoryStock {
		return shared.NewDomainError("INVALID_INVENTORY_METHOD", "Unknown inventory method")
	}
	if minQty < 1 || maxQty < minQty {
		return shared.NewDomainError("INVALID_QUANTITY", "Order quantity limits are invalid")
	}
	p.ManageInventoryMethod = method
	p.StockQuantity = stock
	p.OrderMinimumQuantity = minQty
	p.OrderMaximumQuantity = maxQty
	p.changed()
	return nil
}

// SetAvailability sets the availability window; nil bounds are open
func (p *Product) SetAvailability(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_AVAILABILITY", "Available end date must be after the start date")
	}
	p.AvailableStartDate = start
	p.AvailableEndDate = end
	p.changed()
	return nil
}

// SetPublished publishes or hides the product
func (p *Product) SetPublished(published bool) {
	if p.Published == published {
		return
	}
	p.Published = published
	p.changed()
}

// SetFlags sets the storefront presentation flags
func (p *Product) SetFlags(markAsNew, showOnHomePage, disableBuyButton, disableWishlistButton bool, displayOrder int) {
	p.MarkAsNew = markAsNew
	p.ShowOnHomePage = showOnHomePage
	p.DisableBuyButton = disableBuyButton
	p.DisableWishlistButton = disableWishlistButton
	p.DisplayOrder = displayOrder
	p.changed()
}

// ManagesStock reports whether stock quantity is tracked
func (p *Product) ManagesStock() bool {
	return p.ManageInventoryMethod == ManageInventoryStock
}

// StockAdjusted records a stock change of delta that the repository already
// applied; StockQuantity holds the stored level after the change
func (p *Product) StockAdjusted(delta int, reason string) {
	if delta == 0 {
		return
	}
	p.AddDomainEvent(newProductEvent(p, shared.EntityUpdated))
	p.AddDomainEvent(NewProductStockChangedEvent(p, p.StockQuantity-delta, reason))
}

// IsAvailableAt reports whether the availability window contains t
func (p *Product) IsAvailableAt(t time.Time) bool {
	if p.AvailableStartDate != nil && t.Before(*p.AvailableStartDate) {
		return false
	}
	if p.AvailableEndDate != nil && t.After(*p.AvailableEndDate) {
		return false
	}
	return true
}

// IsVisible reports whether shoppers may see the product
func (p *Product) IsVisible() bool {
	return p.Published && !p.Deleted
}

// Delete soft-deletes the product
func (p *Product) Delete() {
	p.MarkDeleted()
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(newProductEvent(p, shared.EntityDeleted))
}

func (p *Product) changed() {
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(newProductEvent(p, shared.EntityUpdated))
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 400 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 400 characters")
	}
	return nil
}

func validateSku(sku string) error {
	if len(strings.TrimSpace(sku)) > 400 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 400 characters")
	}
	return nil
}
