package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// Item is a product line captured at checkout
type Item struct {
	shared.BaseEntity
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemGUID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName      string          `gorm:"type:varchar(400);not null"`
	Sku              string          `gorm:"type:varchar(100)"`
	Quantity         int             `gorm:"not null"`
	UnitPriceExclTax decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceInclTax decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceExclTax     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceInclTax     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ItemWeight       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates an order line; prices are per unit
func NewItem(productID uuid.UUID, productName, sku string, quantity int, unitExclTax, unitInclTax, discount, weight decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitExclTax.IsNegative() || unitInclTax.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	qty := decimal.NewFromInt(int64(quantity))
	return &Item{
		BaseEntity:       shared.NewBaseEntity(),
		OrderItemGUID:    uuid.New(),
		ProductID:        productID,
		ProductName:      productName,
		Sku:              sku,
		Quantity:         quantity,
		UnitPriceExclTax: unitExclTax,
		UnitPriceInclTax: unitInclTax,
		PriceExclTax:     unitExclTax.Mul(qty).Sub(discount).Round(2),
		PriceInclTax:     unitInclTax.Mul(qty).Sub(discount).Round(2),
		DiscountAmount:   discount,
		ItemWeight:       weight,
	}, nil
}

// Note is a timestamped remark on an order
type Note struct {
	shared.BaseEntity
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Note              string    `gorm:"type:text;not null"`
	DisplayToCustomer bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Note) TableName() string {
	return "order_notes"
}

// Totals is the price breakdown captured on an order
type Totals struct {
	SubtotalExclTax  decimal.Decimal `gorm:"column:order_subtotal_excl_tax;type:decimal(18,4);not null;default:0"`
	SubtotalInclTax  decimal.Decimal `gorm:"column:order_subtotal_incl_tax;type:decimal(18,4);not null;default:0"`
	SubtotalDiscount decimal.Decimal `gorm:"column:order_subtotal_discount;type:decimal(18,4);not null;default:0"`
	ShippingExclTax  decimal.Decimal `gorm:"column:order_shipping_excl_tax;type:decimal(18,4);not null;default:0"`
	ShippingInclTax  decimal.Decimal `gorm:"column:order_shipping_incl_tax;type:decimal(18,4);not null;default:0"`
	PaymentFee       decimal.Decimal `gorm:"column:payment_method_additional_fee;type:decimal(18,4);not null;default:0"`
	Tax              decimal.Decimal `gorm:"column:order_tax;type:decimal(18,4);not null;default:0"`
	Discount         decimal.Decimal `gorm:"column:order_discount;type:decimal(18,4);not null;default:0"`
	Total            decimal.Decimal `gorm:"column:order_total;type:decimal(18,4);not null;default:0"`
}

// Order is a placed customer order
type Order struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	OrderGUID                  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID                 uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerIP                 string           `gorm:"type:varchar(64)"`
	BillingAddress             customer.Address `gorm:"embedded;embeddedPrefix:billing_"`
	ShippingAddress            customer.Address `gorm:"embedded;embeddedPrefix:shipping_"`
	OrderStatus                Status           `gorm:"type:varchar(30);not null;index"`
	PaymentStatus              PaymentStatus    `gorm:"type:varchar(30);not null;index"`
	ShippingStatus             ShippingStatus   `gorm:"type:varchar(30);not null"`
	PaymentMethodSystemName    string           `gorm:"type:varchar(100)"`
	ShippingMethod             string           `gorm:"type:varchar(200)"`
	ShippingRateMethod         string           `gorm:"type:varchar(100)"`
	CustomerCurrencyCode       string           `gorm:"type:varchar(5);not null"`
	CurrencyRate               decimal.Decimal  `gorm:"type:decimal(18,6);not null;default:1"`
	Totals                     Totals           `gorm:"embedded"`
	RefundedAmount             decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CouponCode                 string           `gorm:"type:varchar(100)"`
	AuthorizationTransactionID string           `gorm:"type:varchar(200)"`
	CaptureTransactionID       string           `gorm:"type:varchar(200)"`
	PaidAt                     *time.Time
	ShippedAt                  *time.Time
	DeliveredAt                *time.Time
	Items                      []Item `gorm:"foreignKey:OrderID"`
	Notes                      []Note `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order from checkout data
func NewOrder(tenantID, customerID uuid.UUID, billing, shipping customer.Address, currencyCode string, currencyRate decimal.Decimal, totals Totals) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if err := billing.Validate(); err != nil {
		return nil, err
	}
	if totals.Total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	}
	if !currencyRate.IsPositive() {
		currencyRate = decimal.NewFromInt(1)
	}
	o := &Order{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(tenantID),
		OrderGUID:            uuid.New(),
		CustomerID:           customerID,
		BillingAddress:       billing,
		ShippingAddress:      shipping,
		OrderStatus:          StatusPending,
		PaymentStatus:        PaymentStatusPending,
		ShippingStatus:       ShippingStatusNotRequired,
		CustomerCurrencyCode: currencyCode,
		CurrencyRate:         currencyRate,
		Totals:               totals,
		RefundedAmount:       decimal.Zero,
	}
	return o, nil
}

// AddItem attaches a line to the order
func (o *Order) AddItem(item *Item) {
	item.OrderID = o.ID
	o.Items = append(o.Items, *item)
	if o.ShippingStatus == ShippingStatusNotRequired && o.ShippingMethod != "" {
		o.ShippingStatus = ShippingStatusNotYetShipped
	}
}

// SetShipping records the chosen shipping option and marks the order as shippable
func (o *Order) SetShipping(method, rateComputationMethod string) {
	o.ShippingMethod = method
	o.ShippingRateMethod = rateComputationMethod
	o.ShippingStatus = ShippingStatusNotYetShipped
}

// AddNote appends a note
func (o *Order) AddNote(text string, displayToCustomer bool) {
	o.Notes = append(o.Notes, Note{
		BaseEntity:        shared.NewBaseEntity(),
		OrderID:           o.ID,
		Note:              text,
		DisplayToCustomer: displayToCustomer,
	})
}

// MarkPlaced queues the placed event once payment succeeded
func (o *Order) MarkPlaced() {
	o.AddDomainEvent(&PlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, EntityOrder, o.ID, o.TenantID),
		OrderGUID:       o.OrderGUID,
		CustomerID:      o.CustomerID,
		OrderTotal:      o.Totals.Total,
	})
	o.AddDomainEvent(shared.NewEntityEvent(EntityOrder, shared.EntityInserted, o.ID, o.TenantID))
}

// SetPaymentResult applies the outcome of processing a payment
func (o *Order) SetPaymentResult(status PaymentStatus, authorizationID, captureID string) {
	o.PaymentStatus = status
	o.AuthorizationTransactionID = authorizationID
	o.CaptureTransactionID = captureID
	if status == PaymentStatusPaid {
		now := time.Now()
		o.PaidAt = &now
	}
}

// CanCancel reports whether the order may be cancelled
func (o *Order) CanCancel() bool {
	return o.OrderStatus != StatusCancelled
}

// Cancel sets the order to cancelled
func (o *Order) Cancel() error {
	if !o.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", "Order is already cancelled")
	}
	o.OrderStatus = StatusCancelled
	o.AddNote("Order has been cancelled", false)
	o.changed(EventTypeOrderCancelled, decimal.Zero)
	return nil
}

// CanCapture reports whether an authorized payment may be captured
func (o *Order) CanCapture() bool {
	return o.OrderStatus != StatusCancelled && o.OrderStatus != StatusPending &&
		o.PaymentStatus == PaymentStatusAuthorized
}

// Capture records a captured payment
func (o *Order) Capture(captureID string) error {
	if !o.CanCapture() {
		return shared.NewDomainError("INVALID_STATE", "Order payment cannot be captured")
	}
	o.CaptureTransactionID = captureID
	o.markPaid()
	o.AddNote("Order payment has been captured", false)
	return nil
}

// CanMarkAsPaid reports whether the order may be marked paid offline
func (o *Order) CanMarkAsPaid() bool {
	if o.OrderStatus == StatusCancelled {
		return false
	}
	switch o.PaymentStatus {
	case PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusVoided:
		return false
	}
	return true
}

// MarkAsPaid records an offline payment
func (o *Order) MarkAsPaid() error {
	if !o.CanMarkAsPaid() {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be marked as paid")
	}
	o.markPaid()
	o.AddNote("Order has been marked as paid", false)
	return nil
}

func (o *Order) markPaid() {
	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.PaidAt = &now
	o.changed(EventTypeOrderPaid, o.Totals.Total)
}

// CanRefund reports whether amount can be refunded; a zero amount means the full remaining balance
func (o *Order) CanRefund(amount decimal.Decimal) bool {
	if o.PaymentStatus != PaymentStatusPaid && o.PaymentStatus != PaymentStatusPartiallyRefunded {
		return false
	}
	remaining := o.RefundableAmount()
	if amount.IsZero() {
		return remaining.IsPositive()
	}
	return amount.IsPositive() && amount.LessThanOrEqual(remaining)
}

// RefundableAmount returns the amount not yet refunded
func (o *Order) RefundableAmount() decimal.Decimal {
	return o.Totals.Total.Sub(o.RefundedAmount)
}

// Refund refunds amount, or the full remaining balance when amount is zero
func (o *Order) Refund(amount decimal.Decimal) error {
	if !o.CanRefund(amount) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be refunded for this amount")
	}
	if amount.IsZero() {
		amount = o.RefundableAmount()
	}
	o.RefundedAmount = o.RefundedAmount.Add(amount)
	if o.RefundedAmount.GreaterThanOrEqual(o.Totals.Total) {
		o.PaymentStatus = PaymentStatusRefunded
	} else {
		o.PaymentStatus = PaymentStatusPartiallyRefunded
	}
	o.AddNote(fmt.Sprintf("Order has been refunded. Amount = %s", amount.StringFixed(2)), false)
	o.changed(EventTypeOrderRefunded, amount)
	return nil
}

// CanVoid reports whether an authorization may be voided
func (o *Order) CanVoid() bool {
	return o.OrderStatus != StatusCancelled && o.PaymentStatus == PaymentStatusAuthorized
}

// Void cancels an authorization
func (o *Order) Void() error {
	if !o.CanVoid() {
		return shared.NewDomainError("INVALID_STATE", "Order payment cannot be voided")
	}
	o.PaymentStatus = PaymentStatusVoided
	o.AddNote("Order payment has been voided", false)
	o.changed("", decimal.Zero)
	return nil
}

// Ship marks the order as shipped
func (o *Order) Ship() error {
	if o.OrderStatus == StatusCancelled || o.ShippingStatus != ShippingStatusNotYetShipped {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be shipped")
	}
	now := time.Now()
	o.ShippingStatus = ShippingStatusShipped
	o.ShippedAt = &now
	o.AddNote("Order has been shipped", true)
	o.changed("", decimal.Zero)
	return nil
}

// Deliver marks the order as delivered
func (o *Order) Deliver() error {
	if o.OrderStatus == StatusCancelled || o.ShippingStatus != ShippingStatusShipped {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be delivered")
	}
	now := time.Now()
	o.ShippingStatus = ShippingStatusDelivered
	o.DeliveredAt = &now
	o.AddNote("Order has been delivered", true)
	o.changed("", decimal.Zero)
	return nil
}

// CheckStatus advances the order status from its payment and shipping state:
// Pending becomes Processing once paid or authorized, and Processing becomes
// Complete once paid and shipped, delivered or not shippable. When
// completeWhenDelivered is set, shipped orders wait for delivery.
func (o *Order) CheckStatus(completeWhenDelivered bool) {
	if o.OrderStatus == StatusCancelled {
		return
	}
	if o.OrderStatus == StatusPending &&
		(o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusAuthorized) {
		o.OrderStatus = StatusProcessing
		o.changed("", decimal.Zero)
	}
	if o.OrderStatus != StatusProcessing || o.PaymentStatus != PaymentStatusPaid {
		return
	}
	done := false
	switch o.ShippingStatus {
	case ShippingStatusNotRequired, ShippingStatusDelivered:
		done = true
	case ShippingStatusShipped:
		done = !completeWhenDelivered
	}
	if done {
		o.OrderStatus = StatusComplete
		o.AddNote("Order has been completed", false)
		o.changed(EventTypeOrderCompleted, o.Totals.Total)
	}
}

func (o *Order) changed(eventType string, amount decimal.Decimal) {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	if eventType != "" {
		o.AddDomainEvent(newStatusEvent(eventType, o, amount))
	}
	o.AddDomainEvent(shared.NewEntityEvent(EntityOrder, shared.EntityUpdated, o.ID, o.TenantID))
}

// Delete soft deletes the order
func (o *Order) Delete() {
	o.MarkDeleted()
	o.AddDomainEvent(shared.NewEntityEvent(EntityOrder, shared.EntityDeleted, o.ID, o.TenantID))
}
