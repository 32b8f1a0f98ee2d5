package plugin

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/order"
)

// PaymentMethodType tells checkout how the customer interacts with the method
type PaymentMethodType string

const (
	PaymentMethodStandard    PaymentMethodType = "standard"
	PaymentMethodRedirection PaymentMethodType = "redirection"
	PaymentMethodButton      PaymentMethodType = "button"
)

// ProcessPaymentRequest carries checkout data to a payment method
type ProcessPaymentRequest struct {
	StoreID               uuid.UUID
	CustomerID            uuid.UUID
	OrderGUID             uuid.UUID
	OrderTotal            decimal.Decimal
	PaymentMethodName     string
	CreditCardType        string
	CreditCardName        string
	CreditCardNumber      string
	CreditCardExpireYear  int
	CreditCardExpireMonth int
	CreditCardCvv2        string
	CustomValues          map[string]string
}

// ProcessPaymentResult is the outcome of processing a payment
type ProcessPaymentResult struct {
	NewPaymentStatus           order.PaymentStatus
	AuthorizationTransactionID string
	CaptureTransactionID       string
	Errors                     []string
}

// Success reports whether no errors were returned
func (r *ProcessPaymentResult) Success() bool {
	return len(r.Errors) == 0
}

// PaymentOperationResult is the outcome of capture, refund and void
type PaymentOperationResult struct {
	NewPaymentStatus order.PaymentStatus
	TransactionID    string
	Errors           []string
}

// Success reports whether no errors were returned
func (r *PaymentOperationResult) Success() bool {
	return len(r.Errors) == 0
}

// PaymentMethod processes money for an order
type PaymentMethod interface {
	Plugin
	ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*ProcessPaymentResult, error)
	Capture(ctx context.Context, o *order.Order) (*PaymentOperationResult, error)
	Refund(ctx context.Context, o *order.Order, amount decimal.Decimal, partial bool) (*PaymentOperationResult, error)
	Void(ctx context.Context, o *order.Order) (*PaymentOperationResult, error)
	PaymentMethodType() PaymentMethodType
	SupportCapture() bool
	SupportRefund() bool
	SupportPartiallyRefund() bool
	SupportVoid() bool
	// AdditionalHandlingFee is added to the order total when the method is chosen
	AdditionalHandlingFee(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)
}

// CalculateTaxRequest asks for the tax rate of one priced line
type CalculateTaxRequest struct {
	StoreID       uuid.UUID
	Customer      *customer.Customer
	Address       customer.Address
	TaxCategoryID uuid.UUID
	Price         decimal.Decimal
}

// CalculateTaxResult is a tax rate in percent
type CalculateTaxResult struct {
	TaxRate decimal.Decimal
	Errors  []string
}

// TaxProvider computes tax rates
type TaxProvider interface {
	Plugin
	GetTaxRate(ctx context.Context, req *CalculateTaxRequest) (*CalculateTaxResult, error)
}

// ShippingItem is one cart line seen by a rate computation method
type ShippingItem struct {
	ProductID                uuid.UUID
	Quantity                 int
	UnitWeight               decimal.Decimal
	LineSubtotal             decimal.Decimal
	IsFreeShipping           bool
	AdditionalShippingCharge decimal.Decimal
}

// GetShippingOptionRequest asks for shipping options of a cart
type GetShippingOptionRequest struct {
	StoreID         uuid.UUID
	Customer        *customer.Customer
	ShippingAddress customer.Address
	Items           []ShippingItem
}

// TotalWeight sums unit weight times quantity
func (r *GetShippingOptionRequest) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.UnitWeight.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Subtotal sums the line subtotals of items that are not shipped for free
func (r *GetShippingOptionRequest) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		if !item.IsFreeShipping {
			total = total.Add(item.LineSubtotal)
		}
	}
	return total
}

// ShippingOption is one selectable shipping rate
type ShippingOption struct {
	Name                        string          `json:"name"`
	Description                 string          `json:"description"`
	Rate                        decimal.Decimal `json:"rate"`
	RateComputationMethodSystem string          `json:"rate_computation_method"`
}

// GetShippingOptionResponse lists shipping options or errors
type GetShippingOptionResponse struct {
	Options []ShippingOption
	Errors  []string
}

// Success reports whether no errors were returned
func (r *GetShippingOptionResponse) Success() bool {
	return len(r.Errors) == 0
}

// ShippingRateComputationMethod computes shipping rates
type ShippingRateComputationMethod interface {
	Plugin
	GetShippingOptions(ctx context.Context, req *GetShippingOptionRequest) (*GetShippingOptionResponse, error)
	// GetFixedRate returns a rate when it does not depend on the cart, or nil
	GetFixedRate(ctx context.Context, req *GetShippingOptionRequest) (*decimal.Decimal, error)
}

// Widget renders HTML fragments into named page zones
type Widget interface {
	Plugin
	GetWidgetZones() []string
	RenderWidget(ctx context.Context, zone string, storeID uuid.UUID) (string, error)
}

// ExchangeRateProvider fetches live exchange rates
type ExchangeRateProvider interface {
	Plugin
	GetCurrencyLiveRates(ctx context.Context, baseCurrencyCode string) ([]directory.ExchangeRate, error)
}
