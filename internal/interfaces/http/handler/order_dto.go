package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/plugin"
)

// CheckoutRequest carries everything checkout needs besides the cart.
// Addresses default to the ones stored on the customer.
type CheckoutRequest struct {
	BillingAddress          *customer.Address           `json:"billing_address"`
	ShippingAddress         *customer.Address           `json:"shipping_address"`
	Shipping                *orderapp.ShippingSelection `json:"shipping"`
	PaymentMethodSystemName string                      `json:"payment_method" binding:"max=100"`
	CouponCode              string                      `json:"coupon_code" binding:"max=100"`
	Payment                 PaymentInfoRequest          `json:"payment"`
}

// PaymentInfoRequest is the payment data entered by the customer
type PaymentInfoRequest struct {
	CreditCardType        string            `json:"credit_card_type"`
	CreditCardName        string            `json:"credit_card_name"`
	CreditCardNumber      string            `json:"credit_card_number"`
	CreditCardExpireYear  int               `json:"credit_card_expire_year"`
	CreditCardExpireMonth int               `json:"credit_card_expire_month" binding:"omitempty,min=1,max=12"`
	CreditCardCvv2        string            `json:"credit_card_cvv2"`
	CustomValues          map[string]string `json:"custom_values"`
}

func (p PaymentInfoRequest) toPaymentInfo() orderapp.PaymentInfo {
	return orderapp.PaymentInfo{
		CreditCardType:        p.CreditCardType,
		CreditCardName:        p.CreditCardName,
		CreditCardNumber:      p.CreditCardNumber,
		CreditCardExpireYear:  p.CreditCardExpireYear,
		CreditCardExpireMonth: p.CreditCardExpireMonth,
		CreditCardCvv2:        p.CreditCardCvv2,
		CustomValues:          p.CustomValues,
	}
}

// TotalsResponse is the price breakdown of the current cart
type TotalsResponse struct {
	Lines              []TotalsLineResponse `json:"lines"`
	Subtotal           decimal.Decimal      `json:"subtotal"`
	SubtotalDiscount   decimal.Decimal      `json:"subtotal_discount"`
	ShippingRequired   bool                 `json:"shipping_required"`
	Shipping           decimal.Decimal      `json:"shipping"`
	ShippingDiscount   decimal.Decimal      `json:"shipping_discount"`
	ShippingMethod     string               `json:"shipping_method,omitempty"`
	PaymentFee         decimal.Decimal      `json:"payment_fee"`
	Tax                decimal.Decimal      `json:"tax"`
	OrderDiscount      decimal.Decimal      `json:"order_discount"`
	Total              decimal.Decimal      `json:"total"`
	AppliedDiscountIDs []uuid.UUID          `json:"applied_discount_ids,omitempty"`
	Warnings           []string             `json:"warnings,omitempty"`
}

// TotalsLineResponse is one priced cart line
type TotalsLineResponse struct {
	CartItemID uuid.UUID       `json:"cart_item_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
}

func toTotalsResponse(t *orderapp.Totals) TotalsResponse {
	resp := TotalsResponse{
		Lines:              make([]TotalsLineResponse, len(t.Lines)),
		Subtotal:           t.Subtotal,
		SubtotalDiscount:   t.SubtotalDiscount,
		ShippingRequired:   t.ShippingRequired,
		Shipping:           t.Shipping,
		ShippingDiscount:   t.ShippingDiscount,
		ShippingMethod:     t.ShippingMethod,
		PaymentFee:         t.PaymentFee,
		Tax:                t.Tax,
		OrderDiscount:      t.OrderDiscount,
		Total:              t.Total,
		AppliedDiscountIDs: t.AppliedDiscountIDs,
		Warnings:           t.Warnings,
	}
	for i, l := range t.Lines {
		resp.Lines[i] = TotalsLineResponse{
			CartItemID: l.Line.Item.ID,
			ProductID:  l.Line.Item.ProductID,
			Quantity:   l.Line.Item.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Subtotal,
			Discount:   l.Discount,
			Tax:        l.Tax,
		}
	}
	return resp
}

// ShippingOptionsResponse lists the shipping options for the cart
type ShippingOptionsResponse struct {
	Options []plugin.ShippingOption `json:"options"`
	Errors  []string                `json:"errors,omitempty"`
}

// PlaceOrderResponse is the outcome of checkout
type PlaceOrderResponse struct {
	Success bool           `json:"success"`
	Order   *OrderResponse `json:"order,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

// OrderResponse is an order as shown to customers and admins
type OrderResponse struct {
	ID                      uuid.UUID            `json:"id"`
	OrderGUID               uuid.UUID            `json:"order_guid"`
	StoreID                 uuid.UUID            `json:"store_id"`
	CustomerID              uuid.UUID            `json:"customer_id"`
	OrderStatus             order.Status         `json:"order_status"`
	PaymentStatus           order.PaymentStatus  `json:"payment_status"`
	ShippingStatus          order.ShippingStatus `json:"shipping_status"`
	PaymentMethodSystemName string               `json:"payment_method,omitempty"`
	ShippingMethod          string               `json:"shipping_method,omitempty"`
	CurrencyCode            string               `json:"currency_code"`
	BillingAddress          customer.Address     `json:"billing_address"`
	ShippingAddress         customer.Address     `json:"shipping_address"`
	Subtotal                decimal.Decimal      `json:"subtotal"`
	SubtotalDiscount        decimal.Decimal      `json:"subtotal_discount"`
	Shipping                decimal.Decimal      `json:"shipping"`
	PaymentFee              decimal.Decimal      `json:"payment_fee"`
	Tax                     decimal.Decimal      `json:"tax"`
	Discount                decimal.Decimal      `json:"discount"`
	Total                   decimal.Decimal      `json:"total"`
	RefundedAmount          decimal.Decimal      `json:"refunded_amount"`
	CouponCode              string               `json:"coupon_code,omitempty"`
	Items                   []OrderItemResponse  `json:"items"`
	Notes                   []OrderNoteResponse  `json:"notes,omitempty"`
	PaidAt                  *time.Time           `json:"paid_at,omitempty"`
	ShippedAt               *time.Time           `json:"shipped_at,omitempty"`
	DeliveredAt             *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt               time.Time            `json:"created_at"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Sku         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
}

// OrderNoteResponse is one order note
type OrderNoteResponse struct {
	Note              string    `json:"note"`
	DisplayToCustomer bool      `json:"display_to_customer"`
	CreatedAt         time.Time `json:"created_at"`
}

// toOrderResponse maps an order. Customers only see notes flagged for them.
func toOrderResponse(o *order.Order, admin bool) OrderResponse {
	resp := OrderResponse{
		ID:                      o.ID,
		OrderGUID:               o.OrderGUID,
		StoreID:                 o.TenantID,
		CustomerID:              o.CustomerID,
		OrderStatus:             o.OrderStatus,
		PaymentStatus:           o.PaymentStatus,
		ShippingStatus:          o.ShippingStatus,
		PaymentMethodSystemName: o.PaymentMethodSystemName,
		ShippingMethod:          o.ShippingMethod,
		CurrencyCode:            o.CustomerCurrencyCode,
		BillingAddress:          o.BillingAddress,
		ShippingAddress:         o.ShippingAddress,
		Subtotal:                o.Totals.SubtotalExclTax,
		SubtotalDiscount:        o.Totals.SubtotalDiscount,
		Shipping:                o.Totals.ShippingExclTax,
		PaymentFee:              o.Totals.PaymentFee,
		Tax:                     o.Totals.Tax,
		Discount:                o.Totals.Discount,
		Total:                   o.Totals.Total,
		RefundedAmount:          o.RefundedAmount,
		CouponCode:              o.CouponCode,
		Items:                   make([]OrderItemResponse, len(o.Items)),
		PaidAt:                  o.PaidAt,
		ShippedAt:               o.ShippedAt,
		DeliveredAt:             o.DeliveredAt,
		CreatedAt:               o.CreatedAt,
	}
	for i, item := range o.Items {
		resp.Items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Sku:         item.Sku,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPriceExclTax,
			Price:       item.PriceExclTax,
			Discount:    item.DiscountAmount,
		}
	}
	for _, n := range o.Notes {
		if admin || n.DisplayToCustomer {
			resp.Notes = append(resp.Notes, OrderNoteResponse{Note: n.Note, DisplayToCustomer: n.DisplayToCustomer, CreatedAt: n.CreatedAt})
		}
	}
	return resp
}

func toOrderResponses(orders []order.Order, admin bool) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i], admin)
	}
	return out
}

// OrderSearchQuery filters the admin order list
type OrderSearchQuery struct {
	CustomerID     string `form:"customer_id" binding:"omitempty,uuid"`
	OrderStatus    string `form:"order_status" binding:"omitempty,oneof=PENDING PROCESSING COMPLETE CANCELLED"`
	PaymentStatus  string `form:"payment_status" binding:"omitempty,oneof=PENDING AUTHORIZED PAID PARTIALLY_REFUNDED REFUNDED VOIDED"`
	ShippingStatus string `form:"shipping_status" binding:"omitempty,oneof=SHIPPING_NOT_REQUIRED NOT_YET_SHIPPED SHIPPED DELIVERED"`
}

// PartialRefundRequest refunds part of a paid order
type PartialRefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// OrderNoteRequest adds a note to an order
type OrderNoteRequest struct {
	Note              string `json:"note" binding:"required,max=4000"`
	DisplayToCustomer bool   `json:"display_to_customer"`
}

// ReOrderResponse reports what could not be put back in the cart
type ReOrderResponse struct {
	Warnings []string `json:"warnings"`
}
