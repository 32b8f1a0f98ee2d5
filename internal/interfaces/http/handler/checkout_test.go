package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

func testOrder(customerID uuid.UUID) *order.Order {
	o := &order.Order{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(testStoreID),
		OrderGUID:            uuid.New(),
		CustomerID:           customerID,
		OrderStatus:          order.StatusPending,
		PaymentStatus:        order.PaymentStatusPending,
		ShippingStatus:       order.ShippingStatusNotRequired,
		CustomerCurrencyCode: "USD",
		Totals:               order.Totals{Total: decimal.RequireFromString("42.00")},
	}
	o.AddNote("Internal fraud check passed", false)
	o.AddNote("Your order is on its way", true)
	return o
}

func newCheckoutHandler(orders *MockOrderService, customers *MockCustomerService, invoices *MockInvoicePrinter) *CheckoutHandler {
	return NewCheckoutHandler(orders, nil, new(MockCartService), invoices, customers)
}

func TestCheckoutHandler_PlaceOrder(t *testing.T) {
	t.Run("no customer means no cart", func(t *testing.T) {
		orders := new(MockOrderService)
		h := newCheckoutHandler(orders, new(MockCustomerService), nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/checkout/orders", CheckoutRequest{})
		h.PlaceOrder(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		orders.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
	})

	t.Run("placed", func(t *testing.T) {
		orders := new(MockOrderService)
		customers := new(MockCustomerService)
		h := newCheckoutHandler(orders, customers, nil)
		guest := newGuest()
		placed := testOrder(guest.ID)

		customers.On("GetCustomerByGUID", mock.Anything, guest.CustomerGUID).Return(guest, nil)
		orders.On("PlaceOrder", mock.Anything, mock.MatchedBy(func(req orderapp.PlaceOrderRequest) bool {
			return req.Customer == guest && req.StoreID == testStoreID &&
				req.PaymentMethodSystemName == "Payments.CheckMoneyOrder" && req.CouponCode == "SAVE10"
		})).Return(&orderapp.PlaceOrderResult{Order: placed}, nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/checkout/orders", CheckoutRequest{
			PaymentMethodSystemName: "Payments.CheckMoneyOrder",
			CouponCode:              "SAVE10",
		})
		c.Request.Header.Set(middleware.CustomerGUIDHeader, guest.CustomerGUID.String())
		h.PlaceOrder(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp PlaceOrderResponse
		decodeData(t, w, &resp)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Order)
		assert.Equal(t, placed.OrderGUID, resp.Order.OrderGUID)
		require.Len(t, resp.Order.Notes, 1)
		assert.Equal(t, "Your order is on its way", resp.Order.Notes[0].Note)
	})

	t.Run("failures are listed in a 422 envelope", func(t *testing.T) {
		orders := new(MockOrderService)
		customers := new(MockCustomerService)
		h := newCheckoutHandler(orders, customers, nil)
		guest := newGuest()

		customers.On("GetCustomerByGUID", mock.Anything, guest.CustomerGUID).Return(guest, nil)
		orders.On("PlaceOrder", mock.Anything, mock.Anything).Return(&orderapp.PlaceOrderResult{
			Errors: []string{"Cart is empty", "Billing address is required"},
		}, nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/checkout/orders", CheckoutRequest{})
		c.Request.Header.Set(middleware.CustomerGUIDHeader, guest.CustomerGUID.String())
		h.PlaceOrder(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var data PlaceOrderResponse
		resp := decodeData(t, w, &data)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ORDER_PLACEMENT_FAILED", resp.Error.Code)
		assert.Equal(t, "test-request-id", resp.Error.RequestID)
		assert.Equal(t, []string{"Cart is empty", "Billing address is required"}, data.Errors)
	})
}

func TestCheckoutHandler_MyOrder(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		h := newCheckoutHandler(new(MockOrderService), new(MockCustomerService), nil)
		c, w := newTestContext(http.MethodGet, "/api/v1/account/orders/x", nil)
		withParams(c, "id", uuid.NewString())
		h.MyOrder(c)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("other customer's order is not found", func(t *testing.T) {
		orders := new(MockOrderService)
		h := newCheckoutHandler(orders, new(MockCustomerService), nil)
		customerID, orderID := uuid.New(), uuid.New()
		orders.On("GetCustomerOrder", mock.Anything, testStoreID, customerID, orderID).Return(nil, shared.ErrNotFound)

		c, w := newTestContext(http.MethodGet, "/api/v1/account/orders/x", nil)
		withParams(c, "id", orderID.String())
		withClaims(c, customerID)
		h.MyOrder(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCheckoutHandler_Invoice(t *testing.T) {
	orders := new(MockOrderService)
	invoices := new(MockInvoicePrinter)
	h := newCheckoutHandler(orders, new(MockCustomerService), invoices)
	customerID := uuid.New()
	o := testOrder(customerID)
	pdf := []byte("%PDF-1.4 fake")

	orders.On("GetCustomerOrder", mock.Anything, testStoreID, customerID, o.ID).Return(o, nil)
	invoices.On("PrintInvoicePDF", mock.Anything, o).Return(pdf, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/account/orders/x/invoice", nil)
	withParams(c, "id", o.ID.String())
	withClaims(c, customerID)
	h.Invoice(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "order_"+o.OrderGUID.String()+".pdf")
	assert.Equal(t, pdf, w.Body.Bytes())
}

func TestOrderAdminHandler_Action(t *testing.T) {
	actions := map[string]string{
		"cancel":    "Cancel",
		"capture":   "Capture",
		"mark-paid": "MarkAsPaid",
		"refund":    "Refund",
		"void":      "Void",
		"ship":      "Ship",
		"deliver":   "Deliver",
	}
	for action, method := range actions {
		t.Run(action, func(t *testing.T) {
			orders := new(MockOrderService)
			h := NewOrderAdminHandler(orders, nil)
			o := testOrder(uuid.New())
			orders.On("GetOrder", mock.Anything, testStoreID, o.ID).Return(o, nil)
			orders.On(method, mock.Anything, o).Return(nil)

			c, w := newTestContext(http.MethodPost, "/api/v1/admin/orders/x/actions/"+action, nil)
			withParams(c, "id", o.ID.String(), "action", action)
			h.Action(c)

			assert.Equal(t, http.StatusOK, w.Code)
			var resp OrderResponse
			decodeData(t, w, &resp)
			assert.Len(t, resp.Notes, 2, "admins see every note")
			orders.AssertExpectations(t)
		})
	}

	t.Run("unknown action", func(t *testing.T) {
		orders := new(MockOrderService)
		h := NewOrderAdminHandler(orders, nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/admin/orders/x/actions/explode", nil)
		withParams(c, "id", uuid.NewString(), "action", "explode")
		h.Action(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		orders.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("state rule violation", func(t *testing.T) {
		orders := new(MockOrderService)
		h := NewOrderAdminHandler(orders, nil)
		o := testOrder(uuid.New())
		orders.On("GetOrder", mock.Anything, testStoreID, o.ID).Return(o, nil)
		orders.On("Capture", mock.Anything, o).Return(shared.NewDomainError("CANNOT_CAPTURE", "Order cannot be captured"))

		c, w := newTestContext(http.MethodPost, "/api/v1/admin/orders/x/actions/capture", nil)
		withParams(c, "id", o.ID.String(), "action", "capture")
		h.Action(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "CANNOT_CAPTURE", decodeResponse(t, w).Error.Code)
	})

	t.Run("unexpected failure is a 500", func(t *testing.T) {
		orders := new(MockOrderService)
		h := NewOrderAdminHandler(orders, nil)
		o := testOrder(uuid.New())
		orders.On("GetOrder", mock.Anything, testStoreID, o.ID).Return(o, nil)
		orders.On("Ship", mock.Anything, o).Return(errors.New("connection reset"))

		c, w := newTestContext(http.MethodPost, "/api/v1/admin/orders/x/actions/ship", nil)
		withParams(c, "id", o.ID.String(), "action", "ship")
		h.Action(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOrderAdminHandler_PartialRefund(t *testing.T) {
	t.Run("amount must be positive", func(t *testing.T) {
		orders := new(MockOrderService)
		h := NewOrderAdminHandler(orders, nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/admin/orders/x/partial-refund", PartialRefundRequest{Amount: decimal.NewFromInt(-5)})
		withParams(c, "id", uuid.NewString())
		h.PartialRefund(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		orders.AssertNotCalled(t, "PartiallyRefund", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refunds the amount", func(t *testing.T) {
		orders := new(MockOrderService)
		h := NewOrderAdminHandler(orders, nil)
		o := testOrder(uuid.New())
		amount := decimal.RequireFromString("12.50")
		orders.On("GetOrder", mock.Anything, testStoreID, o.ID).Return(o, nil)
		orders.On("PartiallyRefund", mock.Anything, o, mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(amount)
		})).Return(nil)

		c, w := newTestContext(http.MethodPost, "/api/v1/admin/orders/x/partial-refund", PartialRefundRequest{Amount: amount})
		withParams(c, "id", o.ID.String())
		h.PartialRefund(c)

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})
}

func TestOrderAdminHandler_List(t *testing.T) {
	orders := new(MockOrderService)
	h := NewOrderAdminHandler(orders, nil)
	customerID := uuid.New()
	orders.On("SearchOrders", mock.Anything, testStoreID, mock.MatchedBy(func(f order.SearchFilter) bool {
		return f.CustomerID != nil && *f.CustomerID == customerID &&
			f.PaymentStatus != nil && *f.PaymentStatus == order.PaymentStatusPaid
	})).Return(shared.NewPaginated([]order.Order{*testOrder(customerID)}, 1, 1, 20), nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/admin/orders?payment_status=PAID&customer_id="+customerID.String(), nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 1, resp.Meta.Total)

	c, w = newTestContext(http.MethodGet, "/api/v1/admin/orders?payment_status=SOMETIMES", nil)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
