package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cartapp "github.com/storefront/backend/internal/application/cart"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// OrderPlacer places orders and reads a customer's own orders
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req orderapp.PlaceOrderRequest) (*orderapp.PlaceOrderResult, error)
	GetCustomerOrder(ctx context.Context, storeID, customerID, id uuid.UUID) (*order.Order, error)
	SearchOrders(ctx context.Context, storeID uuid.UUID, filter order.SearchFilter) (shared.Paginated[order.Order], error)
	ReOrder(ctx context.Context, o *order.Order, c *customer.Customer) (cart.Warnings, error)
}

// TotalsCalculator prices a cart and lists shipping options
type TotalsCalculator interface {
	GetOrderTotals(ctx context.Context, req orderapp.TotalsRequest) (*orderapp.Totals, error)
	GetShippingOptions(ctx context.Context, storeID uuid.UUID, c *customer.Customer, lines []cartapp.Line, address customer.Address) (*plugin.GetShippingOptionResponse, error)
}

// CartReader reads the lines checkout works on
type CartReader interface {
	GetShoppingCartLines(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]cartapp.Line, error)
}

// InvoicePrinter renders an order invoice as PDF
type InvoicePrinter interface {
	PrintInvoicePDF(ctx context.Context, o *order.Order) ([]byte, error)
}

// CheckoutHandler handles totals, order placement and the customer's orders
type CheckoutHandler struct {
	BaseHandler
	orders    OrderPlacer
	totals    TotalsCalculator
	carts     CartReader
	invoices  InvoicePrinter
	customers CustomerResolver
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(orders OrderPlacer, totals TotalsCalculator, carts CartReader, invoices InvoicePrinter, customers CustomerResolver) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, totals: totals, carts: carts, invoices: invoices, customers: customers}
}

// Totals godoc
// @Summary      Price the cart
// @Description  Computes subtotal, discounts, shipping, payment fee, tax and total for the current cart
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Param        request body CheckoutRequest false "Shipping, payment and coupon selection"
// @Success      200 {object} dto.Response{data=TotalsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/totals [post]
func (h *CheckoutHandler) Totals(c *gin.Context) {
	var req CheckoutRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	cust, lines, ok := h.cartOf(c)
	if !ok {
		return
	}
	shipping := cust.ShippingAddress
	if req.ShippingAddress != nil {
		shipping = *req.ShippingAddress
	}
	totals, err := h.totals.GetOrderTotals(c.Request.Context(), orderapp.TotalsRequest{
		StoreID:                 storeID(c),
		Customer:                cust,
		Lines:                   lines,
		ShippingAddress:         shipping,
		Shipping:                req.Shipping,
		PaymentMethodSystemName: req.PaymentMethodSystemName,
		CouponCode:              req.CouponCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTotalsResponse(totals))
}

// ShippingOptions godoc
// @Summary      Shipping options for the cart
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body customer.Address false "Ship to address; defaults to the customer's"
// @Success      200 {object} dto.Response{data=ShippingOptionsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/shipping-options [post]
func (h *CheckoutHandler) ShippingOptions(c *gin.Context) {
	var address customer.Address
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &address) {
		return
	}
	cust, lines, ok := h.cartOf(c)
	if !ok {
		return
	}
	if address.IsEmpty() {
		address = cust.ShippingAddress
	}
	resp, err := h.totals.GetShippingOptions(c.Request.Context(), storeID(c), cust, lines, address)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := ShippingOptionsResponse{Options: resp.Options, Errors: resp.Errors}
	if out.Options == nil {
		out.Options = []plugin.ShippingOption{}
	}
	h.Success(c, out)
}

// PlaceOrder godoc
// @Summary      Place an order
// @Description  Turns the current cart into an order. Validation and payment failures are returned as errors in a 422 response.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Param        request body CheckoutRequest true "Checkout data"
// @Success      201 {object} dto.Response{data=PlaceOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{data=PlaceOrderResponse}
// @Router       /checkout/orders [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cust == nil {
		h.NotFound(c, "Shopping cart not found")
		return
	}

	result, err := h.orders.PlaceOrder(c.Request.Context(), orderapp.PlaceOrderRequest{
		StoreID:                 storeID(c),
		Customer:                cust,
		CustomerIP:              c.ClientIP(),
		BillingAddress:          req.BillingAddress,
		ShippingAddress:         req.ShippingAddress,
		Shipping:                req.Shipping,
		PaymentMethodSystemName: req.PaymentMethodSystemName,
		Payment:                 req.Payment.toPaymentInfo(),
		CouponCode:              req.CouponCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !result.Success() {
		c.JSON(http.StatusUnprocessableEntity, placeOrderFailure(result.Errors, getRequestID(c)))
		return
	}
	resp := toOrderResponse(result.Order, false)
	h.Created(c, PlaceOrderResponse{Success: true, Order: &resp})
}

// MyOrders godoc
// @Summary      Order history
// @Description  Lists the signed in customer's orders, newest first
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]OrderResponse,meta=dto.Meta}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/orders [get]
func (h *CheckoutHandler) MyOrders(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	_, customerID, ok := h.tokenIDs(c)
	if !ok {
		return
	}
	filter.OrderBy, filter.OrderDir = "created_at", "desc"
	page, err := h.orders.SearchOrders(c.Request.Context(), storeID(c), order.SearchFilter{Filter: filter, CustomerID: &customerID})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, shared.NewPaginated(toOrderResponses(page.Items, false), page.Total, page.Page, page.PageSize))
}

// MyOrder godoc
// @Summary      Order details
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/orders/{id} [get]
func (h *CheckoutHandler) MyOrder(c *gin.Context) {
	o, ok := h.customerOrder(c)
	if !ok {
		return
	}
	h.Success(c, toOrderResponse(o, false))
}

// Invoice godoc
// @Summary      Download the invoice
// @Description  Renders the order invoice as a PDF document
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/orders/{id}/invoice [get]
func (h *CheckoutHandler) Invoice(c *gin.Context) {
	o, ok := h.customerOrder(c)
	if !ok {
		return
	}
	writeInvoice(c, &h.BaseHandler, h.invoices, o)
}

// ReOrder godoc
// @Summary      Order again
// @Description  Puts the items of a previous order back in the cart
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=ReOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/orders/{id}/reorder [post]
func (h *CheckoutHandler) ReOrder(c *gin.Context) {
	o, ok := h.customerOrder(c)
	if !ok {
		return
	}
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	warnings, err := h.orders.ReOrder(c.Request.Context(), o, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if warnings == nil {
		warnings = cart.Warnings{}
	}
	h.Success(c, ReOrderResponse{Warnings: warnings})
}

func (h *CheckoutHandler) customerOrder(c *gin.Context) (*order.Order, bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return nil, false
	}
	_, customerID, ok := h.tokenIDs(c)
	if !ok {
		return nil, false
	}
	o, err := h.orders.GetCustomerOrder(c.Request.Context(), storeID(c), customerID, id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return o, true
}

// cartOf loads the current customer's shopping cart, answering 404 when the
// visitor has none
func (h *CheckoutHandler) cartOf(c *gin.Context) (*customer.Customer, []cartapp.Line, bool) {
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return nil, nil, false
	}
	if cust == nil {
		h.NotFound(c, "Shopping cart not found")
		return nil, nil, false
	}
	lines, err := h.carts.GetShoppingCartLines(c.Request.Context(), storeID(c), cust.ID, cart.TypeShoppingCart)
	if err != nil {
		h.HandleError(c, err)
		return nil, nil, false
	}
	return cust, lines, true
}

func writeInvoice(c *gin.Context, h *BaseHandler, invoices InvoicePrinter, o *order.Order) {
	pdf, err := invoices.PrintInvoicePDF(c.Request.Context(), o)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="order_%s.pdf"`, o.OrderGUID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// placeOrderFailure keeps the individual checkout errors next to the error code
func placeOrderFailure(errs []string, requestID string) dto.Response {
	resp := dto.NewErrorResponseWithRequestID("ORDER_PLACEMENT_FAILED", "The order could not be placed", requestID)
	resp.Data = PlaceOrderResponse{Success: false, Errors: errs}
	return resp
}
