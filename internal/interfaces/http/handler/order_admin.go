package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderManager is the order processing surface used by the admin API
type OrderManager interface {
	GetOrder(ctx context.Context, storeID, id uuid.UUID) (*order.Order, error)
	SearchOrders(ctx context.Context, storeID uuid.UUID, filter order.SearchFilter) (shared.Paginated[order.Order], error)
	Cancel(ctx context.Context, o *order.Order) error
	Capture(ctx context.Context, o *order.Order) error
	MarkAsPaid(ctx context.Context, o *order.Order) error
	Refund(ctx context.Context, o *order.Order) error
	PartiallyRefund(ctx context.Context, o *order.Order, amount decimal.Decimal) error
	Void(ctx context.Context, o *order.Order) error
	Ship(ctx context.Context, o *order.Order) error
	Deliver(ctx context.Context, o *order.Order) error
	DeleteOrder(ctx context.Context, o *order.Order) error
	AddOrderNote(ctx context.Context, o *order.Order, note string, displayToCustomer bool) error
}

// OrderAdminHandler lets administrators search orders and drive their
// payment and shipping state
type OrderAdminHandler struct {
	BaseHandler
	orders   OrderManager
	invoices InvoicePrinter
}

// NewOrderAdminHandler creates a new OrderAdminHandler
func NewOrderAdminHandler(orders OrderManager, invoices InvoicePrinter) *OrderAdminHandler {
	return &OrderAdminHandler{orders: orders, invoices: invoices}
}

// List godoc
// @Summary      Search orders
// @Tags         admin-orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        customer_id query string false "Customer ID"
// @Param        order_status query string false "Order status"
// @Param        payment_status query string false "Payment status"
// @Param        shipping_status query string false "Shipping status"
// @Success      200 {object} dto.Response{data=[]OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderAdminHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	var q OrderSearchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	sf := order.SearchFilter{Filter: filter}
	if q.CustomerID != "" {
		id := uuid.MustParse(q.CustomerID)
		sf.CustomerID = &id
	}
	if q.OrderStatus != "" {
		s := order.Status(q.OrderStatus)
		sf.OrderStatus = &s
	}
	if q.PaymentStatus != "" {
		s := order.PaymentStatus(q.PaymentStatus)
		sf.PaymentStatus = &s
	}
	if q.ShippingStatus != "" {
		s := order.ShippingStatus(q.ShippingStatus)
		sf.ShippingStatus = &s
	}

	page, err := h.orders.SearchOrders(c.Request.Context(), storeID(c), sf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, shared.NewPaginated(toOrderResponses(page.Items, true), page.Total, page.Page, page.PageSize))
}

// Get godoc
// @Summary      Get an order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *OrderAdminHandler) Get(c *gin.Context) {
	o, ok := h.load(c)
	if !ok {
		return
	}
	h.Success(c, toOrderResponse(o, true))
}

// Invoice godoc
// @Summary      Download an order invoice
// @Tags         admin-orders
// @Produce      application/pdf
// @Param        id path string true "Order ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/invoice [get]
func (h *OrderAdminHandler) Invoice(c *gin.Context) {
	o, ok := h.load(c)
	if !ok {
		return
	}
	writeInvoice(c, &h.BaseHandler, h.invoices, o)
}

// Action godoc
// @Summary      Change order state
// @Description  Runs one of cancel, capture, mark-paid, refund, void, ship or deliver on the order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        action path string true "Action" Enums(cancel, capture, mark-paid, refund, void, ship, deliver)
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/actions/{action} [post]
func (h *OrderAdminHandler) Action(c *gin.Context) {
	var op func(context.Context, *order.Order) error
	switch c.Param("action") {
	case "cancel":
		op = h.orders.Cancel
	case "capture":
		op = h.orders.Capture
	case "mark-paid":
		op = h.orders.MarkAsPaid
	case "refund":
		op = h.orders.Refund
	case "void":
		op = h.orders.Void
	case "ship":
		op = h.orders.Ship
	case "deliver":
		op = h.orders.Deliver
	default:
		h.NotFound(c, "Unknown order action")
		return
	}
	o, ok := h.load(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), o); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o, true))
}

// PartialRefund godoc
// @Summary      Refund part of an order
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body PartialRefundRequest true "Amount to refund"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/partial-refund [post]
func (h *OrderAdminHandler) PartialRefund(c *gin.Context) {
	var req PartialRefundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		h.BadRequest(c, "Refund amount must be positive")
		return
	}
	o, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.orders.PartiallyRefund(c.Request.Context(), o, req.Amount); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o, true))
}

// AddNote godoc
// @Summary      Add an order note
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body OrderNoteRequest true "Note"
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/notes [post]
func (h *OrderAdminHandler) AddNote(c *gin.Context) {
	var req OrderNoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	o, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.orders.AddOrderNote(c.Request.Context(), o, req.Note, req.DisplayToCustomer); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o, true))
}

// Delete godoc
// @Summary      Delete an order
// @Description  Soft deletes the order, cancelling it first when it can still be cancelled
// @Tags         admin-orders
// @Param        id path string true "Order ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [delete]
func (h *OrderAdminHandler) Delete(c *gin.Context) {
	o, ok := h.load(c)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), o); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *OrderAdminHandler) load(c *gin.Context) (*order.Order, bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return nil, false
	}
	o, err := h.orders.GetOrder(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return o, true
}
