package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// CartManager is the part of the cart service checkout relies on
type CartManager interface {
	GetShoppingCartLines(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]cartapp.Line, error)
	GetShoppingCartWarnings(lines []cartapp.Line) cart.Warnings
	ClearShoppingCart(ctx context.Context, storeID, customerID uuid.UUID) error
	AddToCart(ctx context.Context, in cartapp.AddToCartInput) (cart.Warnings, error)
}

// DiscountRecorder stores and forgets discount usage
type DiscountRecorder interface {
	RecordUsage(ctx context.Context, discountIDs []uuid.UUID, orderID, customerID uuid.UUID) error
	DeleteUsageForOrder(ctx context.Context, orderID uuid.UUID) error
}

// Transactor runs fn inside one database transaction; repositories called
// with the ctx handed to fn take part in it
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// PaymentInfo is the customer supplied payment data
type PaymentInfo struct {
	CreditCardType        string
	CreditCardName        string
	CreditCardNumber      string
	CreditCardExpireYear  int
	CreditCardExpireMonth int
	CreditCardCvv2        string
	CustomValues          map[string]string
}

// PlaceOrderRequest is the checkout input
type PlaceOrderRequest struct {
	StoreID                 uuid.UUID
	Customer                *customer.Customer
	CustomerIP              string
	BillingAddress          *customer.Address
	ShippingAddress         *customer.Address
	Shipping                *ShippingSelection
	PaymentMethodSystemName string
	Payment                 PaymentInfo
	CouponCode              string
}

// PlaceOrderResult holds the placed order or the reasons checkout failed
type PlaceOrderResult struct {
	Order  *order.Order
	Errors []string
}

// Success reports whether the order was placed
func (r *PlaceOrderResult) Success() bool {
	return len(r.Errors) == 0 && r.Order != nil
}

func (r *PlaceOrderResult) fail(msgs ...string) *PlaceOrderResult {
	r.Errors = append(r.Errors, msgs...)
	return r
}

// ProcessingService places orders and drives their payment and shipping state
type ProcessingService struct {
	orders    order.Repository
	products  catalog.ProductRepository
	carts     CartManager
	totals    *TotalsService
	discounts DiscountRecorder
	plugins   *plugin.Manager
	settings  SettingsLoader
	tx        Transactor
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewProcessingService creates a new ProcessingService
func NewProcessingService(
	orders order.Repository,
	products catalog.ProductRepository,
	carts CartManager,
	totals *TotalsService,
	discounts DiscountRecorder,
	plugins *plugin.Manager,
	settings SettingsLoader,
	publisher shared.EventPublisher,
	log *zap.Logger,
) *ProcessingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessingService{
		orders:    orders,
		products:  products,
		carts:     carts,
		totals:    totals,
		discounts: discounts,
		plugins:   plugins,
		settings:  settings,
		tx:        noTx{},
		publisher: publisher,
		logger:    log,
	}
}

// SetTransactor makes order placement and cancellation atomic
func (s *ProcessingService) SetTransactor(tx Transactor) {
	if tx != nil {
		s.tx = tx
	}
}

func (s *ProcessingService) orderSettings(ctx context.Context, storeID uuid.UUID) (configuration.OrderSettings, error) {
	orderCfg := configuration.DefaultOrderSettings()
	err := s.settings.LoadSettings(ctx, storeID, &orderCfg)
	return orderCfg, err
}

// PlaceOrder turns the customer's cart into an order. Validation and
// payment failures are returned in the result; err is reserved for
// infrastructure failures.
func (s *ProcessingService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (_ *PlaceOrderResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.place", telemetry.AttrStoreID.String(req.StoreID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	result := &PlaceOrderResult{}
	c := req.Customer
	if c == nil {
		return result.fail("Customer is not set"), nil
	}
	orderCfg, err := s.orderSettings(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if c.IsGuest() && !orderCfg.AnonymousCheckoutAllowed {
		return result.fail("Anonymous checkout is not allowed"), nil
	}

	billing := c.BillingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}
	if err := billing.Validate(); err != nil {
		return result.fail("Billing address is not valid: " + err.Error()), nil
	}
	shipping := c.ShippingAddress
	if req.ShippingAddress != nil {
		shipping = *req.ShippingAddress
	}

	// 1. cart warnings
	lines, err := s.carts.GetShoppingCartLines(ctx, req.StoreID, c.ID, cart.TypeShoppingCart)
	if err != nil {
		return nil, err
	}
	if w := s.carts.GetShoppingCartWarnings(lines); !w.Empty() {
		return result.fail(w...), nil
	}

	// 2. totals and minimums
	shippingRequired := IsShipEnabled(lines)
	if shippingRequired {
		if shipping.IsEmpty() {
			return result.fail("Shipping address is not provided"), nil
		}
		if err := shipping.Validate(); err != nil {
			return result.fail("Shipping address is not valid: " + err.Error()), nil
		}
	}
	totals, err := s.totals.GetOrderTotals(ctx, TotalsRequest{
		StoreID:                 req.StoreID,
		Customer:                c,
		Lines:                   lines,
		ShippingAddress:         shipping,
		Shipping:                req.Shipping,
		PaymentMethodSystemName: req.PaymentMethodSystemName,
		CouponCode:              req.CouponCode,
	})
	if err != nil {
		return nil, err
	}
	if len(totals.Warnings) > 0 {
		return result.fail(totals.Warnings...), nil
	}
	if totals.SubtotalAfterDiscount().LessThan(orderCfg.MinOrderSubtotalAmount) {
		return result.fail(fmt.Sprintf("Minimum order sub-total amount is %s", orderCfg.MinOrderSubtotalAmount.StringFixed(2))), nil
	}
	if totals.Total.LessThan(orderCfg.MinOrderTotalAmount) {
		return result.fail(fmt.Sprintf("Minimum order total amount is %s", orderCfg.MinOrderTotalAmount.StringFixed(2))), nil
	}

	// 3. payment
	orderGUID := uuid.New()
	payment := &plugin.ProcessPaymentResult{NewPaymentStatus: order.PaymentStatusPaid}
	paymentMethod := req.PaymentMethodSystemName
	if totals.Total.IsPositive() {
		method, errs := s.paymentMethod(ctx, req.StoreID, paymentMethod)
		if len(errs) > 0 {
			return result.fail(errs...), nil
		}
		payment, err = method.ProcessPayment(ctx, &plugin.ProcessPaymentRequest{
			StoreID:               req.StoreID,
			CustomerID:            c.ID,
			OrderGUID:             orderGUID,
			OrderTotal:            totals.Total,
			PaymentMethodName:     paymentMethod,
			CreditCardType:        req.Payment.CreditCardType,
			CreditCardName:        req.Payment.CreditCardName,
			CreditCardNumber:      req.Payment.CreditCardNumber,
			CreditCardExpireYear:  req.Payment.CreditCardExpireYear,
			CreditCardExpireMonth: req.Payment.CreditCardExpireMonth,
			CreditCardCvv2:        req.Payment.CreditCardCvv2,
			CustomValues:          req.Payment.CustomValues,
		})
		if err != nil {
			return nil, fmt.Errorf("process payment: %w", err)
		}
		if !payment.Success() {
			return result.fail(payment.Errors...), nil
		}
	} else {
		paymentMethod = ""
	}

	// 4. persist
	cs := configuration.DefaultCurrencySettings()
	if err := s.settings.LoadSettings(ctx, req.StoreID, &cs); err != nil {
		return nil, err
	}
	o, err := order.NewOrder(req.StoreID, c.ID, billing, shipping, cs.PrimaryStoreCurrencyCode, decimal.NewFromInt(1), order.Totals{
		SubtotalExclTax:  totals.Subtotal,
		SubtotalInclTax:  totals.Subtotal.Add(lineTax(totals)),
		SubtotalDiscount: totals.SubtotalDiscount,
		ShippingExclTax:  totals.ShippingAfterDiscount(),
		ShippingInclTax:  totals.ShippingAfterDiscount(),
		PaymentFee:       totals.PaymentFee,
		Tax:              totals.Tax,
		Discount:         totals.OrderDiscount,
		Total:            totals.Total,
	})
	if err != nil {
		return nil, err
	}
	o.OrderGUID = orderGUID
	o.CustomerIP = req.CustomerIP
	o.CouponCode = strings.TrimSpace(req.CouponCode)
	o.PaymentMethodSystemName = paymentMethod
	if shippingRequired {
		o.SetShipping(totals.ShippingMethod, totals.ShippingRateMethod)
	}
	for _, lt := range totals.Lines {
		qty := decimal.NewFromInt(int64(lt.Line.Item.Quantity))
		unitInclTax := lt.UnitPrice.Add(lt.Tax.Div(qty))
		item, err := order.NewItem(lt.Line.Product.ID, lt.Line.Product.Name, lt.Line.Product.Sku, lt.Line.Item.Quantity,
			lt.UnitPrice, unitInclTax.Round(4), lt.Discount, lt.Line.Product.Weight)
		if err != nil {
			return nil, err
		}
		o.AddItem(item)
	}
	o.SetPaymentResult(payment.NewPaymentStatus, payment.AuthorizationTransactionID, payment.CaptureTransactionID)
	o.AddNote("Order placed", false)
	o.MarkPlaced()

	// 4-7. order, discount usage, stock and cart commit together
	products := make([]*catalog.Product, 0, len(totals.Lines))
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		if len(totals.AppliedDiscountIDs) > 0 {
			if err := s.discounts.RecordUsage(ctx, totals.AppliedDiscountIDs, o.ID, c.ID); err != nil {
				return err
			}
		}
		for _, lt := range totals.Lines {
			if err := s.adjustStock(ctx, lt.Line.Product, -lt.Line.Item.Quantity, "order placed"); err != nil {
				return err
			}
			products = append(products, lt.Line.Product)
		}
		return s.carts.ClearShoppingCart(ctx, req.StoreID, c.ID)
	})
	if err != nil {
		logger.L(ctx).Error("Order was not saved after payment",
			zap.String("order_guid", orderGUID.String()),
			zap.String("payment_method", paymentMethod),
			zap.String("authorization_transaction_id", payment.AuthorizationTransactionID),
			zap.String("capture_transaction_id", payment.CaptureTransactionID),
			zap.Error(err))
		return nil, err
	}
	s.publishProducts(ctx, products...)

	// 8-9. note, order.placed
	s.publish(ctx, o)
	logger.L(ctx).Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("customer_id", c.ID.String()),
		zap.String("total", o.Totals.Total.StringFixed(2)))

	// 10. status
	if err := s.CheckOrderStatus(ctx, o); err != nil {
		return nil, err
	}
	result.Order = o
	return result, nil
}

func lineTax(t *Totals) decimal.Decimal {
	sum := decimal.Zero
	for _, lt := range t.Lines {
		sum = sum.Add(lt.Tax)
	}
	return sum
}

// paymentMethod returns an installed payment method active for the store
func (s *ProcessingService) paymentMethod(ctx context.Context, storeID uuid.UUID, systemName string) (plugin.PaymentMethod, []string) {
	if systemName == "" {
		return nil, []string{"Payment method is not selected"}
	}
	ps := configuration.DefaultPaymentSettings()
	if err := s.settings.LoadSettings(ctx, storeID, &ps); err != nil {
		return nil, []string{err.Error()}
	}
	active := false
	for _, name := range ps.ActivePaymentMethodSystemNames {
		if strings.EqualFold(name, systemName) {
			active = true
			break
		}
	}
	if !active {
		return nil, []string{"Payment method is not active"}
	}
	method, err := plugin.GetPluginBySystemName[plugin.PaymentMethod](s.plugins, systemName, storeID)
	if err != nil {
		return nil, []string{"Payment method couldn't be loaded"}
	}
	return method, nil
}

// adjustStock moves stored stock by delta; events stay pending on p until
// publishProducts runs after the surrounding transaction
func (s *ProcessingService) adjustStock(ctx context.Context, p *catalog.Product, delta int, reason string) error {
	if !p.ManagesStock() || delta == 0 {
		return nil
	}
	if err := s.products.AdjustStock(ctx, p, delta); err != nil {
		return err
	}
	p.StockAdjusted(delta, reason)
	return nil
}

func (s *ProcessingService) publishProducts(ctx context.Context, products ...*catalog.Product) {
	for _, p := range products {
		if err := shared.PublishPending(ctx, s.publisher, p); err != nil {
			s.logger.Warn("Failed to publish product events", zap.String("product_id", p.ID.String()), zap.Error(err))
		}
	}
}

// GetOrder returns an order of the store
func (s *ProcessingService) GetOrder(ctx context.Context, storeID, id uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if o.Deleted {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// GetCustomerOrder returns an order only when it belongs to the customer
func (s *ProcessingService) GetCustomerOrder(ctx context.Context, storeID, customerID, id uuid.UUID) (*order.Order, error) {
	o, err := s.GetOrder(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// SearchOrders lists orders of a store
func (s *ProcessingService) SearchOrders(ctx context.Context, storeID uuid.UUID, filter order.SearchFilter) (shared.Paginated[order.Order], error) {
	orders, total, err := s.orders.Search(ctx, storeID, filter)
	if err != nil {
		return shared.Paginated[order.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// CheckOrderStatus advances the order status and saves it when it changed
func (s *ProcessingService) CheckOrderStatus(ctx context.Context, o *order.Order) error {
	orderCfg, err := s.orderSettings(ctx, o.TenantID)
	if err != nil {
		return err
	}
	before := o.OrderStatus
	o.CheckStatus(orderCfg.CompleteOrderWhenDelivered)
	if o.OrderStatus == before {
		return nil
	}
	return s.save(ctx, o)
}

// Cancel cancels an order and puts its items back in stock
func (s *ProcessingService) Cancel(ctx context.Context, o *order.Order) error {
	if err := o.Cancel(); err != nil {
		return err
	}
	var restocked []*catalog.Product
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, item := range o.Items {
			p, err := s.products.FindByIDForTenant(ctx, o.TenantID, item.ProductID)
			if err != nil {
				s.logger.Warn("Cannot restore stock for cancelled order item",
					zap.String("order_id", o.ID.String()),
					zap.String("product_id", item.ProductID.String()),
					zap.Error(err))
				continue
			}
			if err := s.adjustStock(ctx, p, item.Quantity, "order cancelled"); err != nil {
				return err
			}
			restocked = append(restocked, p)
		}
		if err := s.discounts.DeleteUsageForOrder(ctx, o.ID); err != nil {
			return err
		}
		return s.orders.Save(ctx, o)
	})
	if err != nil {
		return err
	}
	s.publishProducts(ctx, restocked...)
	s.publish(ctx, o)
	return nil
}

func (s *ProcessingService) orderPaymentMethod(o *order.Order) (plugin.PaymentMethod, bool) {
	if o.PaymentMethodSystemName == "" {
		return nil, false
	}
	method, err := plugin.GetPluginBySystemName[plugin.PaymentMethod](s.plugins, o.PaymentMethodSystemName, o.TenantID)
	if err != nil {
		return nil, false
	}
	return method, true
}

// CanCapture reports whether the order's payment can be captured
func (s *ProcessingService) CanCapture(o *order.Order) bool {
	method, ok := s.orderPaymentMethod(o)
	return ok && method.SupportCapture() && o.CanCapture()
}

// Capture captures an authorized payment through its payment method
func (s *ProcessingService) Capture(ctx context.Context, o *order.Order) error {
	if !s.CanCapture(o) {
		return shared.NewDomainError("INVALID_STATE", "Order payment cannot be captured")
	}
	method, _ := s.orderPaymentMethod(o)
	res, err := method.Capture(ctx, o)
	if err != nil {
		return fmt.Errorf("capture payment: %w", err)
	}
	if !res.Success() {
		return paymentError("Capture", o, res.Errors)
	}
	if err := o.Capture(res.TransactionID); err != nil {
		return err
	}
	return s.saveAndCheck(ctx, o)
}

// CanMarkAsPaid reports whether the order can be marked as paid offline
func (s *ProcessingService) CanMarkAsPaid(o *order.Order) bool {
	return o.CanMarkAsPaid()
}

// MarkAsPaid records an offline payment
func (s *ProcessingService) MarkAsPaid(ctx context.Context, o *order.Order) error {
	if err := o.MarkAsPaid(); err != nil {
		return err
	}
	return s.saveAndCheck(ctx, o)
}

// CanRefund reports whether the remaining balance can be refunded
func (s *ProcessingService) CanRefund(o *order.Order) bool {
	method, ok := s.orderPaymentMethod(o)
	return ok && method.SupportRefund() && o.CanRefund(decimal.Zero)
}

// Refund refunds the remaining balance through the payment method
func (s *ProcessingService) Refund(ctx context.Context, o *order.Order) error {
	if !s.CanRefund(o) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be refunded")
	}
	return s.refund(ctx, o, o.RefundableAmount(), false)
}

// CanPartiallyRefund reports whether amount can be refunded
func (s *ProcessingService) CanPartiallyRefund(o *order.Order, amount decimal.Decimal) bool {
	method, ok := s.orderPaymentMethod(o)
	return ok && method.SupportPartiallyRefund() && amount.IsPositive() && o.CanRefund(amount)
}

// PartiallyRefund refunds part of the paid amount
func (s *ProcessingService) PartiallyRefund(ctx context.Context, o *order.Order, amount decimal.Decimal) error {
	if !s.CanPartiallyRefund(o, amount) {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be partially refunded for this amount")
	}
	return s.refund(ctx, o, amount, true)
}

func (s *ProcessingService) refund(ctx context.Context, o *order.Order, amount decimal.Decimal, partial bool) error {
	method, _ := s.orderPaymentMethod(o)
	res, err := method.Refund(ctx, o, amount, partial)
	if err != nil {
		return fmt.Errorf("refund payment: %w", err)
	}
	if !res.Success() {
		return paymentError("Refund", o, res.Errors)
	}
	if err := o.Refund(amount); err != nil {
		return err
	}
	return s.saveAndCheck(ctx, o)
}

// CanVoid reports whether the authorization can be voided
func (s *ProcessingService) CanVoid(o *order.Order) bool {
	method, ok := s.orderPaymentMethod(o)
	return ok && method.SupportVoid() && o.CanVoid()
}

// Void voids an authorized payment
func (s *ProcessingService) Void(ctx context.Context, o *order.Order) error {
	if !s.CanVoid(o) {
		return shared.NewDomainError("INVALID_STATE", "Order payment cannot be voided")
	}
	method, _ := s.orderPaymentMethod(o)
	res, err := method.Void(ctx, o)
	if err != nil {
		return fmt.Errorf("void payment: %w", err)
	}
	if !res.Success() {
		return paymentError("Void", o, res.Errors)
	}
	if err := o.Void(); err != nil {
		return err
	}
	return s.saveAndCheck(ctx, o)
}

// Ship marks the order as shipped
func (s *ProcessingService) Ship(ctx context.Context, o *order.Order) error {
	if err := o.Ship(); err != nil {
		return err
	}
	return s.saveAndCheck(ctx, o)
}

// Deliver marks the order as delivered
func (s *ProcessingService) Deliver(ctx context.Context, o *order.Order) error {
	if err := o.Deliver(); err != nil {
		return err
	}
	return s.saveAndCheck(ctx, o)
}

// ReOrder puts the items of a previous order back in the customer's cart
func (s *ProcessingService) ReOrder(ctx context.Context, o *order.Order, c *customer.Customer) (cart.Warnings, error) {
	orderCfg, err := s.orderSettings(ctx, o.TenantID)
	if err != nil {
		return nil, err
	}
	if !orderCfg.IsReOrderAllowed {
		return nil, shared.NewDomainError("REORDER_DISABLED", "Re-ordering is not allowed")
	}
	var warnings cart.Warnings
	for _, item := range o.Items {
		w, err := s.carts.AddToCart(ctx, cartapp.AddToCartInput{
			StoreID:   o.TenantID,
			Customer:  c,
			ProductID: item.ProductID,
			CartType:  cart.TypeShoppingCart,
			Quantity:  item.Quantity,
		})
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w...)
	}
	return warnings, nil
}

// DeleteOrder soft deletes an order, cancelling it first when needed
func (s *ProcessingService) DeleteOrder(ctx context.Context, o *order.Order) error {
	if o.CanCancel() {
		if err := s.Cancel(ctx, o); err != nil {
			return err
		}
	}
	o.Delete()
	return s.save(ctx, o)
}

// AddOrderNote appends a note to an order
func (s *ProcessingService) AddOrderNote(ctx context.Context, o *order.Order, note string, displayToCustomer bool) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.NewDomainError("INVALID_NOTE", "Note cannot be empty")
	}
	o.AddNote(note, displayToCustomer)
	return s.orders.Save(ctx, o)
}

func paymentError(operation string, o *order.Order, errs []string) error {
	return shared.NewDomainError("PAYMENT_FAILED",
		fmt.Sprintf("%s of order %s failed: %s", operation, o.ID, strings.Join(errs, "; ")))
}

func (s *ProcessingService) saveAndCheck(ctx context.Context, o *order.Order) error {
	if err := s.save(ctx, o); err != nil {
		return err
	}
	return s.CheckOrderStatus(ctx, o)
}

func (s *ProcessingService) save(ctx context.Context, o *order.Order) error {
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	s.publish(ctx, o)
	return nil
}

func (s *ProcessingService) publish(ctx context.Context, o *order.Order) {
	if err := shared.PublishPending(ctx, s.publisher, o); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}
