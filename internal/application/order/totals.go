package order

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// DiscountSource returns the discounts a customer may use
type DiscountSource interface {
	GetApplicableDiscounts(ctx context.Context, storeID uuid.UUID, discountType discount.Type, c *customer.Customer, couponCode string) ([]discount.Discount, error)
}

// ShippingSelection is the shipping option picked at checkout
type ShippingSelection struct {
	Name                  string `json:"name"`
	RateComputationMethod string `json:"rate_computation_method"`
}

// TotalsRequest is the input of a totals calculation
type TotalsRequest struct {
	StoreID                 uuid.UUID
	Customer                *customer.Customer
	Lines                   []cartapp.Line
	ShippingAddress         customer.Address
	Shipping                *ShippingSelection
	PaymentMethodSystemName string
	CouponCode              string
}

// LineTotal is one priced cart line
type LineTotal struct {
	Line              cartapp.Line
	UnitPrice         decimal.Decimal
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	AppliedDiscountID *uuid.UUID
	Tax               decimal.Decimal
}

// SubtotalAfterDiscount is the line amount after its own discount
func (l LineTotal) SubtotalAfterDiscount() decimal.Decimal {
	return l.Subtotal.Sub(l.Discount)
}

// Totals is the full price breakdown of a cart
type Totals struct {
	Lines                 []LineTotal
	Subtotal              decimal.Decimal
	SubtotalDiscount      decimal.Decimal
	ShippingRequired      bool
	FreeShipping          bool
	Shipping              decimal.Decimal
	ShippingDiscount      decimal.Decimal
	ShippingMethod        string
	ShippingRateMethod    string
	PaymentFee            decimal.Decimal
	Tax                   decimal.Decimal
	OrderDiscount         decimal.Decimal
	Total                 decimal.Decimal
	AppliedDiscountIDs    []uuid.UUID
	Warnings              []string
	subtotalAfterDiscount decimal.Decimal
}

// SubtotalAfterDiscount is the subtotal less the order subtotal discount
func (t *Totals) SubtotalAfterDiscount() decimal.Decimal {
	return t.subtotalAfterDiscount
}

// ShippingAfterDiscount is the shipping charge less the shipping discount
func (t *Totals) ShippingAfterDiscount() decimal.Decimal {
	return t.Shipping.Sub(t.ShippingDiscount)
}

func (t *Totals) applied(d *discount.Discount) {
	if d != nil && !slices.Contains(t.AppliedDiscountIDs, d.ID) {
		t.AppliedDiscountIDs = append(t.AppliedDiscountIDs, d.ID)
	}
}

// TotalsService computes subtotals, shipping, tax, fees, discounts and totals
type TotalsService struct {
	discounts DiscountSource
	products  catalog.ProductRepository
	plugins   *plugin.Manager
	settings  SettingsLoader
	logger    *zap.Logger
}

// NewTotalsService creates a new TotalsService
func NewTotalsService(
	discounts DiscountSource,
	products catalog.ProductRepository,
	plugins *plugin.Manager,
	settings SettingsLoader,
	logger *zap.Logger,
) *TotalsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TotalsService{discounts: discounts, products: products, plugins: plugins, settings: settings, logger: logger}
}

// GetOrderTotals prices a cart
func (s *TotalsService) GetOrderTotals(ctx context.Context, req TotalsRequest) (*Totals, error) {
	if req.Customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_REQUIRED", "Customer is required")
	}
	t := &Totals{}

	if err := s.subtotal(ctx, req, t); err != nil {
		return nil, err
	}
	if err := s.shipping(ctx, req, t); err != nil {
		return nil, err
	}
	if err := s.paymentFee(ctx, req, t); err != nil {
		return nil, err
	}
	if err := s.tax(ctx, req, t); err != nil {
		return nil, err
	}

	total := t.subtotalAfterDiscount.Add(t.ShippingAfterDiscount()).Add(t.PaymentFee).Add(t.Tax)
	d, amount, err := s.preferred(ctx, req, discount.TypeAssignedToOrderTotal, total)
	if err != nil {
		return nil, err
	}
	t.OrderDiscount = amount
	t.applied(d)
	total = total.Sub(amount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	t.Total = total.Round(2)
	return t, nil
}

func (s *TotalsService) preferred(ctx context.Context, req TotalsRequest, discountType discount.Type, amount decimal.Decimal) (*discount.Discount, decimal.Decimal, error) {
	all, err := s.discounts.GetApplicableDiscounts(ctx, req.StoreID, discountType, req.Customer, req.CouponCode)
	if err != nil {
		return nil, decimal.Zero, err
	}
	d, value := discount.GetPreferredDiscount(all, amount)
	return d, value, nil
}

func (s *TotalsService) subtotal(ctx context.Context, req TotalsRequest, t *Totals) error {
	skus, err := s.discounts.GetApplicableDiscounts(ctx, req.StoreID, discount.TypeAssignedToSkus, req.Customer, req.CouponCode)
	if err != nil {
		return err
	}
	categories, err := s.discounts.GetApplicableDiscounts(ctx, req.StoreID, discount.TypeAssignedToCategories, req.Customer, req.CouponCode)
	if err != nil {
		return err
	}

	subtotal := decimal.Zero
	for _, line := range req.Lines {
		lt := LineTotal{Line: line, Subtotal: line.Subtotal().Round(2), Discount: decimal.Zero, Tax: decimal.Zero}
		lt.UnitPrice = line.Product.Price
		if line.Item.CustomerEnteredPrice.IsPositive() {
			lt.UnitPrice = line.Item.CustomerEnteredPrice
		}

		candidates := make([]discount.Discount, 0, len(skus)+len(categories))
		for _, d := range skus {
			if d.AppliesToProduct(line.Product.ID, nil) {
				candidates = append(candidates, d)
			}
		}
		if len(categories) > 0 {
			categoryIDs, err := s.categoryIDs(ctx, line.Product.ID)
			if err != nil {
				return err
			}
			for _, d := range categories {
				if d.AppliesToProduct(line.Product.ID, categoryIDs) {
					candidates = append(candidates, d)
				}
			}
		}
		if d, amount := discount.GetPreferredDiscount(candidates, lt.Subtotal); d != nil {
			lt.Discount = amount
			id := d.ID
			lt.AppliedDiscountID = &id
			t.applied(d)
		}
		subtotal = subtotal.Add(lt.SubtotalAfterDiscount())
		t.Lines = append(t.Lines, lt)
	}
	t.Subtotal = subtotal

	d, amount, err := s.preferred(ctx, req, discount.TypeAssignedToOrderSubTotal, subtotal)
	if err != nil {
		return err
	}
	t.SubtotalDiscount = amount
	t.applied(d)
	t.subtotalAfterDiscount = subtotal.Sub(amount)
	return nil
}

func (s *TotalsService) categoryIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	mappings, err := s.products.FindProductCategories(ctx, productID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(mappings))
	for _, m := range mappings {
		ids = append(ids, m.CategoryID)
	}
	return ids, nil
}

// IsShipEnabled reports whether any line has to be shipped
func IsShipEnabled(lines []cartapp.Line) bool {
	for _, l := range lines {
		if l.Product.IsShipEnabled {
			return true
		}
	}
	return false
}

// IsFreeShipping reports whether every shippable line ships for free
func IsFreeShipping(lines []cartapp.Line) bool {
	for _, l := range lines {
		if l.Product.IsShipEnabled && !l.Product.IsFreeShipping {
			return false
		}
	}
	return true
}

func shippingItems(lines []cartapp.Line) []plugin.ShippingItem {
	items := make([]plugin.ShippingItem, 0, len(lines))
	for _, l := range lines {
		if !l.Product.IsShipEnabled {
			continue
		}
		items = append(items, plugin.ShippingItem{
			ProductID:                l.Product.ID,
			Quantity:                 l.Item.Quantity,
			UnitWeight:               l.Product.Weight,
			LineSubtotal:             l.Subtotal(),
			IsFreeShipping:           l.Product.IsFreeShipping,
			AdditionalShippingCharge: l.Product.AdditionalShippingCharge,
		})
	}
	return items
}

func additionalShippingCharge(lines []cartapp.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Product.IsShipEnabled && !l.Product.IsFreeShipping {
			total = total.Add(l.Product.AdditionalShippingCharge.Mul(decimal.NewFromInt(int64(l.Item.Quantity))))
		}
	}
	return total
}

// GetShippingOptions asks every active rate computation method for options
func (s *TotalsService) GetShippingOptions(ctx context.Context, storeID uuid.UUID, c *customer.Customer, lines []cartapp.Line, address customer.Address) (*plugin.GetShippingOptionResponse, error) {
	ss := configuration.DefaultShippingSettings()
	if err := s.settings.LoadSettings(ctx, storeID, &ss); err != nil {
		return nil, err
	}
	req := &plugin.GetShippingOptionRequest{StoreID: storeID, Customer: c, ShippingAddress: address, Items: shippingItems(lines)}

	out := &plugin.GetShippingOptionResponse{}
	for _, name := range ss.ActiveShippingRateComputationMethodSystemNames {
		method, err := plugin.GetPluginBySystemName[plugin.ShippingRateComputationMethod](s.plugins, name, storeID)
		if err != nil {
			s.logger.Warn("Active shipping method unavailable", zap.String("system_name", name), zap.Error(err))
			continue
		}
		resp, err := method.GetShippingOptions(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out.Options = append(out.Options, resp.Options...)
		out.Errors = append(out.Errors, resp.Errors...)
	}
	if len(out.Options) > 0 {
		out.Errors = nil
	} else if len(out.Errors) == 0 {
		out.Errors = append(out.Errors, "Shipping options could not be loaded")
	}
	return out, nil
}

func (s *TotalsService) shipping(ctx context.Context, req TotalsRequest, t *Totals) error {
	t.Shipping = decimal.Zero
	t.ShippingDiscount = decimal.Zero
	t.ShippingRequired = IsShipEnabled(req.Lines)
	if !t.ShippingRequired {
		return nil
	}

	ss := configuration.DefaultShippingSettings()
	if err := s.settings.LoadSettings(ctx, req.StoreID, &ss); err != nil {
		return err
	}
	if req.Shipping != nil {
		t.ShippingMethod = req.Shipping.Name
		t.ShippingRateMethod = req.Shipping.RateComputationMethod
	}

	switch {
	case req.Customer.HasFreeShipping(), IsFreeShipping(req.Lines):
		t.FreeShipping = true
	case ss.FreeShippingOverXEnabled && t.subtotalAfterDiscount.GreaterThanOrEqual(ss.FreeShippingOverXValue):
		t.FreeShipping = true
	}
	if t.FreeShipping {
		return nil
	}

	rate, err := s.shippingRate(ctx, req, ss, t)
	if err != nil {
		return err
	}
	if rate == nil {
		t.Warnings = append(t.Warnings, "Shipping rate could not be calculated")
		return nil
	}
	shipping := rate.Add(additionalShippingCharge(req.Lines))

	d, amount, err := s.preferred(ctx, req, discount.TypeAssignedToShipping, shipping)
	if err != nil {
		return err
	}
	t.applied(d)
	t.Shipping = shipping.Round(2)
	t.ShippingDiscount = amount
	return nil
}

// shippingRate returns the rate of the selected option, or a fixed rate
// from the first active method offering one and records that method on t
func (s *TotalsService) shippingRate(ctx context.Context, req TotalsRequest, ss configuration.ShippingSettings, t *Totals) (*decimal.Decimal, error) {
	optionReq := &plugin.GetShippingOptionRequest{
		StoreID:         req.StoreID,
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		Items:           shippingItems(req.Lines),
	}

	if req.Shipping != nil && req.Shipping.RateComputationMethod != "" {
		method, err := plugin.GetPluginBySystemName[plugin.ShippingRateComputationMethod](s.plugins, req.Shipping.RateComputationMethod, req.StoreID)
		if err != nil {
			return nil, err
		}
		resp, err := method.GetShippingOptions(ctx, optionReq)
		if err != nil {
			return nil, err
		}
		for _, o := range resp.Options {
			if o.Name == req.Shipping.Name {
				rate := o.Rate
				return &rate, nil
			}
		}
		return nil, shared.NewDomainError("INVALID_SHIPPING_OPTION", "Selected shipping option is not available")
	}

	for _, name := range ss.ActiveShippingRateComputationMethodSystemNames {
		method, err := plugin.GetPluginBySystemName[plugin.ShippingRateComputationMethod](s.plugins, name, req.StoreID)
		if errors.Is(err, shared.ErrPluginNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rate, err := method.GetFixedRate(ctx, optionReq)
		if err != nil {
			return nil, err
		}
		if rate != nil {
			t.ShippingMethod = method.Descriptor().FriendlyName
			t.ShippingRateMethod = name
			return rate, nil
		}
	}
	return nil, nil
}

func (s *TotalsService) paymentFee(ctx context.Context, req TotalsRequest, t *Totals) error {
	t.PaymentFee = decimal.Zero
	if req.PaymentMethodSystemName == "" {
		return nil
	}
	method, err := plugin.GetPluginBySystemName[plugin.PaymentMethod](s.plugins, req.PaymentMethodSystemName, req.StoreID)
	if errors.Is(err, shared.ErrPluginNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fee, err := method.AdditionalHandlingFee(ctx, req.StoreID)
	if err != nil {
		return err
	}
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	t.PaymentFee = fee.Round(2)
	return nil
}

// tax sums line taxes, scaled by the order subtotal discount, plus
// shipping and payment fee taxes when the store taxes them
func (s *TotalsService) tax(ctx context.Context, req TotalsRequest, t *Totals) error {
	t.Tax = decimal.Zero
	if req.Customer.IsTaxExempt() {
		return nil
	}
	ts := configuration.DefaultTaxSettings()
	if err := s.settings.LoadSettings(ctx, req.StoreID, &ts); err != nil {
		return err
	}
	provider, err := plugin.GetPluginBySystemName[plugin.TaxProvider](s.plugins, ts.ActiveTaxProviderSystemName, req.StoreID)
	if err != nil {
		s.logger.Warn("Active tax provider unavailable, tax is zero",
			zap.String("system_name", ts.ActiveTaxProviderSystemName), zap.Error(err))
		return nil
	}

	address := req.ShippingAddress
	if address.IsEmpty() {
		address = req.Customer.BillingAddress
	}
	rateFor := func(taxCategoryID uuid.UUID, price decimal.Decimal) (decimal.Decimal, error) {
		res, err := provider.GetTaxRate(ctx, &plugin.CalculateTaxRequest{
			StoreID:       req.StoreID,
			Customer:      req.Customer,
			Address:       address,
			TaxCategoryID: taxCategoryID,
			Price:         price,
		})
		if err != nil {
			return decimal.Zero, err
		}
		if len(res.Errors) > 0 {
			t.Warnings = append(t.Warnings, res.Errors...)
		}
		return res.TaxRate, nil
	}

	scale := decimal.NewFromInt(1)
	if t.Subtotal.IsPositive() && t.SubtotalDiscount.IsPositive() {
		scale = t.subtotalAfterDiscount.Div(t.Subtotal)
	}

	tax := decimal.Zero
	for i := range t.Lines {
		lt := &t.Lines[i]
		if lt.Line.Product.IsTaxExempt {
			continue
		}
		taxable := lt.SubtotalAfterDiscount()
		rate, err := rateFor(lt.Line.Product.TaxCategoryID, taxable)
		if err != nil {
			return err
		}
		lt.Tax = taxable.Mul(rate).Div(hundred).Round(2)
		tax = tax.Add(taxable.Mul(scale).Mul(rate).Div(hundred))
	}

	if ts.ShippingIsTaxable && t.ShippingAfterDiscount().IsPositive() {
		rate, err := rateFor(ts.ShippingTaxClassID, t.ShippingAfterDiscount())
		if err != nil {
			return err
		}
		tax = tax.Add(t.ShippingAfterDiscount().Mul(rate).Div(hundred))
	}
	if ts.PaymentMethodAdditionalFeeIsTaxable && t.PaymentFee.IsPositive() {
		rate, err := rateFor(ts.PaymentMethodAdditionalFeeTaxClassID, t.PaymentFee)
		if err != nil {
			return err
		}
		tax = tax.Add(t.PaymentFee.Mul(rate).Div(hundred))
	}
	t.Tax = tax.Round(2)
	return nil
}
