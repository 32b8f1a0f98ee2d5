package order

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	directoryapp "github.com/storefront/backend/internal/application/directory"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/infrastructure/printing"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

//go:embed invoice.html
var invoiceTemplate string

// StoreLookup returns a store by id
type StoreLookup interface {
	GetStoreByID(ctx context.Context, id uuid.UUID) (*store.Store, error)
}

// CurrencyLookup returns a currency by ISO code
type CurrencyLookup interface {
	GetCurrencyByCode(ctx context.Context, code string) (*directory.Currency, error)
}

// Invoice is the view model of the invoice template
type Invoice struct {
	Store *store.Store
	Order *order.Order
	Price func(decimal.Decimal) string
}

// InvoiceService prints orders to PDF
type InvoiceService struct {
	renderer   printing.PDFRenderer
	stores     StoreLookup
	currencies CurrencyLookup
	tmpl       *template.Template
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(renderer printing.PDFRenderer, stores StoreLookup, currencies CurrencyLookup) *InvoiceService {
	tmpl := template.Must(template.New("invoice").Funcs(template.FuncMap{
		"date": func(o *order.Order) string { return o.CreatedAt.Format("2006-01-02") },
	}).Parse(invoiceTemplate))
	return &InvoiceService{renderer: renderer, stores: stores, currencies: currencies, tmpl: tmpl}
}

// RenderHTML fills the invoice template for an order
func (s *InvoiceService) RenderHTML(ctx context.Context, o *order.Order) (string, error) {
	st, err := s.stores.GetStoreByID(ctx, o.TenantID)
	if err != nil {
		return "", err
	}
	price := func(d decimal.Decimal) string { return d.StringFixed(2) + " " + o.CustomerCurrencyCode }
	if c, err := s.currencies.GetCurrencyByCode(ctx, o.CustomerCurrencyCode); err == nil {
		price = func(d decimal.Decimal) string { return directoryapp.FormatPrice(d, c, false) }
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, Invoice{Store: st, Order: o, Price: price}); err != nil {
		return "", fmt.Errorf("render invoice template: %w", err)
	}
	return buf.String(), nil
}

// PrintInvoicePDF renders an order invoice as PDF
func (s *InvoiceService) PrintInvoicePDF(ctx context.Context, o *order.Order) (_ []byte, err error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice.print", telemetry.AttrStoreID.String(o.TenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	html, err := s.RenderHTML(ctx, o)
	if err != nil {
		return nil, err
	}
	res, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:       html,
		Title:      "Invoice " + o.OrderGUID.String(),
		PaperSize:  printing.PaperSizeA4,
		Margins:    printing.DefaultMargins(),
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return res.PDFData, nil
}
