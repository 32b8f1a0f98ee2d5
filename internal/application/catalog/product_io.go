package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/spreadsheet"
)

// Product workbook columns
const (
	ColSku              = "Sku"
	ColName             = "Name"
	ColShortDescription = "ShortDescription"
	ColFullDescription  = "FullDescription"
	ColPrice            = "Price"
	ColOldPrice         = "OldPrice"
	ColProductCost      = "ProductCost"
	ColPublished        = "Published"
	ColManageStock      = "ManageStock"
	ColStockQuantity    = "StockQuantity"
	ColShowOnHomePage   = "ShowOnHomePage"
	ColMarkAsNew        = "MarkAsNew"
	ColDisplayOrder     = "DisplayOrder"
	ColCategories       = "Categories"
	ColManufacturers    = "Manufacturers"
)

// ProductColumns is the column order of exported workbooks
var ProductColumns = []string{
	ColSku, ColName, ColShortDescription, ColFullDescription,
	ColPrice, ColOldPrice, ColProductCost,
	ColPublished, ColManageStock, ColStockQuantity,
	ColShowOnHomePage, ColMarkAsNew, ColDisplayOrder,
	ColCategories, ColManufacturers,
}

const (
	exportBatchSize = 500
	listSeparator   = ";"
	maxImportErrors = 200
)

var productImportRules = []spreadsheet.FieldRule{
	spreadsheet.Field(ColName).Required().MaxLength(400).Build(),
	spreadsheet.Field(ColSku).MaxLength(400).Unique().Build(),
	spreadsheet.Field(ColPrice).Required().Decimal().NonNegative().Build(),
	spreadsheet.Field(ColOldPrice).Decimal().NonNegative().Build(),
	spreadsheet.Field(ColProductCost).Decimal().NonNegative().Build(),
	spreadsheet.Field(ColPublished).Bool().Build(),
	spreadsheet.Field(ColManageStock).Bool().Build(),
	spreadsheet.Field(ColStockQuantity).Int().Build(),
	spreadsheet.Field(ColShowOnHomePage).Bool().Build(),
	spreadsheet.Field(ColMarkAsNew).Bool().Build(),
	spreadsheet.Field(ColDisplayOrder).Int().Build(),
}

// ImportResult summarizes a product workbook import
type ImportResult struct {
	Created   int                    `json:"created"`
	Updated   int                    `json:"updated"`
	Skipped   int                    `json:"skipped"`
	Errors    []spreadsheet.RowError `json:"errors"`
	Truncated bool                   `json:"truncated"`
}

// ProductIOService exports and imports products as XLSX workbooks
type ProductIOService struct {
	products *ProductService
	logger   *zap.Logger
}

// NewProductIOService creates a new ProductIOService
func NewProductIOService(products *ProductService, logger *zap.Logger) *ProductIOService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductIOService{products: products, logger: logger}
}

// ExportProductsToXlsx writes every non-deleted product of the store, hidden
// ones included, to w
func (s *ProductIOService) ExportProductsToXlsx(ctx context.Context, storeID uuid.UUID, w io.Writer) (int, error) {
	names, err := s.loadNames(ctx, storeID)
	if err != nil {
		return 0, err
	}

	sheet, err := spreadsheet.NewWriter("Products")
	if err != nil {
		return 0, err
	}
	defer sheet.Close()
	if err := sheet.WriteHeader(ProductColumns); err != nil {
		return 0, err
	}

	repo := s.products.productRepo
	written := 0
	for page := 1; ; page++ {
		batch, total, err := repo.Search(ctx, catalog.ProductSearchCriteria{
			TenantID:   storeID,
			ShowHidden: true,
			OrderBy:    catalog.ProductSortPosition,
			Page:       page,
			PageSize:   exportBatchSize,
		})
		if err != nil {
			return written, err
		}
		for i := range batch {
			row, err := s.exportRow(ctx, &batch[i], names)
			if err != nil {
				return written, err
			}
			if err := sheet.WriteRow(row); err != nil {
				return written, err
			}
			written++
		}
		if len(batch) == 0 || int64(page*exportBatchSize) >= total {
			break
		}
	}

	if _, err := sheet.WriteTo(w); err != nil {
		return written, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("Products exported", zap.String("store_id", storeID.String()), zap.Int("count", written))
	return written, nil
}

func (s *ProductIOService) exportRow(ctx context.Context, p *catalog.Product, names *catalogNames) ([]any, error) {
	pcs, err := s.products.productRepo.FindProductCategories(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	pms, err := s.products.productRepo.FindProductManufacturers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(pcs))
	for _, pc := range pcs {
		if n, ok := names.categoryByID[pc.CategoryID]; ok {
			categories = append(categories, n)
		}
	}
	manufacturers := make([]string, 0, len(pms))
	for _, pm := range pms {
		if n, ok := names.manufacturerByID[pm.ManufacturerID]; ok {
			manufacturers = append(manufacturers, n)
		}
	}

	return []any{
		p.Sku, p.Name, p.ShortDescription, p.FullDescription,
		p.Price.InexactFloat64(), p.OldPrice.InexactFloat64(), p.ProductCost.InexactFloat64(),
		p.Published, p.ManagesStock(), p.StockQuantity,
		p.ShowOnHomePage, p.MarkAsNew, p.DisplayOrder,
		strings.Join(categories, listSeparator), strings.Join(manufacturers, listSeparator),
	}, nil
}

// ImportProductsFromXlsx creates or updates products from a workbook. Rows
// are matched to existing products by SKU. Invalid rows are skipped and
// reported; the rest of the workbook is still imported.
func (s *ProductIOService) ImportProductsFromXlsx(ctx context.Context, storeID uuid.UUID, r io.Reader) (*ImportResult, error) {
	sheet, err := spreadsheet.ReadXLSX(r, spreadsheet.DefaultMaxRows)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_WORKBOOK", err.Error())
	}
	if missing := sheet.MissingColumns([]string{ColName, ColPrice}); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_WORKBOOK",
			fmt.Sprintf("%v: %s", spreadsheet.ErrMissingColumns, strings.Join(missing, ", ")))
	}
	names, err := s.loadNames(ctx, storeID)
	if err != nil {
		return nil, err
	}

	validator := spreadsheet.NewFieldValidator(productImportRules, maxImportErrors)
	problems := validator.Errors()
	result := &ImportResult{}

	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !validator.ValidateRow(row) {
			result.Skipped++
			continue
		}
		created, productID, err := s.importRow(ctx, storeID, sheet, row)
		if err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				return nil, fmt.Errorf("row %d: %w", row.Number, err)
			}
			problems.Reject(row.Number, err)
			result.Skipped++
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		if err := s.importMappings(ctx, storeID, productID, sheet, row, names, problems); err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Number, err)
		}
	}

	result.Errors = problems.Errors()
	if result.Errors == nil {
		result.Errors = []spreadsheet.RowError{}
	}
	result.Truncated = problems.IsTruncated()
	s.logger.Info("Products imported",
		zap.String("store_id", storeID.String()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *ProductIOService) importRow(ctx context.Context, storeID uuid.UUID, sheet *spreadsheet.Sheet, row *spreadsheet.Row) (bool, uuid.UUID, error) {
	var existing *catalog.Product
	if sku := row.Get(ColSku); sku != "" {
		p, err := s.products.productRepo.FindBySku(ctx, storeID, sku)
		switch {
		case err == nil && !p.Deleted:
			existing = p
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			return false, uuid.Nil, err
		}
	}

	if existing == nil {
		resp, err := s.products.CreateProduct(ctx, storeID, requestFromRow(ProductRequest{}, sheet, row))
		if err != nil {
			return false, uuid.Nil, err
		}
		return true, resp.ID, nil
	}
	resp, err := s.products.UpdateProduct(ctx, storeID, existing.ID, requestFromRow(requestFromProduct(existing), sheet, row))
	if err != nil {
		return false, uuid.Nil, err
	}
	return false, resp.ID, nil
}

func (s *ProductIOService) importMappings(ctx context.Context, storeID, productID uuid.UUID, sheet *spreadsheet.Sheet, row *spreadsheet.Row, names *catalogNames, problems *spreadsheet.ErrorCollection) error {
	link := func(column string, lookup map[string]uuid.UUID, add func(uuid.UUID) error) error {
		if !sheet.HasColumn(column) {
			return nil
		}
		for _, name := range splitList(row.Get(column)) {
			id, ok := lookup[strings.ToLower(name)]
			if !ok {
				problems.Add(spreadsheet.RowError{
					Row: row.Number, Column: column, Code: spreadsheet.ErrCodeReference,
					Message: "no such " + strings.ToLower(strings.TrimSuffix(column, "s")), Value: name,
				})
				continue
			}
			err := add(id)
			var de *shared.DomainError
			if err != nil && !(errors.As(err, &de) && de.Code == "ALREADY_EXISTS") {
				return err
			}
		}
		return nil
	}

	if err := link(ColCategories, names.categoryByName, func(id uuid.UUID) error {
		_, err := s.products.AddProductCategory(ctx, storeID, productID, ProductMappingRequest{TargetID: id})
		return err
	}); err != nil {
		return err
	}
	return link(ColManufacturers, names.manufacturerByName, func(id uuid.UUID) error {
		_, err := s.products.AddProductManufacturer(ctx, storeID, productID, ProductMappingRequest{TargetID: id})
		return err
	})
}

type catalogNames struct {
	categoryByID       map[uuid.UUID]string
	categoryByName     map[string]uuid.UUID
	manufacturerByID   map[uuid.UUID]string
	manufacturerByName map[string]uuid.UUID
}

func (s *ProductIOService) loadNames(ctx context.Context, storeID uuid.UUID) (*catalogNames, error) {
	categories, err := s.products.categoryRepo.FindAllForTenant(ctx, storeID, true)
	if err != nil {
		return nil, err
	}
	manufacturers, err := s.products.manufacturerRepo.FindAllForTenant(ctx, storeID, shared.Filter{}, true)
	if err != nil {
		return nil, err
	}
	n := &catalogNames{
		categoryByID:       make(map[uuid.UUID]string, len(categories)),
		categoryByName:     make(map[string]uuid.UUID, len(categories)),
		manufacturerByID:   make(map[uuid.UUID]string, len(manufacturers)),
		manufacturerByName: make(map[string]uuid.UUID, len(manufacturers)),
	}
	for _, c := range categories {
		n.categoryByID[c.ID] = c.Name
		if _, dup := n.categoryByName[strings.ToLower(c.Name)]; !dup {
			n.categoryByName[strings.ToLower(c.Name)] = c.ID
		}
	}
	for _, m := range manufacturers {
		n.manufacturerByID[m.ID] = m.Name
		if _, dup := n.manufacturerByName[strings.ToLower(m.Name)]; !dup {
			n.manufacturerByName[strings.ToLower(m.Name)] = m.ID
		}
	}
	return n, nil
}

// requestFromProduct captures a product's current state as a request so an
// import row only overrides the columns it carries
func requestFromProduct(p *catalog.Product) ProductRequest {
	published := p.Published
	shipEnabled := p.IsShipEnabled
	minQty, maxQty := p.OrderMinimumQuantity, p.OrderMaximumQuantity
	taxCategory := p.TaxCategoryID
	return ProductRequest{
		Name:                     p.Name,
		Sku:                      p.Sku,
		ShortDescription:         p.ShortDescription,
		FullDescription:          p.FullDescription,
		Price:                    p.Price,
		OldPrice:                 &p.OldPrice,
		ProductCost:              &p.ProductCost,
		TaxCategoryID:            &taxCategory,
		IsTaxExempt:              p.IsTaxExempt,
		IsShipEnabled:            &shipEnabled,
		IsFreeShipping:           p.IsFreeShipping,
		Weight:                   &p.Weight,
		AdditionalShippingCharge: &p.AdditionalShippingCharge,
		ManageStock:              p.ManagesStock(),
		StockQuantity:            p.StockQuantity,
		OrderMinimumQuantity:     &minQty,
		OrderMaximumQuantity:     &maxQty,
		DisableBuyButton:         p.DisableBuyButton,
		DisableWishlistButton:    p.DisableWishlistButton,
		AvailableStartDate:       p.AvailableStartDate,
		AvailableEndDate:         p.AvailableEndDate,
		MarkAsNew:                p.MarkAsNew,
		ShowOnHomePage:           p.ShowOnHomePage,
		Published:                &published,
		DisplayOrder:             p.DisplayOrder,
	}
}

// requestFromRow overlays the row's cells on base. Cells were validated, so
// parse errors cannot occur here.
func requestFromRow(base ProductRequest, sheet *spreadsheet.Sheet, row *spreadsheet.Row) ProductRequest {
	req := base
	has := func(col string) bool { return sheet.HasColumn(col) }
	text := func(col string, dst *string) {
		if has(col) {
			*dst = row.Get(col)
		}
	}
	money := func(col string) *decimal.Decimal {
		if !has(col) || row.Get(col) == "" {
			return nil
		}
		d := decimal.RequireFromString(row.Get(col))
		return &d
	}
	flag := func(col string, dst *bool) {
		if has(col) {
			*dst, _ = spreadsheet.ParseBool(row.Get(col))
		}
	}
	number := func(col string, dst *int) {
		if has(col) && row.Get(col) != "" {
			*dst, _ = strconv.Atoi(row.Get(col))
		}
	}

	text(ColName, &req.Name)
	text(ColSku, &req.Sku)
	text(ColShortDescription, &req.ShortDescription)
	text(ColFullDescription, &req.FullDescription)
	if price := money(ColPrice); price != nil {
		req.Price = *price
	}
	if old := money(ColOldPrice); old != nil {
		req.OldPrice = old
	}
	if cost := money(ColProductCost); cost != nil {
		req.ProductCost = cost
	}
	if has(ColPublished) {
		published := true
		if v := row.Get(ColPublished); v != "" {
			published, _ = spreadsheet.ParseBool(v)
		}
		req.Published = &published
	}
	flag(ColManageStock, &req.ManageStock)
	number(ColStockQuantity, &req.StockQuantity)
	flag(ColShowOnHomePage, &req.ShowOnHomePage)
	flag(ColMarkAsNew, &req.MarkAsNew)
	number(ColDisplayOrder, &req.DisplayOrder)
	return req
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
