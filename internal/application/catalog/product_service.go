package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// ProductService handles product CRUD, search, stock and mappings
type ProductService struct {
	productRepo      catalog.ProductRepository
	categoryRepo     catalog.CategoryRepository
	manufacturerRepo catalog.ManufacturerRepository
	settings         SettingsLoader
	cache            cache.Manager
	publisher        shared.EventPublisher
	logger           *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	manufacturerRepo catalog.ManufacturerRepository,
	settings SettingsLoader,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:      productRepo,
		categoryRepo:     categoryRepo,
		manufacturerRepo: manufacturerRepo,
		settings:         settings,
		cache:            cacheManager,
		publisher:        publisher,
		logger:           logger,
	}
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, storeID uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(storeID, req.Name, req.Sku, req.Price)
	if err != nil {
		return nil, err
	}
	if err := applyProductRequest(product, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.changed(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct replaces a product's editable fields
func (s *ProductService) UpdateProduct(ctx context.Context, storeID, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := applyProductRequest(product, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.changed(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

func applyProductRequest(p *catalog.Product, req ProductRequest) error {
	if err := p.UpdateDetails(req.Name, req.Sku, req.ShortDescription, req.FullDescription); err != nil {
		return err
	}
	if err := p.SetPrices(req.Price, valueOr(req.OldPrice, p.OldPrice), valueOr(req.ProductCost, p.ProductCost)); err != nil {
		return err
	}
	if req.TaxCategoryID != nil {
		p.SetTax(*req.TaxCategoryID, req.IsTaxExempt)
	} else {
		p.SetTax(p.TaxCategoryID, req.IsTaxExempt)
	}
	if err := p.SetShipping(valueOr(req.IsShipEnabled, p.IsShipEnabled), req.IsFreeShipping,
		valueOr(req.Weight, p.Weight), valueOr(req.AdditionalShippingCharge, p.AdditionalShippingCharge)); err != nil {
		return err
	}
	method := catalog.ManageInventoryDontManage
	if req.ManageStock {
		method = catalog.ManageInventoryStock
	}
	if err := p.SetInventory(method, req.StockQuantity,
		valueOr(req.OrderMinimumQuantity, p.OrderMinimumQuantity),
		valueOr(req.OrderMaximumQuantity, p.OrderMaximumQuantity)); err != nil {
		return err
	}
	if err := p.SetAvailability(req.AvailableStartDate, req.AvailableEndDate); err != nil {
		return err
	}
	p.SetFlags(req.MarkAsNew, req.ShowOnHomePage, req.DisableBuyButton, req.DisableWishlistButton, req.DisplayOrder)
	p.SetPublished(valueOr(req.Published, p.Published))
	return nil
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, storeID, id uuid.UUID) error {
	product, err := s.find(ctx, storeID, id)
	if err != nil {
		return err
	}
	product.Delete()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	s.changed(ctx, product)
	return nil
}

// GetProductByID returns a product. Unpublished products are only returned
// with showHidden; deleted products never are.
func (s *ProductService) GetProductByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Product, error) {
	product, err := cache.Get(ctx, s.cache, cache.ProductByIDKey.Create(id), func() (*catalog.Product, error) {
		return s.productRepo.FindByIDForTenant(ctx, storeID, id)
	})
	if err != nil {
		return nil, err
	}
	if product.TenantID != storeID || product.Deleted || (!showHidden && !product.Published) {
		return nil, fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	return product, nil
}

// GetProductsByIDs returns the non-deleted products among ids
func (s *ProductService) GetProductsByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	products, err := s.productRepo.FindByIDs(ctx, storeID, ids)
	if err != nil {
		return nil, err
	}
	out := products[:0]
	for _, p := range products {
		if !p.Deleted {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetHomePageProducts lists visible products flagged for the home page
func (s *ProductService) GetHomePageProducts(ctx context.Context, storeID uuid.UUID) ([]catalog.Product, error) {
	return cache.Get(ctx, s.cache, cache.ProductsHomePageKey.Create(storeID), func() ([]catalog.Product, error) {
		return s.productRepo.FindHomePageProducts(ctx, storeID)
	})
}

// SearchProducts runs a paged catalog search
func (s *ProductService) SearchProducts(ctx context.Context, storeID uuid.UUID, req SearchProductsRequest) (shared.Paginated[ProductResponse], error) {
	var empty shared.Paginated[ProductResponse]

	cs := configuration.DefaultCatalogSettings()
	if err := s.settings.LoadSettings(ctx, storeID, &cs); err != nil {
		return empty, err
	}

	keywords := strings.TrimSpace(req.Keywords)
	if keywords != "" && !req.SkipKeywordLengthCheck && utf8.RuneCountInString(keywords) < cs.SearchTermMinimumLength {
		return empty, shared.NewDomainError("SEARCH_TERM_TOO_SHORT",
			fmt.Sprintf("Search term minimum length is %d characters", cs.SearchTermMinimumLength))
	}
	if req.PriceMin != nil && req.PriceMax != nil && req.PriceMin.GreaterThan(*req.PriceMax) {
		return empty, shared.NewDomainError("INVALID_PRICE_RANGE", "Minimum price cannot exceed maximum price")
	}

	categoryIDs := req.CategoryIDs
	if len(categoryIDs) > 0 && (req.IncludeSubcategories || cs.ShowProductsFromSubcategories) {
		expanded, err := s.withSubcategories(ctx, storeID, categoryIDs)
		if err != nil {
			return empty, err
		}
		categoryIDs = expanded
	}

	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = cs.ProductSearchPageSize
	}
	if pageSize <= 0 {
		pageSize = configuration.DefaultCatalogSettings().ProductSearchPageSize
	}
	orderBy := catalog.ProductSortBy(req.OrderBy)
	if orderBy == "" {
		orderBy = catalog.ProductSortPosition
	}

	products, total, err := s.productRepo.Search(ctx, catalog.ProductSearchCriteria{
		TenantID:           storeID,
		Keywords:           keywords,
		SearchDescriptions: req.SearchDescriptions,
		CategoryIDs:        categoryIDs,
		ManufacturerID:     req.ManufacturerID,
		PriceMin:           req.PriceMin,
		PriceMax:           req.PriceMax,
		FeaturedOnly:       req.FeaturedOnly,
		MarkedAsNewOnly:    req.MarkedAsNewOnly,
		ShowHidden:         req.ShowHidden,
		OrderBy:            orderBy,
		Page:               page,
		PageSize:           pageSize,
	})
	if err != nil {
		return empty, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, page, pageSize), nil
}

func (s *ProductService) withSubcategories(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range ids {
		add(id)
		children, err := s.categoryRepo.FindDescendantIDs(ctx, storeID, id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			add(child)
		}
	}
	return out, nil
}

// AdjustInventory changes stock by a signed delta. Products that do not
// track stock are left unchanged.
func (s *ProductService) AdjustInventory(ctx context.Context, storeID, id uuid.UUID, req AdjustInventoryRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if !product.ManagesStock() {
		return nil, shared.NewDomainError("INVENTORY_NOT_TRACKED", "Product does not track stock")
	}
	reason := req.Reason
	if reason == "" {
		reason = "manual adjustment"
	}
	if err := s.productRepo.AdjustStock(ctx, product, req.Delta); err != nil {
		return nil, err
	}
	product.StockAdjusted(req.Delta, reason)
	s.logger.Info("Inventory adjusted",
		zap.String("product_id", id.String()),
		zap.Int("delta", req.Delta),
		zap.Int("stock", product.StockQuantity))
	s.changed(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProductCategories lists a product's category mappings. Without
// showHidden, mappings to hidden or deleted categories are dropped.
func (s *ProductService) GetProductCategories(ctx context.Context, storeID, productID uuid.UUID, showHidden bool) ([]catalog.ProductCategory, error) {
	return cache.Get(ctx, s.cache, cache.ProductCategoriesKey.Create(productID, showHidden), func() ([]catalog.ProductCategory, error) {
		mappings, err := s.productRepo.FindProductCategories(ctx, productID)
		if err != nil {
			return nil, err
		}
		visible, err := s.categoryRepo.FindAllForTenant(ctx, storeID, showHidden)
		if err != nil {
			return nil, err
		}
		ok := make(map[uuid.UUID]bool, len(visible))
		for _, c := range visible {
			ok[c.ID] = true
		}
		out := make([]catalog.ProductCategory, 0, len(mappings))
		for _, m := range mappings {
			if ok[m.CategoryID] {
				out = append(out, m)
			}
		}
		return out, nil
	})
}

// AddProductCategory maps a product into a category
func (s *ProductService) AddProductCategory(ctx context.Context, storeID, productID uuid.UUID, req ProductMappingRequest) (*catalog.ProductCategory, error) {
	if _, err := s.find(ctx, storeID, productID); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByIDForTenant(ctx, storeID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if category.Deleted {
		return nil, fmt.Errorf("%w: category %s", shared.ErrNotFound, req.TargetID)
	}
	existing, err := s.productRepo.FindProductCategories(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if m.CategoryID == req.TargetID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product is already in this category")
		}
	}

	mapping := catalog.NewProductCategory(productID, req.TargetID, req.IsFeaturedProduct, req.DisplayOrder)
	if err := s.productRepo.SaveProductCategory(ctx, mapping); err != nil {
		return nil, err
	}
	s.mappingChanged(ctx, catalog.EntityProductCategory, shared.EntityInserted, mapping.ID, storeID, productID)
	return mapping, nil
}

// RemoveProductCategory deletes a product-category mapping
func (s *ProductService) RemoveProductCategory(ctx context.Context, storeID, productID, mappingID uuid.UUID) error {
	mappings, err := s.productRepo.FindProductCategories(ctx, productID)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if m.ID == mappingID {
			if err := s.productRepo.DeleteProductCategory(ctx, mappingID); err != nil {
				return err
			}
			s.mappingChanged(ctx, catalog.EntityProductCategory, shared.EntityDeleted, mappingID, storeID, productID)
			return nil
		}
	}
	return fmt.Errorf("%w: product category mapping %s", shared.ErrNotFound, mappingID)
}

// GetProductManufacturers lists a product's manufacturer mappings
func (s *ProductService) GetProductManufacturers(ctx context.Context, storeID, productID uuid.UUID, showHidden bool) ([]catalog.ProductManufacturer, error) {
	return cache.Get(ctx, s.cache, cache.ProductManufacturersKey.Create(productID, showHidden), func() ([]catalog.ProductManufacturer, error) {
		mappings, err := s.productRepo.FindProductManufacturers(ctx, productID)
		if err != nil {
			return nil, err
		}
		if showHidden {
			return mappings, nil
		}
		out := make([]catalog.ProductManufacturer, 0, len(mappings))
		for _, m := range mappings {
			mf, err := s.manufacturerRepo.FindByIDForTenant(ctx, storeID, m.ManufacturerID)
			if err != nil {
				continue
			}
			if mf.IsVisible() {
				out = append(out, m)
			}
		}
		return out, nil
	})
}

// AddProductManufacturer maps a product to a manufacturer
func (s *ProductService) AddProductManufacturer(ctx context.Context, storeID, productID uuid.UUID, req ProductMappingRequest) (*catalog.ProductManufacturer, error) {
	if _, err := s.find(ctx, storeID, productID); err != nil {
		return nil, err
	}
	mf, err := s.manufacturerRepo.FindByIDForTenant(ctx, storeID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if mf.Deleted {
		return nil, fmt.Errorf("%w: manufacturer %s", shared.ErrNotFound, req.TargetID)
	}
	existing, err := s.productRepo.FindProductManufacturers(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if m.ManufacturerID == req.TargetID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product is already mapped to this manufacturer")
		}
	}

	mapping := catalog.NewProductManufacturer(productID, req.TargetID, req.IsFeaturedProduct, req.DisplayOrder)
	if err := s.productRepo.SaveProductManufacturer(ctx, mapping); err != nil {
		return nil, err
	}
	s.mappingChanged(ctx, catalog.EntityProductManufacturer, shared.EntityInserted, mapping.ID, storeID, productID)
	return mapping, nil
}

// RemoveProductManufacturer deletes a product-manufacturer mapping
func (s *ProductService) RemoveProductManufacturer(ctx context.Context, storeID, productID, mappingID uuid.UUID) error {
	mappings, err := s.productRepo.FindProductManufacturers(ctx, productID)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if m.ID == mappingID {
			if err := s.productRepo.DeleteProductManufacturer(ctx, mappingID); err != nil {
				return err
			}
			s.mappingChanged(ctx, catalog.EntityProductManufacturer, shared.EntityDeleted, mappingID, storeID, productID)
			return nil
		}
	}
	return fmt.Errorf("%w: product manufacturer mapping %s", shared.ErrNotFound, mappingID)
}

func (s *ProductService) find(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if product.Deleted {
		return nil, fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	return product, nil
}

func (s *ProductService) changed(ctx context.Context, p *catalog.Product) {
	err := shared.PublishPending(ctx, s.publisher, p)
	if err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err), zap.String("product_id", p.ID.String()))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProducts)
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProductCategories)
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProductManufacturers)
	}
}

// mappingChanged announces a mapping mutation; mappings are not aggregates
// and carry no pending events of their own
func (s *ProductService) mappingChanged(ctx context.Context, entity string, action shared.EntityAction, id, storeID, productID uuid.UUID) {
	if s.publisher != nil {
		event := shared.NewEntityEvent(entity, action, id, storeID).WithRef("product_id", productID)
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to publish mapping event", zap.Error(err), zap.String("entity", entity))
	}
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProductCategories)
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixProductManufacturers)
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixCategories)
}
