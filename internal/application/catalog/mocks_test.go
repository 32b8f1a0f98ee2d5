package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/shared"
)

var storeID = uuid.MustParse("8d7f1c52-2f43-4a53-bb4f-6e0d2b9a1c01")

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, showHidden bool) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID, showHidden)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID, showHidden bool) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID, parentID, showHidden)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindDescendantIDs(ctx context.Context, tenantID, categoryID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCategoryRepository) FindHomePageCategories(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) HasChildren(ctx context.Context, tenantID, categoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, categoryID)
	return args.Bool(0), args.Error(1)
}

// MockManufacturerRepository is a mock implementation of catalog.ManufacturerRepository
type MockManufacturerRepository struct {
	mock.Mock
}

func (m *MockManufacturerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Manufacturer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) ([]catalog.Manufacturer, error) {
	args := m.Called(ctx, tenantID, filter, showHidden)
	return args.Get(0).([]catalog.Manufacturer), args.Error(1)
}

func (m *MockManufacturerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) (int64, error) {
	args := m.Called(ctx, tenantID, filter, showHidden)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockManufacturerRepository) Save(ctx context.Context, mf *catalog.Manufacturer) error {
	return m.Called(ctx, mf).Error(0)
}

// MockPictureRepository is a mock implementation of catalog.PictureRepository
type MockPictureRepository struct {
	mock.Mock
}

func (m *MockPictureRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Picture, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Picture), args.Error(1)
}

func (m *MockPictureRepository) FindByProductID(ctx context.Context, productID uuid.UUID) ([]catalog.Picture, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.Picture), args.Error(1)
}

func (m *MockPictureRepository) Save(ctx context.Context, p *catalog.Picture) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPictureRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySku(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindHomePageProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, criteria catalog.ProductSearchCriteria) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, product *catalog.Product, delta int) error {
	if err := m.Called(ctx, product, delta).Error(0); err != nil {
		return err
	}
	product.StockQuantity += delta
	return nil
}

func (m *MockProductRepository) FindProductCategories(ctx context.Context, productID uuid.UUID) ([]catalog.ProductCategory, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductCategory), args.Error(1)
}

func (m *MockProductRepository) SaveProductCategory(ctx context.Context, pc *catalog.ProductCategory) error {
	return m.Called(ctx, pc).Error(0)
}

func (m *MockProductRepository) DeleteProductCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) HasProductsInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) FindProductManufacturers(ctx context.Context, productID uuid.UUID) ([]catalog.ProductManufacturer, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductManufacturer), args.Error(1)
}

func (m *MockProductRepository) SaveProductManufacturer(ctx context.Context, pm *catalog.ProductManufacturer) error {
	return m.Called(ctx, pm).Error(0)
}

func (m *MockProductRepository) DeleteProductManufacturer(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) FindProductPictures(ctx context.Context, productID uuid.UUID) ([]catalog.ProductPicture, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductPicture), args.Error(1)
}

func (m *MockProductRepository) SaveProductPicture(ctx context.Context, pp *catalog.ProductPicture) error {
	return m.Called(ctx, pp).Error(0)
}

func (m *MockProductRepository) DeleteProductPicture(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	return m.Called(ctx, storageKey, data, contentType).Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	return m.Called(ctx, storageKey).Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// catalogSettings answers LoadSettings with fixed catalog settings
type catalogSettings struct {
	catalog configuration.CatalogSettings
}

func newCatalogSettings() *catalogSettings {
	return &catalogSettings{catalog: configuration.DefaultCatalogSettings()}
}

func (s *catalogSettings) LoadSettings(_ context.Context, _ uuid.UUID, settings any) error {
	if v, ok := settings.(*configuration.CatalogSettings); ok {
		*v = s.catalog
	}
	return nil
}
