package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// ManufacturerService handles manufacturer CRUD
type ManufacturerService struct {
	repo      catalog.ManufacturerRepository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewManufacturerService creates a new ManufacturerService
func NewManufacturerService(repo catalog.ManufacturerRepository, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *ManufacturerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManufacturerService{repo: repo, cache: cacheManager, publisher: publisher, logger: logger}
}

// CreateManufacturer creates a manufacturer
func (s *ManufacturerService) CreateManufacturer(ctx context.Context, storeID uuid.UUID, req ManufacturerRequest) (*ManufacturerResponse, error) {
	m, err := catalog.NewManufacturer(storeID, req.Name)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, m, req)
}

// UpdateManufacturer updates a manufacturer
func (s *ManufacturerService) UpdateManufacturer(ctx context.Context, storeID, id uuid.UUID, req ManufacturerRequest) (*ManufacturerResponse, error) {
	m, err := s.find(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, m, req)
}

func (s *ManufacturerService) apply(ctx context.Context, m *catalog.Manufacturer, req ManufacturerRequest) (*ManufacturerResponse, error) {
	published := m.Published
	if req.Published != nil {
		published = *req.Published
	}
	if err := m.Update(req.Name, req.Description, req.PageSize, req.DisplayOrder, published); err != nil {
		return nil, err
	}
	m.PictureID = req.PictureID

	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	s.changed(ctx, m)

	resp := ToManufacturerResponse(m)
	return &resp, nil
}

// DeleteManufacturer soft-deletes a manufacturer
func (s *ManufacturerService) DeleteManufacturer(ctx context.Context, storeID, id uuid.UUID) error {
	m, err := s.find(ctx, storeID, id)
	if err != nil {
		return err
	}
	m.Delete()
	if err := s.repo.Save(ctx, m); err != nil {
		return err
	}
	s.changed(ctx, m)
	return nil
}

// GetManufacturerByID returns a manufacturer; hidden ones only with showHidden
func (s *ManufacturerService) GetManufacturerByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Manufacturer, error) {
	m, err := s.find(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if !showHidden && !m.Published {
		return nil, fmt.Errorf("%w: manufacturer %s", shared.ErrNotFound, id)
	}
	return m, nil
}

// GetAllManufacturers returns every manufacturer of the store, cached
func (s *ManufacturerService) GetAllManufacturers(ctx context.Context, storeID uuid.UUID, showHidden bool) ([]catalog.Manufacturer, error) {
	return cache.Get(ctx, s.cache, cache.ManufacturersAllKey.Create(storeID, showHidden), func() ([]catalog.Manufacturer, error) {
		return s.repo.FindAllForTenant(ctx, storeID, shared.Filter{}, showHidden)
	})
}

// ListManufacturers returns one page of manufacturers matching filter.Search
func (s *ManufacturerService) ListManufacturers(ctx context.Context, storeID uuid.UUID, filter shared.Filter, showHidden bool) (shared.Paginated[ManufacturerResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}
	items, err := s.repo.FindAllForTenant(ctx, storeID, filter, showHidden)
	if err != nil {
		return shared.Paginated[ManufacturerResponse]{}, err
	}
	total, err := s.repo.CountForTenant(ctx, storeID, filter, showHidden)
	if err != nil {
		return shared.Paginated[ManufacturerResponse]{}, err
	}
	out := make([]ManufacturerResponse, len(items))
	for i := range items {
		out[i] = ToManufacturerResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

func (s *ManufacturerService) find(ctx context.Context, storeID, id uuid.UUID) (*catalog.Manufacturer, error) {
	m, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if m.Deleted {
		return nil, fmt.Errorf("%w: manufacturer %s", shared.ErrNotFound, id)
	}
	return m, nil
}

func (s *ManufacturerService) changed(ctx context.Context, m *catalog.Manufacturer) {
	err := shared.PublishPending(ctx, s.publisher, m)
	if err != nil {
		s.logger.Warn("Failed to publish manufacturer events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixManufacturers)
	}
}
