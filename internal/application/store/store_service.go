package store

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// Resolution holds the request facts a store can be resolved from.
// Earlier fields win.
type Resolution struct {
	ClaimStoreID  uuid.UUID
	HeaderStoreID string
	Host          string
}

// StoreInput is the editable part of a store
type StoreInput struct {
	Name              string
	URL               string
	SslEnabled        bool
	Hosts             string
	CompanyName       string
	CompanyAddress    string
	CompanyPhone      string
	DefaultLanguageID *uuid.UUID
	DisplayOrder      int
}

// StoreService manages stores and resolves the current one per request
type StoreService struct {
	repo      store.Repository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(repo store.Repository, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{repo: repo, cache: cacheManager, publisher: publisher, logger: logger}
}

// GetAllStores returns every store ordered by display order then name
func (s *StoreService) GetAllStores(ctx context.Context) ([]store.Store, error) {
	return cache.Get(ctx, s.cache, cache.StoresAllKey, func() ([]store.Store, error) {
		stores, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(stores, func(a, b store.Store) int {
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder - b.DisplayOrder
			}
			return strings.Compare(a.Name, b.Name)
		})
		return stores, nil
	})
}

// GetStoreByID returns a store from the cached list
func (s *StoreService) GetStoreByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	stores, err := s.GetAllStores(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stores {
		if stores[i].ID == id {
			return &stores[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// ResolveStore picks the store for a request: token claim, X-Store-ID
// header, host match, first store, then the default store.
func (s *StoreService) ResolveStore(ctx context.Context, r Resolution) (*store.Store, error) {
	stores, err := s.GetAllStores(ctx)
	if err != nil {
		return nil, err
	}

	byID := func(id uuid.UUID) *store.Store {
		for i := range stores {
			if stores[i].ID == id {
				return &stores[i]
			}
		}
		return nil
	}

	if r.ClaimStoreID != uuid.Nil {
		if st := byID(r.ClaimStoreID); st != nil {
			return st, nil
		}
	}
	if r.HeaderStoreID != "" {
		if id, err := uuid.Parse(strings.TrimSpace(r.HeaderStoreID)); err == nil {
			if st := byID(id); st != nil {
				return st, nil
			}
		}
	}
	if r.Host != "" {
		for i := range stores {
			if stores[i].ContainsHostValue(r.Host) {
				return &stores[i], nil
			}
		}
	}
	if len(stores) > 0 {
		return &stores[0], nil
	}
	return defaultStore(), nil
}

// defaultStore stands in for an empty installation
func defaultStore() *store.Store {
	st := &store.Store{Name: "Default store", URL: "http://localhost:8080/"}
	st.ID = store.DefaultStoreID
	return st
}

// CreateStore inserts a store
func (s *StoreService) CreateStore(ctx context.Context, input StoreInput) (*store.Store, error) {
	st, err := store.NewStore(input.Name, input.URL)
	if err != nil {
		return nil, err
	}
	apply(st, input)
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.publish(ctx, st)
	s.logger.Info("Store created", zap.String("store_id", st.ID.String()), zap.String("name", st.Name))
	return st, nil
}

// UpdateStore changes a store
func (s *StoreService) UpdateStore(ctx context.Context, id uuid.UUID, input StoreInput) (*store.Store, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.Update(input.Name, input.URL, input.Hosts, input.SslEnabled, input.DisplayOrder); err != nil {
		return nil, err
	}
	apply(st, input)
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.publish(ctx, st)
	return st, nil
}

// DeleteStore removes a store. The last store cannot be removed.
func (s *StoreService) DeleteStore(ctx context.Context, id uuid.UUID) error {
	stores, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(stores) <= 1 {
		return shared.NewDomainError("LAST_STORE", "The last store cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.publisher != nil {
		event := shared.NewEntityEvent(store.EntityStore, shared.EntityDeleted, id, id)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish store event", zap.Error(err))
		}
	}
	return s.cache.RemoveByPrefix(ctx, cache.PrefixStores)
}

func apply(st *store.Store, input StoreInput) {
	st.Hosts = input.Hosts
	st.SslEnabled = input.SslEnabled
	st.DisplayOrder = input.DisplayOrder
	st.CompanyName = input.CompanyName
	st.CompanyAddress = input.CompanyAddress
	st.CompanyPhone = input.CompanyPhone
	st.DefaultLanguageID = input.DefaultLanguageID
}

// publish sends pending events; without a bus the store list is dropped directly
func (s *StoreService) publish(ctx context.Context, st *store.Store) {
	err := shared.PublishPending(ctx, s.publisher, st)
	if s.publisher == nil || err != nil {
		if err != nil {
			s.logger.Warn("Failed to publish store event", zap.Error(err))
		}
		if rmErr := s.cache.RemoveByPrefix(ctx, cache.PrefixStores); rmErr != nil && !errors.Is(rmErr, cache.ErrCacheClosed) {
			s.logger.Warn("Failed to clear store cache", zap.Error(rmErr))
		}
	}
}
