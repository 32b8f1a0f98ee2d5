package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
)

// Task types bound in the task manager
const (
	TypeClearCache          = "cache.clear"
	TypeDeleteGuests        = "customers.delete_guests"
	TypeUpdateExchangeRates = "currency.update_rates"
)

// CacheClearer empties the static cache
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// GuestDeleter removes stale guest customers
type GuestDeleter interface {
	DeleteGuestCustomers(ctx context.Context, createdBefore time.Time, onlyWithoutCartItems bool) (int64, error)
}

// RateUpdater refreshes currency rates for a store
type RateUpdater interface {
	UpdateExchangeRates(ctx context.Context, storeID uuid.UUID) (int, error)
}

// StoreLister lists stores
type StoreLister interface {
	GetAllStores(ctx context.Context) ([]store.Store, error)
}

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// ClearCacheTask clears the static cache
type ClearCacheTask struct {
	cache  CacheClearer
	logger *zap.Logger
}

// NewClearCacheTask creates a ClearCacheTask
func NewClearCacheTask(cache CacheClearer, logger *zap.Logger) *ClearCacheTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClearCacheTask{cache: cache, logger: logger}
}

// Execute runs the task
func (t *ClearCacheTask) Execute(ctx context.Context) error {
	if err := t.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	t.logger.Info("Static cache cleared")
	return nil
}

// DeleteGuestsTask removes guests without cart items that are older than
// CustomerSettings.DeleteGuestTaskOlderThanMinutes
type DeleteGuestsTask struct {
	customers GuestDeleter
	settings  SettingsLoader
	logger    *zap.Logger
	now       func() time.Time
}

// NewDeleteGuestsTask creates a DeleteGuestsTask
func NewDeleteGuestsTask(customers GuestDeleter, settings SettingsLoader, logger *zap.Logger) *DeleteGuestsTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeleteGuestsTask{customers: customers, settings: settings, logger: logger, now: time.Now}
}

// Execute runs the task
func (t *DeleteGuestsTask) Execute(ctx context.Context) error {
	cs := configuration.DefaultCustomerSettings()
	if err := t.settings.LoadSettings(ctx, uuid.Nil, &cs); err != nil {
		return err
	}
	if cs.DeleteGuestTaskOlderThanMinutes <= 0 {
		return nil
	}
	cutoff := t.now().Add(-time.Duration(cs.DeleteGuestTaskOlderThanMinutes) * time.Minute)
	deleted, err := t.customers.DeleteGuestCustomers(ctx, cutoff, true)
	if err != nil {
		return fmt.Errorf("delete guests: %w", err)
	}
	t.logger.Info("Guest customers deleted", zap.Int64("deleted", deleted), zap.Time("created_before", cutoff))
	return nil
}

// UpdateExchangeRateTask refreshes rates for every store with
// CurrencySettings.AutoUpdateEnabled
type UpdateExchangeRateTask struct {
	rates    RateUpdater
	stores   StoreLister
	settings SettingsLoader
	logger   *zap.Logger
}

// NewUpdateExchangeRateTask creates an UpdateExchangeRateTask
func NewUpdateExchangeRateTask(rates RateUpdater, stores StoreLister, settings SettingsLoader, logger *zap.Logger) *UpdateExchangeRateTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateExchangeRateTask{rates: rates, stores: stores, settings: settings, logger: logger}
}

// Execute runs the task. A failing store does not stop the others; the
// errors are joined.
func (t *UpdateExchangeRateTask) Execute(ctx context.Context) error {
	stores, err := t.stores.GetAllStores(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, st := range stores {
		cs := configuration.DefaultCurrencySettings()
		if err := t.settings.LoadSettings(ctx, st.ID, &cs); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", st.ID, err))
			continue
		}
		if !cs.AutoUpdateEnabled {
			continue
		}
		updated, err := t.rates.UpdateExchangeRates(ctx, st.ID)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) && de.Code == "NO_RATE_PROVIDER" {
				t.logger.Debug("No exchange rate provider", zap.String("store_id", st.ID.String()))
				continue
			}
			errs = append(errs, fmt.Errorf("store %s: %w", st.ID, err))
			continue
		}
		t.logger.Info("Exchange rates updated", zap.String("store_id", st.ID.String()), zap.Int("updated", updated))
	}
	return errors.Join(errs...)
}
