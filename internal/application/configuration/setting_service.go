package configuration

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// CachedSetting is the cached projection of a setting row
type CachedSetting struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
}

// SettingService reads and writes store configuration rows
type SettingService struct {
	repo      configuration.SettingRepository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewSettingService creates a new SettingService
func NewSettingService(
	repo configuration.SettingRepository,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllSettings returns every row grouped by normalized key
func (s *SettingService) GetAllSettings(ctx context.Context) (map[string][]CachedSetting, error) {
	return cache.Get(ctx, s.cache, cache.SettingsAllKey, func() (map[string][]CachedSetting, error) {
		rows, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		grouped := make(map[string][]CachedSetting, len(rows))
		for _, row := range rows {
			key := configuration.NormalizeKey(row.Name)
			grouped[key] = append(grouped[key], CachedSetting{
				ID:       row.ID,
				TenantID: row.TenantID,
				Name:     key,
				Value:    row.Value,
			})
		}
		return grouped, nil
	})
}

// GetSetting returns the row for a key. When no store row exists and
// loadShared is set, the global row is returned instead.
func (s *SettingService) GetSetting(ctx context.Context, key string, storeID uuid.UUID, loadShared bool) (*CachedSetting, error) {
	all, err := s.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	rows := all[configuration.NormalizeKey(key)]
	if row, ok := findForStore(rows, storeID); ok {
		return &row, nil
	}
	if loadShared && storeID != uuid.Nil {
		if row, ok := findForStore(rows, uuid.Nil); ok {
			return &row, nil
		}
	}
	return nil, shared.ErrNotFound
}

func findForStore(rows []CachedSetting, storeID uuid.UUID) (CachedSetting, bool) {
	for _, row := range rows {
		if row.TenantID == storeID {
			return row, true
		}
	}
	return CachedSetting{}, false
}

// GetSettingByKey returns a typed setting value, or defaultValue when the key
// is missing or cannot be converted.
func GetSettingByKey[T any](ctx context.Context, s *SettingService, key string, defaultValue T, storeID uuid.UUID, loadShared bool) (T, error) {
	row, err := s.GetSetting(ctx, key, storeID, loadShared)
	if errors.Is(err, shared.ErrNotFound) {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, err
	}
	var out T
	if err := decodeValue(row.Value, &out); err != nil {
		s.logger.Warn("Setting value could not be converted",
			zap.String("key", row.Name),
			zap.String("type", reflect.TypeOf(out).String()),
			zap.Error(err),
		)
		return defaultValue, nil
	}
	return out, nil
}

// SetSetting inserts or updates the row of a key in a store
func (s *SettingService) SetSetting(ctx context.Context, key string, value any, storeID uuid.UUID) error {
	if err := s.setSetting(ctx, key, value, storeID); err != nil {
		return err
	}
	return s.changed(ctx, uuid.Nil, storeID, shared.EntityUpdated)
}

func (s *SettingService) setSetting(ctx context.Context, key string, value any, storeID uuid.UUID) error {
	str, err := formatValue(value)
	if err != nil {
		return err
	}
	existing, err := s.repo.FindByKey(ctx, storeID, key)
	switch {
	case err == nil:
		if existing.Value == str {
			return nil
		}
		existing.Value = str
		existing.Touch()
		return s.repo.Save(ctx, existing)
	case errors.Is(err, shared.ErrNotFound):
		row, err := configuration.NewSetting(storeID, key, str)
		if err != nil {
			return err
		}
		return s.repo.Save(ctx, row)
	default:
		return err
	}
}

// DeleteSetting removes one row by id
func (s *SettingService) DeleteSetting(ctx context.Context, id uuid.UUID) error {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.changed(ctx, row.ID, row.TenantID, shared.EntityDeleted)
}

// DeleteSettings removes every row of a typed settings struct in a store
func (s *SettingService) DeleteSettings(ctx context.Context, settings any, storeID uuid.UUID) error {
	n, err := s.repo.DeleteByPrefix(ctx, storeID, configuration.TypeKeyPrefix(settings))
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.changed(ctx, uuid.Nil, storeID, shared.EntityDeleted)
}

// SettingExists reports whether a field of a typed settings struct has a row
// for exactly this store.
func (s *SettingService) SettingExists(ctx context.Context, settings any, field string, storeID uuid.UUID) (bool, error) {
	_, err := s.GetSetting(ctx, configuration.SettingKey(settings, field), storeID, false)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// LoadSettings fills settings, a pointer to a struct, from the rows of its
// fields. Store rows override global ones; fields without rows keep their
// current value, so callers pass a struct holding the defaults.
func (s *SettingService) LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error {
	t, err := structType(settings)
	if err != nil {
		return err
	}
	all, err := s.GetAllSettings(ctx)
	if err != nil {
		return err
	}

	values := make(map[string]any)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		rows := all[configuration.SettingKey(settings, field.Name)]
		row, ok := findForStore(rows, storeID)
		if !ok && storeID != uuid.Nil {
			row, ok = findForStore(rows, uuid.Nil)
		}
		if ok {
			values[field.Name] = row.Value
		}
	}
	if len(values) == 0 {
		return nil
	}
	return decodeValue(values, settings)
}

// SaveSettings writes every exported field of settings as a store row
func (s *SettingService) SaveSettings(ctx context.Context, storeID uuid.UUID, settings any) error {
	t, err := structType(settings)
	if err != nil {
		return err
	}
	v := reflect.Indirect(reflect.ValueOf(settings))
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key := configuration.SettingKey(settings, field.Name)
		if err := s.setSetting(ctx, key, v.Field(i).Interface(), storeID); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return s.changed(ctx, uuid.Nil, storeID, shared.EntityUpdated)
}

// SaveSettingOverridablePerStore writes one field for a store when it is
// overridden there, and otherwise removes the store row so the global value
// applies again.
func (s *SettingService) SaveSettingOverridablePerStore(ctx context.Context, settings any, field string, overrideForStore bool, storeID uuid.UUID) error {
	key := configuration.SettingKey(settings, field)
	if overrideForStore || storeID == uuid.Nil {
		v := reflect.Indirect(reflect.ValueOf(settings))
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("%w: settings must be a struct", shared.ErrInvalidInput)
		}
		fv := v.FieldByName(field)
		if !fv.IsValid() {
			return fmt.Errorf("%w: unknown settings field %s", shared.ErrInvalidInput, field)
		}
		return s.SetSetting(ctx, key, fv.Interface(), storeID)
	}

	row, err := s.repo.FindByKey(ctx, storeID, key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return err
	}
	return s.changed(ctx, row.ID, storeID, shared.EntityDeleted)
}

// ClearCache drops every cached setting
func (s *SettingService) ClearCache(ctx context.Context) error {
	return s.cache.RemoveByPrefix(ctx, cache.PrefixSettings)
}

// changed publishes a setting mutation; without a bus the cache is cleared here
func (s *SettingService) changed(ctx context.Context, id, storeID uuid.UUID, action shared.EntityAction) error {
	if s.publisher == nil {
		return s.ClearCache(ctx)
	}
	event := configuration.NewSettingEvent(action, id, storeID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish setting event", zap.Error(err))
		return s.ClearCache(ctx)
	}
	return nil
}

func structType(settings any) (reflect.Type, error) {
	t := reflect.TypeOf(settings)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: settings must be a pointer to a struct", shared.ErrInvalidInput)
	}
	return t.Elem(), nil
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
)

// decodeValue converts stored strings into typed values
func decodeValue(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDecimalHook,
			stringToUUIDHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func stringToDecimalHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != decimalType {
		return data, nil
	}
	str := strings.TrimSpace(data.(string))
	if str == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(str)
}

func stringToUUIDHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != uuidType {
		return data, nil
	}
	str := strings.TrimSpace(data.(string))
	if str == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(str)
}

// formatValue renders a typed value in the form decodeValue reads back
func formatValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []string:
		return strings.Join(v, ","), nil
	case decimal.Decimal:
		return v.String(), nil
	case uuid.UUID:
		return v.String(), nil
	case time.Duration:
		return v.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return fmt.Sprint(value), nil
	case reflect.Slice:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, ","), nil
	}
	return "", fmt.Errorf("%w: unsupported setting type %s", shared.ErrInvalidInput, rv.Type())
}
