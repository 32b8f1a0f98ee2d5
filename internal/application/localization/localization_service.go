package localization

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// LocalizationService resolves UI strings and localized entity values
type LocalizationService struct {
	languages  localization.LanguageRepository
	resources  localization.ResourceRepository
	properties localization.LocalizedPropertyRepository
	cache      cache.Manager
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewLocalizationService creates a new LocalizationService
func NewLocalizationService(
	languages localization.LanguageRepository,
	resources localization.ResourceRepository,
	properties localization.LocalizedPropertyRepository,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LocalizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalizationService{
		languages:  languages,
		resources:  resources,
		properties: properties,
		cache:      cacheManager,
		publisher:  publisher,
		logger:     logger,
	}
}

// GetAllLanguages returns languages ordered by display order, cached per showHidden
func (s *LocalizationService) GetAllLanguages(ctx context.Context, showHidden bool) ([]localization.Language, error) {
	return cache.Get(ctx, s.cache, cache.LanguagesAllKey.Create(showHidden), func() ([]localization.Language, error) {
		langs, err := s.languages.FindAll(ctx, showHidden)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(langs, func(i, j int) bool { return langs[i].DisplayOrder < langs[j].DisplayOrder })
		return langs, nil
	})
}

// GetLanguageByID returns a language
func (s *LocalizationService) GetLanguageByID(ctx context.Context, id uuid.UUID) (*localization.Language, error) {
	return s.languages.FindByID(ctx, id)
}

// CreateLanguage adds a language
func (s *LocalizationService) CreateLanguage(ctx context.Context, req LanguageRequest) (*localization.Language, error) {
	lang, err := localization.NewLanguage(req.Name, req.LanguageCulture, req.UniqueSeoCode)
	if err != nil {
		return nil, err
	}
	lang.FlagImageFileName = req.FlagImageFileName
	lang.Update(req.Name, req.Rtl, req.Published, req.DisplayOrder)
	if err := s.languages.Save(ctx, lang); err != nil {
		return nil, err
	}
	s.changed(ctx, lang, cache.PrefixLanguages)
	return lang, nil
}

// UpdateLanguage changes the display properties of a language
func (s *LocalizationService) UpdateLanguage(ctx context.Context, id uuid.UUID, req LanguageRequest) (*localization.Language, error) {
	lang, err := s.languages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lang.FlagImageFileName = req.FlagImageFileName
	lang.Update(req.Name, req.Rtl, req.Published, req.DisplayOrder)
	if err := s.languages.Save(ctx, lang); err != nil {
		return nil, err
	}
	s.changed(ctx, lang, cache.PrefixLanguages)
	return lang, nil
}

// DeleteLanguage removes a language. The last published language cannot
// be removed.
func (s *LocalizationService) DeleteLanguage(ctx context.Context, id uuid.UUID) error {
	lang, err := s.languages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if lang.Published {
		published, err := s.languages.FindAll(ctx, false)
		if err != nil {
			return err
		}
		if len(published) <= 1 {
			return shared.NewDomainError("LAST_LANGUAGE", "At least one published language is required")
		}
	}
	if err := s.languages.Delete(ctx, id); err != nil {
		return err
	}
	lang.Delete()
	s.changed(ctx, lang, cache.PrefixLanguages, cache.PrefixLocaleStringResources)
	return nil
}

// GetAllResourceValues returns the cached name to value map of a language
func (s *LocalizationService) GetAllResourceValues(ctx context.Context, languageID uuid.UUID) (map[string]string, error) {
	return cache.Get(ctx, s.cache, cache.LocaleStringResourcesAllKey.Create(languageID), func() (map[string]string, error) {
		resources, err := s.resources.FindAllByLanguage(ctx, languageID)
		if err != nil {
			return nil, err
		}
		values := make(map[string]string, len(resources))
		for _, r := range resources {
			values[r.ResourceName] = r.ResourceValue
		}
		return values, nil
	})
}

// GetResource looks up a UI string. When the key is missing it returns
// defaultValue if set, otherwise the key itself, or "" when
// returnEmptyIfNotFound is set. Lookup failures are logged and treated as
// missing.
func (s *LocalizationService) GetResource(ctx context.Context, key string, languageID uuid.UUID, defaultValue string, returnEmptyIfNotFound bool) string {
	name := localization.NormalizeResourceName(key)
	if name != "" && languageID != uuid.Nil {
		values, err := s.GetAllResourceValues(ctx, languageID)
		if err != nil {
			s.logger.Warn("Failed to load locale resources",
				zap.String("language_id", languageID.String()), zap.Error(err))
		} else if v, ok := values[name]; ok {
			return v
		}
	}
	if defaultValue != "" {
		return defaultValue
	}
	if returnEmptyIfNotFound {
		return ""
	}
	return key
}

// SetResource creates or updates a single resource
func (s *LocalizationService) SetResource(ctx context.Context, languageID uuid.UUID, name, value string) (*localization.LocaleStringResource, error) {
	res, err := s.resources.FindByName(ctx, languageID, name)
	switch {
	case err == nil:
		res.ResourceValue = value
	case errors.Is(err, shared.ErrNotFound):
		if res, err = localization.NewLocaleStringResource(languageID, name, value); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if err := s.resources.Save(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, shared.NewEntityEvent(localization.EntityLocaleStringResource, shared.EntityUpdated, res.ID, uuid.Nil),
		cache.PrefixLocaleStringResources)
	return res, nil
}

// DeleteResource removes a resource
func (s *LocalizationService) DeleteResource(ctx context.Context, id uuid.UUID) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, shared.NewEntityEvent(localization.EntityLocaleStringResource, shared.EntityDeleted, id, uuid.Nil),
		cache.PrefixLocaleStringResources)
	return nil
}

// GetLocalized returns the translation of an entity field, falling back to
// the entity's own value when no translation is stored.
func (s *LocalizationService) GetLocalized(ctx context.Context, entityID uuid.UUID, keyGroup, key string, languageID uuid.UUID, fallback string) string {
	if languageID == uuid.Nil || entityID == uuid.Nil {
		return fallback
	}
	cacheKey := cache.LocalizedPropertyKey.Create(languageID, entityID, keyGroup, key)
	value, err := cache.Get(ctx, s.cache, cacheKey, func() (string, error) {
		prop, err := s.properties.Find(ctx, entityID, languageID, keyGroup, key)
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return prop.LocaleValue, nil
	})
	if err != nil {
		s.logger.Warn("Failed to load localized value",
			zap.String("key_group", keyGroup), zap.String("key", key), zap.Error(err))
		return fallback
	}
	if value == "" {
		return fallback
	}
	return value
}

// SaveLocalizedValue stores a translation; an empty value deletes it
func (s *LocalizationService) SaveLocalizedValue(ctx context.Context, entityID uuid.UUID, keyGroup, key string, languageID uuid.UUID, value string) error {
	if keyGroup == "" || key == "" {
		return shared.NewDomainError("INVALID_LOCALE_KEY", "Locale key group and key are required")
	}
	prop, err := s.properties.Find(ctx, entityID, languageID, keyGroup, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	switch {
	case prop == nil && value == "":
		return nil
	case prop != nil && value == "":
		if err := s.properties.Delete(ctx, prop.ID); err != nil {
			return err
		}
	case prop == nil:
		prop = &localization.LocalizedProperty{
			BaseEntity:     shared.NewBaseEntity(),
			EntityID:       entityID,
			LanguageID:     languageID,
			LocaleKeyGroup: keyGroup,
			LocaleKey:      key,
		}
		fallthrough
	default:
		prop.LocaleValue = value
		if err := s.properties.Save(ctx, prop); err != nil {
			return err
		}
	}
	s.publish(ctx, shared.NewEntityEvent(localization.EntityLocalizedProperty, shared.EntityUpdated, prop.ID, uuid.Nil),
		cache.PrefixLocalizedProperties)
	return nil
}

// GetLocalizedValues lists every translation stored for an entity group
func (s *LocalizationService) GetLocalizedValues(ctx context.Context, entityID uuid.UUID, keyGroup string) ([]localization.LocalizedProperty, error) {
	return s.properties.FindByEntity(ctx, entityID, keyGroup)
}

func (s *LocalizationService) changed(ctx context.Context, lang *localization.Language, prefixes ...string) {
	err := shared.PublishPending(ctx, s.publisher, lang)
	if err != nil {
		s.logger.Warn("Failed to publish language events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		s.removePrefixes(ctx, prefixes...)
	}
}

func (s *LocalizationService) publish(ctx context.Context, event shared.DomainEvent, prefixes ...string) {
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to publish localization event",
			zap.String("event_type", event.EventType()), zap.Error(err))
	}
	s.removePrefixes(ctx, prefixes...)
}

func (s *LocalizationService) removePrefixes(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		if err := s.cache.RemoveByPrefix(ctx, p); err != nil {
			s.logger.Warn("Failed to clear cache prefix", zap.String("prefix", p), zap.Error(err))
		}
	}
}

func languageNotFound(id uuid.UUID) error {
	return fmt.Errorf("%w: language %s", shared.ErrNotFound, id)
}
