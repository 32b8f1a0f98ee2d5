package caching

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/plugin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// Rule lists the prefixes dropped when an entity changes.
// RefPrefixes map a ref name on the event to a prefix template whose {0}
// is filled with that ref, so a single product's entries can be targeted.
type Rule struct {
	Prefixes    []string
	RefPrefixes map[string]string
}

// DefaultRules maps entity names to the cache prefixes they feed
func DefaultRules() map[string]Rule {
	productPictures := cache.PrefixProductPictures + "{0}"
	return map[string]Rule{
		configuration.EntitySetting: {Prefixes: []string{cache.PrefixSettings}},
		store.EntityStore:           {Prefixes: []string{cache.PrefixStores, cache.PrefixPlugins}},

		catalog.EntityCategory:     {Prefixes: []string{cache.PrefixCategories, cache.PrefixProductCategories}},
		catalog.EntityManufacturer: {Prefixes: []string{cache.PrefixManufacturers, cache.PrefixProductManufacturers}},
		catalog.EntityProduct: {Prefixes: []string{
			cache.PrefixProducts, cache.PrefixProductCategories, cache.PrefixProductManufacturers,
		}},
		catalog.EntityProductCategory: {Prefixes: []string{cache.PrefixProductCategories, cache.PrefixCategories}},
		catalog.EntityProductManufacturer: {
			Prefixes: []string{cache.PrefixProductManufacturers},
		},
		catalog.EntityProductPicture: {
			RefPrefixes: map[string]string{"product_id": productPictures},
		},
		catalog.EntityPicture: {
			Prefixes:    []string{cache.PrefixPictures},
			RefPrefixes: map[string]string{"product_id": productPictures},
		},

		discount.EntityDiscount: {Prefixes: []string{cache.PrefixDiscounts}},

		directory.EntityCountry:       {Prefixes: []string{cache.PrefixCountries, cache.PrefixStateProvinces}},
		directory.EntityStateProvince: {Prefixes: []string{cache.PrefixStateProvinces}},
		directory.EntityCurrency:      {Prefixes: []string{cache.PrefixCurrencies}},

		localization.EntityLanguage:             {Prefixes: []string{cache.PrefixLanguages, cache.PrefixLocaleStringResources}},
		localization.EntityLocaleStringResource: {Prefixes: []string{cache.PrefixLocaleStringResources}},
		localization.EntityLocalizedProperty:    {Prefixes: []string{cache.PrefixLocalizedProperties}},

		content.EntityPoll:        {Prefixes: []string{cache.PrefixPolls}},
		content.EntityPollAnswer:  {Prefixes: []string{cache.PrefixPolls}},
		content.EntityNews:        {Prefixes: []string{cache.PrefixNews}},
		content.EntityNewsComment: {Prefixes: []string{cache.PrefixNews}},
		content.EntityBlog:        {Prefixes: []string{cache.PrefixBlog}},
		content.EntityBlogComment: {Prefixes: []string{cache.PrefixBlog}},

		plugin.EntityPlugin:         {Prefixes: []string{cache.PrefixPlugins}},
		customer.EntityCustomerRole: {Prefixes: []string{cache.PrefixCustomerRoles}},
	}
}

// ModelCacheEventConsumer drops cached entries when entities change
type ModelCacheEventConsumer struct {
	cache  cache.Manager
	rules  map[string]Rule
	logger *zap.Logger
}

// ConsumerOption configures the consumer
type ConsumerOption func(*ModelCacheEventConsumer)

// WithRules replaces the default rule table
func WithRules(rules map[string]Rule) ConsumerOption {
	return func(c *ModelCacheEventConsumer) {
		c.rules = rules
	}
}

// WithLogger sets the consumer logger
func WithLogger(logger *zap.Logger) ConsumerOption {
	return func(c *ModelCacheEventConsumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewModelCacheEventConsumer creates a consumer over the given cache
func NewModelCacheEventConsumer(cm cache.Manager, opts ...ConsumerOption) *ModelCacheEventConsumer {
	c := &ModelCacheEventConsumer{
		cache:  cm,
		rules:  DefaultRules(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EventTypes subscribes to every action of every entity with prefixes to drop
func (c *ModelCacheEventConsumer) EventTypes() []string {
	types := make([]string, 0, len(c.rules)*3)
	for entity, rule := range c.rules {
		if len(rule.Prefixes) == 0 && len(rule.RefPrefixes) == 0 {
			continue
		}
		for _, action := range shared.AllEntityActions() {
			types = append(types, shared.EntityEventType(entity, action))
		}
	}
	return types
}

// Handle removes every prefix the event's entity maps to.
// All prefixes are attempted; failures are joined.
func (c *ModelCacheEventConsumer) Handle(ctx context.Context, event shared.DomainEvent) error {
	entityEvent, ok := event.(*shared.EntityEvent)
	if !ok {
		return nil
	}
	prefixes := c.PrefixesFor(entityEvent)
	if len(prefixes) == 0 {
		return nil
	}

	var errs []error
	for _, prefix := range prefixes {
		if err := c.cache.RemoveByPrefix(ctx, prefix); err != nil {
			errs = append(errs, err)
		}
	}
	c.logger.Debug("cache invalidated",
		zap.String("event_type", entityEvent.EventType()),
		zap.Strings("prefixes", prefixes))
	return errors.Join(errs...)
}

// PrefixesFor resolves the prefixes an entity event invalidates
func (c *ModelCacheEventConsumer) PrefixesFor(event *shared.EntityEvent) []string {
	rule, ok := c.rules[event.Entity]
	if !ok {
		return nil
	}
	prefixes := append([]string(nil), rule.Prefixes...)
	for ref, template := range rule.RefPrefixes {
		id := event.Ref(ref)
		if id == uuid.Nil {
			continue
		}
		prefixes = append(prefixes, strings.Replace(template, "{0}", cache.FormatKeyArg(id), 1))
	}
	return prefixes
}

var _ shared.EventHandler = (*ModelCacheEventConsumer)(nil)
