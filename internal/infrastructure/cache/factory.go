package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
)

// Factory builds the configured cache manager
type Factory struct {
	cacheConfig config.CacheConfig
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the managers it builds
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory
func NewFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cacheConfig: cacheCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) newMemory() *MemoryManager {
	return NewMemoryManager(WithMemoryTTL(f.cacheConfig.DefaultTTL), WithMemoryLogger(f.logger))
}

// Create builds the manager named by cache.provider. When Redis is required
// but unreachable it falls back to memory if allowed. For the tiered
// provider the peer invalidation subscription is started on ctx.
func (f *Factory) Create(ctx context.Context) (Manager, error) {
	switch f.cacheConfig.Provider {
	case "", "memory":
		f.logger.Info("Using in-memory cache")
		return f.newMemory(), nil
	case "redis", "tiered":
	default:
		return nil, fmt.Errorf("cache.provider must be one of memory, redis, tiered; got %q", f.cacheConfig.Provider)
	}

	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		if !f.cacheConfig.AllowMemoryFallback {
			return nil, fmt.Errorf("redis required for cache provider %q but unavailable: %w", f.cacheConfig.Provider, err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory cache. "+
			"Cache invalidation will not reach other instances.",
			zap.Error(err))
		return f.newMemory(), nil
	}

	l2 := NewRedisManagerWithClient(client,
		WithRedisNamespace(f.cacheConfig.Namespace),
		WithRedisTTL(f.cacheConfig.DefaultTTL),
		WithRedisLogger(f.logger))
	l2.ownsClient = true

	if f.cacheConfig.Provider == "redis" {
		f.logger.Info("Using Redis cache")
		return l2, nil
	}

	invalidator := NewRedisInvalidator(client,
		WithInvalidatorChannel(f.cacheConfig.PubSubChannel),
		WithInvalidatorLogger(f.logger))
	tiered := NewTieredManager(f.newMemory(), l2, invalidator,
		WithL1TTL(f.cacheConfig.L1TTL),
		WithTieredLogger(f.logger))

	go func() {
		if err := tiered.StartInvalidationSubscription(ctx); err != nil && ctx.Err() == nil {
			f.logger.Error("Cache invalidation subscription ended", zap.Error(err))
		}
	}()

	f.logger.Info("Using tiered cache", zap.String("channel", f.cacheConfig.PubSubChannel))
	return tiered, nil
}
