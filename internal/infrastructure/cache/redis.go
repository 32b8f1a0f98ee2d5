package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultScanBatchSize = 100
	defaultNamespace     = "storefront:"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisManager implements Manager on Redis. Keys are stored under a
// namespace so that Clear never touches foreign data.
type RedisManager struct {
	client     *redis.Client
	ownsClient bool
	namespace  string
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisManagerOption configures a RedisManager
type RedisManagerOption func(*RedisManager)

// WithRedisNamespace sets the key namespace
func WithRedisNamespace(namespace string) RedisManagerOption {
	return func(m *RedisManager) {
		m.namespace = namespace
	}
}

// WithRedisTTL sets the default lifetime
func WithRedisTTL(ttl time.Duration) RedisManagerOption {
	return func(m *RedisManager) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

// WithRedisLogger sets the logger
func WithRedisLogger(logger *zap.Logger) RedisManagerOption {
	return func(m *RedisManager) {
		m.logger = logger
	}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisManager connects to Redis and owns the client
func NewRedisManager(cfg RedisConfig, opts ...RedisManagerOption) (*RedisManager, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	m := NewRedisManagerWithClient(client, opts...)
	m.ownsClient = true
	return m, nil
}

// NewRedisManagerWithClient wraps an existing client; the caller keeps ownership
func NewRedisManagerWithClient(client *redis.Client, opts ...RedisManagerOption) *RedisManager {
	m := &RedisManager{
		client:     client,
		namespace:  defaultNamespace,
		defaultTTL: DefaultTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RedisManager) key(key string) string {
	return m.namespace + key
}

// Get returns the cached value
func (m *RedisManager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := m.client.Get(ctx, m.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		m.logger.Error("Failed to get value from cache",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}
	return data, true, nil
}

// Set stores a value
func (m *RedisManager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	if err := m.client.Set(ctx, m.key(key), value, ttl).Err(); err != nil {
		m.logger.Error("Failed to set value in cache",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// IsSet reports whether the key exists
func (m *RedisManager) IsSet(ctx context.Context, key string) (bool, error) {
	n, err := m.client.Exists(ctx, m.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key: %w", err)
	}
	return n > 0, nil
}

// Remove deletes one key
func (m *RedisManager) Remove(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, m.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// RemoveByPrefix deletes matching keys with SCAN so Redis is never blocked by KEYS
func (m *RedisManager) RemoveByPrefix(ctx context.Context, prefix string) error {
	deleted, err := m.deleteMatching(ctx, m.key(prefix)+"*")
	if err != nil {
		return err
	}
	m.logger.Debug("Removed cache entries by prefix",
		zap.String("prefix", prefix),
		zap.Int64("deleted_count", deleted))
	return nil
}

// Clear deletes every key in the namespace
func (m *RedisManager) Clear(ctx context.Context) error {
	deleted, err := m.deleteMatching(ctx, m.namespace+"*")
	if err != nil {
		return err
	}
	m.logger.Info("Cleared Redis cache", zap.Int64("deleted_count", deleted))
	return nil
}

func (m *RedisManager) deleteMatching(ctx context.Context, pattern string) (int64, error) {
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = m.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			m.logger.Error("Failed to scan cache keys", zap.String("pattern", pattern), zap.Error(err))
			return deletedCount, fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := m.client.Del(ctx, keys...).Result()
			if err != nil {
				m.logger.Error("Failed to delete cache keys", zap.Error(err))
				return deletedCount, fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}
	return deletedCount, nil
}

// Close closes the client when the manager owns it
func (m *RedisManager) Close() error {
	if m.ownsClient {
		return m.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client
func (m *RedisManager) GetClient() *redis.Client {
	return m.client
}

var _ Manager = (*RedisManager)(nil)
