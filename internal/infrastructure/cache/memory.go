package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
)

// MemoryManager implements Manager in process memory.
// It serves single-node deployments and the L1 tier of TieredManager.
type MemoryManager struct {
	entries    sync.Map // map[string]*cacheEntry
	defaultTTL time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	hits   int64
	misses int64
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryManagerOption configures a MemoryManager
type MemoryManagerOption func(*MemoryManager)

// WithMemoryTTL sets the default lifetime
func WithMemoryTTL(ttl time.Duration) MemoryManagerOption {
	return func(m *MemoryManager) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

// WithMemoryLogger sets the logger
func WithMemoryLogger(logger *zap.Logger) MemoryManagerOption {
	return func(m *MemoryManager) {
		m.logger = logger
	}
}

// NewMemoryManager creates an in-memory cache and starts its cleanup loop
func NewMemoryManager(opts ...MemoryManagerOption) *MemoryManager {
	m := &MemoryManager{
		defaultTTL: DefaultTTL,
		logger:     zap.NewNop(),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	go m.cleanupExpired()

	return m
}

// Get returns the cached value
func (m *MemoryManager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok := m.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&m.hits, 1)
			return entry.value, true, nil
		}
		m.entries.Delete(key)
	}
	atomic.AddInt64(&m.misses, 1)
	return nil, false, nil
}

// Set stores a value
func (m *MemoryManager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.entries.Store(key, &cacheEntry{value: value, expiresAt: time.Now().Add(ttl)})
	return nil
}

// IsSet reports whether a live value exists
func (m *MemoryManager) IsSet(ctx context.Context, key string) (bool, error) {
	value, ok := m.entries.Load(key)
	if !ok {
		return false, nil
	}
	return !value.(*cacheEntry).isExpired(), nil
}

// Remove deletes one key
func (m *MemoryManager) Remove(ctx context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

// RemoveByPrefix deletes every key starting with prefix
func (m *MemoryManager) RemoveByPrefix(ctx context.Context, prefix string) error {
	removed := 0
	m.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			m.entries.Delete(key)
			removed++
		}
		return true
	})
	m.logger.Debug("Removed cache entries by prefix",
		zap.String("prefix", prefix),
		zap.Int("removed", removed))
	return nil
}

// Clear deletes everything
func (m *MemoryManager) Clear(ctx context.Context) error {
	m.entries.Range(func(key, _ any) bool {
		m.entries.Delete(key)
		return true
	})
	m.logger.Info("Cleared in-memory cache")
	return nil
}

// Close stops the cleanup loop
func (m *MemoryManager) Close() error {
	if atomic.CompareAndSwapInt32(&m.stopped, 0, 1) {
		close(m.stopCh)
	}
	return nil
}

// GetStats returns hit and miss counters
func (m *MemoryManager) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&m.hits), atomic.LoadInt64(&m.misses)
}

// Count returns the number of stored entries, expired ones included
func (m *MemoryManager) Count() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *MemoryManager) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *MemoryManager) removeExpired() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in cache cleanup", zap.Any("panic", r))
		}
	}()

	m.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			m.entries.Delete(key)
		}
		return true
	})
}

var _ Manager = (*MemoryManager)(nil)
