package cache

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Broadcaster publishes L1 invalidations to peer nodes
type Broadcaster interface {
	Publish(ctx context.Context, msg InvalidationMessage) error
	Subscribe(ctx context.Context, callback func(msg InvalidationMessage)) error
	Close() error
}

// TieredManager keeps a short-lived local L1 in front of a shared L2.
// Writes go to both tiers; removals are broadcast so that other nodes drop
// their L1 copies.
type TieredManager struct {
	l1          Manager
	l2          Manager
	broadcaster Broadcaster
	l1TTL       time.Duration
	logger      *zap.Logger

	l1Hits int64
	l2Hits int64
	misses int64
}

// TieredManagerOption configures a TieredManager
type TieredManagerOption func(*TieredManager)

// WithL1TTL caps the lifetime of L1 entries
func WithL1TTL(ttl time.Duration) TieredManagerOption {
	return func(t *TieredManager) {
		if ttl > 0 {
			t.l1TTL = ttl
		}
	}
}

// WithTieredLogger sets the logger
func WithTieredLogger(logger *zap.Logger) TieredManagerOption {
	return func(t *TieredManager) {
		t.logger = logger
	}
}

// NewTieredManager combines two managers; broadcaster may be nil on a single node
func NewTieredManager(l1, l2 Manager, broadcaster Broadcaster, opts ...TieredManagerOption) *TieredManager {
	t := &TieredManager{
		l1:          l1,
		l2:          l2,
		broadcaster: broadcaster,
		l1TTL:       time.Minute,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartInvalidationSubscription applies peer invalidations to L1; it blocks
func (t *TieredManager) StartInvalidationSubscription(ctx context.Context) error {
	if t.broadcaster == nil {
		return nil
	}
	return t.broadcaster.Subscribe(ctx, t.handleInvalidation)
}

func (t *TieredManager) handleInvalidation(msg InvalidationMessage) {
	ctx := context.Background()
	var err error
	switch msg.Action {
	case InvalidateKey:
		err = t.l1.Remove(ctx, msg.Key)
	case InvalidatePrefix:
		err = t.l1.RemoveByPrefix(ctx, msg.Key)
	case InvalidateAll:
		err = t.l1.Clear(ctx)
	default:
		t.logger.Warn("Unknown cache invalidation action", zap.String("action", string(msg.Action)))
		return
	}
	if err != nil {
		t.logger.Error("Failed to apply cache invalidation",
			zap.String("action", string(msg.Action)),
			zap.String("key", msg.Key),
			zap.Error(err))
	}
}

// Get reads L1, then L2, back-filling L1 on an L2 hit
func (t *TieredManager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := t.l1.Get(ctx, key); err == nil && ok {
		atomic.AddInt64(&t.l1Hits, 1)
		return data, true, nil
	}

	data, ok, err := t.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		atomic.AddInt64(&t.misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&t.l2Hits, 1)
	_ = t.l1.Set(ctx, key, data, t.l1TTL)
	return data, true, nil
}

// Set writes both tiers
func (t *TieredManager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := t.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return t.l1.Set(ctx, key, value, l1TTL)
}

// IsSet checks L1, then L2
func (t *TieredManager) IsSet(ctx context.Context, key string) (bool, error) {
	if ok, err := t.l1.IsSet(ctx, key); err == nil && ok {
		return true, nil
	}
	return t.l2.IsSet(ctx, key)
}

// Remove deletes from both tiers and notifies peers
func (t *TieredManager) Remove(ctx context.Context, key string) error {
	_ = t.l1.Remove(ctx, key)
	if err := t.l2.Remove(ctx, key); err != nil {
		return err
	}
	t.broadcast(ctx, InvalidationMessage{Action: InvalidateKey, Key: key})
	return nil
}

// RemoveByPrefix deletes from both tiers and notifies peers
func (t *TieredManager) RemoveByPrefix(ctx context.Context, prefix string) error {
	_ = t.l1.RemoveByPrefix(ctx, prefix)
	if err := t.l2.RemoveByPrefix(ctx, prefix); err != nil {
		return err
	}
	t.broadcast(ctx, InvalidationMessage{Action: InvalidatePrefix, Key: prefix})
	return nil
}

// Clear empties both tiers and notifies peers
func (t *TieredManager) Clear(ctx context.Context) error {
	_ = t.l1.Clear(ctx)
	if err := t.l2.Clear(ctx); err != nil {
		return err
	}
	t.broadcast(ctx, InvalidationMessage{Action: InvalidateAll})
	return nil
}

func (t *TieredManager) broadcast(ctx context.Context, msg InvalidationMessage) {
	if t.broadcaster == nil {
		return
	}
	if err := t.broadcaster.Publish(ctx, msg); err != nil {
		t.logger.Warn("Failed to broadcast cache invalidation",
			zap.String("action", string(msg.Action)),
			zap.Error(err))
	}
}

// GetStats returns L1 hits, L2 hits and misses
func (t *TieredManager) GetStats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&t.l1Hits), atomic.LoadInt64(&t.l2Hits), atomic.LoadInt64(&t.misses)
}

// Close closes the broadcaster and both tiers
func (t *TieredManager) Close() error {
	if t.broadcaster != nil {
		_ = t.broadcaster.Close()
	}
	_ = t.l1.Close()
	return t.l2.Close()
}

var _ Manager = (*TieredManager)(nil)
var _ Broadcaster = (*RedisInvalidator)(nil)
