package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultCloseTimeout  = 5 * time.Second
	defaultPubSubChannel = "storefront:cache:invalidate"
)

// InvalidationAction is what a peer node should drop from its L1 cache
type InvalidationAction string

const (
	InvalidateKey    InvalidationAction = "remove"
	InvalidatePrefix InvalidationAction = "remove_prefix"
	InvalidateAll    InvalidationAction = "clear"
)

// InvalidationMessage is broadcast between nodes when cache entries change
type InvalidationMessage struct {
	Action    InvalidationAction `json:"action"`
	Key       string             `json:"key,omitempty"`
	Origin    string             `json:"origin"`
	Timestamp int64              `json:"timestamp"`
}

// RedisInvalidator broadcasts L1 invalidations over Redis Pub/Sub
type RedisInvalidator struct {
	client    *redis.Client
	channel   string
	origin    string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisInvalidatorOption configures a RedisInvalidator
type RedisInvalidatorOption func(*RedisInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		if channel != "" {
			i.channel = channel
		}
	}
}

// WithInvalidatorLogger sets the logger
func WithInvalidatorLogger(logger *zap.Logger) RedisInvalidatorOption {
	return func(i *RedisInvalidator) {
		i.logger = logger
	}
}

// NewRedisInvalidator creates an invalidator on a shared client.
// Each instance gets a random origin id so it can ignore its own messages.
func NewRedisInvalidator(client *redis.Client, opts ...RedisInvalidatorOption) *RedisInvalidator {
	i := &RedisInvalidator{
		client:  client,
		channel: defaultPubSubChannel,
		origin:  uuid.NewString(),
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Origin returns the id stamped on messages from this node
func (i *RedisInvalidator) Origin() string {
	return i.origin
}

// Publish sends an invalidation to all nodes
func (i *RedisInvalidator) Publish(ctx context.Context, msg InvalidationMessage) error {
	msg.Origin = i.origin
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish cache invalidation",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Subscribe blocks and invokes callback for every message from other nodes
func (i *RedisInvalidator) Subscribe(ctx context.Context, callback func(msg InvalidationMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	subCtx, cancel := context.WithCancel(ctx)
	i.cancelFn = cancel
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		i.markDone()
	}()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to cache invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Cache invalidation subscription stopped")
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Cache invalidation channel closed")
				return nil
			}

			var m InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				i.logger.Error("Failed to unmarshal cache invalidation",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}
			if m.Origin == i.origin {
				continue
			}
			i.dispatch(callback, m)
		}
	}
}

func (i *RedisInvalidator) dispatch(callback func(InvalidationMessage), m InvalidationMessage) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Panic in cache invalidation callback", zap.Any("panic", r))
		}
	}()
	callback(m)
}

func (i *RedisInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops the subscription and waits for it to end
func (i *RedisInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}
	return nil
}
