package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire, on logout or password change
type TokenBlacklist interface {
	// AddToBlacklist revokes one token id; ttl is its remaining lifetime
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// RevokeCustomerTokens rejects every token issued to the customer until now
	RevokeCustomerTokens(ctx context.Context, customerID string, ttl time.Duration) error
	IsCustomerTokenRevoked(ctx context.Context, customerID string, tokenIssuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist keeps revocations in Redis so every instance sees them
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenBlacklist creates a blacklist on an existing Redis client
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: "sf:token:revoked:",
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) customerKey(customerID string) string {
	return b.keyPrefix + "customer:" + customerID
}

// AddToBlacklist stores the token id until it would have expired anyway
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks the token id
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// RevokeCustomerTokens stores the revocation time in unix seconds
func (b *RedisTokenBlacklist) RevokeCustomerTokens(ctx context.Context, customerID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.customerKey(customerID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke customer tokens: %w", err)
	}
	return nil
}

// IsCustomerTokenRevoked reports whether the token predates the revocation time
func (b *RedisTokenBlacklist) IsCustomerTokenRevoked(ctx context.Context, customerID string, tokenIssuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.customerKey(customerID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check customer token revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation time: %w", err)
	}
	return tokenIssuedAt.Unix() <= revokedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory.
// It is not shared between instances.
type InMemoryTokenBlacklist struct {
	mu          sync.Mutex
	jtis        map[string]time.Time // jti -> expiry
	revocations map[string]time.Time // customer id -> revocation time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtis:        make(map[string]time.Time),
		revocations: make(map[string]time.Time),
	}
}

// AddToBlacklist stores the token id with its expiry
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = time.Now().Add(ttl)
	return nil
}

// IsBlacklisted checks the token id and drops expired entries
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.jtis[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.jtis, jti)
		return false, nil
	}
	return true, nil
}

// RevokeCustomerTokens stores the current time for the customer
func (b *InMemoryTokenBlacklist) RevokeCustomerTokens(_ context.Context, customerID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revocations[customerID] = time.Now()
	return nil
}

// IsCustomerTokenRevoked compares against the revocation time
func (b *InMemoryTokenBlacklist) IsCustomerTokenRevoked(_ context.Context, customerID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	revokedAt, ok := b.revocations[customerID]
	if !ok {
		return false, nil
	}
	return !tokenIssuedAt.After(revokedAt), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
