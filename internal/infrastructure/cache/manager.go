package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is used when a key does not carry its own lifetime
const DefaultTTL = 60 * time.Minute

// Manager is the static cache shared by all services.
// Values are opaque bytes; use Get for typed read-through access.
type Manager interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value; a zero ttl uses the manager default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// IsSet reports whether a live value exists
	IsSet(ctx context.Context, key string) (bool, error)
	// Remove deletes one key
	Remove(ctx context.Context, key string) error
	// RemoveByPrefix deletes every key starting with prefix
	RemoveByPrefix(ctx context.Context, prefix string) error
	// Clear deletes everything
	Clear(ctx context.Context) error
	// Close releases background resources
	Close() error
}

// Key describes a cache entry: a key template with {0}, {1} placeholders,
// the prefixes it is invalidated by and its lifetime.
type Key struct {
	Key      string
	Prefixes []string
	TTL      time.Duration
}

// NewKey creates a key template
func NewKey(key string, prefixes ...string) Key {
	return Key{Key: key, Prefixes: prefixes}
}

// WithTTL returns a copy with a custom lifetime
func (k Key) WithTTL(ttl time.Duration) Key {
	k.TTL = ttl
	return k
}

// Create fills the placeholders; arguments are rendered with FormatKeyArg
func (k Key) Create(args ...any) Key {
	out := k
	out.Key = fillPlaceholders(k.Key, args)
	if len(k.Prefixes) > 0 {
		out.Prefixes = make([]string, len(k.Prefixes))
		for i, p := range k.Prefixes {
			out.Prefixes[i] = fillPlaceholders(p, args)
		}
	}
	return out
}

func fillPlaceholders(template string, args []any) string {
	for i, arg := range args {
		template = strings.ReplaceAll(template, fmt.Sprintf("{%d}", i), FormatKeyArg(arg))
	}
	return template
}

// FormatKeyArg renders a key argument; nil and empty slices become "null"
// and slices are joined with commas.
func FormatKeyArg(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "null"
	case string:
		return strings.ToLower(v)
	case fmt.Stringer:
		return strings.ToLower(v.String())
	case []string:
		if len(v) == 0 {
			return "null"
		}
		return strings.ToLower(strings.Join(v, ","))
	case []fmt.Stringer:
		if len(v) == 0 {
			return "null"
		}
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = s.String()
		}
		return strings.ToLower(strings.Join(parts, ","))
	default:
		return strings.ToLower(fmt.Sprint(v))
	}
}

// Get reads a typed value through the cache. On a miss acquire is called and
// its result is stored. Cache backend failures fall back to acquire.
func Get[T any](ctx context.Context, m Manager, key Key, acquire func() (T, error)) (T, error) {
	if data, ok, err := m.Get(ctx, key.Key); err == nil && ok {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		_ = m.Remove(ctx, key.Key)
	}

	value, err := acquire()
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	_ = m.Set(ctx, key.Key, data, key.TTL)
	return value, nil
}

// ErrCacheClosed is returned by operations on a closed manager
var ErrCacheClosed = errors.New("cache manager is closed")
