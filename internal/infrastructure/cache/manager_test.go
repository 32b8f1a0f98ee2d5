package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Create(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	key := ProductPicturesKey.Create(id)
	assert.Equal(t, "sf.product.pictures.6ba7b810-9dad-11d1-80b4-00c04fd430c8", key.Key)
	assert.Equal(t, []string{"sf.product.pictures.6ba7b810-9dad-11d1-80b4-00c04fd430c8", PrefixProducts}, key.Prefixes)

	key = CategoriesAllKey.Create(id, true)
	assert.Equal(t, "sf.category.all-6ba7b810-9dad-11d1-80b4-00c04fd430c8-true", key.Key)

	key = PollsKey.Create(id, nil, false, "")
	assert.Equal(t, "sf.poll.all-6ba7b810-9dad-11d1-80b4-00c04fd430c8-null-false-", key.Key)

	// the template itself is left untouched
	assert.Equal(t, "sf.category.all-{0}-{1}", CategoriesAllKey.Key)
}

func TestFormatKeyArg(t *testing.T) {
	assert.Equal(t, "null", FormatKeyArg(nil))
	assert.Equal(t, "abc", FormatKeyArg("ABC"))
	assert.Equal(t, "a,b", FormatKeyArg([]string{"A", "b"}))
	assert.Equal(t, "null", FormatKeyArg([]string{}))
	assert.Equal(t, "42", FormatKeyArg(42))
}

func TestGet_ReadThrough(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()
	defer m.Close()

	calls := 0
	acquire := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	key := NewKey("sf.test.list", "sf.test.")
	first, err := Get(ctx, m, key, acquire)
	require.NoError(t, err)
	second, err := Get(ctx, m, key, acquire)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, m.RemoveByPrefix(ctx, "sf.test."))
	_, err = Get(ctx, m, key, acquire)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGet_AcquireErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()
	defer m.Close()

	boom := errors.New("db down")
	_, err := Get(ctx, m, NewKey("sf.test.err"), func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	ok, err := m.IsSet(ctx, "sf.test.err")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager(WithMemoryTTL(time.Hour))
	defer m.Close()

	require.NoError(t, m.Set(ctx, "sf.product.id-1", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "sf.product.id-2", []byte("2"), 0))
	require.NoError(t, m.Set(ctx, "sf.category.id-1", []byte("c"), 0))

	data, ok, err := m.Get(ctx, "sf.product.id-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), data)

	t.Run("prefix removal leaves other groups", func(t *testing.T) {
		require.NoError(t, m.RemoveByPrefix(ctx, PrefixProducts))
		_, ok, _ := m.Get(ctx, "sf.product.id-2")
		assert.False(t, ok)
		_, ok, _ = m.Get(ctx, "sf.category.id-1")
		assert.True(t, ok)
	})

	t.Run("expired entries are not served", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "sf.short", []byte("x"), time.Millisecond))
		time.Sleep(5 * time.Millisecond)
		_, ok, _ := m.Get(ctx, "sf.short")
		assert.False(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, m.Clear(ctx))
		assert.Equal(t, 0, m.Count())
	})

	hits, misses := m.GetStats()
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}

func TestMemoryManager_CloseTwice(t *testing.T) {
	m := NewMemoryManager()
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
