package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBroadcaster captures published invalidations
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []InvalidationMessage
}

func (b *recordingBroadcaster) Publish(ctx context.Context, msg InvalidationMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
	return nil
}

func (b *recordingBroadcaster) Subscribe(ctx context.Context, callback func(msg InvalidationMessage)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *recordingBroadcaster) Close() error { return nil }

func newTestTiered(t *testing.T) (*TieredManager, *MemoryManager, *MemoryManager, *recordingBroadcaster) {
	t.Helper()
	l1, l2 := NewMemoryManager(), NewMemoryManager()
	b := &recordingBroadcaster{}
	tm := NewTieredManager(l1, l2, b)
	t.Cleanup(func() { _ = tm.Close() })
	return tm, l1, l2, b
}

func TestTieredManager_GetBackfillsL1(t *testing.T) {
	ctx := context.Background()
	tm, l1, l2, _ := newTestTiered(t)

	require.NoError(t, l2.Set(ctx, "sf.country.all-false", []byte("[]"), 0))

	data, ok, err := tm.Get(ctx, "sf.country.all-false")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("[]"), data)

	ok, _ = l1.IsSet(ctx, "sf.country.all-false")
	assert.True(t, ok)

	l1Hits, l2Hits, misses := tm.GetStats()
	assert.Equal(t, int64(0), l1Hits)
	assert.Equal(t, int64(1), l2Hits)
	assert.Equal(t, int64(0), misses)
}

func TestTieredManager_RemoveByPrefixBroadcasts(t *testing.T) {
	ctx := context.Background()
	tm, l1, l2, b := newTestTiered(t)

	require.NoError(t, tm.Set(ctx, "sf.product.id-1", []byte("p"), 0))
	require.NoError(t, tm.RemoveByPrefix(ctx, PrefixProducts))

	ok, _ := l1.IsSet(ctx, "sf.product.id-1")
	assert.False(t, ok)
	ok, _ = l2.IsSet(ctx, "sf.product.id-1")
	assert.False(t, ok)

	require.Len(t, b.messages, 1)
	assert.Equal(t, InvalidatePrefix, b.messages[0].Action)
	assert.Equal(t, PrefixProducts, b.messages[0].Key)
}

func TestTieredManager_HandleInvalidation(t *testing.T) {
	ctx := context.Background()
	tm, l1, _, _ := newTestTiered(t)

	require.NoError(t, l1.Set(ctx, "sf.poll.all-1", []byte("x"), 0))
	require.NoError(t, l1.Set(ctx, "sf.blog.tags-1", []byte("y"), 0))

	tm.handleInvalidation(InvalidationMessage{Action: InvalidatePrefix, Key: PrefixPolls})
	ok, _ := l1.IsSet(ctx, "sf.poll.all-1")
	assert.False(t, ok)
	ok, _ = l1.IsSet(ctx, "sf.blog.tags-1")
	assert.True(t, ok)

	tm.handleInvalidation(InvalidationMessage{Action: InvalidateAll})
	assert.Equal(t, 0, l1.Count())
}
