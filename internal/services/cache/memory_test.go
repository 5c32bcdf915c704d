package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(0, time.Minute)
	defer mc.Stop()

	_, ok := mc.Get(ctx, "podcast:p-1")
	assert.False(t, ok)

	require.NoError(t, mc.Set(ctx, "podcast:p-1", []byte(`{"uuid":"p-1"}`), time.Minute))

	value, ok := mc.Get(ctx, "podcast:p-1")
	require.True(t, ok)
	assert.Equal(t, `{"uuid":"p-1"}`, string(value))
	assert.True(t, mc.Has(ctx, "podcast:p-1"))

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Entries)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(0, time.Hour)
	defer mc.Stop()

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	assert.False(t, mc.Has(ctx, "short"))
	_, ok := mc.Get(ctx, "short")
	assert.False(t, ok)
	assert.Equal(t, int64(0), mc.Stats().Entries)
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(2, time.Hour)
	defer mc.Stop()

	require.NoError(t, mc.Set(ctx, "a", []byte("a"), time.Minute))
	require.NoError(t, mc.Set(ctx, "b", []byte("b"), time.Hour))
	require.NoError(t, mc.Set(ctx, "c", []byte("c"), time.Hour))

	assert.False(t, mc.Has(ctx, "a"), "entry closest to expiry is evicted")
	assert.True(t, mc.Has(ctx, "b"))
	assert.True(t, mc.Has(ctx, "c"))
	assert.Equal(t, int64(1), mc.Stats().Evictions)

	// overwriting an existing key does not evict
	require.NoError(t, mc.Set(ctx, "b", []byte("b2"), time.Hour))
	assert.Equal(t, int64(2), mc.Stats().Entries)
	assert.Equal(t, int64(1), mc.Stats().Evictions)
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(0, time.Minute)
	defer mc.Stop()

	require.NoError(t, mc.Set(ctx, "a", []byte("a"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("b"), 0))

	require.NoError(t, mc.Delete(ctx, "a"))
	assert.False(t, mc.Has(ctx, "a"))
	assert.Equal(t, int64(1), mc.Stats().Deletes)

	require.NoError(t, mc.Clear(ctx))
	assert.False(t, mc.Has(ctx, "b"))
	assert.Equal(t, int64(0), mc.Stats().Entries)
}

func TestMemoryCache_CleanupLoop(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(0, 5*time.Millisecond)

	require.NoError(t, mc.Set(ctx, "gone", []byte("x"), time.Millisecond))

	assert.Eventually(t, func() bool {
		return mc.Stats().Entries == 0
	}, time.Second, 5*time.Millisecond)

	mc.Stop()
	mc.Stop()
}
