package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
)

// ==========================
// Loader
// ==========================

func TestLoaderFetchesOnceThenHits(t *testing.T) {
	store := NewMemoryStore(16, 10)
	loader := NewLoader(store, logger.NewNoOpLogger())
	ctx := context.Background()

	var fetches int32
	fetch := func(context.Context) (map[string]interface{}, error) {
		atomic.AddInt32(&fetches, 1)
		return payload("live"), nil
	}

	for i := 0; i < 3; i++ {
		entry, err := loader.GetOrFetch(ctx, "weather", "weather:Delhi", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, payload("live"), entry.Payload)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestLoaderReturnsUpstreamError(t *testing.T) {
	store := NewMemoryStore(16, 10)
	loader := NewLoader(store, logger.NewNoOpLogger())

	_, err := loader.GetOrFetch(context.Background(), "weather", "weather:Delhi", time.Minute,
		func(context.Context) (map[string]interface{}, error) {
			return nil, errors.New("upstream down")
		})
	assert.Error(t, err)
}

// Two concurrent misses for the identical key must collapse into one
// upstream fetch; every caller shares the single result.
func TestLoaderCollapsesConcurrentMisses(t *testing.T) {
	store := NewMemoryStore(16, 10)
	loader := NewLoader(store, logger.NewNoOpLogger())
	ctx := context.Background()

	var fetches int32
	release := make(chan struct{})
	fetch := func(context.Context) (map[string]interface{}, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return payload("live"), nil
	}

	const callers = 20
	var wg sync.WaitGroup
	results := make([]Entry, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := loader.GetOrFetch(ctx, "market", "market:wheat:Delhi", time.Minute, fetch)
			assert.NoError(t, err)
			results[i] = entry
		}(i)
	}

	// Give every caller time to reach the singleflight before the
	// upstream responds.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "exactly one upstream fetch")
	for _, entry := range results {
		assert.Equal(t, payload("live"), entry.Payload)
	}
}

func TestLoaderStaleFallback(t *testing.T) {
	clk := newFakeClock()
	store := NewMemoryStoreWithClock(16, 10, clk.Now)
	loader := NewLoader(store, logger.NewNoOpLogger())
	loader.now = clk.Now
	ctx := context.Background()

	_, err := loader.GetOrFetch(ctx, "weather", "weather:Pune", time.Minute,
		func(context.Context) (map[string]interface{}, error) {
			return payload("old"), nil
		})
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)

	_, err = loader.GetOrFetch(ctx, "weather", "weather:Pune", time.Minute,
		func(context.Context) (map[string]interface{}, error) {
			return nil, errors.New("upstream down")
		})
	require.Error(t, err)

	entry, ok := loader.Stale(ctx, "weather", "weather:Pune")
	require.True(t, ok)
	assert.Equal(t, payload("old"), entry.Payload)
}

// ==========================
// Redis store
// ==========================

func TestRedisStoreFreshAndStaleCopies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, 10)
	ctx := context.Background()

	fetchedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, "weather:Delhi", Entry{Payload: payload("a"), FetchedAt: fetchedAt}, time.Minute))

	entry, ok, err := store.Get(ctx, "weather:Delhi")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload("a"), entry.Payload)
	assert.True(t, entry.FetchedAt.Equal(fetchedAt))

	mr.FastForward(2 * time.Minute)

	_, ok, err = store.Get(ctx, "weather:Delhi")
	require.NoError(t, err)
	assert.False(t, ok)

	entry, ok, err = store.GetStale(ctx, "weather:Delhi")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload("a"), entry.Payload)

	mr.FastForward(10 * time.Minute)
	_, ok, err = store.GetStale(ctx, "weather:Delhi")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreMissIsNotAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, 10)

	_, ok, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}
