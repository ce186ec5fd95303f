package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreApplyAndGet(t *testing.T) {
	store, _ := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	_, err := store.Apply(ctx, "s1", Update{Location: "Raebareli", Intent: models.IntentWeather})
	require.NoError(t, err)

	sctx, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Raebareli", sctx.Location)
	assert.Equal(t, models.IntentWeather, sctx.LastIntent)
	assert.False(t, sctx.CreatedAt.IsZero())
}

func TestRedisStoreMergePreservesAbsentFields(t *testing.T) {
	store, _ := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	_, err := store.Apply(ctx, "s1", Update{Location: "Delhi", Crop: "wheat"})
	require.NoError(t, err)

	sctx, err := store.Apply(ctx, "s1", Update{Crop: "rice"})
	require.NoError(t, err)
	assert.Equal(t, "Delhi", sctx.Location)
	assert.Equal(t, "rice", sctx.Crop)
}

func TestRedisStoreCreatedAtIsStable(t *testing.T) {
	store, _ := newRedisStore(t, 30*time.Minute)
	ctx := context.Background()

	first, err := store.Apply(ctx, "s1", Update{Location: "Delhi"})
	require.NoError(t, err)

	second, err := store.Apply(ctx, "s1", Update{Location: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	_, err := store.Apply(ctx, "s1", Update{Location: "Delhi"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	_, err := store.Apply(ctx, "s1", Update{Location: "Delhi"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s1"))

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerDegradesOnStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Minute)
	mgr := NewManager(store)

	mr.Close()

	_, ok := mgr.Load(context.Background(), "s1")
	assert.False(t, ok, "store errors must read as no context")
}
