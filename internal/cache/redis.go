package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "cache:"

// RedisStore shares cached payloads across processes. Each value is
// written twice: the fresh copy under the provider TTL and a stale copy
// retained staleFactor times longer.
type RedisStore struct {
	client      *redis.Client
	staleFactor int
}

func NewRedisStore(client *redis.Client, staleFactor int) *RedisStore {
	if staleFactor < 1 {
		staleFactor = 1
	}
	return &RedisStore{client: client, staleFactor: staleFactor}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	return s.get(ctx, cacheKeyPrefix+key)
}

func (s *RedisStore) GetStale(ctx context.Context, key string) (Entry, bool, error) {
	return s.get(ctx, cacheKeyPrefix+key+":stale")
}

func (s *RedisStore) get(ctx context.Context, fullKey string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get %s: %w", fullKey, err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("cache decode %s: %w", fullKey, err)
	}
	return entry, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, cacheKeyPrefix+key, raw, ttl)
	pipe.Set(ctx, cacheKeyPrefix+key+":stale", raw, ttl*time.Duration(s.staleFactor))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
