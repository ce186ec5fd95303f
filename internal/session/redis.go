package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

const sessionKeyPrefix = "session:"

// RedisStore shares session contexts across processes. Each merge is a
// single HSET of only the changed fields inside one transaction, so
// concurrent updates interleave per field, never as torn writes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    clock
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (models.SessionContext, bool, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return models.SessionContext{}, false, fmt.Errorf("session get %s: %w", sessionID, err)
	}
	if len(fields) == 0 {
		return models.SessionContext{}, false, nil
	}

	sctx := models.SessionContext{
		SessionID:  sessionID,
		Location:   fields["location"],
		Crop:       fields["crop"],
		LastIntent: models.IntentLabel(fields["last_intent"]),
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		sctx.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["last_access"]); err == nil {
		sctx.LastAccess = t
	}
	return sctx, true, nil
}

func (s *RedisStore) Apply(ctx context.Context, sessionID string, u Update) (models.SessionContext, error) {
	now := s.now()
	key := sessionKey(sessionID)

	fields := map[string]interface{}{
		"last_access": now.Format(time.RFC3339Nano),
	}
	if u.Location != "" {
		fields["location"] = u.Location
	}
	if u.Crop != "" {
		fields["crop"] = u.Crop
	}
	if u.Intent != "" {
		fields["last_intent"] = string(u.Intent)
	}

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, "created_at", now.Format(time.RFC3339Nano))
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.SessionContext{}, fmt.Errorf("session apply %s: %w", sessionID, err)
	}

	sctx, _, err := s.Get(ctx, sessionID)
	return sctx, err
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete %s: %w", sessionID, err)
	}
	return nil
}
