package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
)

func newLimiter(t *testing.T, cfg config.RateLimitConfig) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, cfg, logger.NewNoOpLogger()), mr
}

func limits(perMinute, perHour, perDay int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled: true,
		Default: config.LimitConfig{PerMinute: perMinute, PerHour: perHour, PerDay: perDay},
	}
}

// ==========================
// Admission
// ==========================

func TestAllowUpToLimitThenDeny(t *testing.T) {
	l, _ := newLimiter(t, limits(5, 100, 1000))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := l.Allow(ctx, "203.0.113.7", "query")
		assert.True(t, d.Allowed, "request %d within limit", i+1)
	}

	d := l.Allow(ctx, "203.0.113.7", "query")
	require.False(t, d.Allowed, "request over the minute limit is denied")
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestDenialIsPerClient(t *testing.T) {
	l, _ := newLimiter(t, limits(2, 100, 1000))
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "client-a", "query").Allowed)
	require.True(t, l.Allow(ctx, "client-a", "query").Allowed)
	require.False(t, l.Allow(ctx, "client-a", "query").Allowed)

	assert.True(t, l.Allow(ctx, "client-b", "query").Allowed, "other clients keep their own quota")
}

func TestEndpointSpecificLimits(t *testing.T) {
	cfg := limits(100, 1000, 10000)
	cfg.Endpoints = map[string]config.LimitConfig{
		"query": {PerMinute: 1, PerHour: 100, PerDay: 1000},
	}
	l, _ := newLimiter(t, cfg)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "c", "query").Allowed)
	assert.False(t, l.Allow(ctx, "c", "query").Allowed)
	assert.True(t, l.Allow(ctx, "c", "health").Allowed, "other endpoints use the default limits")
}

func TestHourLimitCatchesMinuteEvaders(t *testing.T) {
	l, mr := newLimiter(t, limits(10, 15, 1000))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := base
	l.now = func() time.Time { return current }

	allowed := 0
	for minute := 0; minute < 3; minute++ {
		for i := 0; i < 10; i++ {
			if l.Allow(ctx, "c", "query").Allowed {
				allowed++
			}
		}
		current = current.Add(time.Minute)
		mr.FastForward(time.Minute)
	}
	assert.Equal(t, 15, allowed, "hour window caps the total across minutes")
}

func TestWindowResetsAfterBoundary(t *testing.T) {
	l, mr := newLimiter(t, limits(2, 100, 1000))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return base }

	require.True(t, l.Allow(ctx, "c", "query").Allowed)
	require.True(t, l.Allow(ctx, "c", "query").Allowed)
	require.False(t, l.Allow(ctx, "c", "query").Allowed)

	// Cross the minute boundary: a fresh window begins.
	base = base.Add(time.Minute)
	mr.FastForward(time.Minute)
	assert.True(t, l.Allow(ctx, "c", "query").Allowed)
}

func TestRetryAfterPointsAtWindowBoundary(t *testing.T) {
	l, _ := newLimiter(t, limits(1, 100, 1000))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 45, 0, time.UTC)
	l.now = func() time.Time { return base }

	require.True(t, l.Allow(ctx, "c", "query").Allowed)
	d := l.Allow(ctx, "c", "query")
	require.False(t, d.Allowed)
	assert.Equal(t, 15*time.Second, d.RetryAfter)
}

// ==========================
// Whitelist and failure modes
// ==========================

func TestWhitelistBypassesCounters(t *testing.T) {
	cfg := limits(1, 1, 1)
	cfg.Whitelist = []string{"10.0.0.0/8", "203.0.113.99", "ops-console"}
	l, _ := newLimiter(t, cfg)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(ctx, "10.1.2.3", "query").Allowed, "CIDR member bypasses")
		assert.True(t, l.Allow(ctx, "203.0.113.99", "query").Allowed, "exact IP bypasses")
		assert.True(t, l.Allow(ctx, "ops-console", "query").Allowed, "named identity bypasses")
	}

	require.True(t, l.Allow(ctx, "203.0.113.7", "query").Allowed)
	assert.False(t, l.Allow(ctx, "203.0.113.7", "query").Allowed, "everyone else is still limited")
}

func TestDisabledLimiterAllowsAll(t *testing.T) {
	cfg := limits(1, 1, 1)
	cfg.Enabled = false
	l, _ := newLimiter(t, cfg)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(context.Background(), "c", "query").Allowed)
	}
}

func TestFailsOpenWhenRedisDown(t *testing.T) {
	l, mr := newLimiter(t, limits(1, 1, 1))
	mr.Close()

	d := l.Allow(context.Background(), "c", "query")
	assert.True(t, d.Allowed, "backend outage must not deny traffic")
}

func TestConcurrentAllowsNeverExceedLimit(t *testing.T) {
	l, _ := newLimiter(t, limits(50, 1000, 10000))
	ctx := context.Background()

	results := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		go func() { results <- l.Allow(ctx, "c", "query").Allowed }()
	}

	allowed := 0
	for i := 0; i < 100; i++ {
		if <-results {
			allowed++
		}
	}
	assert.Equal(t, 50, allowed, "atomic increments admit exactly the limit")
}

func TestDistinctClientsDoNotCollideInKeys(t *testing.T) {
	l, _ := newLimiter(t, limits(1, 100, 1000))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		client := fmt.Sprintf("client-%d", i)
		assert.True(t, l.Allow(ctx, client, "query").Allowed)
	}
}
