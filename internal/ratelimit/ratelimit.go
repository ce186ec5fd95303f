// Package ratelimit is the admission controller: per-client request
// counters at minute, hour and day granularity over redis, shared by
// every process of the service. Denied requests never reach the query
// pipeline.
package ratelimit

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/config"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/metrics"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type window struct {
	name  string
	size  time.Duration
	limit func(config.LimitConfig) int
}

var windows = []window{
	{"m", time.Minute, func(l config.LimitConfig) int { return l.PerMinute }},
	{"h", time.Hour, func(l config.LimitConfig) int { return l.PerHour }},
	{"d", 24 * time.Hour, func(l config.LimitConfig) int { return l.PerDay }},
}

// Limiter counts requests in wall-clock-aligned windows. INCR plus
// EXPIRE makes the count atomic with the allow decision: a request that
// was admitted is always part of the count later requests observe.
type Limiter struct {
	client    *redis.Client
	cfg       config.RateLimitConfig
	whitelist []*net.IPNet
	exact     map[string]bool
	log       logger.Logger
	now       func() time.Time
}

func New(client *redis.Client, cfg config.RateLimitConfig, log logger.Logger) *Limiter {
	l := &Limiter{
		client: client,
		cfg:    cfg,
		exact:  make(map[string]bool),
		log:    log,
		now:    time.Now,
	}
	for _, entry := range cfg.Whitelist {
		if _, ipnet, err := net.ParseCIDR(entry); err == nil {
			l.whitelist = append(l.whitelist, ipnet)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			l.whitelist = append(l.whitelist, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		l.exact[entry] = true
	}
	return l
}

// Allow admits or denies one request. Whitelisted clients bypass every
// counter. Redis being down fails open: admission control protects the
// providers, it must not become the outage itself.
func (l *Limiter) Allow(ctx context.Context, client, endpoint string) Decision {
	if !l.cfg.Enabled || l.Whitelisted(client) {
		return Decision{Allowed: true}
	}

	limits := l.cfg.LimitsFor(endpoint)
	now := l.now()

	pipe := l.client.TxPipeline()
	incrs := make([]*redis.IntCmd, len(windows))
	for i, w := range windows {
		key := windowKey(client, endpoint, w.name, now.Truncate(w.size))
		incrs[i] = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, w.size)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.WithError(err).Warn("rate limit backend unavailable, failing open", map[string]interface{}{
			"client":   client,
			"endpoint": endpoint,
		})
		return Decision{Allowed: true}
	}

	for i, w := range windows {
		limit := w.limit(limits)
		if limit <= 0 {
			continue
		}
		if incrs[i].Val() > int64(limit) {
			metrics.RateLimitDenied.WithLabelValues(endpoint).Inc()
			retry := now.Truncate(w.size).Add(w.size).Sub(now)
			if retry <= 0 {
				retry = time.Second
			}
			return Decision{Allowed: false, RetryAfter: retry}
		}
	}
	return Decision{Allowed: true}
}

// Whitelisted reports whether the client identity bypasses admission
// control, by exact match or by membership in a whitelisted network.
func (l *Limiter) Whitelisted(client string) bool {
	if l.exact[client] {
		return true
	}
	ip := net.ParseIP(strings.TrimSpace(client))
	if ip == nil {
		return false
	}
	for _, n := range l.whitelist {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func windowKey(client, endpoint, granularity string, start time.Time) string {
	return "rl:" + client + ":" + endpoint + ":" + granularity + ":" + strconv.FormatInt(start.Unix(), 10)
}
