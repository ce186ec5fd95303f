package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/metrics"
)

// FetchFunc loads a payload from the upstream provider.
type FetchFunc func(ctx context.Context) (map[string]interface{}, error)

// Loader fronts the cache with stampede protection: concurrent misses
// for the same key collapse into one upstream fetch and all callers
// share its result.
type Loader struct {
	store Store
	group singleflight.Group
	log   logger.Logger
	now   func() time.Time
}

func NewLoader(store Store, log logger.Logger) *Loader {
	return &Loader{store: store, log: log, now: time.Now}
}

// GetOrFetch returns the fresh cached entry for key, or fetches it from
// the upstream. Cache read and write failures degrade to a plain fetch;
// only the upstream error is ever returned.
func (l *Loader) GetOrFetch(ctx context.Context, provider, key string, ttl time.Duration, fetch FetchFunc) (Entry, error) {
	if entry, ok, err := l.store.Get(ctx, key); err != nil {
		l.log.WithError(err).Warn("cache read failed, fetching upstream", map[string]interface{}{
			"provider": provider,
			"key":      key,
		})
	} else if ok {
		metrics.CacheLookups.WithLabelValues(provider, "hit").Inc()
		return entry, nil
	}
	metrics.CacheLookups.WithLabelValues(provider, "miss").Inc()

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// Another flight may have filled the cache while this caller
		// queued up behind it.
		if entry, ok, err := l.store.Get(ctx, key); err == nil && ok {
			return entry, nil
		}

		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		entry := Entry{Payload: payload, FetchedAt: l.now()}
		if err := l.store.Set(ctx, key, entry, ttl); err != nil {
			l.log.WithError(err).Warn("cache write failed", map[string]interface{}{
				"provider": provider,
				"key":      key,
			})
		}
		return entry, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

// Stale returns the expired copy of key, if one is still retained.
func (l *Loader) Stale(ctx context.Context, provider, key string) (Entry, bool) {
	entry, ok, err := l.store.GetStale(ctx, key)
	if err != nil {
		l.log.WithError(err).Warn("stale cache read failed", map[string]interface{}{
			"provider": provider,
			"key":      key,
		})
		return Entry{}, false
	}
	if ok {
		metrics.CacheLookups.WithLabelValues(provider, "stale_hit").Inc()
	}
	return entry, ok
}
