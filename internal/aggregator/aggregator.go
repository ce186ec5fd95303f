// Package aggregator resolves classified intents into data sections by
// fanning out to the responsible providers through the cache. Failures
// degrade per section: stale cache first, then the static default, then
// an explicit unavailable marker. One failing provider never blocks the
// others.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/cache"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/logger"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/metrics"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/providers"
)

type Aggregator struct {
	registry *providers.Registry
	loader   *cache.Loader
	pool     *ants.Pool
	log      logger.Logger
}

func New(registry *providers.Registry, loader *cache.Loader, pool *ants.Pool, log logger.Logger) *Aggregator {
	return &Aggregator{registry: registry, loader: loader, pool: pool, log: log}
}

// task is one (intent, adapter) pair with its slot in the result order.
type task struct {
	slot    int
	kind    models.IntentLabel
	adapter providers.Adapter
}

// Resolve fetches one section per (intent, adapter) pair concurrently
// and returns them in intent order, then registry adapter order. It
// always returns a section per pair; partial results are normal.
func (a *Aggregator) Resolve(ctx context.Context, intents []models.Intent, p providers.Params) []models.Section {
	var tasks []task
	for _, in := range intents {
		if !in.Actionable() {
			continue
		}
		for _, ad := range a.registry.AdaptersFor(in.Label) {
			tasks = append(tasks, task{slot: len(tasks), kind: in.Label, adapter: ad})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	// Fetches keep running on a detached context when the caller
	// disconnects, so the cache still gets populated for the next
	// request; only this response discards their result.
	base := context.WithoutCancel(ctx)

	sections := make([]models.Section, len(tasks))
	var wg sync.WaitGroup
	for _, t := range tasks {
		t := t
		wg.Add(1)
		run := func() {
			defer wg.Done()
			sections[t.slot] = a.fetchSection(base, t.kind, t.adapter, p)
		}
		if err := a.pool.Submit(run); err != nil {
			// Saturated pool: run on the request goroutine instead of
			// dropping the section.
			run()
		}
	}
	wg.Wait()
	return sections
}

// fetchSection walks the fallback chain for one provider.
func (a *Aggregator) fetchSection(ctx context.Context, kind models.IntentLabel, ad providers.Adapter, p providers.Params) models.Section {
	key := p.CacheKey(ad.ID())
	section := models.Section{Kind: kind, Provider: ad.ID()}

	fetchCtx, cancel := context.WithTimeout(ctx, ad.Timeout())
	defer cancel()

	start := time.Now()
	entry, err := a.loader.GetOrFetch(fetchCtx, ad.ID(), key, ad.TTL(), func(ctx context.Context) (map[string]interface{}, error) {
		return ad.Fetch(ctx, p)
	})
	metrics.ProviderFetchDuration.WithLabelValues(ad.ID()).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.ProviderFetches.WithLabelValues(ad.ID(), "live").Inc()
		section.Freshness = models.FreshnessLive
		section.Payload = entry.Payload
		return section
	}

	a.log.WithError(err).Warn("provider fetch failed, degrading", map[string]interface{}{
		"provider": ad.ID(),
		"intent":   string(kind),
	})

	if stale, ok := a.loader.Stale(ctx, ad.ID(), key); ok {
		metrics.ProviderFetches.WithLabelValues(ad.ID(), "stale").Inc()
		section.Freshness = models.FreshnessStale
		section.Payload = stale.Payload
		return section
	}

	if def := ad.Default(p); def != nil {
		metrics.ProviderFetches.WithLabelValues(ad.ID(), "default").Inc()
		section.Freshness = models.FreshnessDefault
		section.Payload = def
		return section
	}

	metrics.ProviderFetches.WithLabelValues(ad.ID(), "unavailable").Inc()
	section.Freshness = models.FreshnessUnavailable
	return section
}
