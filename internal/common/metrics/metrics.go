// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_queries_total",
			Help: "Total number of queries processed, by primary intent and language",
		},
		[]string{"intent", "language"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisory_query_duration_seconds",
			Help: "Duration of full pipeline processing in seconds",
		},
		[]string{"intent"},
	)

	ProviderFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_provider_fetches_total",
			Help: "Upstream provider fetch outcomes",
		},
		[]string{"provider", "outcome"},
	)

	ProviderFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisory_provider_fetch_duration_seconds",
			Help: "Duration of upstream provider fetches in seconds",
		},
		[]string{"provider"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_cache_lookups_total",
			Help: "Cache lookup outcomes per provider (hit, stale_hit, miss)",
		},
		[]string{"provider", "outcome"},
	)

	RateLimitDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_rate_limit_denied_total",
			Help: "Requests denied by the admission controller",
		},
		[]string{"endpoint"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisory_sessions_active",
			Help: "Number of live session contexts",
		},
	)
)
