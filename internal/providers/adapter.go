// Package providers contains the upstream data source adapters and the
// registry that maps intents to the adapters answering them. Adapters
// only fetch; caching and fallback policy live in the aggregator.
package providers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// Params are the resolved query facts an adapter fetches against.
type Params struct {
	Location  string
	Crop      string
	Commodity string
	Date      string
	Latitude  *float64
	Longitude *float64
}

// CacheKey builds a deterministic cache key from the fields a provider
// keys its data on. Coordinates are rounded to two decimals (roughly
// one kilometre) so nearby requests share entries.
func (p Params) CacheKey(provider string) string {
	parts := []string{provider}
	for _, f := range []string{p.Location, p.Crop, p.Commodity, p.Date} {
		parts = append(parts, strings.ToLower(f))
	}
	if p.Latitude != nil && p.Longitude != nil {
		parts = append(parts,
			strconv.FormatFloat(*p.Latitude, 'f', 2, 64),
			strconv.FormatFloat(*p.Longitude, 'f', 2, 64))
	}
	return strings.Join(parts, ":")
}

// Adapter is the contract every upstream source implements. Fetch
// carries no retry or caching of its own. Default returns the static
// offline payload served when both the upstream and the stale cache
// fail.
type Adapter interface {
	ID() string
	Fetch(ctx context.Context, p Params) (map[string]interface{}, error)
	Default(p Params) map[string]interface{}
	TTL() time.Duration
	Timeout() time.Duration
}

// Registry maps each actionable intent to its responsible adapters.
type Registry struct {
	byIntent map[models.IntentLabel][]Adapter
}

// NewRegistry wires the static intent routing table. Crop
// recommendations consult both soil and weather.
func NewRegistry(weather, market, scheme, soil, pest Adapter) *Registry {
	return &Registry{byIntent: map[models.IntentLabel][]Adapter{
		models.IntentWeather:            {weather},
		models.IntentMarketPrice:        {market},
		models.IntentScheme:             {scheme},
		models.IntentPestControl:        {pest},
		models.IntentCropRecommendation: {soil, weather},
	}}
}

// AdaptersFor returns the adapters answering the given intent, or nil
// for non-actionable labels.
func (r *Registry) AdaptersFor(label models.IntentLabel) []Adapter {
	return r.byIntent[label]
}
