package models

// Freshness labels how current a data section is.
type Freshness string

const (
	FreshnessLive        Freshness = "live"
	FreshnessStale       Freshness = "stale"
	FreshnessDefault     Freshness = "default"
	FreshnessUnavailable Freshness = "unavailable"
)

// Section is one answered data point of a composed response, labeled with
// its freshness state. A nil payload is only valid for unavailable sections.
type Section struct {
	Kind      IntentLabel            `json:"kind"`
	Provider  string                 `json:"provider"`
	Freshness Freshness              `json:"freshness"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
