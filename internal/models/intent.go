package models

// IntentLabel is the closed set of query purposes the classifier can emit.
type IntentLabel string

const (
	IntentCropRecommendation IntentLabel = "crop_recommendation"
	IntentMarketPrice        IntentLabel = "market_price"
	IntentWeather            IntentLabel = "weather"
	IntentScheme             IntentLabel = "government_scheme"
	IntentPestControl        IntentLabel = "pest_control"
	IntentGreeting           IntentLabel = "greeting"
	IntentUnknown            IntentLabel = "unknown"
)

// Intent is one classified purpose of a query, with the span that triggered
// it and the entity kinds relevant to answering it.
type Intent struct {
	Label       IntentLabel  `json:"label"`
	Confidence  float64      `json:"confidence"`
	Span        Span         `json:"span"`
	EntityKinds []EntityKind `json:"entityKinds,omitempty"`
}

// Actionable reports whether the intent routes to any data provider.
func (i Intent) Actionable() bool {
	return i.Label != IntentGreeting && i.Label != IntentUnknown
}
