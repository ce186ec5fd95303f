package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

func delhiEntities() models.EntitySet {
	return models.NewEntitySet([]models.Entity{
		{Kind: models.EntityLocation, Canonical: "Delhi", Confidence: 1},
	})
}

func weatherSection(freshness models.Freshness) models.Section {
	return models.Section{
		Kind:      models.IntentWeather,
		Provider:  "weather",
		Freshness: freshness,
		Payload:   map[string]interface{}{"summary": "clear", "temp_max_c": 31.0},
	}
}

// ==========================
// Language selection
// ==========================

func TestComposeFollowsDetectedLanguage(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentWeather, Confidence: 1}}
	sections := []models.Section{weatherSection(models.FreshnessLive)}

	en := c.Compose(models.LangEnglish, intents, delhiEntities(), sections)
	assert.Contains(t, en, "Weather for Delhi")

	hi := c.Compose(models.LangHindi, intents, delhiEntities(), sections)
	assert.Contains(t, hi, "Delhi का मौसम")

	hin := c.Compose(models.LangHinglish, intents, delhiEntities(), sections)
	assert.Contains(t, hin, "Delhi ka mausam")
}

func TestComposeUnknownLanguageRendersEnglish(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentWeather, Confidence: 1}}
	sections := []models.Section{weatherSection(models.FreshnessLive)}

	got := c.Compose(models.LangUnknown, intents, delhiEntities(), sections)
	assert.Contains(t, got, "Weather for Delhi")
}

// ==========================
// Freshness markers
// ==========================

func TestComposeSurfacesFreshnessMarkers(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentWeather, Confidence: 1}}

	live := c.Compose(models.LangEnglish, intents, delhiEntities(),
		[]models.Section{weatherSection(models.FreshnessLive)})
	assert.NotContains(t, live, "outdated")
	assert.NotContains(t, live, "typical values")

	stale := c.Compose(models.LangEnglish, intents, delhiEntities(),
		[]models.Section{weatherSection(models.FreshnessStale)})
	assert.Contains(t, stale, "may be outdated")

	def := c.Compose(models.LangEnglish, intents, delhiEntities(),
		[]models.Section{weatherSection(models.FreshnessDefault)})
	assert.Contains(t, def, "typical values")

	unavailable := c.Compose(models.LangEnglish, intents, delhiEntities(),
		[]models.Section{{Kind: models.IntentWeather, Provider: "weather", Freshness: models.FreshnessUnavailable}})
	assert.Contains(t, unavailable, "unavailable right now")
}

func TestComposeHindiStaleMarker(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentWeather, Confidence: 1}}

	got := c.Compose(models.LangHindi, intents, delhiEntities(),
		[]models.Section{weatherSection(models.FreshnessStale)})
	assert.Contains(t, got, "पुराना डेटा")
}

// ==========================
// Section rendering
// ==========================

func TestComposeMarketSection(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentMarketPrice, Confidence: 1}}
	sections := []models.Section{{
		Kind:      models.IntentMarketPrice,
		Provider:  "market",
		Freshness: models.FreshnessLive,
		Payload: map[string]interface{}{
			"commodity": "wheat",
			"prices": []map[string]interface{}{
				{"market": "Azadpur", "modal_price": 2200.0, "recorded_on": "2026-02-27"},
			},
		},
	}}

	got := c.Compose(models.LangEnglish, intents, delhiEntities(), sections)
	assert.Contains(t, got, "Market prices for wheat")
	assert.Contains(t, got, "Azadpur: 2200 INR/quintal")
}

func TestComposeMarketSectionFromCachedJSON(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentMarketPrice, Confidence: 1}}

	// Cached payloads decode as []interface{} rather than the typed
	// slice the adapter produced.
	sections := []models.Section{{
		Kind:      models.IntentMarketPrice,
		Provider:  "market",
		Freshness: models.FreshnessStale,
		Payload: map[string]interface{}{
			"commodity": "wheat",
			"prices": []interface{}{
				map[string]interface{}{"market": "Azadpur", "modal_price": 2150.0, "recorded_on": "2026-02-26"},
			},
		},
	}}

	got := c.Compose(models.LangEnglish, intents, delhiEntities(), sections)
	assert.Contains(t, got, "Azadpur: 2150 INR/quintal")
	assert.Contains(t, got, "may be outdated")
}

func TestComposeMultiSectionOrder(t *testing.T) {
	c := New()
	intents := []models.Intent{
		{Label: models.IntentWeather, Confidence: 1},
		{Label: models.IntentMarketPrice, Confidence: 1},
	}
	sections := []models.Section{
		weatherSection(models.FreshnessLive),
		{
			Kind: models.IntentMarketPrice, Provider: "market", Freshness: models.FreshnessLive,
			Payload: map[string]interface{}{"commodity": "wheat", "prices": []map[string]interface{}{}},
		},
	}

	got := c.Compose(models.LangEnglish, intents, delhiEntities(), sections)
	wIdx := strings.Index(got, "Weather for Delhi")
	mIdx := strings.Index(got, "Market prices for wheat")
	require.NotEqual(t, -1, wIdx)
	require.NotEqual(t, -1, mIdx)
	assert.Less(t, wIdx, mIdx, "sections render in resolution order")
}

// ==========================
// Terminal classifications
// ==========================

func TestComposeGreeting(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentGreeting, Confidence: 1}}

	assert.Contains(t, c.Compose(models.LangHindi, intents, models.NewEntitySet(nil), nil), "नमस्ते")
	assert.Contains(t, c.Compose(models.LangEnglish, intents, models.NewEntitySet(nil), nil), "Hello")
}

func TestComposeUnknownIntent(t *testing.T) {
	c := New()
	intents := []models.Intent{{Label: models.IntentUnknown, Confidence: 0}}

	got := c.Compose(models.LangHinglish, intents, models.NewEntitySet(nil), nil)
	assert.Contains(t, got, "samajh nahi")
}

func TestComposeAsksForLocationWhenNoneKnown(t *testing.T) {
	c := New()
	intents := []models.Intent{{
		Label:       models.IntentWeather,
		Confidence:  1,
		EntityKinds: []models.EntityKind{models.EntityLocation, models.EntityDate},
	}}

	got := c.Compose(models.LangEnglish, intents, models.NewEntitySet(nil),
		[]models.Section{weatherSection(models.FreshnessDefault)})
	assert.Contains(t, got, "tell me your location")
}

// Pest advice is keyed on the crop alone; a crisp answer must not be
// followed by a location prompt the question never needed.
func TestComposeSkipsLocationPromptForPestOnly(t *testing.T) {
	c := New()
	intents := []models.Intent{{
		Label:       models.IntentPestControl,
		Confidence:  1,
		EntityKinds: []models.EntityKind{models.EntityCrop},
	}}
	entities := models.NewEntitySet([]models.Entity{
		{Kind: models.EntityCrop, Canonical: "wheat", Confidence: 1},
	})
	section := models.Section{
		Kind:      models.IntentPestControl,
		Provider:  "pest",
		Freshness: models.FreshnessLive,
		Payload: map[string]interface{}{
			"crop": "wheat",
			"advice": []map[string]interface{}{
				{"pest": "aphid", "symptom": "curled leaves", "treatment": "imidacloprid spray"},
			},
		},
	}

	got := c.Compose(models.LangEnglish, intents, entities, []models.Section{section})
	assert.Contains(t, got, "Pest advice for wheat")
	assert.NotContains(t, got, "tell me your location")
}
