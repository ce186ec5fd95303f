// Package intent classifies normalized queries against prioritized
// keyword signatures, emitting one intent per non-overlapping trigger.
package intent

import (
	"sort"
	"unicode"

	"github.com/xrash/smetrics"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// signature is one intent's trigger vocabulary. Phrases are matched
// over two-token windows, keywords over single tokens.
type signature struct {
	label    models.IntentLabel
	keywords []string
	phrases  []string
	entities []models.EntityKind
}

// Signatures are evaluated in priority order; the order only breaks
// exact confidence ties between overlapping triggers.
var signatures = []signature{
	{
		label:    models.IntentWeather,
		keywords: []string{"weather", "mausam", "मौसम", "barish", "baarish", "बारिश", "rain", "forecast", "temperature", "garmi", "sardi", "humidity"},
		entities: []models.EntityKind{models.EntityLocation, models.EntityDate},
	},
	{
		label:    models.IntentMarketPrice,
		keywords: []string{"price", "bhav", "भाव", "rate", "mandi", "मंडी", "daam", "दाम", "kimat", "कीमत", "keemat"},
		phrases:  []string{"market price", "mandi bhav"},
		entities: []models.EntityKind{models.EntityCommodity, models.EntityLocation, models.EntityDate},
	},
	{
		label:    models.IntentCropRecommendation,
		keywords: []string{"grow", "sow", "sowing", "plant", "recommend", "suggest", "bona", "ugaye", "ugaun", "बोना", "उगाना", "lagaye"},
		phrases:  []string{"which crop", "kaunsi fasal", "konsi fasal", "kya ugaye", "kya boye"},
		entities: []models.EntityKind{models.EntityLocation, models.EntityDate},
	},
	{
		label:    models.IntentScheme,
		keywords: []string{"scheme", "yojana", "योजना", "subsidy", "loan", "karj", "कर्ज", "bima", "बीमा", "insurance", "pmkisan"},
		phrases:  []string{"pm kisan", "government scheme", "sarkari yojana"},
		entities: []models.EntityKind{models.EntityCrop, models.EntityLocation},
	},
	{
		label:    models.IntentPestControl,
		keywords: []string{"pest", "keet", "कीट", "keeda", "कीड़ा", "insect", "disease", "rog", "रोग", "fungus", "spray", "ilaj", "इलाज"},
		phrases:  []string{"pest control", "keet niyantran"},
		entities: []models.EntityKind{models.EntityCrop},
	},
	{
		label:    models.IntentGreeting,
		keywords: []string{"hello", "hi", "hey", "namaste", "नमस्ते", "namaskar", "नमस्कार"},
		phrases:  []string{"good morning", "good evening", "ram ram"},
		entities: nil,
	},
}

// Classifier scores queries against the signature table.
type Classifier struct {
	threshold float64
}

func New(threshold float64) *Classifier {
	return &Classifier{threshold: threshold}
}

// Classify returns the intents clearing the threshold whose trigger
// spans do not overlap, ordered by descending confidence and then by
// span start. A query matching nothing yields a single unknown intent;
// that is a terminal classification, not an error.
func (c *Classifier) Classify(tokens []models.Token) []models.Intent {
	var matched []models.Intent
	for _, sig := range signatures {
		if in, ok := c.match(sig, tokens); ok {
			matched = append(matched, in)
		}
	}
	if len(matched) == 0 {
		return []models.Intent{{Label: models.IntentUnknown, Confidence: 0}}
	}

	// Priority order from the signature table already sequences
	// matched, so stable sort keeps it as the final tie-break.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Confidence != matched[j].Confidence {
			return matched[i].Confidence > matched[j].Confidence
		}
		return matched[i].Span.Start < matched[j].Span.Start
	})

	var accepted []models.Intent
	for _, in := range matched {
		overlaps := false
		for _, a := range accepted {
			if in.Span.Overlaps(a.Span) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, in)
		}
	}
	return accepted
}

// match finds the best-scoring trigger of one signature.
func (c *Classifier) match(sig signature, tokens []models.Token) (models.Intent, bool) {
	best := models.Intent{Label: sig.label, Confidence: -1, EntityKinds: sig.entities}

	consider := func(score float64, span models.Span) {
		if score > best.Confidence || (score == best.Confidence && span.Start < best.Span.Start) {
			best.Confidence = score
			best.Span = span
		}
	}

	for i, tok := range tokens {
		for _, kw := range sig.keywords {
			if s := keywordScore(tok.Text, kw); s >= c.threshold {
				consider(s, models.Span{Start: i, End: i + 1})
			}
		}
		if i+1 < len(tokens) {
			window := tok.Text + " " + tokens[i+1].Text
			for _, ph := range sig.phrases {
				if s := keywordScore(window, ph); s >= c.threshold {
					consider(s, models.Span{Start: i, End: i + 2})
				}
			}
		}
	}

	if best.Confidence < 0 {
		return models.Intent{}, false
	}
	return best, true
}

// fuzzyKeywordFloor guards against near-homographs of unrelated words:
// "wheat" scores 0.81 against "weather" and must not trigger it.
const fuzzyKeywordFloor = 0.85

// keywordScore mirrors the lexicon's matching rules: exact for short or
// Devanagari terms, Jaro-Winkler otherwise.
func keywordScore(token, keyword string) float64 {
	if token == keyword {
		return 1.0
	}
	if hasDevanagari(token) || hasDevanagari(keyword) {
		return 0
	}
	if len([]rune(token)) < 3 || len([]rune(keyword)) < 3 {
		return 0
	}
	s := smetrics.JaroWinkler(token, keyword, 0.7, 4)
	if s < fuzzyKeywordFloor {
		return 0
	}
	return s
}

func hasDevanagari(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Devanagari) {
			return true
		}
	}
	return false
}
