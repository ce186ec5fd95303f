// Package extract scans normalized token sequences for structured
// entities (locations, crops, commodities, dates) using the fuzzy
// lexicon matcher.
package extract

import (
	"sort"
	"strings"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/nlp/lexicon"
)

// English prepositions precede the place ("in Delhi"); Hindi
// postpositions follow it ("Lucknow mein"). A location entity adjacent
// to either cue is promoted to primary.
var locationPrepositions = map[string]bool{
	"in": true, "at": true, "near": true,
}

var locationPostpositions = map[string]bool{
	"me": true, "mein": true, "ke": true, "ki": true,
	"में": true, "के": true, "की": true,
}

var kindByCategory = map[lexicon.Category]models.EntityKind{
	lexicon.CategoryLocation:  models.EntityLocation,
	lexicon.CategoryCrop:      models.EntityCrop,
	lexicon.CategoryCommodity: models.EntityCommodity,
	lexicon.CategoryDate:      models.EntityDate,
}

// Extractor turns token sequences into entity sets. A missing entity of
// any kind is a normal outcome, never an error.
type Extractor struct {
	matcher *lexicon.Matcher
}

func New(matcher *lexicon.Matcher) *Extractor {
	return &Extractor{matcher: matcher}
}

// Extract resolves every token window against all category vocabularies
// and returns the surviving entities, primary-first per kind.
func (e *Extractor) Extract(tokens []models.Token) models.EntitySet {
	var candidates []models.Entity
	for cat, kind := range kindByCategory {
		candidates = append(candidates, e.scan(tokens, cat, kind)...)
	}

	byKind := make(map[models.EntityKind][]models.Entity)
	for _, c := range candidates {
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}

	var accepted []models.Entity
	for _, kind := range []models.EntityKind{
		models.EntityLocation, models.EntityCrop, models.EntityCommodity, models.EntityDate,
	} {
		kept := resolveOverlaps(byKind[kind])
		if kind == models.EntityLocation {
			kept = promotePrimaryLocation(kept, tokens)
		}
		accepted = append(accepted, kept...)
	}
	return models.NewEntitySet(accepted)
}

// scan emits candidates for one category, trying two-token windows
// before single tokens so multi-word names like "rae bareli" beat their
// fragments.
func (e *Extractor) scan(tokens []models.Token, cat lexicon.Category, kind models.EntityKind) []models.Entity {
	var out []models.Entity
	for i := range tokens {
		if i+1 < len(tokens) {
			if m, ok := e.matcher.LookupPhrase([]string{tokens[i].Text, tokens[i+1].Text}, cat); ok {
				out = append(out, models.Entity{
					Kind:       kind,
					Canonical:  m.Canonical,
					Raw:        tokens[i].Original + " " + tokens[i+1].Original,
					Span:       models.Span{Start: i, End: i + 2},
					Confidence: m.Score,
				})
			}
		}
		if m, ok := e.matcher.Lookup(tokens[i].Text, cat); ok {
			out = append(out, models.Entity{
				Kind:       kind,
				Canonical:  m.Canonical,
				Raw:        tokens[i].Original,
				Span:       models.Span{Start: i, End: i + 1},
				Confidence: m.Score,
			})
		}
	}
	return out
}

// resolveOverlaps keeps a non-overlapping subset per kind, preferring
// the longer span, then the higher confidence, then the earlier start.
func resolveOverlaps(candidates []models.Entity) []models.Entity {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Span.Len() != b.Span.Len() {
			return a.Span.Len() > b.Span.Len()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Span.Start < b.Span.Start
	})

	var kept []models.Entity
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.Span.Overlaps(k.Span) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Span.Start < kept[j].Span.Start })
	return kept
}

// promotePrimaryLocation moves the first location adjacent to a place
// cue to the front. Without any cue the first occurrence stays primary.
func promotePrimaryLocation(locations []models.Entity, tokens []models.Token) []models.Entity {
	if len(locations) <= 1 {
		return locations
	}
	for i, loc := range locations {
		if !hasPlaceCue(loc, tokens) {
			continue
		}
		if i == 0 {
			return locations
		}
		promoted := make([]models.Entity, 0, len(locations))
		promoted = append(promoted, loc)
		promoted = append(promoted, locations[:i]...)
		promoted = append(promoted, locations[i+1:]...)
		return promoted
	}
	return locations
}

func hasPlaceCue(loc models.Entity, tokens []models.Token) bool {
	if loc.Span.Start > 0 {
		if locationPrepositions[strings.ToLower(tokens[loc.Span.Start-1].Text)] {
			return true
		}
	}
	if loc.Span.End < len(tokens) {
		if locationPostpositions[strings.ToLower(tokens[loc.Span.End].Text)] {
			return true
		}
	}
	return false
}
