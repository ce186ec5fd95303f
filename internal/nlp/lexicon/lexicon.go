// Package lexicon resolves noisy surface tokens to canonical vocabulary
// values using fuzzy string matching. It tolerates typos and romanized
// Hindi spellings without hard-coding every misspelling.
package lexicon

import (
	"sort"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// Match is a scored resolution of a surface token against one category.
type Match struct {
	Canonical string
	Alias     string
	Score     float64
}

// Matcher holds the per-category vocabularies and the acceptance
// threshold below which candidates are rejected.
type Matcher struct {
	threshold float64
	index     map[Category][]indexedEntry
}

type indexedEntry struct {
	canonical string
	aliases   []string
}

// NewMatcher builds a matcher over the built-in vocabularies. threshold
// is the minimum similarity score in [0,1] a candidate must reach.
func NewMatcher(threshold float64) *Matcher {
	m := &Matcher{
		threshold: threshold,
		index:     make(map[Category][]indexedEntry),
	}
	for _, cat := range []Category{CategoryLocation, CategoryCrop, CategoryCommodity, CategoryDate} {
		entries := vocabulary(cat)
		idx := make([]indexedEntry, 0, len(entries))
		for _, e := range entries {
			aliases := append([]string(nil), e.aliases...)
			sort.Strings(aliases)
			idx = append(idx, indexedEntry{canonical: e.canonical, aliases: aliases})
		}
		sort.Slice(idx, func(i, j int) bool { return idx[i].canonical < idx[j].canonical })
		m.index[cat] = idx
	}
	return m
}

// Lookup resolves token against the category vocabulary. It returns the
// best match and true when the score clears the threshold. Ties are
// broken by lower edit distance, then by lexicographic canonical, so
// repeated calls always return the same result.
func (m *Matcher) Lookup(token string, cat Category) (Match, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return Match{}, false
	}

	best := Match{Score: -1}
	bestDist := int(^uint(0) >> 1)
	for _, e := range m.index[cat] {
		for _, alias := range e.aliases {
			score, dist := similarity(token, alias)
			if score < m.threshold {
				continue
			}
			if score > best.Score || (score == best.Score && (dist < bestDist ||
				(dist == bestDist && e.canonical < best.Canonical))) {
				best = Match{Canonical: e.canonical, Alias: alias, Score: score}
				bestDist = dist
			}
		}
	}
	if best.Score < 0 {
		return Match{}, false
	}
	return best, true
}

// LookupPhrase resolves a multi-word surface form by joining its tokens
// with single spaces. Used for two-token windows such as "rae bareli".
func (m *Matcher) LookupPhrase(tokens []string, cat Category) (Match, bool) {
	return m.Lookup(strings.Join(tokens, " "), cat)
}

// fuzzyMinRunes is the shortest token eligible for fuzzy matching.
// Below it Jaro-Winkler conflates unrelated words ("ka" vs "kal").
const fuzzyMinRunes = 3

// fuzzyPrefixRunes is the shared prefix a fuzzy candidate must keep.
// Jaro-Winkler rates near-homographs of everyday query words above the
// acceptance threshold ("price" vs "rice" is 0.933); typos rarely land
// in the first two letters.
const fuzzyPrefixRunes = 2

// similarity scores token against alias. Devanagari aliases are matched
// exactly: Jaro-Winkler over short Devanagari strings conflates distinct
// words, and script-native input is rarely misspelled.
func similarity(token, alias string) (float64, int) {
	if token == alias {
		return 1.0, 0
	}
	if hasDevanagari(alias) || hasDevanagari(token) {
		return 0, len(alias)
	}
	if len([]rune(token)) < fuzzyMinRunes {
		return 0, len(alias)
	}
	if sharedPrefixRunes(token, alias) < fuzzyPrefixRunes {
		return 0, len(alias)
	}
	score := smetrics.JaroWinkler(token, alias, 0.7, 4)
	dist := smetrics.WagnerFischer(token, alias, 1, 1, 2)
	return score, dist
}

func sharedPrefixRunes(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}

func hasDevanagari(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Devanagari) {
			return true
		}
	}
	return false
}
