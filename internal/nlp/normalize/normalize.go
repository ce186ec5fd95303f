// Package normalize detects the language of a raw query and produces the
// normalized token sequence the rest of the pipeline works on. Pure
// functions only: no side effects, and detection never fails. The worst
// outcome is the "unknown" language tag.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// Result is the output of normalizing one query.
type Result struct {
	Text     string
	Tokens   []models.Token
	Language models.Language
}

// Normalizer applies unicode normalization, tokenization and script-based
// language detection.
type Normalizer struct {
	hindiScriptMin float64
}

// New creates a Normalizer. hindiScriptMin is the Devanagari character share
// above which the detected script overrides any declared hint.
func New(hindiScriptMin float64) *Normalizer {
	if hindiScriptMin <= 0 {
		hindiScriptMin = 0.3
	}
	return &Normalizer{hindiScriptMin: hindiScriptMin}
}

// hinglishMarkers are romanized Hindi function words. Latin-script text
// carrying two or more of them (or a quarter of its tokens) is Hinglish.
var hinglishMarkers = map[string]struct{}{
	"kya": {}, "kab": {}, "kaisa": {}, "kaise": {}, "kitna": {}, "kitni": {},
	"hai": {}, "hain": {}, "tha": {}, "hoga": {}, "hogi": {},
	"ka": {}, "ki": {}, "ke": {}, "ko": {}, "se": {}, "par": {},
	"mein": {}, "mei": {}, "mera": {}, "mere": {}, "meri": {},
	"aaj": {}, "kal": {}, "abhi": {},
	"batao": {}, "bataye": {}, "bataiye": {}, "chahiye": {},
	"mausam": {}, "bhav": {}, "daam": {}, "fasal": {}, "kheti": {},
	"ugana": {}, "ugaye": {}, "bona": {}, "boya": {},
	"yojana": {}, "keet": {}, "rog": {}, "mandi": {}, "paani": {}, "barish": {},
}

// Normalize cleans the raw text and detects its language. The declared hint
// is honored only when the script evidence does not contradict it.
func (n *Normalizer) Normalize(raw string, hint models.Language) Result {
	text := norm.NFC.String(raw)
	text = strings.ToLower(text)

	tokens := tokenize(text)

	lang := n.detect(text, tokens, hint)

	normalized := make([]string, len(tokens))
	for i, t := range tokens {
		normalized[i] = t.Text
	}

	return Result{
		Text:     strings.Join(normalized, " "),
		Tokens:   tokens,
		Language: lang,
	}
}

// tokenize splits on anything that is neither a letter, a digit nor a
// combining mark. Devanagari vowel signs and the virama are marks, not
// letters; treating them as boundaries would shred Hindi words.
func tokenize(text string) []models.Token {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})

	tokens := make([]models.Token, 0, len(fields))
	for i, f := range fields {
		tokens = append(tokens, models.Token{
			Text:     f,
			Original: f,
			Index:    i,
		})
	}
	return tokens
}

func (n *Normalizer) detect(text string, tokens []models.Token, hint models.Language) models.Language {
	var devanagari, latin, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case r >= 0x0900 && r <= 0x097F:
			devanagari++
		case r < 0x0250:
			latin++
		}
	}

	if letters == 0 {
		return models.LangUnknown
	}

	devShare := float64(devanagari) / float64(letters)

	// Script evidence beats the declared hint when they disagree.
	if devShare >= n.hindiScriptMin {
		if latin > 0 && devShare < 0.85 {
			return models.LangHinglish
		}
		return models.LangHindi
	}

	if latin > 0 {
		markers := 0
		for _, t := range tokens {
			if _, ok := hinglishMarkers[t.Text]; ok {
				markers++
			}
		}
		if markers >= 2 || (len(tokens) > 0 && float64(markers)/float64(len(tokens)) >= 0.25) {
			return models.LangHinglish
		}

		if hint.Valid() && hint != models.LangUnknown {
			return hint
		}
		return models.LangEnglish
	}

	if hint.Valid() && hint != models.LangUnknown {
		return hint
	}
	return models.LangUnknown
}
