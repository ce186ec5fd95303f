// Package compose renders the pipeline's resolved data into localized
// user-facing text. It is a pure function of its inputs: no I/O, no
// shared state.
package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Arnavmishra002/agri-advisory-app-sub001/internal/models"
)

// phrase is one translatable fragment. Hinglish keeps Latin script with
// romanized Hindi wording.
type phrase map[models.Language]string

func (p phrase) in(lang models.Language) string {
	if s, ok := p[lang]; ok {
		return s
	}
	return p[models.LangEnglish]
}

var phrases = map[string]phrase{
	"greeting": {
		models.LangEnglish:  "Hello! Ask me about weather, mandi prices, crops, schemes or pest problems.",
		models.LangHindi:    "नमस्ते! मुझसे मौसम, मंडी भाव, फसल, योजना या कीट की समस्या पूछें।",
		models.LangHinglish: "Namaste! Mujhse mausam, mandi bhav, fasal, yojana ya keet ki samasya pooch sakte hain.",
	},
	"unknown": {
		models.LangEnglish:  "I could not understand that. You can ask about weather, prices, crops, schemes or pests.",
		models.LangHindi:    "मैं समझ नहीं पाया। आप मौसम, भाव, फसल, योजना या कीट के बारे में पूछ सकते हैं।",
		models.LangHinglish: "Main samajh nahi paya. Aap mausam, bhav, fasal, yojana ya keet ke baare mein pooch sakte hain.",
	},
	"no_location": {
		models.LangEnglish:  "Please tell me your location so I can give a precise answer.",
		models.LangHindi:    "कृपया अपना स्थान बताएं ताकि मैं सटीक जानकारी दे सकूं।",
		models.LangHinglish: "Kripya apna location bataye taki main sahi jankari de saku.",
	},
	"weather_heading": {
		models.LangEnglish:  "Weather for %s",
		models.LangHindi:    "%s का मौसम",
		models.LangHinglish: "%s ka mausam",
	},
	"market_heading": {
		models.LangEnglish:  "Market prices for %s",
		models.LangHindi:    "%s का मंडी भाव",
		models.LangHinglish: "%s ka mandi bhav",
	},
	"scheme_heading": {
		models.LangEnglish:  "Government schemes",
		models.LangHindi:    "सरकारी योजनाएं",
		models.LangHinglish: "Sarkari yojanayein",
	},
	"pest_heading": {
		models.LangEnglish:  "Pest advice for %s",
		models.LangHindi:    "%s के लिए कीट सलाह",
		models.LangHinglish: "%s ke liye keet salah",
	},
	"crop_heading": {
		models.LangEnglish:  "Crop suggestion for %s",
		models.LangHindi:    "%s के लिए फसल सुझाव",
		models.LangHinglish: "%s ke liye fasal sujhav",
	},
	"marker_stale": {
		models.LangEnglish:  "(cached data, may be outdated)",
		models.LangHindi:    "(पुराना डेटा, बदल सकता है)",
		models.LangHinglish: "(purana data, badal sakta hai)",
	},
	"marker_default": {
		models.LangEnglish:  "(typical values, live data unavailable)",
		models.LangHindi:    "(सामान्य आंकड़े, ताज़ा डेटा उपलब्ध नहीं)",
		models.LangHinglish: "(samanya aankde, taza data uplabdh nahi)",
	},
	"unavailable": {
		models.LangEnglish:  "This data is unavailable right now, please try again later.",
		models.LangHindi:    "यह जानकारी अभी उपलब्ध नहीं है, कृपया बाद में प्रयास करें।",
		models.LangHinglish: "Yeh jankari abhi uplabdh nahi hai, kripya baad mein try karein.",
	},
}

type Composer struct{}

func New() *Composer {
	return &Composer{}
}

// Compose renders one localized answer. The response language always
// follows the detected query language; unknown renders English.
func (c *Composer) Compose(lang models.Language, intents []models.Intent, entities models.EntitySet, sections []models.Section) string {
	if lang == models.LangUnknown || !lang.Valid() {
		lang = models.LangEnglish
	}

	if len(intents) > 0 {
		switch intents[0].Label {
		case models.IntentGreeting:
			return phrases["greeting"].in(lang)
		case models.IntentUnknown:
			return phrases["unknown"].in(lang)
		}
	}
	if len(sections) == 0 {
		return phrases["unknown"].in(lang)
	}

	location := ""
	if loc, ok := entities.Primary(models.EntityLocation); ok {
		location = loc.Canonical
	}
	crop := ""
	if cr, ok := entities.Primary(models.EntityCrop); ok {
		crop = cr.Canonical
	}

	var parts []string
	for _, s := range sections {
		parts = append(parts, c.renderSection(lang, s, location, crop))
	}
	if location == "" && wantsLocation(intents) {
		parts = append(parts, phrases["no_location"].in(lang))
	}
	return strings.Join(parts, "\n\n")
}

// wantsLocation reports whether any resolved intent answers with
// location-scoped data. Pest advice is keyed on the crop alone and must
// not trigger the location prompt.
func wantsLocation(intents []models.Intent) bool {
	for _, in := range intents {
		for _, k := range in.EntityKinds {
			if k == models.EntityLocation {
				return true
			}
		}
	}
	return false
}

func (c *Composer) renderSection(lang models.Language, s models.Section, location, crop string) string {
	if s.Freshness == models.FreshnessUnavailable {
		return phrases["unavailable"].in(lang)
	}

	var body string
	switch s.Provider {
	case "weather":
		body = fmt.Sprintf(phrases["weather_heading"].in(lang), orPlace(location, lang)) + "\n" + renderFlat(s.Payload)
	case "market":
		body = fmt.Sprintf(phrases["market_heading"].in(lang), payloadString(s.Payload, "commodity")) + "\n" + renderMarket(s.Payload)
	case "scheme":
		body = phrases["scheme_heading"].in(lang) + "\n" + renderSchemes(s.Payload)
	case "soil":
		body = fmt.Sprintf(phrases["crop_heading"].in(lang), orPlace(location, lang)) + "\n" + renderFlat(s.Payload)
	case "pest":
		body = fmt.Sprintf(phrases["pest_heading"].in(lang), crop) + "\n" + renderPest(s.Payload)
	default:
		body = renderFlat(s.Payload)
	}

	switch s.Freshness {
	case models.FreshnessStale:
		return body + "\n" + phrases["marker_stale"].in(lang)
	case models.FreshnessDefault:
		return body + "\n" + phrases["marker_default"].in(lang)
	}
	return body
}

func orPlace(location string, lang models.Language) string {
	if location != "" {
		return location
	}
	switch lang {
	case models.LangHindi:
		return "आपके क्षेत्र"
	case models.LangHinglish:
		return "aapke area"
	}
	return "your area"
}

// renderFlat prints scalar payload fields as "key: value" lines in
// sorted key order so output is deterministic.
func renderFlat(payload map[string]interface{}) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		switch payload[k].(type) {
		case string, float64, int, bool:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, payload[k]))
	}
	return strings.Join(lines, "\n")
}

func renderMarket(payload map[string]interface{}) string {
	prices, ok := payload["prices"].([]map[string]interface{})
	if !ok {
		// Payloads that went through the cache come back as generic
		// JSON values.
		if raw, ok2 := payload["prices"].([]interface{}); ok2 {
			for _, r := range raw {
				if m, ok3 := r.(map[string]interface{}); ok3 {
					prices = append(prices, m)
				}
			}
		}
	}
	if len(prices) == 0 {
		if note := payloadString(payload, "note"); note != "" {
			return note
		}
		return ""
	}

	var lines []string
	for _, p := range prices {
		lines = append(lines, fmt.Sprintf("%s: %v INR/quintal (%v)",
			p["market"], p["modal_price"], p["recorded_on"]))
	}
	return strings.Join(lines, "\n")
}

func renderSchemes(payload map[string]interface{}) string {
	var schemes []map[string]interface{}
	switch v := payload["schemes"].(type) {
	case []map[string]interface{}:
		schemes = v
	case []interface{}:
		for _, r := range v {
			if m, ok := r.(map[string]interface{}); ok {
				schemes = append(schemes, m)
			}
		}
	}

	var lines []string
	for _, s := range schemes {
		line := fmt.Sprintf("- %v", s["name"])
		if b, ok := s["benefit"]; ok {
			line += fmt.Sprintf(": %v", b)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderPest(payload map[string]interface{}) string {
	var advice []map[string]interface{}
	switch v := payload["advice"].(type) {
	case []map[string]interface{}:
		advice = v
	case []interface{}:
		for _, r := range v {
			if m, ok := r.(map[string]interface{}); ok {
				advice = append(advice, m)
			}
		}
	}

	var lines []string
	for _, a := range advice {
		lines = append(lines, fmt.Sprintf("- %v (%v): %v", a["pest"], a["symptom"], a["treatment"]))
	}
	return strings.Join(lines, "\n")
}

func payloadString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
