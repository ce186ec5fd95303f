package models

// Language is the detected (or declared) language of a query.
type Language string

const (
	LangEnglish  Language = "en"
	LangHindi    Language = "hi"
	LangHinglish Language = "hinglish"
	LangUnknown  Language = "unknown"
)

// Valid reports whether l is one of the supported language tags.
func (l Language) Valid() bool {
	switch l {
	case LangEnglish, LangHindi, LangHinglish, LangUnknown:
		return true
	}
	return false
}

// Token is one normalized token of a query, in text order.
type Token struct {
	Text     string `json:"text"`
	Original string `json:"original"`
	Index    int    `json:"index"`
}
