package domain

import (
	"strings"
	"unicode"
)

// Source tags the origin of a keyword record.
type Source string

const (
	SourceUpload  Source = "upload"
	SourceSerpAPI Source = "serpapi"
)

// KeywordRecord is one normalized keyword row from an import origin.
type KeywordRecord struct {
	Keyword          string   `json:"keyword"`
	Source           Source   `json:"source"`
	Locale           string   `json:"locale"`
	Volume           *int     `json:"volume"`
	CPC              *float64 `json:"cpc"`
	KD               *float64 `json:"kd"`
	Clicks           *float64 `json:"clicks"`
	Competition      *float64 `json:"competition"`
	CompetitionLabel *string  `json:"competition_label"`
	URL              *string  `json:"url"`
}

// NormalizeKeyword trims, lowercases and collapses inner whitespace.
func NormalizeKeyword(raw string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(raw), unicode.IsSpace), " ")
}

// NewKeywordRecord builds a record with a normalized keyword. The second
// return value is false when nothing is left after normalization.
func NewKeywordRecord(raw string, source Source, locale string) (KeywordRecord, bool) {
	kw := NormalizeKeyword(raw)
	if kw == "" {
		return KeywordRecord{}, false
	}
	return KeywordRecord{Keyword: kw, Source: source, Locale: locale}, true
}

// IntPtr and FloatPtr help build optional metric fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

func StringPtr(v string) *string { return &v }

// NormalizeKey turns a title, url, slug or brand into a comparable key:
// lowercase ASCII letters and digits separated by single hyphens.
func NormalizeKey(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
