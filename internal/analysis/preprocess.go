// Package analysis holds the keyword clustering stage: cleaning, grouping,
// intent/brand annotation and scoring.
package analysis

import (
	"unicode"
	"unicode/utf8"

	"KeywordAnalyzer/internal/domain"
)

const maxKeywordLength = 200

// Preprocess drops garbage rows and duplicate keywords. The first occurrence
// of a keyword keeps its position; later duplicates only fill metrics the
// first one was missing.
func Preprocess(records []domain.KeywordRecord) []domain.KeywordRecord {
	out := make([]domain.KeywordRecord, 0, len(records))
	index := make(map[string]int, len(records))

	for _, rec := range records {
		rec.Keyword = domain.NormalizeKeyword(rec.Keyword)
		if !usable(rec.Keyword) {
			continue
		}
		if pos, ok := index[rec.Keyword]; ok {
			out[pos] = fillMissing(out[pos], rec)
			continue
		}
		index[rec.Keyword] = len(out)
		out = append(out, rec)
	}

	return out
}

func usable(keyword string) bool {
	if keyword == "" || utf8.RuneCountInString(keyword) > maxKeywordLength {
		return false
	}
	for _, r := range keyword {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func fillMissing(kept, dup domain.KeywordRecord) domain.KeywordRecord {
	if kept.Volume == nil {
		kept.Volume = dup.Volume
	}
	if kept.CPC == nil {
		kept.CPC = dup.CPC
	}
	if kept.KD == nil {
		kept.KD = dup.KD
	}
	if kept.Clicks == nil {
		kept.Clicks = dup.Clicks
	}
	if kept.Competition == nil {
		kept.Competition = dup.Competition
	}
	if kept.CompetitionLabel == nil {
		kept.CompetitionLabel = dup.CompetitionLabel
	}
	if kept.URL == nil {
		kept.URL = dup.URL
	}
	return kept
}
