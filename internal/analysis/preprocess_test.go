package analysis

import (
	"strings"
	"testing"

	"KeywordAnalyzer/internal/domain"
)

func rec(keyword string, volume int) domain.KeywordRecord {
	r := domain.KeywordRecord{Keyword: keyword, Source: domain.SourceUpload, Locale: "en-US"}
	if volume >= 0 {
		r.Volume = domain.IntPtr(volume)
	}
	return r
}

func TestPreprocessDeduplicatesFirstSeenWins(t *testing.T) {
	t.Parallel()

	withCPC := rec("PDF  to Word", -1)
	withCPC.CPC = domain.FloatPtr(1.5)

	got := Preprocess([]domain.KeywordRecord{
		rec("pdf to word", 100),
		rec("merge pdf", 50),
		withCPC,
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Keyword != "pdf to word" || *got[0].Volume != 100 {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if got[0].CPC == nil || *got[0].CPC != 1.5 {
		t.Fatalf("expected cpc filled from duplicate, got %v", got[0].CPC)
	}
	if got[1].Keyword != "merge pdf" {
		t.Fatalf("expected order preserved, got %q", got[1].Keyword)
	}
}

func TestPreprocessDropsGarbage(t *testing.T) {
	t.Parallel()

	got := Preprocess([]domain.KeywordRecord{
		rec("   ", -1),
		rec("--- !!", -1),
		rec(strings.Repeat("a", 201), -1),
		rec("c# pdf", -1),
	})

	if len(got) != 1 || got[0].Keyword != "c# pdf" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestPreprocessIsIdempotent(t *testing.T) {
	t.Parallel()

	in := []domain.KeywordRecord{rec("A  b", 1), rec("a b", 2), rec("c", 3)}
	once := Preprocess(in)
	twice := Preprocess(once)

	if len(once) != len(twice) {
		t.Fatalf("expected stable length, got %d and %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Keyword != twice[i].Keyword {
			t.Fatalf("record %d changed: %q vs %q", i, once[i].Keyword, twice[i].Keyword)
		}
	}
}
