package importer

import "testing"

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1200", 1200, true},
		{"1,200", 1200, true},
		{"$0.45", 0.45, true},
		{"35%", 35, true},
		{"1K", 1000, true},
		{"1K – 10K", 5500, true},
		{"100 - 1000", 550, true},
		{"10 to 20", 15, true},
		{"<10", 10, true},
		{"-", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"Low", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseNumber(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFindHeaderSkipsPreamble(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Keyword Stats 2025-01-01 at 10_00_00"},
		{"All locations"},
		{"Keyword", "Currency", "Avg. monthly searches", "Competition", "Competition (indexed value)", "Top of page bid (high range)"},
		{"pdf to word", "USD", "1,000", "Low", "12", "0.80"},
	}

	l, idx, ok := findHeader(rows)
	if !ok || idx != 2 {
		t.Fatalf("expected header at row 2, got %d (%v)", idx, ok)
	}

	records := recordsFromRows(rows, "en-US", 0)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Volume == nil || *rec.Volume != 1000 {
		t.Fatalf("unexpected volume %v", rec.Volume)
	}
	if rec.Competition == nil || *rec.Competition != 12 {
		t.Fatalf("unexpected competition %v", rec.Competition)
	}
	if rec.CompetitionLabel == nil || *rec.CompetitionLabel != "Low" {
		t.Fatalf("unexpected competition label %v", rec.CompetitionLabel)
	}
	if rec.CPC == nil || *rec.CPC != 0.8 {
		t.Fatalf("unexpected cpc %v", rec.CPC)
	}
	if _, ok := l[colURL]; ok {
		t.Fatalf("url column should not be detected")
	}
}

func TestRecordsFromRowsWithoutHeader(t *testing.T) {
	t.Parallel()

	records := recordsFromRows([][]string{{"Merge PDF"}, {"  "}, {"split pdf"}}, "de-DE", 0)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Keyword != "merge pdf" || records[0].Locale != "de-DE" {
		t.Fatalf("unexpected record %+v", records[0])
	}
}
