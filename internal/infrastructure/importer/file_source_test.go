package importer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"KeywordAnalyzer/internal/domain"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileSourceReadsCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "kw.csv", []byte("Keyword,Volume,KD,CPC\nPDF to Word,\"1,900\",35,1.20\nmerge pdf,880,,\n"))

	records, err := NewFileSource("", nil, nil).Fetch(context.Background(), domain.KeywordQuery{FilePath: path})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.Keyword != "pdf to word" || first.Source != domain.SourceUpload || first.Locale != domain.DefaultLocale {
		t.Fatalf("unexpected record %+v", first)
	}
	if *first.Volume != 1900 || *first.KD != 35 || *first.CPC != 1.2 {
		t.Fatalf("unexpected metrics %+v", first)
	}
	if records[1].KD != nil || records[1].CPC != nil {
		t.Fatalf("empty cells must stay nil")
	}
}

func TestReadRecordsUTF16TabExport(t *testing.T) {
	t.Parallel()

	body := "Keyword Stats\n\nKeyword\tAvg. monthly searches\nconvert docx\t1K – 10K\n"
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	records, err := ReadRecords(strings.NewReader(encoded), ".csv", "en-GB", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Keyword != "convert docx" || *records[0].Volume != 5500 {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestReadRecordsCapsRows(t *testing.T) {
	t.Parallel()

	body := "keyword\na\nb\nc\nd\n"
	records, err := ReadRecords(strings.NewReader(body), ".txt", "", 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 || records[1].Keyword != "b" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestReadRecordsXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Query", "Clicks", "Impressions"},
		{"aspose words java", 12, 340},
		{"docx to pdf java", 4, 120},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	records, err := ReadRecords(&buf, ".xlsx", "en-US", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if *records[0].Clicks != 12 || *records[0].Volume != 340 {
		t.Fatalf("unexpected metrics %+v", records[0])
	}
}

func TestReadRecordsHTMLTable(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<table><tr><td>nav</td></tr></table>
<table>
  <tr><th>Keyword</th><th>Search Volume</th><th>URL</th></tr>
  <tr><td>Word to Markdown</td><td>2,400</td><td>https://example.com/md</td></tr>
</table>
</body></html>`

	records, err := ReadRecords(strings.NewReader(page), ".html", "en-US", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Keyword != "word to markdown" || *records[0].Volume != 2400 || *records[0].URL != "https://example.com/md" {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestReadRecordsUnsupportedType(t *testing.T) {
	t.Parallel()

	if _, err := ReadRecords(strings.NewReader(""), ".pdf", "", 0); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestFileSourceResolve(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	fallback := t.TempDir()
	want := writeFile(t, fallback, "keywords.csv", []byte("keyword\npdf\n"))

	src := NewFileSource(dataDir, []string{fallback}, nil)
	got, err := src.Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	preferred := writeFile(t, dataDir, "keywords.xlsx", []byte("x"))
	if got, _ := src.Resolve(""); got != preferred {
		t.Fatalf("expected data dir to win, got %s", got)
	}
}

func TestFileSourceMissingInput(t *testing.T) {
	t.Parallel()

	src := NewFileSource(t.TempDir(), nil, nil)
	if _, err := src.Resolve(""); !errors.Is(err, domain.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
	_, err := src.Fetch(context.Background(), domain.KeywordQuery{FilePath: filepath.Join(t.TempDir(), "nope.csv")})
	if !errors.Is(err, domain.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}
