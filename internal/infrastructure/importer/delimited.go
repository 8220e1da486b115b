package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffLines = 10

// readDelimited reads CSV/TSV exports. UTF-8 and BOM-marked UTF-16 (the
// Keyword Planner default) are both accepted. A zero delimiter is sniffed
// from the first lines.
func readDelimited(r io.Reader, delim rune, limit int) ([][]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	if delim == 0 {
		delim = sniffDelimiter(data)
	}
	if delim == 0 {
		return readLines(data, limit), nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for limit <= 0 || len(rows) < limit {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sniffDelimiter picks the candidate that splits the most of the leading
// lines; zero means the input is one keyword per line.
func sniffDelimiter(data []byte) rune {
	candidates := []rune{'\t', ';', ','}
	counts := make([]int, len(candidates))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for lines := 0; lines < sniffLines && scanner.Scan(); lines++ {
		line := scanner.Text()
		for i, c := range candidates {
			counts[i] += strings.Count(line, string(c))
		}
	}

	var best rune
	bestCount := 0
	for i, c := range candidates {
		if counts[i] > bestCount {
			best, bestCount = c, counts[i]
		}
	}
	return best
}

func readLines(data []byte, limit int) [][]string {
	var rows [][]string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if limit > 0 && len(rows) >= limit {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rows = append(rows, []string{line})
	}
	return rows
}
