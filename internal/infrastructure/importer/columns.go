package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"KeywordAnalyzer/internal/domain"
)

type column int

const (
	colKeyword column = iota
	colVolume
	colKD
	colCPC
	colClicks
	colCompetitionIndex
	colCompetition
	colURL
)

// headerScanLimit bounds how many leading rows may precede the header.
const headerScanLimit = 20

// headerAliases maps normalized header cells of Keyword Planner, Search
// Console and SEO tool exports to record fields.
var headerAliases = map[string]column{
	"keyword":                      colKeyword,
	"keywords":                     colKeyword,
	"query":                        colKeyword,
	"queries":                      colKeyword,
	"top queries":                  colKeyword,
	"search term":                  colKeyword,
	"search query":                 colKeyword,
	"avg. monthly searches":        colVolume,
	"avg monthly searches":         colVolume,
	"monthly searches":             colVolume,
	"volume":                       colVolume,
	"search volume":                colVolume,
	"impressions":                  colVolume,
	"kd":                           colKD,
	"kd %":                         colKD,
	"kd%":                          colKD,
	"keyword difficulty":           colKD,
	"difficulty":                   colKD,
	"cpc":                          colCPC,
	"cpc (usd)":                    colCPC,
	"top of page bid (high range)": colCPC,
	"clicks":                       colClicks,
	"competition (indexed value)":  colCompetitionIndex,
	"competition":                  colCompetition,
	"url":                          colURL,
	"page":                         colURL,
	"top pages":                    colURL,
	"landing page":                 colURL,
}

type layout map[column]int

func normalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	return strings.Join(strings.Fields(strings.ToLower(cell)), " ")
}

// findHeader returns the column layout and the index of the header row.
func findHeader(rows [][]string) (layout, int, bool) {
	for i, row := range rows {
		if i >= headerScanLimit {
			break
		}
		l := layout{}
		for idx, cell := range row {
			col, ok := headerAliases[normalizeHeader(cell)]
			if !ok {
				continue
			}
			if _, taken := l[col]; !taken {
				l[col] = idx
			}
		}
		if _, ok := l[colKeyword]; ok {
			return l, i, true
		}
	}
	return nil, 0, false
}

func (l layout) cell(row []string, col column) (string, bool) {
	idx, ok := l[col]
	if !ok || idx >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[idx])
	return v, v != ""
}

// recordsFromRows converts a header-led table into records. Without a
// recognizable header every row's first cell is taken as a keyword.
func recordsFromRows(rows [][]string, locale string, maxRows int) []domain.KeywordRecord {
	l, headerIdx, ok := findHeader(rows)
	if ok {
		rows = rows[headerIdx+1:]
	} else {
		l = layout{colKeyword: 0}
	}

	var out []domain.KeywordRecord
	for _, row := range rows {
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
		raw, ok := l.cell(row, colKeyword)
		if !ok {
			continue
		}
		rec, ok := domain.NewKeywordRecord(raw, domain.SourceUpload, locale)
		if !ok {
			continue
		}
		fillMetrics(&rec, l, row)
		out = append(out, rec)
	}
	return out
}

func fillMetrics(rec *domain.KeywordRecord, l layout, row []string) {
	if v, ok := l.cell(row, colVolume); ok {
		if n, ok := parseNumber(v); ok {
			rec.Volume = domain.IntPtr(int(math.Round(n)))
		}
	}
	if v, ok := l.cell(row, colKD); ok {
		if n, ok := parseNumber(v); ok {
			rec.KD = domain.FloatPtr(n)
		}
	}
	if v, ok := l.cell(row, colCPC); ok {
		if n, ok := parseNumber(v); ok {
			rec.CPC = domain.FloatPtr(n)
		}
	}
	if v, ok := l.cell(row, colClicks); ok {
		if n, ok := parseNumber(v); ok {
			rec.Clicks = domain.FloatPtr(n)
		}
	}
	if v, ok := l.cell(row, colCompetitionIndex); ok {
		if n, ok := parseNumber(v); ok {
			rec.Competition = domain.FloatPtr(n)
		}
	}
	if v, ok := l.cell(row, colCompetition); ok {
		if n, ok := parseNumber(v); ok && rec.Competition == nil {
			rec.Competition = domain.FloatPtr(n)
		} else if !ok {
			rec.CompetitionLabel = domain.StringPtr(v)
		}
	}
	if v, ok := l.cell(row, colURL); ok {
		rec.URL = domain.StringPtr(v)
	}
}

var (
	rangeSplit  = regexp.MustCompile(`\s*(?:–|—|\bto\b|-)\s*`)
	numberNoise = strings.NewReplacer(
		",", "", "$", "", "€", "", "£", "", "¥", "", "₹", "",
		"%", "", "<", "", ">", "", "~", "", "\u00a0", "", " ", "",
	)
)

// parseNumber reads spreadsheet numbers such as "1,200", "$0.45", "35%",
// "1K" or the range "1K – 10K", which yields its midpoint.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || s == "--" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	if !strings.HasPrefix(s, "-") {
		if parts := rangeSplit.Split(s, -1); len(parts) == 2 {
			lo, okLo := parseScalar(parts[0])
			hi, okHi := parseScalar(parts[1])
			if okLo && okHi {
				return (lo + hi) / 2, true
			}
			return 0, false
		}
	}
	return parseScalar(s)
}

func parseScalar(raw string) (float64, bool) {
	s := numberNoise.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	mult := 1.0
	switch strings.ToUpper(s[len(s)-1:]) {
	case "K":
		mult = 1e3
	case "M":
		mult = 1e6
	case "B":
		mult = 1e9
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n * mult, true
}
