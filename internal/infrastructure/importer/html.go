package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTMLTable extracts the first table whose header names a keyword
// column, as saved from keyword tool report pages.
func readHTMLTable(r io.Reader, limit int) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var found [][]string
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := tableRows(table, limit)
		if _, _, ok := findHeader(rows); ok {
			found = rows
			return false
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("no keyword table found")
	}
	return found, nil
}

func tableRows(table *goquery.Selection, limit int) [][]string {
	var rows [][]string
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if limit > 0 && len(rows) >= limit {
			return false
		}
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
		return true
	})
	return rows
}
