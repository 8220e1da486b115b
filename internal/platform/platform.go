// Package platform maps free-form platform names onto the configured
// canonical table and detects platforms mentioned in text.
package platform

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"KeywordAnalyzer/internal/config"
)

// Table is the ordered, read-only platform table.
type Table struct {
	entries []config.PlatformEntry
}

// NewTable copies entries, lowercasing names and patterns.
func NewTable(entries []config.PlatformEntry) *Table {
	normalized := make([]config.PlatformEntry, 0, len(entries))
	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" {
			continue
		}
		patterns := make([]string, 0, len(e.Patterns))
		for _, p := range e.Patterns {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				patterns = append(patterns, p)
			}
		}
		normalized = append(normalized, config.PlatformEntry{Name: name, Label: e.Label, Patterns: patterns})
	}
	return &Table{entries: normalized}
}

// Canonicalize resolves a user-supplied platform. Lookup order: canonical
// name, display label, exact pattern, pattern contained in the value.
// Unknown values come back trimmed and lowercased.
func (t *Table) Canonicalize(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return ""
	}
	for _, e := range t.entries {
		if e.Name == v || strings.ToLower(e.Label) == v {
			return e.Name
		}
	}
	for _, e := range t.entries {
		for _, p := range e.Patterns {
			if p == v {
				return e.Name
			}
		}
	}
	for _, e := range t.entries {
		for _, p := range e.Patterns {
			if strings.Contains(v, p) {
				return e.Name
			}
		}
	}
	return v
}

// Display returns the human label for a platform ("Java", "C#").
func (t *Table) Display(value string) string {
	canonical := t.Canonicalize(value)
	if canonical == "" {
		return ""
	}
	for _, e := range t.entries {
		if e.Name == canonical && e.Label != "" {
			return e.Label
		}
	}
	return cases.Title(language.Und).String(canonical)
}

// Detect returns every platform whose patterns occur in text, in table order.
func (t *Table) Detect(text string) []string {
	combined := strings.ToLower(text)
	var detected []string
	for _, e := range t.entries {
		for _, p := range e.Patterns {
			if strings.Contains(combined, p) {
				detected = append(detected, e.Name)
				break
			}
		}
	}
	return detected
}
