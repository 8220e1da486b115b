// Package contentindex reads previously published posts for deduplication.
package contentindex

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	yamlFence = "---"
	tomlFence = "+++"
)

// FrontMatterError reports a post whose header block cannot be read.
type FrontMatterError struct {
	Path   string
	Reason string
}

func (e *FrontMatterError) Error() string {
	return fmt.Sprintf("front matter %s: %s", e.Path, e.Reason)
}

// FrontMatter is the subset of header keys used for platform detection.
type FrontMatter map[string]any

// ParseFrontMatter extracts the fenced header block of a post. YAML uses
// "---" fences and TOML uses "+++".
func ParseFrontMatter(path string, data []byte) (FrontMatter, error) {
	text := strings.TrimLeft(string(data), "\ufeff \t\r\n")

	var fence string
	switch {
	case strings.HasPrefix(text, yamlFence):
		fence = yamlFence
	case strings.HasPrefix(text, tomlFence):
		fence = tomlFence
	default:
		return nil, &FrontMatterError{Path: path, Reason: "no opening fence"}
	}

	lines := strings.Split(text, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == fence {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, &FrontMatterError{Path: path, Reason: "no closing fence"}
	}
	block := strings.Join(lines[1:end], "\n")

	fm := FrontMatter{}
	if fence == yamlFence {
		if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
			return nil, &FrontMatterError{Path: path, Reason: "yaml: " + err.Error()}
		}
		keepDeclaredDate(block, fm)
	} else {
		if _, err := toml.Decode(block, &fm); err != nil {
			return nil, &FrontMatterError{Path: path, Reason: "toml: " + err.Error()}
		}
	}
	return fm, nil
}

// keepDeclaredDate replaces a decoded YAML timestamp with the text the post
// declares, so "+00:00" offsets survive.
func keepDeclaredDate(block string, fm FrontMatter) {
	if _, ok := fm["date"].(time.Time); !ok {
		return
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return
	}
	if node, ok := raw["date"]; ok && node.Kind == yaml.ScalarNode {
		fm["date"] = node.Value
	}
}

// String returns a string field, or "" when absent or not a string.
func (fm FrontMatter) String(key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// List returns a list field rendered as strings.
func (fm FrontMatter) List(key string) []string {
	items, ok := fm[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// Date renders the date field as text whatever type the decoder produced.
func (fm FrontMatter) Date() string {
	switch v := fm["date"].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// PlatformText joins the fields scanned for platform patterns.
func (fm FrontMatter) PlatformText() string {
	var chunks []string
	for _, key := range []string{"title", "seoTitle", "description", "summary", "url"} {
		if s := fm.String(key); s != "" {
			chunks = append(chunks, s)
		}
	}
	for _, key := range []string{"tags", "categories"} {
		chunks = append(chunks, fm.List(key)...)
	}
	return strings.Join(chunks, " ")
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts RFC 2822 and ISO-like dates. Dates without a zone are
// read as UTC.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := mail.ParseDate(value); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
