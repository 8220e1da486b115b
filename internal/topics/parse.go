package topics

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"KeywordAnalyzer/internal/domain"
)

// ParseOutcome tags how a model response was read.
type ParseOutcome int

const (
	// ParsedDirect means the whole response was strict JSON.
	ParsedDirect ParseOutcome = iota
	// ParsedSalvaged means a JSON object was cut out of surrounding text.
	ParsedSalvaged
	// Unparseable means no JSON object could be recovered.
	Unparseable
	// WrongShape means the JSON was not an object with a "topics" list.
	WrongShape
)

func (o ParseOutcome) String() string {
	switch o {
	case ParsedDirect:
		return "parsed"
	case ParsedSalvaged:
		return "salvaged"
	case Unparseable:
		return "unparseable"
	case WrongShape:
		return "wrong_shape"
	default:
		return "unknown"
	}
}

// ParseResult carries the topics that passed shape validation and the
// number of list elements that were dropped.
type ParseResult struct {
	Topics  []domain.TopicIdea
	Outcome ParseOutcome
	Dropped int
}

const topicsKey = "topics"

var (
	leadingFence = regexp.MustCompile("^```[a-zA-Z0-9]*\\s*")
	objectBlock  = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ParseTopics reads a model response. It never fails: unreadable output
// yields no topics and a non-parsed outcome.
func ParseTopics(text string) ParseResult {
	body := []byte(strings.TrimSpace(text))
	outcome := ParsedDirect
	if !json.Valid(body) {
		block, ok := extractJSONBlock(text)
		if !ok || !json.Valid([]byte(block)) {
			return ParseResult{Outcome: Unparseable}
		}
		body = []byte(block)
		outcome = ParsedSalvaged
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ParseResult{Outcome: WrongShape}
	}
	raw, ok := envelope[topicsKey]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ParseResult{Outcome: WrongShape}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ParseResult{Outcome: WrongShape}
	}

	result := ParseResult{Outcome: outcome, Topics: make([]domain.TopicIdea, 0, len(items))}
	for _, item := range items {
		topic, ok := decodeTopic(item)
		if !ok {
			result.Dropped++
			continue
		}
		result.Topics = append(result.Topics, topic)
	}
	return result
}

// extractJSONBlock strips a Markdown code fence and returns the span from
// the first '{' to the last '}'.
func extractJSONBlock(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = leadingFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(strings.TrimRight(text, "`"))
	}
	block := objectBlock.FindString(text)
	return block, block != ""
}

type rawTopic struct {
	ClusterID          json.RawMessage `json:"cluster_id"`
	Title              *string         `json:"title"`
	Angle              *string         `json:"angle"`
	Outline            *[]string       `json:"outline"`
	TargetPersona      *string         `json:"target_persona"`
	PrimaryKeyword     *string         `json:"primary_keyword"`
	SupportingKeywords *[]string       `json:"supporting_keywords"`
	InternalLinks      []string        `json:"internal_links"`
}

// decodeTopic validates one list element. Every field except internal_links
// is required; cluster_id may be a string or a number.
func decodeTopic(item json.RawMessage) (domain.TopicIdea, bool) {
	var raw rawTopic
	if err := json.Unmarshal(item, &raw); err != nil {
		return domain.TopicIdea{}, false
	}
	clusterID, ok := decodeClusterID(raw.ClusterID)
	if !ok {
		return domain.TopicIdea{}, false
	}
	if raw.Title == nil || raw.Angle == nil || raw.Outline == nil || raw.TargetPersona == nil ||
		raw.PrimaryKeyword == nil || raw.SupportingKeywords == nil {
		return domain.TopicIdea{}, false
	}
	if strings.TrimSpace(*raw.Title) == "" {
		return domain.TopicIdea{}, false
	}

	links := raw.InternalLinks
	if links == nil {
		links = []string{}
	}
	return domain.TopicIdea{
		ClusterID:          clusterID,
		Title:              strings.TrimSpace(*raw.Title),
		Angle:              *raw.Angle,
		Outline:            *raw.Outline,
		TargetPersona:      *raw.TargetPersona,
		PrimaryKeyword:     *raw.PrimaryKeyword,
		SupportingKeywords: *raw.SupportingKeywords,
		InternalLinks:      links,
	}, true
}

func decodeClusterID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
