package topics

import (
	"encoding/json"
	"fmt"
	"strings"

	"KeywordAnalyzer/internal/domain"
)

// payloadKeywords caps the keywords sent per cluster.
const payloadKeywords = 12

type promptPayload struct {
	Brand          string           `json:"brand"`
	Product        string           `json:"product"`
	Locale         string           `json:"locale"`
	Clusters       []promptCluster  `json:"clusters"`
	Platform       string           `json:"platform,omitempty"`
	ExistingTopics []promptExisting `json:"existing_topics,omitempty"`
}

type promptCluster struct {
	ClusterID string        `json:"cluster_id"`
	Label     string        `json:"label"`
	Intent    domain.Intent `json:"intent"`
	BrandFit  float64       `json:"brand_fit"`
	Score     float64       `json:"score"`
	Keywords  []string      `json:"keywords"`
}

type promptExisting struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Slug      string   `json:"slug"`
	Platforms []string `json:"platforms"`
}

// BuildUserPayload renders the JSON user message: the chosen clusters and a
// compact projection of existing posts.
func BuildUserPayload(in Input, chosen []domain.Cluster) ([]byte, error) {
	payload := promptPayload{
		Brand:    in.Brand,
		Product:  in.Product,
		Locale:   in.Locale,
		Clusters: make([]promptCluster, 0, len(chosen)),
		Platform: in.Platform,
	}
	for _, c := range chosen {
		payload.Clusters = append(payload.Clusters, promptCluster{
			ClusterID: c.ID,
			Label:     c.Label,
			Intent:    c.Metrics.Intent,
			BrandFit:  c.Metrics.BrandFit,
			Score:     c.Metrics.Score,
			Keywords:  c.Keywords(payloadKeywords),
		})
	}
	for _, e := range in.Existing {
		payload.ExistingTopics = append(payload.ExistingTopics, promptExisting{
			Title:     strings.TrimSpace(e.Title),
			URL:       e.URL,
			Slug:      e.Slug,
			Platforms: e.Platforms,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal topic payload: %w", err)
	}
	return data, nil
}

const promptHead = `You are a "Blog Keyword Analyzer" agent.

CONTEXT
- The user message holds clustered keyword data from Google Keyword Planner or a similar tool.
- Propose high-impact blog post topics grounded in these clusters.
- Answer with STRICT JSON holding a single top-level key "topics".

EVERY topic object has these fields:
- "cluster_id": the identifier of the cluster that inspired the topic.
- "title": an SEO-friendly, compelling, non-clickbait post title.
- "angle": one short sentence naming the hook or perspective.
- "outline": 3 to 7 H2/H3-style section headings.
- "target_persona": one short description of the ideal reader.
- "primary_keyword": one keyword copied verbatim from that cluster.
- "supporting_keywords": 3 to 8 other keywords copied verbatim from the SAME cluster.
- "internal_links": 0 to 5 existing posts worth linking, as strings.

TOPIC COUNT
- Return between 10 and 20 topics.
- Fewer strong topics beat many weak ones.

CLUSTER & KEYWORD CONSISTENCY
- "cluster_id" is copied from the input cluster.
- "primary_keyword" matches one keyword of that cluster exactly.
- "supporting_keywords" match other keywords of the SAME cluster exactly.
- Never invent keywords or cluster ids.

DEDUPLICATION & EXISTING CONTENT
- The payload may carry "existing_topics", the posts already published.
- Never propose a topic whose title or core idea substantially overlaps an existing topic.
- Treat existing topics as taken angles and look for gaps.
- When "existing_topics" is absent or empty, ignore this section.

INTERNAL LINKS
- "internal_links" holds slugs or titles taken from "existing_topics" only.
- Use [] when nothing fits.

`

const promptTail = `
PRIORITIZATION
- Favor clusters with meaningful search volume and reasonable competition.
- Favor informational and commercial queries that suit blog content.
- De-prioritize very low-volume, overly broad or irrelevant terms.

STRICT JSON RULES
- Output JSON only: no markdown fences, no commentary.
- Use one object: {"topics": [ ... ]}.
- Double quotes around every key and string value.
- No trailing commas.
`

// BuildSystemPrompt renders the instructions. A non-empty label pins every
// title to that platform.
func BuildSystemPrompt(platformLabel string) string {
	var b strings.Builder
	b.WriteString(promptHead)
	b.WriteString("PLATFORM / LANGUAGE RULES\n")
	if platformLabel != "" {
		fmt.Fprintf(&b, "- This run targets the programming language/platform %q.\n", platformLabel)
		fmt.Fprintf(&b, "  1) Every topic is written for %s only.\n", platformLabel)
		fmt.Fprintf(&b, "  2) Every \"title\" contains the text %q. A title without it makes the response INVALID.\n", platformLabel)
		b.WriteString("  3) Titles and angles never mention another language or platform.\n")
		b.WriteString("  4) Outlines assume code examples in this language/platform only.\n")
	} else {
		b.WriteString("- No platform is given.\n")
		b.WriteString("- Propose language-agnostic topics or topics relevant across languages.\n")
	}
	b.WriteString(promptTail)
	return b.String()
}
