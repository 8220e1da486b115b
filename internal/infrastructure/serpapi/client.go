package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

const defaultMaxKeywords = 50

var localeSplit = regexp.MustCompile(`[-_]`)

// Client harvests keyword ideas from Google result pages through SerpAPI.
// Result pages carry no volume, difficulty or CPC, so those stay unset.
type Client struct {
	endpoint string
	apiKey   string
	engine   string
	http     *http.Client
}

var _ ports.KeywordSource = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.SerpAPIConfig) *Client {
	engine := cfg.Engine
	if engine == "" {
		engine = "google"
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		engine:   engine,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the source inside the registry.
func (c *Client) Name() string { return string(domain.SourceSerpAPI) }

// Available reports whether an API key is configured.
func (c *Client) Available() bool { return c.apiKey != "" && c.endpoint != "" }

type searchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	RelatedQuestions []question `json:"related_questions"`
	PeopleAlsoAsk    []question `json:"people_also_ask"`
	RelatedSearches  []struct {
		Query string `json:"query"`
		Title string `json:"title"`
	} `json:"related_searches"`
}

type question struct {
	Question string `json:"question"`
	Title    string `json:"title"`
}

// Fetch queries "{product} {topic}" and returns organic titles and snippets,
// related questions and related searches, in that order.
func (c *Client) Fetch(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: serpapi key is not configured", domain.ErrSourceUnavailable)
	}

	locale := query.Locale
	if locale == "" {
		locale = domain.DefaultLocale
	}
	hl, gl := localeToHLGL(locale)

	params := url.Values{}
	params.Set("engine", c.engine)
	params.Set("q", strings.TrimSpace(query.Product+" "+query.Topic))
	params.Set("hl", hl)
	params.Set("gl", gl)
	params.Set("api_key", c.apiKey)

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	limit := query.MaxRows
	if limit <= 0 {
		limit = defaultMaxKeywords
	}
	return collect(resp, locale, limit), nil
}

func collect(resp searchResponse, locale string, limit int) []domain.KeywordRecord {
	var phrases []string
	for _, item := range resp.OrganicResults {
		phrases = append(phrases, item.Title, item.Snippet)
	}
	questions := resp.RelatedQuestions
	if len(questions) == 0 {
		questions = resp.PeopleAlsoAsk
	}
	for _, q := range questions {
		phrases = append(phrases, firstNonEmpty(q.Question, q.Title))
	}
	for _, item := range resp.RelatedSearches {
		phrases = append(phrases, firstNonEmpty(item.Query, item.Title))
	}

	seen := map[string]struct{}{}
	out := make([]domain.KeywordRecord, 0, min(len(phrases), limit))
	for _, phrase := range phrases {
		rec, ok := domain.NewKeywordRecord(phrase, domain.SourceSerpAPI, locale)
		if !ok {
			continue
		}
		if _, dup := seen[rec.Keyword]; dup {
			continue
		}
		seen[rec.Keyword] = struct{}{}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// localeToHLGL converts "en-US" into SerpAPI's hl=en, gl=us.
func localeToHLGL(locale string) (string, string) {
	parts := localeSplit.Split(strings.TrimSpace(locale), -1)
	if len(parts) == 0 || parts[0] == "" {
		return "en", "us"
	}
	if len(parts) == 1 {
		return strings.ToLower(parts[0]), "us"
	}
	return strings.ToLower(parts[0]), strings.ToLower(parts[1])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serpapi returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
