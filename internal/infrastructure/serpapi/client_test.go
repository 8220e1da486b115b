package serpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
)

const sampleResponse = `{
  "organic_results": [
    {"title": "Convert PDF to Word in Java", "snippet": "Use Aspose.Words for Java"},
    {"title": "convert pdf to word in java", "snippet": ""}
  ],
  "people_also_ask": [{"question": "How do I convert PDF to DOCX?"}],
  "related_searches": [{"query": "pdf to word java library"}, {"title": "pdf to docx java"}]
}`

func TestClientFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Aspose.Words pdf to word" || q.Get("hl") != "de" || q.Get("gl") != "at" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("api_key") != "key" || q.Get("engine") != "google" {
			t.Errorf("unexpected credentials %v", q)
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient(config.SerpAPIConfig{Endpoint: srv.URL, APIKey: "key"})
	records, err := client.Fetch(context.Background(), domain.KeywordQuery{Product: "Aspose.Words", Topic: "pdf to word", Locale: "de_AT"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := []string{
		"convert pdf to word in java",
		"use aspose.words for java",
		"how do i convert pdf to docx?",
		"pdf to word java library",
		"pdf to docx java",
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, rec := range records {
		if rec.Keyword != want[i] {
			t.Fatalf("record %d = %q, want %q", i, rec.Keyword, want[i])
		}
		if rec.Source != domain.SourceSerpAPI || rec.Locale != "de_AT" || rec.Volume != nil {
			t.Fatalf("unexpected record %+v", rec)
		}
	}
}

func TestClientFetchCaps(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient(config.SerpAPIConfig{Endpoint: srv.URL, APIKey: "key"})
	records, err := client.Fetch(context.Background(), domain.KeywordQuery{Product: "x", MaxRows: 2})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestClientUnavailable(t *testing.T) {
	t.Parallel()

	client := NewClient(config.SerpAPIConfig{Endpoint: "http://127.0.0.1:1"})
	if client.Available() {
		t.Fatalf("client without key must be unavailable")
	}
	if _, err := client.Fetch(context.Background(), domain.KeywordQuery{}); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestClientBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(config.SerpAPIConfig{Endpoint: srv.URL, APIKey: "bad"})
	if _, err := client.Fetch(context.Background(), domain.KeywordQuery{Product: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLocaleToHLGL(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, hl, gl string }{
		{"en-US", "en", "us"},
		{"fr", "fr", "us"},
		{"", "en", "us"},
	}
	for _, tc := range cases {
		hl, gl := localeToHLGL(tc.in)
		if hl != tc.hl || gl != tc.gl {
			t.Fatalf("localeToHLGL(%q) = %s, %s", tc.in, hl, gl)
		}
	}
}
