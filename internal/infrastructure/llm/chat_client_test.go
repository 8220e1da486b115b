package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
)

func TestChatClientComplete(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected auth header %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"topics\":[]}"}}],"usage":{"prompt_tokens":120,"completion_tokens":30}}`))
	}))
	defer srv.Close()

	client := NewChatClient(config.LLMConfig{Endpoint: srv.URL + "/v1/", Model: "gpt-oss", APIKey: "secret", Timeout: time.Second})
	resp, err := client.Complete(context.Background(), domain.ChatRequest{
		Messages:    []domain.ChatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}},
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != `{"topics":[]}` {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Usage.PromptTokens != 120 || resp.Usage.CompletionTokens != 30 || resp.Usage.TotalTokens != 150 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if got["model"] != "gpt-oss" || got["temperature"] != 0.2 {
		t.Fatalf("unexpected payload %v", got)
	}
	if format, ok := got["response_format"].(map[string]any); !ok || format["type"] != "json_object" {
		t.Fatalf("expected json response format, got %v", got["response_format"])
	}
}

func TestChatClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewChatClient(config.LLMConfig{Endpoint: srv.URL + "/chat/completions", Model: "m"})
	if _, err := client.Complete(context.Background(), domain.ChatRequest{}); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestChatClientNotConfigured(t *testing.T) {
	t.Parallel()

	client := NewChatClient(config.LLMConfig{})
	if _, err := client.Complete(context.Background(), domain.ChatRequest{}); !errors.Is(err, domain.ErrLLMNotConfigured) {
		t.Fatalf("expected ErrLLMNotConfigured, got %v", err)
	}
}

func TestCompletionsURL(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := completionsURL(tc.in); got != tc.want {
			t.Fatalf("completionsURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
