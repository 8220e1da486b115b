package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

const completionsPath = "/chat/completions"

// ChatClient implements ports.ChatClient backed by OpenAI-compatible APIs.
type ChatClient struct {
	endpoint   string
	model      string
	apiKey     string
	jsonMode   bool
	httpClient *http.Client
}

var _ ports.ChatClient = (*ChatClient)(nil)

// NewChatClient builds a client from configuration. A base URL such as
// "https://host/v1" is completed with the chat completions path.
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatClient{
		endpoint: completionsURL(cfg.Endpoint),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		jsonMode: cfg.JSONMode,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func completionsURL(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" || strings.HasSuffix(endpoint, completionsPath) {
		return endpoint
	}
	return endpoint + completionsPath
}

type chatPayload struct {
	Model          string               `json:"model"`
	Messages       []domain.ChatMessage `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage domain.TokenUsage `json:"usage"`
}

// Complete sends the messages and returns the first choice.
func (c *ChatClient) Complete(ctx context.Context, in domain.ChatRequest) (domain.ChatResponse, error) {
	if c == nil || c.endpoint == "" || c.model == "" {
		return domain.ChatResponse{}, domain.ErrLLMNotConfigured
	}

	payload := chatPayload{
		Model:       c.model,
		Messages:    in.Messages,
		Temperature: in.Temperature,
	}
	if in.JSONMode || c.jsonMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.ChatResponse{}, fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return domain.ChatResponse{Usage: decoded.Usage}, nil
	}

	usage := decoded.Usage
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return domain.ChatResponse{
		Content: decoded.Choices[0].Message.Content,
		Usage:   usage,
	}, nil
}
