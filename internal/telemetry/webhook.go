package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"KeywordAnalyzer/internal/ports"
)

const defaultTimeout = 5 * time.Second

// WebhookSink posts stage payloads as JSON with the token as a query
// parameter.
type WebhookSink struct {
	name     string
	endpoint string
	token    string
	stamp    map[string]any
	client   *http.Client
}

var _ ports.TelemetrySink = (*WebhookSink)(nil)

// NewWebhookSink registers an endpoint and token. Stamp fields are added to
// every payload sent through this sink.
func NewWebhookSink(name, endpoint, token string, timeout time.Duration, stamp map[string]any) *WebhookSink {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &WebhookSink{
		name:     name,
		endpoint: endpoint,
		token:    token,
		stamp:    stamp,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the sink in logs.
func (w *WebhookSink) Name() string { return w.name }

// Configured reports whether both url and token are set.
func (w *WebhookSink) Configured() bool {
	return w.endpoint != "" && w.token != ""
}

// Send posts one payload.
func (w *WebhookSink) Send(ctx context.Context, payload map[string]any) error {
	if !w.Configured() || w.client == nil {
		return fmt.Errorf("webhook %s misconfigured", w.name)
	}

	body := payload
	if len(w.stamp) > 0 {
		body = make(map[string]any, len(payload)+len(w.stamp))
		for k, v := range payload {
			body[k] = v
		}
		for k, v := range w.stamp {
			body[k] = v
		}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	u, err := url.Parse(w.endpoint)
	if err != nil {
		return fmt.Errorf("parse webhook url: %w", err)
	}
	q := u.Query()
	q.Set("token", w.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s error: %s", w.name, resp.Status)
	}
	return nil
}
