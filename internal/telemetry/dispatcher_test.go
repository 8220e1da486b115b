package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"KeywordAnalyzer/internal/config"
)

type captured struct {
	mu       sync.Mutex
	tokens   []string
	payloads []map[string]any
}

func (c *captured) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.tokens = append(c.tokens, r.URL.Query().Get("token"))
		c.payloads = append(c.payloads, body)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func testStage() Stage {
	return Stage{
		Job:           "Keyword Clustering",
		RunID:         "ab12cd34kc",
		Status:        StatusSuccess,
		Product:       "Aspose.Words",
		PlatformLabel: "Java",
		Website:       "aspose.com",
		Section:       "Blog",
		ItemName:      ItemKeywords,
		Discovered:    10,
		Succeeded:     9,
		Failed:        1,
		Duration:      1234 * time.Millisecond,
		Extra:         map[string]any{"keywords_processed": 12, "status": "overridden?"},
	}
}

func TestStagePayload(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("PKT", 5*3600)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)
	p := testStage().Payload(Identity{AgentName: "KA", AgentOwner: "Team"}, at)

	if p["timestamp"] != "2026-03-01T10:00:00+05:00" {
		t.Fatalf("unexpected timestamp %v", p["timestamp"])
	}
	if p["status"] != StatusSuccess || p["keywords_processed"] != 12 {
		t.Fatalf("extras must not override common fields: %v", p)
	}
	if p["run_duration_ms"] != int64(1234) || p["item_name"] != "Keywords" || p["website_section"] != "Blog" {
		t.Fatalf("unexpected payload %v", p)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string { return "deadline exceeded" }

func TestFailureFields(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("generate topics: %w", &timeoutError{})
	f := FailureFields(err)
	if f["error_message"] != "generate topics: deadline exceeded" || f["exc_type"] != "timeoutError" {
		t.Fatalf("unexpected fields %v", f)
	}
	if got := errorType(errors.New("x")); got != "errorString" {
		t.Fatalf("unexpected type %q", got)
	}
}

func TestDispatcherSendsToBothWebhooks(t *testing.T) {
	t.Parallel()

	primary, internal := &captured{}, &captured{}
	ps := httptest.NewServer(primary.handler(http.StatusOK))
	defer ps.Close()
	is := httptest.NewServer(internal.handler(http.StatusAccepted))
	defer is.Close()

	d := FromConfig(config.TelemetryConfig{
		AgentName:          "KA",
		WebhookURL:         ps.URL,
		Token:              "t1",
		InternalWebhookURL: is.URL + "/hook?x=1",
		InternalToken:      "t2",
		RunEnv:             "PROD",
		Timeout:            time.Second,
	}, nil)

	if n := d.Emit(context.Background(), testStage()); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if len(primary.payloads) != 1 || primary.tokens[0] != "t1" {
		t.Fatalf("primary not called correctly: %v", primary.tokens)
	}
	if _, ok := primary.payloads[0]["run_env"]; ok {
		t.Fatalf("primary payload must not carry run_env")
	}
	if len(internal.payloads) != 1 || internal.tokens[0] != "t2" || internal.payloads[0]["run_env"] != "PROD" {
		t.Fatalf("internal payload wrong: %v", internal.payloads)
	}
	if internal.payloads[0]["agent_name"] != "KA" {
		t.Fatalf("identity missing from payload")
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	t.Parallel()

	failing := &captured{}
	srv := httptest.NewServer(failing.handler(http.StatusInternalServerError))
	defer srv.Close()

	d := FromConfig(config.TelemetryConfig{WebhookURL: srv.URL, Token: "t"}, nil)
	if n := d.Emit(context.Background(), testStage()); n != 0 {
		t.Fatalf("expected no successful delivery, got %d", n)
	}
	if len(failing.payloads) != 1 {
		t.Fatalf("expected one attempt")
	}
}

func TestDispatcherDisabledWithoutToken(t *testing.T) {
	t.Parallel()

	hits := &captured{}
	srv := httptest.NewServer(hits.handler(http.StatusOK))
	defer srv.Close()

	d := FromConfig(config.TelemetryConfig{WebhookURL: srv.URL, InternalWebhookURL: srv.URL, InternalToken: "t"}, nil)
	if d.Enabled() || d.Emit(context.Background(), testStage()) != 0 {
		t.Fatalf("dispatcher must be disabled without primary token")
	}
	if len(hits.payloads) != 0 {
		t.Fatalf("no request expected")
	}
}
