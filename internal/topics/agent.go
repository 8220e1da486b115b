// Package topics turns scored clusters into blog topic ideas through one LLM
// call and filters them against published content.
package topics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

const defaultTemperature = 0.2

// Input is everything the agent needs for one call.
type Input struct {
	Brand    string
	Product  string
	Locale   string
	Clusters []domain.Cluster
	TopN     int
	// Platform is the canonical name sent in the payload; PlatformLabel is
	// the display form every title must contain.
	Platform      string
	PlatformLabel string
	Existing      []domain.ExistingPost
}

// Generation is the outcome of one agent call.
type Generation struct {
	Topics       []domain.TopicIdea
	Outcome      ParseOutcome
	Dropped      int
	Reconcile    ReconcileStats
	Usage        domain.TokenUsage
	Duration     time.Duration
	ClustersUsed int
	Called       bool
}

// Agent asks the LLM for topic ideas.
type Agent struct {
	chat        ports.ChatClient
	temperature float64
	jsonMode    bool
	logger      *slog.Logger
}

// NewAgent wires the chat client. A zero temperature falls back to 0.2.
func NewAgent(chat ports.ChatClient, temperature float64, jsonMode bool, log *slog.Logger) *Agent {
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Agent{chat: chat, temperature: temperature, jsonMode: jsonMode, logger: log}
}

// Generate sends the top clusters and returns parsed, reconciled topics.
// Malformed model output yields zero topics and no error; a failed call is
// returned as an error.
func (a *Agent) Generate(ctx context.Context, in Input) (Generation, error) {
	if len(in.Clusters) == 0 {
		a.warn("no clusters to generate topics from")
		return Generation{Outcome: ParsedDirect}, nil
	}
	if a.chat == nil {
		return Generation{}, domain.ErrLLMNotConfigured
	}

	chosen := in.Clusters
	if in.TopN > 0 && in.TopN < len(chosen) {
		chosen = chosen[:in.TopN]
	}

	payload, err := BuildUserPayload(in, chosen)
	if err != nil {
		return Generation{}, err
	}

	a.info("calling llm for topics",
		"brand", in.Brand,
		"product", in.Product,
		"clusters_used", len(chosen),
		"platform", in.Platform,
		"existing_topics", len(in.Existing),
	)

	started := time.Now()
	resp, err := a.chat.Complete(ctx, domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: "system", Content: BuildSystemPrompt(in.PlatformLabel)},
			{Role: "user", Content: string(payload)},
		},
		Temperature: a.temperature,
		JSONMode:    a.jsonMode,
	})
	gen := Generation{ClustersUsed: len(chosen), Called: true, Duration: time.Since(started)}
	if err != nil {
		return gen, fmt.Errorf("generate topics: %w", err)
	}
	gen.Usage = resp.Usage

	parsed := ParseTopics(resp.Content)
	gen.Outcome = parsed.Outcome
	gen.Dropped = parsed.Dropped
	if parsed.Outcome == Unparseable || parsed.Outcome == WrongShape {
		a.warn("llm response unusable, continuing without topics", "outcome", parsed.Outcome.String())
	}

	gen.Topics, gen.Reconcile = Reconcile(parsed.Topics, chosen, in.Existing, in.PlatformLabel)
	a.info("parsed topics",
		"valid", len(gen.Topics),
		"invalid_entries", parsed.Dropped,
		"off_contract", gen.Reconcile.Dropped(),
		"repaired_primary", gen.Reconcile.RepairedPrimary,
		"prompt_tokens", gen.Usage.PromptTokens,
		"completion_tokens", gen.Usage.CompletionTokens,
	)
	return gen, nil
}

func (a *Agent) info(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Agent) warn(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
