package ports

import (
	"context"

	"KeywordAnalyzer/internal/domain"
)

// KeywordSource yields raw keyword records from one origin (upload file,
// search API).
type KeywordSource interface {
	Name() string
	Available() bool
	Fetch(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error)
}

// KeywordImporter produces the records for one run.
type KeywordImporter interface {
	Import(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error)
}

// ContentIndex lists already published posts for a product and canonical
// platform. An empty platform matches every post of the product.
type ContentIndex interface {
	Lookup(ctx context.Context, productCode, platform string) ([]domain.ExistingPost, error)
}

// ChatClient performs one chat completion against an LLM API.
type ChatClient interface {
	Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
}

// TelemetrySink delivers one stage payload. Callers log failures and move on.
type TelemetrySink interface {
	Send(ctx context.Context, payload map[string]any) error
}

// HistoryStore keeps one row per finished run.
type HistoryStore interface {
	AppendRun(ctx context.Context, record domain.RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}

// ArtifactWriter persists the outputs of a finished run and returns the
// written paths.
type ArtifactWriter interface {
	WriteArtifacts(ctx context.Context, result domain.RunResult) ([]string, error)
}
