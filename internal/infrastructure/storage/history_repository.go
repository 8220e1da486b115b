package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

// Supported history drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	historyTable      = "kra_runs"
	defaultSQLiteFile = "kra_history.db"
	timestampLayout   = "2006-01-02T15:04:05.000000Z07:00"
)

var historyColumns = []string{
	"run_id", "recorded_at", "brand", "product", "platform", "locale", "file_path",
	"keywords_processed", "clusters_created", "clusters_used",
	"topics_generated_raw", "topics_after_dedup", "existing_topics", "duplicates_dropped",
	"llm_requests", "llm_failures", "llm_duration_seconds",
	"llm_prompt_tokens", "llm_completion_tokens", "llm_total_tokens",
	"content_index_calls", "content_index_errors", "content_index_seconds",
	"run_duration_seconds", "success", "error_message", "summary",
}

// HistoryRepository appends finished runs to the kra_runs table.
type HistoryRepository struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
}

var _ ports.HistoryStore = (*HistoryRepository)(nil)

// Open connects to the configured history database. An empty sqlite DSN
// places the file in dir.
func Open(cfg config.HistoryConfig, dir string) (*sql.DB, string, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("create history dir: %w", err)
			}
			dsn = filepath.Join(dir, defaultSQLiteFile)
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, "", fmt.Errorf("history: postgres driver needs a dsn")
		}
		if _, err := pq.NewConnector(dsn); err != nil {
			return nil, "", fmt.Errorf("history dsn: %w", err)
		}
	default:
		return nil, "", fmt.Errorf("history: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open history db: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, driver, nil
}

// NewHistoryRepository wires a sql.DB for the given driver.
func NewHistoryRepository(db *sql.DB, driver string) *HistoryRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &HistoryRepository{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// EnsureSchema creates the history table when missing.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	idColumn, boolType := "id INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER"
	if r.driver == DriverPostgres {
		idColumn, boolType = "id BIGSERIAL PRIMARY KEY", "BOOLEAN"
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s,
		run_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		brand TEXT NOT NULL,
		product TEXT NOT NULL,
		platform TEXT NOT NULL DEFAULT '',
		locale TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL DEFAULT '',
		keywords_processed INTEGER NOT NULL DEFAULT 0,
		clusters_created INTEGER NOT NULL DEFAULT 0,
		clusters_used INTEGER NOT NULL DEFAULT 0,
		topics_generated_raw INTEGER NOT NULL DEFAULT 0,
		topics_after_dedup INTEGER NOT NULL DEFAULT 0,
		existing_topics INTEGER NOT NULL DEFAULT 0,
		duplicates_dropped INTEGER NOT NULL DEFAULT 0,
		llm_requests INTEGER NOT NULL DEFAULT 0,
		llm_failures INTEGER NOT NULL DEFAULT 0,
		llm_duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		llm_prompt_tokens INTEGER NOT NULL DEFAULT 0,
		llm_completion_tokens INTEGER NOT NULL DEFAULT 0,
		llm_total_tokens INTEGER NOT NULL DEFAULT 0,
		content_index_calls INTEGER NOT NULL DEFAULT 0,
		content_index_errors INTEGER NOT NULL DEFAULT 0,
		content_index_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		run_duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		success %s NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT ''
	)`, pq.QuoteIdentifier(historyTable), idColumn, boolType)

	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// AppendRun inserts one run.
func (r *HistoryRepository) AppendRun(ctx context.Context, rec domain.RunRecord) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.Insert(historyTable).
		Columns(historyColumns...).
		Values(
			rec.RunID, rec.Timestamp.UTC().Format(timestampLayout), rec.Brand, rec.Product,
			rec.Platform, rec.Locale, rec.FilePath,
			rec.KeywordsProcessed, rec.ClustersCreated, rec.ClustersUsed,
			rec.TopicsGeneratedRaw, rec.TopicsAfterDedup, rec.ExistingTopics, rec.DuplicatesDropped,
			rec.LLMRequests, rec.LLMFailures, rec.LLMDurationSeconds,
			rec.LLMPromptTokens, rec.LLMCompletionTokens, rec.TotalTokens(),
			rec.ContentIndexCalls, rec.ContentIndexErrors, rec.ContentIndexSeconds,
			rec.RunDurationSeconds, rec.Success, rec.ErrorMessage, rec.Summary,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *HistoryRepository) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := r.builder.Select(historyColumns...).
		From(historyTable).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var result []domain.RunRecord
	for rows.Next() {
		var (
			rec         domain.RunRecord
			recordedAt  string
			totalTokens int
		)
		if err := rows.Scan(
			&rec.RunID, &recordedAt, &rec.Brand, &rec.Product, &rec.Platform, &rec.Locale, &rec.FilePath,
			&rec.KeywordsProcessed, &rec.ClustersCreated, &rec.ClustersUsed,
			&rec.TopicsGeneratedRaw, &rec.TopicsAfterDedup, &rec.ExistingTopics, &rec.DuplicatesDropped,
			&rec.LLMRequests, &rec.LLMFailures, &rec.LLMDurationSeconds,
			&rec.LLMPromptTokens, &rec.LLMCompletionTokens, &totalTokens,
			&rec.ContentIndexCalls, &rec.ContentIndexErrors, &rec.ContentIndexSeconds,
			&rec.RunDurationSeconds, &rec.Success, &rec.ErrorMessage, &rec.Summary,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := time.Parse(timestampLayout, recordedAt); err == nil {
			rec.Timestamp = ts
		}
		result = append(result, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}
