package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"KeywordAnalyzer/internal/analysis"
	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/infrastructure/contentindex"
	"KeywordAnalyzer/internal/infrastructure/importer"
	"KeywordAnalyzer/internal/infrastructure/llm"
	"KeywordAnalyzer/internal/infrastructure/report"
	"KeywordAnalyzer/internal/infrastructure/serpapi"
	"KeywordAnalyzer/internal/infrastructure/storage"
	"KeywordAnalyzer/internal/logging"
	"KeywordAnalyzer/internal/platform"
	"KeywordAnalyzer/internal/ports"
	"KeywordAnalyzer/internal/source"
	"KeywordAnalyzer/internal/telemetry"
	"KeywordAnalyzer/internal/topics"
	"KeywordAnalyzer/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	platforms *platform.Table
	registry  *source.Registry
	agent     *topics.Agent
	telemetry *telemetry.Dispatcher
	artifacts ports.ArtifactWriter
	history   *storage.HistoryRepository
	db        *sql.DB
}

var _ usecase.Runner = (*Application)(nil)

// New builds the adapters once. A history store that cannot be opened is
// logged and left out.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := source.NewRegistry()
	registry.Register(importer.NewFileSource(cfg.Data.DataDir, cfg.Data.DefaultLocations, baseLogger.With("component", "source.upload")))
	registry.Register(serpapi.NewClient(cfg.SerpAPI))

	a := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		platforms: platform.NewTable(cfg.Platforms),
		registry:  registry,
		agent:     topics.NewAgent(llm.NewChatClient(cfg.LLM), cfg.LLM.Temperature, cfg.LLM.JSONMode, baseLogger.With("component", "topics")),
		telemetry: telemetry.FromConfig(cfg.Telemetry, baseLogger.With("component", "telemetry")),
		artifacts: report.NewFileWriter(cfg.Data.OutputDir, true, baseLogger.With("component", "report")),
	}

	db, driver, err := storage.Open(cfg.History, cfg.Data.OutputDir)
	if err != nil {
		baseLogger.Warn("run history disabled", "err", err)
		return a
	}
	repo := storage.NewHistoryRepository(db, driver)
	if err := repo.EnsureSchema(ctx); err != nil {
		baseLogger.Warn("run history disabled", "err", err)
		_ = db.Close()
		return a
	}
	a.db, a.history = db, repo
	return a
}

// Close releases the history database.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Config returns the loaded configuration.
func (a *Application) Config() config.Config { return a.cfg }

// Run executes one pipeline run with the sources and content root named in
// opts.
func (a *Application) Run(ctx context.Context, req domain.RunRequest, opts usecase.RunOptions) (domain.RunResult, *telemetry.RunMetrics, error) {
	if req.Weights.IsZero() {
		req.Weights = a.cfg.Scoring.Weights
	}
	if req.TopClusters <= 0 {
		req.TopClusters = a.cfg.Scoring.TopClusters
	}
	if req.MaxRows <= 0 {
		req.MaxRows = a.cfg.Scoring.MaxRows
	}
	return a.pipeline(opts).Run(ctx, req, opts)
}

func (a *Application) pipeline(opts usecase.RunOptions) *usecase.Pipeline {
	sources := opts.Sources
	if len(sources) == 0 {
		sources = []string{string(domain.SourceUpload)}
	}

	var history ports.HistoryStore
	if a.history != nil {
		history = a.history
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Importer:     source.NewStrategySource(a.registry, sources, a.logger.With("component", "source")),
		ContentIndex: a.contentIndex(opts.ContentRoot),
		Agent:        a.agent,
		Telemetry:    a.telemetry,
		History:      history,
		Artifacts:    a.artifacts,
		Brands:       a.cfg,
		Platforms:    a.platforms,
		Stages: usecase.StageNames{
			Clustering:      a.cfg.Telemetry.ClusteringJob,
			TopicGeneration: a.cfg.Telemetry.TopicGenerationJob,
		},
		Identity: telemetry.Identity{
			AgentName:  a.cfg.Telemetry.AgentName,
			AgentOwner: a.cfg.Telemetry.AgentOwner,
			JobType:    telemetry.DefaultJobType,
		},
		Logger: a.logger.With("component", "pipeline"),
	})
}

// contentIndex prefers an explicit root, then the prebuilt index file, then
// the configured feed, then the configured root.
func (a *Application) contentIndex(root string) ports.ContentIndex {
	log := a.logger.With("component", "contentindex")
	switch {
	case root != "":
		return contentindex.NewDirectoryIndex(root, a.platforms, log)
	case a.cfg.ContentIndex.IndexFile != "":
		return contentindex.NewFileIndex(a.cfg.ContentIndex.IndexFile, log)
	case a.cfg.ContentIndex.FeedURL != "":
		return contentindex.NewFeedIndex(a.cfg.ContentIndex.FeedURL, a.platforms, log)
	default:
		return contentindex.NewDirectoryIndex(a.cfg.ContentIndex.Root, a.platforms, log)
	}
}

// Lookup lists existing posts for a product and platform.
func (a *Application) Lookup(ctx context.Context, product, platformName, root string) ([]domain.ExistingPost, error) {
	return a.contentIndex(root).Lookup(ctx, analysis.ProductCode(product), a.platforms.Canonicalize(platformName))
}

// BuildIndex writes the content tree under root (or the configured root)
// to out (or the configured index file).
func (a *Application) BuildIndex(ctx context.Context, root, out string) (string, int, error) {
	if root == "" {
		root = a.cfg.ContentIndex.Root
	}
	if out == "" {
		out = a.cfg.ContentIndex.IndexFile
	}
	if out == "" {
		return "", 0, fmt.Errorf("build index: no output file; set contentIndex.indexFile or pass one")
	}
	dir := contentindex.NewDirectoryIndex(root, a.platforms, a.logger.With("component", "contentindex"))
	n, err := contentindex.BuildIndexFile(ctx, dir, out)
	if err != nil {
		return "", 0, fmt.Errorf("build index: %w", err)
	}
	a.logger.Info("content index built", "root", root, "path", out, "posts", n)
	return out, n, nil
}

// RecentRuns reads run history, newest first.
func (a *Application) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.RecentRuns(ctx, limit)
}

// JobItem turns a saved job into a batch item.
func (a *Application) JobItem(name string, job config.Job) usecase.BatchItem {
	e := job.Engine
	sources := []string{string(domain.SourceUpload)}
	if e.UseSerpAPI {
		sources = []string{string(domain.SourceSerpAPI)}
	}
	return usecase.BatchItem{
		Name: name,
		Request: domain.RunRequest{
			Brand:        e.Brand,
			Product:      e.Product,
			Locale:       e.Locale,
			FilePath:     e.InputFile,
			ClusterCount: e.ClusterCount,
			TopClusters:  e.TopClusters,
			MaxRows:      e.MaxRows,
		},
		Options: usecase.RunOptions{
			Platform:        e.Platform,
			UseContentIndex: e.ContentIndexEnabled(),
			Topic:           e.SerpTopic,
			Sources:         sources,
			ContentRoot:     job.ContentIndex.LocalRoot,
		},
	}
}
