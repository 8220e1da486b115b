package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"KeywordAnalyzer/internal/analysis"
	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/platform"
	"KeywordAnalyzer/internal/ports"
	"KeywordAnalyzer/internal/telemetry"
	"KeywordAnalyzer/internal/topics"
)

// Run event types.
const (
	EventRunStarted          = "KRA_RUN_STARTED"
	EventContentIndexSkipped = "CONTENT_INDEX_SKIPPED"
	EventContentIndexFailed  = "CONTENT_INDEX_FAILED"
	EventRunCompleted        = "KRA_RUN_COMPLETED"
	EventRunFailed           = "KRA_RUN_FAILED"
)

// Step names recorded in RunMetrics.
const (
	StepImport       = "import"
	StepPreprocess   = "preprocess"
	StepCluster      = "cluster"
	StepAnnotate     = "annotate_intent_brand"
	StepScore        = "score"
	StepContentIndex = "content_index"
	StepGenerate     = "generate_topics"
	StepDedup        = "dedup"
)

// BrandResolver maps a brand to the website/section pair used in telemetry.
type BrandResolver interface {
	ResolveBrand(brand string) (website, section string, err error)
}

// StageNames are the job types reported for each stage.
type StageNames struct {
	Clustering      string
	TopicGeneration string
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Importer     ports.KeywordImporter
	ContentIndex ports.ContentIndex
	Agent        *topics.Agent
	Telemetry    *telemetry.Dispatcher
	History      ports.HistoryStore
	Artifacts    ports.ArtifactWriter
	Brands       BrandResolver
	Platforms    *platform.Table
	Stages       StageNames
	Identity     telemetry.Identity
	Logger       *slog.Logger
	NewRunID     func() string
	Clock        func() time.Time
}

// RunOptions are per-invocation switches that are not part of the request.
type RunOptions struct {
	Platform        string
	UseContentIndex bool
	// Topic narrows search-API sources.
	Topic string
	// Records, when set, replace the importer.
	Records []domain.KeywordRecord
	// Sources and ContentRoot select adapters; the application wiring reads
	// them when it builds the pipeline for a run.
	Sources     []string
	ContentRoot string
}

// Pipeline runs keyword clustering followed by topic generation.
type Pipeline struct {
	importer  ports.KeywordImporter
	index     ports.ContentIndex
	agent     *topics.Agent
	telemetry *telemetry.Dispatcher
	history   ports.HistoryStore
	artifacts ports.ArtifactWriter
	brands    BrandResolver
	platforms *platform.Table
	stages    StageNames
	identity  telemetry.Identity
	logger    *slog.Logger
	newRunID  func() string
	clock     func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		importer:  deps.Importer,
		index:     deps.ContentIndex,
		agent:     deps.Agent,
		telemetry: deps.Telemetry,
		history:   deps.History,
		artifacts: deps.Artifacts,
		brands:    deps.Brands,
		platforms: deps.Platforms,
		stages:    deps.Stages,
		identity:  deps.Identity,
		logger:    deps.Logger,
		newRunID:  deps.NewRunID,
		clock:     deps.Clock,
	}
	if p.newRunID == nil {
		p.newRunID = shortRunID
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.platforms == nil {
		p.platforms = platform.NewTable(nil)
	}
	if p.identity == (telemetry.Identity{}) && p.telemetry != nil {
		p.identity = p.telemetry.Identity()
	}
	if p.stages.Clustering == "" {
		p.stages.Clustering = "Keyword Clustering"
	}
	if p.stages.TopicGeneration == "" {
		p.stages.TopicGeneration = "Topics Generation"
	}
	return p
}

func shortRunID() string {
	return uuid.NewString()[:8]
}

// run carries the state shared by both stages of one invocation.
type run struct {
	req        domain.RunRequest
	opts       RunOptions
	id         string
	metrics    *telemetry.RunMetrics
	website    string
	section    string
	platform   string
	label      string
	stage      string
	stageStart time.Time
	llmCall    time.Duration
}

// Run executes one pipeline invocation. The returned metrics are finished in
// every case. A failed stage is reported as *domain.StageError after its
// failed-stage telemetry has been sent; configuration errors are returned
// before any stage or network call.
func (p *Pipeline) Run(ctx context.Context, req domain.RunRequest, opts RunOptions) (domain.RunResult, *telemetry.RunMetrics, error) {
	req = req.WithDefaults()

	r := &run{req: req, opts: opts, id: p.newRunID()}
	r.platform = p.platforms.Canonicalize(opts.Platform)
	r.label = p.platforms.Display(opts.Platform)

	m := telemetry.NewRunMetrics(p.identity, r.id, p.clock)
	m.Brand, m.Product, m.Locale = req.Brand, req.Product, req.Locale
	m.Platform, m.FilePath = r.platform, req.FilePath
	m.AddEvent(EventRunStarted, "keyword analyzer run started", nil)
	r.metrics = m

	if err := req.Validate(); err != nil {
		m.Finish(false, err.Error())
		return domain.RunResult{}, m, err
	}
	website, section, err := p.resolveBrand(req.Brand)
	if err != nil {
		m.Finish(false, err.Error())
		p.warn("run rejected", "run_id", r.id, "brand", req.Brand, "err", err)
		return domain.RunResult{}, m, err
	}
	r.website, r.section = website, section

	p.info("run started",
		"run_id", r.id,
		"brand", req.Brand,
		"product", req.Product,
		"locale", req.Locale,
		"platform", r.platform,
		"content_index", opts.UseContentIndex,
	)

	clusters, err := p.clusterKeywords(ctx, r)
	if err != nil {
		return domain.RunResult{}, m, p.fail(ctx, r, err)
	}

	ideas, err := p.generateTopics(ctx, r, clusters)
	if err != nil {
		return domain.RunResult{}, m, p.fail(ctx, r, err)
	}

	m.Finish(true, "")
	m.AddEvent(EventRunCompleted, "run completed successfully", map[string]any{
		"clusters_used": m.ClustersUsedForTopics,
		"topics_final":  m.TopicsAfterDedup,
	})

	capped := clusters
	if len(capped) > req.TopClusters {
		capped = capped[:req.TopClusters]
	}
	result := domain.RunResult{
		RunID:    r.id,
		Brand:    req.Brand,
		Product:  req.Product,
		Locale:   req.Locale,
		Platform: r.platform,
		Clusters: capped,
		Topics:   ideas,
	}

	p.info("run completed",
		"run_id", r.id,
		"clusters", len(result.Clusters),
		"topics", len(result.Topics),
		"duplicates_dropped", m.DuplicatesDropped,
		"duration", m.RunDuration(),
	)

	p.saveHistory(ctx, m)
	p.writeArtifacts(ctx, result)
	return result, m, nil
}

func (p *Pipeline) resolveBrand(brand string) (string, string, error) {
	if p.brands == nil {
		return "", "", fmt.Errorf("%w %q: no brand table configured", domain.ErrUnknownBrand, brand)
	}
	return p.brands.ResolveBrand(brand)
}

// clusterKeywords is stage 1: import, preprocess, cluster, annotate, score.
func (p *Pipeline) clusterKeywords(ctx context.Context, r *run) ([]domain.Cluster, error) {
	m := r.metrics
	r.stage = p.stages.Clustering
	r.stageStart = p.clock()

	stop := m.StartStep(StepImport)
	records, err := p.importRecords(ctx, r)
	stop()
	if err != nil {
		return nil, err
	}
	m.KeywordsProcessed = len(records)

	stop = m.StartStep(StepPreprocess)
	records = analysis.Preprocess(records)
	stop()
	m.KeywordsAfterPreprocess = len(records)

	stop = m.StartStep(StepCluster)
	clusters := analysis.ClusterRecords(records, r.req.ClusterCount)
	stop()
	m.ClustersCreated = len(clusters)

	clustered := map[string]struct{}{}
	for _, c := range clusters {
		for _, member := range c.Members {
			clustered[member.Keyword] = struct{}{}
		}
	}
	m.KeywordsClustered = len(clustered)
	m.KeywordsNotClustered = max(0, m.KeywordsAfterPreprocess-m.KeywordsClustered)

	stop = m.StartStep(StepAnnotate)
	clusters = analysis.AnnotateIntentBrand(clusters, r.req.Product)
	stop()

	stop = m.StartStep(StepScore)
	clusters = analysis.ScoreClusters(clusters, r.req.Weights)
	stop()

	m.ClustersUsedForTopics = min(len(clusters), r.req.TopClusters)
	scores := make([]float64, len(clusters))
	for i, c := range clusters {
		scores[i] = c.Metrics.Score
	}
	m.SetClusterScoreStats(scores)

	p.info("keyword clustering finished",
		"run_id", r.id,
		"keywords", m.KeywordsProcessed,
		"after_preprocess", m.KeywordsAfterPreprocess,
		"clusters", m.ClustersCreated,
		"clusters_used", m.ClustersUsedForTopics,
	)

	p.emit(ctx, r, telemetry.Stage{
		RunID:      r.id + "kc",
		Status:     telemetry.StatusSuccess,
		ItemName:   telemetry.ItemKeywords,
		Discovered: m.KeywordsAfterPreprocess,
		Succeeded:  m.KeywordsClustered,
		Failed:     m.KeywordsNotClustered,
		Extra:      telemetry.ClusteringSuccess(m),
	})
	return clusters, nil
}

func (p *Pipeline) importRecords(ctx context.Context, r *run) ([]domain.KeywordRecord, error) {
	if r.opts.Records != nil {
		return r.opts.Records, nil
	}
	if p.importer == nil {
		return nil, fmt.Errorf("import keywords: no importer configured")
	}
	records, err := p.importer.Import(ctx, domain.KeywordQuery{
		Product:  r.req.Product,
		Topic:    r.opts.Topic,
		Locale:   r.req.Locale,
		FilePath: r.req.FilePath,
		MaxRows:  r.req.MaxRows,
	})
	if err != nil {
		return nil, fmt.Errorf("import keywords: %w", err)
	}
	if len(records) > r.req.MaxRows {
		records = records[:r.req.MaxRows]
	}
	return records, nil
}

// generateTopics is stage 2: content index, LLM call, dedup.
func (p *Pipeline) generateTopics(ctx context.Context, r *run, clusters []domain.Cluster) ([]domain.TopicIdea, error) {
	m := r.metrics
	r.stage = p.stages.TopicGeneration
	r.stageStart = p.clock()

	stop := m.StartStep(StepContentIndex)
	existing := p.loadExisting(ctx, r)
	stop()
	m.ExistingTopicsLoaded = len(existing)

	if p.agent == nil {
		return nil, domain.ErrLLMNotConfigured
	}
	stop = m.StartStep(StepGenerate)
	gen, err := p.agent.Generate(ctx, topics.Input{
		Brand:         r.req.Brand,
		Product:       r.req.Product,
		Locale:        r.req.Locale,
		Clusters:      clusters,
		TopN:          r.req.TopClusters,
		Platform:      r.platform,
		PlatformLabel: r.label,
		Existing:      existing,
	})
	stop()
	if gen.Called {
		r.llmCall = gen.Duration
		m.MarkLLMCall(gen.Duration, err != nil)
		m.AddTokens(gen.Usage)
	}
	if err != nil {
		return nil, err
	}
	m.TopicsGeneratedRaw = len(gen.Topics)
	if gen.Outcome != topics.ParsedDirect {
		m.AddEvent("LLM_OUTPUT_"+strings.ToUpper(gen.Outcome.String()), "llm response was not strict json", map[string]any{
			"topics": len(gen.Topics),
		})
	}

	stop = m.StartStep(StepDedup)
	ideas, dropped := topics.FilterDuplicates(gen.Topics, existing)
	stop()
	m.TopicsAfterDedup = len(ideas)
	m.DuplicatesDropped = dropped

	p.info("topic generation finished",
		"run_id", r.id,
		"existing_topics", m.ExistingTopicsLoaded,
		"generated", m.TopicsGeneratedRaw,
		"after_dedup", m.TopicsAfterDedup,
		"duplicates_dropped", dropped,
	)

	p.emit(ctx, r, telemetry.Stage{
		RunID:      r.id + "tg",
		Status:     telemetry.StatusSuccess,
		ItemName:   telemetry.ItemTopics,
		Discovered: m.ClustersUsedForTopics,
		Succeeded:  m.TopicsAfterDedup,
		Failed:     m.DuplicatesDropped,
		Extra:      telemetry.TopicsSuccess(m, r.llmCall),
	})
	return ideas, nil
}

// loadExisting reads published posts. Lookup errors degrade to no existing
// posts and are counted as content index failures.
func (p *Pipeline) loadExisting(ctx context.Context, r *run) []domain.ExistingPost {
	m := r.metrics
	if !r.opts.UseContentIndex || p.index == nil {
		m.AddEvent(EventContentIndexSkipped, "content index lookup disabled for this run", nil)
		return nil
	}

	code := analysis.ProductCode(r.req.Product)
	started := p.clock()
	posts, err := p.index.Lookup(ctx, code, r.platform)
	elapsed := p.clock().Sub(started)
	if err != nil {
		m.MarkContentIndexCall(elapsed, true)
		m.AddEvent(EventContentIndexFailed, "content index lookup failed", map[string]any{
			"root_missing": errors.Is(err, domain.ErrContentRootMissing),
		})
		p.warn("content index unavailable, continuing without existing topics",
			"run_id", r.id, "product_code", code, "err", err)
		return nil
	}
	m.MarkContentIndexCall(elapsed, false)
	p.debug("existing topics loaded", "run_id", r.id, "product_code", code, "platform", r.platform, "count", len(posts))
	return posts
}

// fail finishes the run as failed, reports the failing stage and wraps err.
func (p *Pipeline) fail(ctx context.Context, r *run, err error) error {
	m := r.metrics
	m.Finish(false, err.Error())
	fields := telemetry.FailureFields(err)
	m.AddEvent(EventRunFailed, "run failed", map[string]any{"exc_type": fields["exc_type"]})

	stage := telemetry.Stage{
		RunID:  r.id,
		Status: telemetry.StatusFailed,
		Extra:  fields,
	}
	if r.stage == p.stages.Clustering {
		stage.ItemName = telemetry.ItemKeywords
		stage.Discovered = m.KeywordsAfterPreprocess
		stage.Succeeded = m.KeywordsClustered
		stage.Failed = m.KeywordsNotClustered
	} else {
		stage.ItemName = telemetry.ItemTopics
		stage.Discovered = m.ClustersUsedForTopics
		stage.Succeeded = m.TopicsAfterDedup
		stage.Failed = max(1, m.DuplicatesDropped)
	}

	p.logError("run failed", "run_id", r.id, "stage", r.stage, "err", err)
	// A cancelled run still reports; sink timeouts bound the send.
	ctx = context.WithoutCancel(ctx)
	p.emit(ctx, r, stage)
	p.saveHistory(ctx, m)
	return &domain.StageError{Stage: r.stage, Err: err}
}

// emit completes the common stage fields and sends them best-effort.
func (p *Pipeline) emit(ctx context.Context, r *run, stage telemetry.Stage) {
	if p.telemetry == nil {
		return
	}
	stage.Job = r.stage
	stage.Product = r.req.Product
	stage.PlatformLabel = r.label
	stage.Website = r.website
	stage.Section = r.section
	stage.Duration = p.clock().Sub(r.stageStart)
	p.telemetry.Emit(ctx, stage)
}

func (p *Pipeline) saveHistory(ctx context.Context, m *telemetry.RunMetrics) {
	if p.history == nil {
		return
	}
	if err := p.history.AppendRun(ctx, m.Record()); err != nil {
		p.warn("append run history failed", "run_id", m.RunID, "err", err)
	}
}

func (p *Pipeline) writeArtifacts(ctx context.Context, result domain.RunResult) {
	if p.artifacts == nil {
		return
	}
	if _, err := p.artifacts.WriteArtifacts(ctx, result); err != nil {
		p.warn("write artifacts failed", "run_id", result.RunID, "err", err)
	}
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
