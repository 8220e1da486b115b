// Package telemetry holds per-run counters and the best-effort stage
// webhooks that report them.
package telemetry

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"KeywordAnalyzer/internal/domain"
)

// DefaultJobType names the whole run in summaries.
const DefaultJobType = "Keyword Analysis and Topic Generation"

// Event is one entry of the run event log.
type Event struct {
	Time    time.Time      `json:"ts"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Identity names the agent in summaries and payloads.
type Identity struct {
	AgentName  string
	AgentOwner string
	JobType    string
}

// RunMetrics collects counters and timers for a single run. It is not safe
// for concurrent use; a run is sequential.
type RunMetrics struct {
	Identity

	RunID    string
	Brand    string
	Product  string
	Locale   string
	Platform string
	FilePath string

	KeywordsProcessed       int
	KeywordsAfterPreprocess int
	KeywordsClustered       int
	KeywordsNotClustered    int
	ClustersCreated         int
	ClustersUsedForTopics   int
	TopicsGeneratedRaw      int
	TopicsAfterDedup        int
	ExistingTopicsLoaded    int
	DuplicatesDropped       int

	LLMRequests         int
	LLMFailures         int
	LLMDuration         time.Duration
	LLMPromptTokens     int
	LLMCompletionTokens int

	ContentIndexRequests int
	ContentIndexFailures int
	ContentIndexDuration time.Duration

	ClusterScoreMin *float64
	ClusterScoreMax *float64
	ClusterScoreAvg *float64

	Events       []Event
	Success      bool
	ErrorMessage string

	now       func() time.Time
	started   time.Time
	duration  time.Duration
	finished  bool
	steps     map[string]time.Duration
	stepOrder []string
}

// NewRunMetrics starts the run clock. A nil clock means time.Now.
func NewRunMetrics(id Identity, runID string, clock func() time.Time) *RunMetrics {
	if clock == nil {
		clock = time.Now
	}
	if id.JobType == "" {
		id.JobType = DefaultJobType
	}
	return &RunMetrics{
		Identity: id,
		RunID:    runID,
		Success:  true,
		now:      clock,
		started:  clock(),
		steps:    map[string]time.Duration{},
	}
}

// RecordStep adds d to the named step; repeated steps accumulate.
func (m *RunMetrics) RecordStep(name string, d time.Duration) {
	if _, ok := m.steps[name]; !ok {
		m.stepOrder = append(m.stepOrder, name)
	}
	m.steps[name] += d
}

// StartStep returns a func that records the elapsed time when called.
//
//	defer m.StartStep("import")()
func (m *RunMetrics) StartStep(name string) func() {
	t0 := m.now()
	return func() {
		m.RecordStep(name, m.now().Sub(t0))
	}
}

// StepDuration returns the accumulated time of one step.
func (m *RunMetrics) StepDuration(name string) time.Duration {
	return m.steps[name]
}

// MarkLLMCall counts one LLM request.
func (m *RunMetrics) MarkLLMCall(d time.Duration, failed bool) {
	m.LLMRequests++
	m.LLMDuration += d
	if failed {
		m.LLMFailures++
	}
}

// MarkContentIndexCall counts one content-index lookup.
func (m *RunMetrics) MarkContentIndexCall(d time.Duration, failed bool) {
	m.ContentIndexRequests++
	m.ContentIndexDuration += d
	if failed {
		m.ContentIndexFailures++
	}
}

// AddTokens accumulates LLM token usage.
func (m *RunMetrics) AddTokens(u domain.TokenUsage) {
	m.LLMPromptTokens += u.PromptTokens
	m.LLMCompletionTokens += u.CompletionTokens
}

// AddEvent appends to the event log.
func (m *RunMetrics) AddEvent(eventType, message string, fields map[string]any) {
	m.Events = append(m.Events, Event{Time: m.now(), Type: eventType, Message: message, Fields: fields})
}

// SetClusterScoreStats stores min, max and mean of scores. Empty input
// leaves the stats unset.
func (m *RunMetrics) SetClusterScoreStats(scores []float64) {
	if len(scores) == 0 {
		return
	}
	lo, hi, avg := floats.Min(scores), floats.Max(scores), stat.Mean(scores, nil)
	m.ClusterScoreMin, m.ClusterScoreMax, m.ClusterScoreAvg = &lo, &hi, &avg
}

// Finish stops the run clock and records the outcome. Only the first call
// has effect; it reports whether this call was the one.
func (m *RunMetrics) Finish(success bool, errorMessage string) bool {
	if m.finished {
		return false
	}
	m.finished = true
	m.duration = m.now().Sub(m.started)
	if m.duration < 0 {
		m.duration = 0
	}
	m.Success = success
	m.ErrorMessage = errorMessage
	return true
}

// Finished reports whether Finish has been called.
func (m *RunMetrics) Finished() bool { return m.finished }

// RunDuration is the wall time between construction and Finish, or the
// time elapsed so far for an unfinished run.
func (m *RunMetrics) RunDuration() time.Duration {
	if m.finished {
		return m.duration
	}
	return m.now().Sub(m.started)
}

// StartedAt returns the run start time.
func (m *RunMetrics) StartedAt() time.Time { return m.started }

// AsMap flattens the metrics for logging and JSON export.
func (m *RunMetrics) AsMap() map[string]any {
	steps := make(map[string]float64, len(m.steps))
	for name, d := range m.steps {
		steps[name] = d.Seconds()
	}
	var runDuration any
	if m.finished {
		runDuration = m.duration.Seconds()
	}
	return map[string]any{
		"agent_name":                     m.AgentName,
		"agent_owner":                    m.AgentOwner,
		"job_type":                       m.JobType,
		"run_id":                         m.RunID,
		"brand":                          m.Brand,
		"product":                        m.Product,
		"locale":                         m.Locale,
		"platform":                       nullable(m.Platform),
		"file_path":                      nullable(m.FilePath),
		"keywords_processed":             m.KeywordsProcessed,
		"keywords_after_preprocess":      m.KeywordsAfterPreprocess,
		"keywords_clustered":             m.KeywordsClustered,
		"keywords_not_clustered":         m.KeywordsNotClustered,
		"clusters_created":               m.ClustersCreated,
		"clusters_used_for_topics":       m.ClustersUsedForTopics,
		"topics_generated_raw":           m.TopicsGeneratedRaw,
		"topics_after_dedup":             m.TopicsAfterDedup,
		"existing_topics_loaded":         m.ExistingTopicsLoaded,
		"duplicates_dropped":             m.DuplicatesDropped,
		"llm_requests":                   m.LLMRequests,
		"llm_failures":                   m.LLMFailures,
		"llm_duration_seconds":           m.LLMDuration.Seconds(),
		"llm_prompt_tokens":              m.LLMPromptTokens,
		"llm_completion_tokens":          m.LLMCompletionTokens,
		"content_index_requests":         m.ContentIndexRequests,
		"content_index_failures":         m.ContentIndexFailures,
		"content_index_duration_seconds": m.ContentIndexDuration.Seconds(),
		"cluster_score_min":              m.ClusterScoreMin,
		"cluster_score_max":              m.ClusterScoreMax,
		"cluster_score_avg":              m.ClusterScoreAvg,
		"run_duration_seconds":           runDuration,
		"step_durations":                 steps,
		"success":                        m.Success,
		"error_message":                  nullable(m.ErrorMessage),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Record converts the metrics into a history row.
func (m *RunMetrics) Record() domain.RunRecord {
	return domain.RunRecord{
		RunID:               m.RunID,
		Timestamp:           m.started.UTC(),
		Brand:               m.Brand,
		Product:             m.Product,
		Platform:            m.Platform,
		Locale:              m.Locale,
		FilePath:            m.FilePath,
		KeywordsProcessed:   m.KeywordsProcessed,
		ClustersCreated:     m.ClustersCreated,
		ClustersUsed:        m.ClustersUsedForTopics,
		TopicsGeneratedRaw:  m.TopicsGeneratedRaw,
		TopicsAfterDedup:    m.TopicsAfterDedup,
		ExistingTopics:      m.ExistingTopicsLoaded,
		DuplicatesDropped:   m.DuplicatesDropped,
		LLMRequests:         m.LLMRequests,
		LLMFailures:         m.LLMFailures,
		LLMDurationSeconds:  m.LLMDuration.Seconds(),
		LLMPromptTokens:     m.LLMPromptTokens,
		LLMCompletionTokens: m.LLMCompletionTokens,
		ContentIndexCalls:   m.ContentIndexRequests,
		ContentIndexErrors:  m.ContentIndexFailures,
		ContentIndexSeconds: m.ContentIndexDuration.Seconds(),
		RunDurationSeconds:  m.RunDuration().Seconds(),
		Success:             m.Success,
		ErrorMessage:        m.ErrorMessage,
		Summary:             m.CLISummary(),
	}
}

// CLISummary renders a multi-line human summary.
func (m *RunMetrics) CLISummary() string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("agent_name          : %s", m.AgentName)
	line("agent_owner         : %s", m.AgentOwner)
	line("job_type            : %s", m.JobType)
	line("")
	line("Metrics summary:")
	line("  - run_id              : %s", m.RunID)
	line("  - brand/product       : %s / %s", m.Brand, m.Product)
	if m.Platform != "" {
		line("  - platform            : %s", m.Platform)
	}
	if m.FilePath != "" {
		line("  - file_path           : %s", m.FilePath)
	}

	line("  - keywords_processed  : %d", m.KeywordsProcessed)
	line("  - keywords_after_preprocess  : %d", m.KeywordsAfterPreprocess)
	line("  - keywords_clustered  : %d", m.KeywordsClustered)
	line("  - keywords_not_clustered  : %d", m.KeywordsNotClustered)
	line("  - clusters_created    : %d", m.ClustersCreated)
	line("  - clusters_used       : %d", m.ClustersUsedForTopics)
	line("  - topics_generated_raw: %d", m.TopicsGeneratedRaw)
	line("  - topics_after_dedup  : %d", m.TopicsAfterDedup)
	line("  - existing_topics     : %d", m.ExistingTopicsLoaded)
	line("  - duplicates_dropped  : %d", m.DuplicatesDropped)

	line("  - llm_requests        : %d", m.LLMRequests)
	line("  - llm_failures        : %d", m.LLMFailures)
	line("  - llm_duration_total  : %.3f s", m.LLMDuration.Seconds())
	line("  - llm_prompt_tokens   : %d", m.LLMPromptTokens)
	line("  - llm_completion_tokens  : %d", m.LLMCompletionTokens)
	line("  - llm_total_tokens    : %d", m.LLMPromptTokens+m.LLMCompletionTokens)
	line("  - content_index_calls : %d", m.ContentIndexRequests)
	line("  - content_index_errs  : %d", m.ContentIndexFailures)
	line("  - content_index_time  : %.3f s", m.ContentIndexDuration.Seconds())

	if m.ClusterScoreMin != nil {
		line("  - cluster_scores      : min=%.4f max=%.4f avg=%.4f",
			*m.ClusterScoreMin, *m.ClusterScoreMax, *m.ClusterScoreAvg)
	}

	if m.finished {
		line("  - run_duration        : %.3f s", m.duration.Seconds())
	}
	if len(m.stepOrder) > 0 {
		line("  - step_durations:")
		for _, name := range m.stepOrder {
			line("      * %-16s: %.3f s", name, m.steps[name].Seconds())
		}
	}

	line("  - success             : %t", m.Success)
	if m.ErrorMessage != "" {
		line("  - error_message       : %s", m.ErrorMessage)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
