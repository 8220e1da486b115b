package telemetry

import (
	"time"
)

// Stage status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Item names reported per stage.
const (
	ItemKeywords = "Keywords"
	ItemTopics   = "Topics"
)

// Stage describes the outcome of one pipeline stage.
type Stage struct {
	Job           string
	RunID         string
	Status        string
	Product       string
	PlatformLabel string
	Website       string
	Section       string
	ItemName      string
	Discovered    int
	Succeeded     int
	Failed        int
	Duration      time.Duration
	Extra         map[string]any
}

// Payload renders the webhook body. Extra fields never override the
// common ones.
func (s Stage) Payload(id Identity, at time.Time) map[string]any {
	payload := make(map[string]any, 16+len(s.Extra))
	for k, v := range s.Extra {
		payload[k] = v
	}
	common := map[string]any{
		"timestamp":        at.Format(time.RFC3339Nano),
		"agent_name":       id.AgentName,
		"agent_owner":      id.AgentOwner,
		"job_type":         s.Job,
		"run_id":           s.RunID,
		"status":           s.Status,
		"product":          s.Product,
		"platform":         s.PlatformLabel,
		"website":          s.Website,
		"website_section":  s.Section,
		"item_name":        s.ItemName,
		"items_discovered": s.Discovered,
		"items_succeeded":  s.Succeeded,
		"items_failed":     s.Failed,
		"run_duration_ms":  s.Duration.Milliseconds(),
	}
	for k, v := range common {
		payload[k] = v
	}
	return payload
}

// ClusteringSuccess builds the success extras of the clustering stage.
func ClusteringSuccess(m *RunMetrics) map[string]any {
	return map[string]any{
		"keywords_processed":        m.KeywordsProcessed,
		"keywords_after_preprocess": m.KeywordsAfterPreprocess,
		"clusters_created":          m.ClustersCreated,
		"clusters_used_for_topics":  m.ClustersUsedForTopics,
	}
}

// TopicsSuccess builds the success extras of the topic stage.
func TopicsSuccess(m *RunMetrics, llmCall time.Duration) map[string]any {
	return map[string]any{
		"existing_topics_loaded": m.ExistingTopicsLoaded,
		"topics_generated_raw":   m.TopicsGeneratedRaw,
		"topics_after_dedup":     m.TopicsAfterDedup,
		"duplicates_dropped":     m.DuplicatesDropped,
		"llm_call_duration_s":    llmCall.Seconds(),
	}
}

// FailureFields carries the error into a failed-stage payload.
func FailureFields(err error) map[string]any {
	return map[string]any{
		"error_message": err.Error(),
		"exc_type":      errorType(err),
	}
}
