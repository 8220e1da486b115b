package domain

import "time"

// RunRecord is one row of run history.
type RunRecord struct {
	RunID               string
	Timestamp           time.Time
	Brand               string
	Product             string
	Platform            string
	Locale              string
	FilePath            string
	KeywordsProcessed   int
	ClustersCreated     int
	ClustersUsed        int
	TopicsGeneratedRaw  int
	TopicsAfterDedup    int
	ExistingTopics      int
	DuplicatesDropped   int
	LLMRequests         int
	LLMFailures         int
	LLMDurationSeconds  float64
	LLMPromptTokens     int
	LLMCompletionTokens int
	ContentIndexCalls   int
	ContentIndexErrors  int
	ContentIndexSeconds float64
	RunDurationSeconds  float64
	Success             bool
	ErrorMessage        string
	Summary             string
}

// TotalTokens sums prompt and completion tokens.
func (r RunRecord) TotalTokens() int {
	return r.LLMPromptTokens + r.LLMCompletionTokens
}
