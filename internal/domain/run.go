package domain

import "fmt"

const (
	DefaultLocale      = "en-US"
	DefaultTopClusters = 15
	DefaultMaxRows     = 50000
)

// Weights configures the composite cluster score.
type Weights struct {
	Volume float64 `json:"volume" yaml:"volume"`
	KD     float64 `json:"kd" yaml:"kd"`
	CPC    float64 `json:"cpc" yaml:"cpc"`
	Brand  float64 `json:"brand" yaml:"brand"`
	Intent float64 `json:"intent" yaml:"intent"`
}

// DefaultWeights mirrors the historical scoring configuration.
func DefaultWeights() Weights {
	return Weights{Volume: 0.35, KD: 0.25, CPC: 0.15, Brand: 0.15, Intent: 0.10}
}

// IsZero reports whether no weight was set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// RunRequest carries the inputs of one pipeline run.
type RunRequest struct {
	Brand    string `json:"brand"`
	Product  string `json:"product"`
	Locale   string `json:"locale"`
	FilePath string `json:"file_path"`
	// ClusterCount forces k; zero lets the clusterer choose.
	ClusterCount int     `json:"clustering_k,omitempty"`
	TopClusters  int     `json:"top_clusters"`
	MaxRows      int     `json:"max_rows"`
	Weights      Weights `json:"weights"`
}

// WithDefaults fills unset optional fields.
func (r RunRequest) WithDefaults() RunRequest {
	if r.Locale == "" {
		r.Locale = DefaultLocale
	}
	if r.TopClusters <= 0 {
		r.TopClusters = DefaultTopClusters
	}
	if r.MaxRows <= 0 {
		r.MaxRows = DefaultMaxRows
	}
	if r.Weights.IsZero() {
		r.Weights = DefaultWeights()
	}
	return r
}

// Validate checks required fields.
func (r RunRequest) Validate() error {
	if r.Brand == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidRequest)
	}
	if r.Product == "" {
		return fmt.Errorf("%w: product is required", ErrInvalidRequest)
	}
	if r.ClusterCount < 0 {
		return fmt.Errorf("%w: cluster count must be positive", ErrInvalidRequest)
	}
	return nil
}

// RunResult is the terminal artifact of a run.
type RunResult struct {
	RunID    string      `json:"run_id"`
	Brand    string      `json:"brand"`
	Product  string      `json:"product"`
	Locale   string      `json:"locale"`
	Platform string      `json:"platform,omitempty"`
	Clusters []Cluster   `json:"clusters"`
	Topics   []TopicIdea `json:"topics"`
}
