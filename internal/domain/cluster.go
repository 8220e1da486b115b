package domain

// Intent enumerates searcher goals assigned to a cluster.
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
)

// Intents lists every intent in tie-break order.
var Intents = []Intent{IntentInformational, IntentCommercial, IntentTransactional, IntentNavigational}

// ClusterMetrics aggregates member metrics; filled progressively by the
// annotator and the scorer.
type ClusterMetrics struct {
	AvgVolume      float64  `json:"avg_volume"`
	AvgKD          float64  `json:"avg_kd"`
	AvgCPC         float64  `json:"avg_cpc"`
	AvgCompetition *float64 `json:"avg_competition"`
	BrandFit       float64  `json:"brand_fit"`
	Intent         Intent   `json:"intent"`
	Score          float64  `json:"score"`
}

// Cluster groups related keyword records under a label.
type Cluster struct {
	ID      string          `json:"cluster_id"`
	Label   string          `json:"label"`
	Members []KeywordRecord `json:"members"`
	Metrics ClusterMetrics  `json:"metrics"`
}

// Keywords returns up to limit member keywords; limit <= 0 returns all.
func (c Cluster) Keywords(limit int) []string {
	n := len(c.Members)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, 0, n)
	for _, m := range c.Members[:n] {
		out = append(out, m.Keyword)
	}
	return out
}
