package analysis

import (
	"math"
	"sort"

	"KeywordAnalyzer/internal/domain"
)

// volumeScale maps one million monthly searches to 1.0 on the log scale.
var volumeScale = math.Log1p(1e6)

var intentWeights = map[domain.Intent]float64{
	domain.IntentInformational: 1.0,
	domain.IntentCommercial:    0.8,
	domain.IntentTransactional: 0.6,
	domain.IntentNavigational:  0.2,
}

// IntentWeight returns how well an intent suits blog content.
func IntentWeight(intent domain.Intent) float64 {
	if w, ok := intentWeights[intent]; ok {
		return w
	}
	return intentWeights[domain.IntentInformational]
}

// Score computes the composite score. Volume, brand fit and intent raise it;
// difficulty and CPC lower it.
func Score(m domain.ClusterMetrics, w domain.Weights) float64 {
	volume := math.Log1p(math.Max(0, m.AvgVolume)) / volumeScale
	kd := math.Max(0, m.AvgKD) / 100
	cpc := math.Max(0, m.AvgCPC)
	cpc = cpc / (1 + cpc)

	return w.Volume*volume -
		w.KD*kd -
		w.CPC*cpc +
		w.Brand*m.BrandFit +
		w.Intent*IntentWeight(m.Intent)
}

// ScoreClusters sets every cluster score and sorts descending. Equal scores
// keep their clustering order.
func ScoreClusters(clusters []domain.Cluster, w domain.Weights) []domain.Cluster {
	for i := range clusters {
		clusters[i].Metrics.Score = Score(clusters[i].Metrics, w)
	}
	sort.SliceStable(clusters, func(a, b int) bool {
		return clusters[a].Metrics.Score > clusters[b].Metrics.Score
	})
	return clusters
}
