package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"KeywordAnalyzer/internal/domain"
)

const (
	maxDefaultK   = 60
	maxForcedK    = 200
	maxIterations = 25
)

// DefaultK picks the cluster count for n records: round(sqrt(n/2)),
// clamped to [1, min(n, 60)].
func DefaultK(n int) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Round(math.Sqrt(float64(n) / 2)))
	upper := min(n, maxDefaultK)
	return max(1, min(k, upper))
}

// EffectiveK resolves a requested cluster count for n records. k <= 0
// selects DefaultK; a forced k is capped at n and at 200, since every
// centroid is a dense vocabulary-sized vector.
func EffectiveK(n, k int) int {
	if k <= 0 {
		return DefaultK(n)
	}
	return min(k, n, maxForcedK)
}

type term struct {
	idx    int
	weight float64
}

// vector is a sparse, L2-normalized TF-IDF vector sorted by term index.
type vector []term

func (v vector) dot(dense []float64) float64 {
	var sum float64
	for _, t := range v {
		sum += t.weight * dense[t.idx]
	}
	return sum
}

// ClusterRecords groups records with deterministic spherical k-means over
// TF-IDF vectors. k <= 0 selects DefaultK. Every record lands in exactly one
// cluster; empty clusters are discarded.
func ClusterRecords(records []domain.KeywordRecord, k int) []domain.Cluster {
	n := len(records)
	if n == 0 {
		return nil
	}
	k = EffectiveK(n, k)

	vectors, vocab := vectorize(records)
	centroids := seedCentroids(vectors, vocab, k)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best := nearest(v, centroids)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		recomputeCentroids(vectors, assign, centroids)
	}

	return buildClusters(records, assign, len(centroids))
}

func vectorize(records []domain.KeywordRecord) ([]vector, int) {
	vocab := map[string]int{}
	docs := make([][]string, len(records))
	df := map[int]int{}

	for i, rec := range records {
		tokens := contentTokens(rec.Keyword)
		docs[i] = tokens
		seen := map[int]struct{}{}
		for _, tok := range tokens {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
			}
			if _, dup := seen[idx]; !dup {
				seen[idx] = struct{}{}
				df[idx]++
			}
		}
	}

	n := float64(len(records))
	vectors := make([]vector, len(records))
	for i, tokens := range docs {
		tf := map[int]float64{}
		for _, tok := range tokens {
			tf[vocab[tok]]++
		}
		v := make(vector, 0, len(tf))
		for idx, count := range tf {
			idf := math.Log((1+n)/(1+float64(df[idx]))) + 1
			v = append(v, term{idx: idx, weight: count * idf})
		}
		sort.Slice(v, func(a, b int) bool { return v[a].idx < v[b].idx })

		weights := make([]float64, len(v))
		for j, t := range v {
			weights[j] = t.weight
		}
		if norm := floats.Norm(weights, 2); norm > 0 {
			for j := range v {
				v[j].weight /= norm
			}
		}
		vectors[i] = v
	}

	return vectors, len(vocab)
}

func densify(v vector, size int) []float64 {
	dense := make([]float64, size)
	for _, t := range v {
		dense[t.idx] = t.weight
	}
	return dense
}

// seedCentroids uses farthest-point seeding from the first non-empty vector.
// Seeding stops early once every remaining vector coincides with a centroid.
func seedCentroids(vectors []vector, size, k int) [][]float64 {
	first := 0
	for i, v := range vectors {
		if len(v) > 0 {
			first = i
			break
		}
	}

	centroids := [][]float64{densify(vectors[first], size)}
	closest := make([]float64, len(vectors))
	for i, v := range vectors {
		closest[i] = v.dot(centroids[0])
	}

	for len(centroids) < k {
		pick, farthest := -1, 0.0
		for i, v := range vectors {
			if len(v) == 0 {
				continue
			}
			if dist := 1 - closest[i]; dist > farthest+1e-12 {
				pick, farthest = i, dist
			}
		}
		if pick < 0 {
			break
		}
		c := densify(vectors[pick], size)
		centroids = append(centroids, c)
		for i, v := range vectors {
			closest[i] = math.Max(closest[i], v.dot(c))
		}
	}

	return centroids
}

func nearest(v vector, centroids [][]float64) int {
	best, bestSim := 0, math.Inf(-1)
	for c, centroid := range centroids {
		if sim := v.dot(centroid); sim > bestSim+1e-12 {
			best, bestSim = c, sim
		}
	}
	return best
}

func recomputeCentroids(vectors []vector, assign []int, centroids [][]float64) {
	sums := make([][]float64, len(centroids))
	for c := range centroids {
		sums[c] = make([]float64, len(centroids[c]))
	}
	counts := make([]int, len(centroids))
	for i, v := range vectors {
		c := assign[i]
		counts[c]++
		for _, t := range v {
			sums[c][t.idx] += t.weight
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		norm := floats.Norm(sums[c], 2)
		if norm == 0 {
			continue
		}
		floats.Scale(1/norm, sums[c])
		centroids[c] = sums[c]
	}
}

func buildClusters(records []domain.KeywordRecord, assign []int, k int) []domain.Cluster {
	groups := make([][]domain.KeywordRecord, k)
	firstSeen := make([]int, k)
	for c := range firstSeen {
		firstSeen[c] = -1
	}
	for i, rec := range records {
		c := assign[i]
		if firstSeen[c] < 0 {
			firstSeen[c] = i
		}
		groups[c] = append(groups[c], rec)
	}

	order := make([]int, 0, k)
	for c := range groups {
		if len(groups[c]) > 0 {
			order = append(order, c)
		}
	}
	sort.Slice(order, func(a, b int) bool { return firstSeen[order[a]] < firstSeen[order[b]] })

	clusters := make([]domain.Cluster, 0, len(order))
	for i, c := range order {
		members := groups[c]
		clusters = append(clusters, domain.Cluster{
			ID:      fmt.Sprintf("c%d", i+1),
			Label:   pickLabel(members),
			Members: members,
			Metrics: aggregate(members),
		})
	}
	return clusters
}

// pickLabel prefers the highest-volume member, then the shortest keyword.
func pickLabel(members []domain.KeywordRecord) string {
	best := members[0]
	for _, m := range members[1:] {
		bv, mv := volumeOf(best), volumeOf(m)
		switch {
		case mv > bv:
			best = m
		case mv == bv && len(m.Keyword) < len(best.Keyword):
			best = m
		}
	}
	return best.Keyword
}

func volumeOf(r domain.KeywordRecord) int {
	if r.Volume == nil {
		return -1
	}
	return *r.Volume
}

func aggregate(members []domain.KeywordRecord) domain.ClusterMetrics {
	var volumes, kds, cpcs, comps []float64
	for _, m := range members {
		if m.Volume != nil {
			volumes = append(volumes, float64(*m.Volume))
		}
		if m.KD != nil {
			kds = append(kds, *m.KD)
		}
		if m.CPC != nil {
			cpcs = append(cpcs, *m.CPC)
		}
		if m.Competition != nil {
			comps = append(comps, *m.Competition)
		}
	}

	metrics := domain.ClusterMetrics{
		AvgVolume: mean(volumes),
		AvgKD:     mean(kds),
		AvgCPC:    mean(cpcs),
		Intent:    domain.IntentInformational,
	}
	if len(comps) > 0 {
		metrics.AvgCompetition = domain.FloatPtr(stat.Mean(comps, nil))
	}
	return metrics
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
