package topics

import (
	"strings"

	"KeywordAnalyzer/internal/domain"
)

// ReconcileStats counts what Reconcile changed.
type ReconcileStats struct {
	UnknownCluster    int
	MissingPlatform   int
	RepairedPrimary   int
	DroppedSupporting int
	DroppedLinks      int
}

// Dropped is the number of topics removed.
func (s ReconcileStats) Dropped() int {
	return s.UnknownCluster + s.MissingPlatform
}

// Reconcile holds parsed topics to the promises made in the prompt:
//   - cluster_id names a supplied cluster ("3" also resolves to "c3");
//   - primary_keyword is a member keyword, else it becomes the cluster label;
//   - supporting_keywords are member keywords;
//   - internal_links name an existing post;
//   - with a platform label, every title contains it.
func Reconcile(parsed []domain.TopicIdea, clusters []domain.Cluster, existing []domain.ExistingPost, platformLabel string) ([]domain.TopicIdea, ReconcileStats) {
	byID := make(map[string]domain.Cluster, len(clusters))
	for _, c := range clusters {
		byID[c.ID] = c
	}
	linkKeys := existingLinkKeys(existing)
	label := strings.ToLower(strings.TrimSpace(platformLabel))

	var stats ReconcileStats
	out := make([]domain.TopicIdea, 0, len(parsed))
	for _, t := range parsed {
		cluster, ok := resolveCluster(byID, t.ClusterID)
		if !ok {
			stats.UnknownCluster++
			continue
		}
		if label != "" && !strings.Contains(strings.ToLower(t.Title), label) {
			stats.MissingPlatform++
			continue
		}
		t.ClusterID = cluster.ID

		members := memberSet(cluster)
		if _, ok := members[domain.NormalizeKeyword(t.PrimaryKeyword)]; !ok {
			t.PrimaryKeyword = cluster.Label
			stats.RepairedPrimary++
		}

		supporting := make([]string, 0, len(t.SupportingKeywords))
		for _, kw := range t.SupportingKeywords {
			if _, ok := members[domain.NormalizeKeyword(kw)]; ok {
				supporting = append(supporting, kw)
			} else {
				stats.DroppedSupporting++
			}
		}
		t.SupportingKeywords = supporting

		links := make([]string, 0, len(t.InternalLinks))
		for _, link := range t.InternalLinks {
			if _, ok := linkKeys[domain.NormalizeKey(link)]; ok {
				links = append(links, link)
			} else {
				stats.DroppedLinks++
			}
		}
		t.InternalLinks = links

		out = append(out, t)
	}
	return out, stats
}

func resolveCluster(byID map[string]domain.Cluster, id string) (domain.Cluster, bool) {
	if c, ok := byID[id]; ok {
		return c, true
	}
	c, ok := byID["c"+id]
	return c, ok
}

func memberSet(c domain.Cluster) map[string]struct{} {
	set := make(map[string]struct{}, len(c.Members))
	for _, m := range c.Members {
		set[m.Keyword] = struct{}{}
	}
	return set
}

// existingLinkKeys accepts any of slug, title or url as a link target.
func existingLinkKeys(existing []domain.ExistingPost) map[string]struct{} {
	keys := map[string]struct{}{}
	for _, e := range existing {
		for _, v := range []string{e.Slug, e.Title, e.URL} {
			if k := domain.NormalizeKey(v); k != "" {
				keys[k] = struct{}{}
			}
		}
	}
	return keys
}
