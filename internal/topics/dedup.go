package topics

import "KeywordAnalyzer/internal/domain"

// BuildExistingKeys normalizes one key per existing post, taken from the
// first non-empty of url, title and slug.
func BuildExistingKeys(existing []domain.ExistingPost) map[string]struct{} {
	keys := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		for _, v := range []string{e.URL, e.Title, e.Slug} {
			if v == "" {
				continue
			}
			keys[domain.NormalizeKey(v)] = struct{}{}
			break
		}
	}
	return keys
}

// FilterDuplicates drops topics whose normalized title matches an existing
// key. With no existing posts the input is returned unchanged.
func FilterDuplicates(topics []domain.TopicIdea, existing []domain.ExistingPost) ([]domain.TopicIdea, int) {
	keys := BuildExistingKeys(existing)
	if len(keys) == 0 {
		return topics, 0
	}

	kept := make([]domain.TopicIdea, 0, len(topics))
	dropped := 0
	for _, t := range topics {
		if _, dup := keys[domain.NormalizeKey(t.Title)]; dup {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	return kept, dropped
}
