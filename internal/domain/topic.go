package domain

// TopicIdea is a blog topic proposed by the LLM for one cluster.
type TopicIdea struct {
	ClusterID          string   `json:"cluster_id"`
	Title              string   `json:"title"`
	Angle              string   `json:"angle"`
	Outline            []string `json:"outline"`
	TargetPersona      string   `json:"target_persona"`
	PrimaryKeyword     string   `json:"primary_keyword"`
	SupportingKeywords []string `json:"supporting_keywords"`
	InternalLinks      []string `json:"internal_links"`
}

// ExistingPost is the read-only projection of published content used for
// deduplication.
type ExistingPost struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	URL       string   `json:"url"`
	Product   string   `json:"product,omitempty"`
	Platform  string   `json:"platform,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	RelPath   string   `json:"rel_path,omitempty"`
	Date      string   `json:"date,omitempty"`
}
