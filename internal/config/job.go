package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Job is a saved run description (kra_run.yaml).
type Job struct {
	Engine       JobEngine       `yaml:"engine"`
	ContentIndex JobContentIndex `yaml:"content_index"`
}

// JobEngine mirrors the run flags.
type JobEngine struct {
	Brand           string `yaml:"brand"`
	Product         string `yaml:"product"`
	Locale          string `yaml:"locale"`
	InputFile       string `yaml:"input_file"`
	Platform        string `yaml:"platform"`
	TopClusters     int    `yaml:"top_clusters"`
	MaxRows         int    `yaml:"max_rows"`
	ClusterCount    int    `yaml:"clustering_k"`
	UseSerpAPI      bool   `yaml:"use_serp_api"`
	SerpTopic       string `yaml:"serp_topic"`
	UseContentIndex *bool  `yaml:"use_content_index"`
	Debug           bool   `yaml:"debug"`
}

// JobContentIndex overrides the content root for local runs.
type JobContentIndex struct {
	LocalRoot string `yaml:"local_root"`
}

// LoadJob parses a job file and validates the fields the run needs.
func LoadJob(path string) (Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job %s: %w", path, err)
	}

	var job Job
	if err := yaml.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("parse job %s: %w", path, err)
	}

	if job.Engine.Brand == "" || job.Engine.Product == "" {
		return Job{}, fmt.Errorf("job %s: engine.brand and engine.product are required", path)
	}
	if !job.Engine.UseSerpAPI && job.Engine.InputFile == "" {
		return Job{}, fmt.Errorf("job %s: engine.input_file is required when use_serp_api is false", path)
	}

	return job, nil
}

// ContentIndexEnabled defaults to true when the key is absent.
func (e JobEngine) ContentIndexEnabled() bool {
	return e.UseContentIndex == nil || *e.UseContentIndex
}
