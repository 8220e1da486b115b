package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"KeywordAnalyzer/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: local-model
  timeout: 30s
scoring:
  topClusters: 7
  weights:
    volume: 0.5
    kd: 0.2
    cpc: 0.1
    brand: 0.1
    intent: 0.1
brands:
  Acme Docs:
    website: acme.example
    section: News
telemetry:
  timezone: UTC
contentIndex:
  indexFile: /srv/blog/blog_index.json
`)

	cfg := LoadFile(path)

	if cfg.LLM.Model != "local-model" {
		t.Fatalf("expected model override, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.LLM.Timeout)
	}
	if cfg.LLM.Endpoint == "" {
		t.Fatal("default endpoint lost during merge")
	}
	if cfg.Scoring.TopClusters != 7 || cfg.Scoring.Weights.Volume != 0.5 {
		t.Fatalf("scoring not merged: %+v", cfg.Scoring)
	}
	if cfg.Scoring.MaxRows != domain.DefaultMaxRows {
		t.Fatalf("expected default max rows, got %d", cfg.Scoring.MaxRows)
	}
	if _, ok := cfg.Brands["aspose"]; !ok {
		t.Fatal("default brands should survive a partial brand table")
	}
	website, section, err := cfg.ResolveBrand("ACME docs")
	if err != nil {
		t.Fatalf("ResolveBrand: %v", err)
	}
	if website != "acme.example" || section != "News" {
		t.Fatalf("unexpected brand entry %s/%s", website, section)
	}
	if cfg.Telemetry.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Telemetry.Location())
	}
	if cfg.ContentIndex.IndexFile != "/srv/blog/blog_index.json" {
		t.Fatalf("expected index file, got %q", cfg.ContentIndex.IndexFile)
	}
}

func TestLoadFileMissingFallsBackToDefaults(t *testing.T) {
	cfg := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Telemetry.ClusteringJob != "Keyword Clustering" {
		t.Fatalf("unexpected clustering job %q", cfg.Telemetry.ClusteringJob)
	}
	if len(cfg.Platforms) != len(DefaultPlatforms()) {
		t.Fatalf("expected default platforms, got %d", len(cfg.Platforms))
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(llmAPIKeyEnv, "secret")
	t.Setenv(contentRootEnv, "/srv/blog/content")
	t.Setenv(metricsTokenEnv, "tok")
	t.Setenv(indexFileEnv, "/tmp/blog_index.json")

	cfg := LoadFile("")

	if cfg.LLM.APIKey != "secret" {
		t.Fatalf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.ContentIndex.Root != "/srv/blog/content" {
		t.Fatalf("expected content root from env, got %q", cfg.ContentIndex.Root)
	}
	if cfg.Telemetry.Token != "tok" {
		t.Fatalf("expected metrics token from env, got %q", cfg.Telemetry.Token)
	}
	if cfg.ContentIndex.IndexFile != "/tmp/blog_index.json" {
		t.Fatalf("expected index file from env, got %q", cfg.ContentIndex.IndexFile)
	}
}

func TestResolveBrandUnknown(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	_, _, err := cfg.ResolveBrand("acme")
	if !errors.Is(err, domain.ErrUnknownBrand) {
		t.Fatalf("expected ErrUnknownBrand, got %v", err)
	}
	if _, _, err := cfg.ResolveBrand("Aspose"); err != nil {
		t.Fatalf("Aspose should resolve: %v", err)
	}
}
