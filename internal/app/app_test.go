package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/logging"
	"KeywordAnalyzer/internal/usecase"
)

const llmTopics = `{"topics":[
{"cluster_id":"c1","title":"Convert PDF to Word in Java","angle":"a","outline":["a","b","c"],"target_persona":"dev","primary_keyword":"pdf to word","supporting_keywords":[]},
{"cluster_id":"c1","title":"Batch PDF to DOCX Conversion in Java","angle":"a","outline":["a","b","c"],"target_persona":"dev","primary_keyword":"pdf to docx","supporting_keywords":["pdf to word"]}
]}`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func testConfig(t *testing.T, llmURL string) config.Config {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "data", "keywords.csv"),
		"Keyword,Avg. monthly searches,Competition\npdf to word,1000,Low\npdf to word java,200,Low\npdf to docx,500,Medium\n")
	writeFile(t, filepath.Join(dir, "content", "words", "convert-pdf-to-word-java", "index.md"),
		"---\ntitle: Convert PDF to Word in Java\ndate: 2025-01-01\n---\nbody\n")

	return config.Config{
		LLM:     config.LLMConfig{Endpoint: llmURL, Model: "test-model"},
		Scoring: config.ScoringConfig{Weights: domain.DefaultWeights(), TopClusters: 5, MaxRows: 100},
		Data: config.DataConfig{
			DataDir:   filepath.Join(dir, "data"),
			OutputDir: filepath.Join(dir, "out"),
		},
		ContentIndex: config.ContentIndexConfig{Root: filepath.Join(dir, "content")},
		Telemetry: config.TelemetryConfig{
			AgentName:          "Keyword Analyzer",
			ClusteringJob:      "Keyword Clustering",
			TopicGenerationJob: "Topics Generation",
		},
		History:   config.HistoryConfig{Driver: "sqlite"},
		Brands:    map[string]config.BrandEntry{"aspose": {Website: "aspose.com", Section: "Blog"}},
		Platforms: config.DefaultPlatforms(),
	}
}

func llmServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": llmTopics}}},
			"usage":   map[string]any{"prompt_tokens": 50, "completion_tokens": 25},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApplicationRunEndToEnd(t *testing.T) {
	t.Parallel()

	srv := llmServer(t)
	cfg := testConfig(t, srv.URL)
	ctx := context.Background()

	application := New(ctx, cfg, logging.Discard())
	t.Cleanup(func() { _ = application.Close() })

	result, m, err := application.Run(ctx,
		domain.RunRequest{Brand: "Aspose", Product: "Aspose.Words"},
		usecase.RunOptions{Platform: "Java", UseContentIndex: true},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, m.KeywordsProcessed)
	assert.Equal(t, 1, m.ExistingTopicsLoaded)
	assert.Equal(t, 2, m.TopicsGeneratedRaw)
	assert.Equal(t, 1, m.DuplicatesDropped)
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "Batch PDF to DOCX Conversion in Java", result.Topics[0].Title)
	assert.Equal(t, 75, m.LLMPromptTokens+m.LLMCompletionTokens)

	runs, err := application.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)

	matches, err := filepath.Glob(filepath.Join(cfg.Data.OutputDir, "aspose", "output", "*_topics.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	_, err = os.Stat(filepath.Join(cfg.Data.OutputDir, "kra_result_aspose_"+result.RunID+".json"))
	assert.NoError(t, err)
}

func TestApplicationLookup(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "")
	application := New(context.Background(), cfg, logging.Discard())
	t.Cleanup(func() { _ = application.Close() })

	posts, err := application.Lookup(context.Background(), "Aspose.Words", "java", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "convert-pdf-to-word-java", posts[0].Slug)

	_, err = application.Lookup(context.Background(), "Aspose.Words", "", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrContentRootMissing)
}

func TestApplicationRunSurvivesFeedOutage(t *testing.T) {
	t.Parallel()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(feed.Close)

	cfg := testConfig(t, llmServer(t).URL)
	cfg.ContentIndex = config.ContentIndexConfig{FeedURL: feed.URL + "/index.xml"}
	application := New(context.Background(), cfg, logging.Discard())
	t.Cleanup(func() { _ = application.Close() })

	result, m, err := application.Run(context.Background(),
		domain.RunRequest{Brand: "aspose", Product: "Aspose.Words"},
		usecase.RunOptions{Platform: "java", UseContentIndex: true},
	)
	require.NoError(t, err)
	assert.True(t, m.Success)
	assert.Equal(t, 1, m.ContentIndexFailures)
	assert.Equal(t, 1, m.LLMRequests)
	assert.Len(t, result.Topics, 2)
}

func TestApplicationBuildIndexServesLookups(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "")
	out := filepath.Join(t.TempDir(), "blog_index.json")
	cfg.ContentIndex.IndexFile = out
	application := New(context.Background(), cfg, logging.Discard())
	t.Cleanup(func() { _ = application.Close() })

	path, n, err := application.BuildIndex(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, out, path)
	assert.Equal(t, 1, n)

	// The content tree is gone; lookups now come from the index file.
	require.NoError(t, os.RemoveAll(cfg.ContentIndex.Root))
	posts, err := application.Lookup(context.Background(), "Aspose.Words", "java", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "convert-pdf-to-word-java", posts[0].Slug)
}

func TestJobItem(t *testing.T) {
	t.Parallel()

	application := &Application{}
	off := false
	item := application.JobItem("kra_run.yaml", config.Job{
		Engine: config.JobEngine{
			Brand: "aspose", Product: "Aspose.Words", Platform: "csharp",
			UseSerpAPI: true, SerpTopic: "convert pdf", TopClusters: 7, UseContentIndex: &off,
		},
		ContentIndex: config.JobContentIndex{LocalRoot: "/srv/content"},
	})

	assert.Equal(t, "kra_run.yaml", item.Name)
	assert.Equal(t, 7, item.Request.TopClusters)
	assert.Equal(t, []string{"serpapi"}, item.Options.Sources)
	assert.Equal(t, "convert pdf", item.Options.Topic)
	assert.False(t, item.Options.UseContentIndex)
	assert.Equal(t, "/srv/content", item.Options.ContentRoot)
}
