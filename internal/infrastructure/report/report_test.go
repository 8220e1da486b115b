package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"KeywordAnalyzer/internal/domain"
)

func sampleResult() domain.RunResult {
	return domain.RunResult{
		RunID:    "1a2b3c4d",
		Brand:    "Aspose",
		Product:  "Aspose.Words",
		Locale:   "en-US",
		Platform: "java",
		Clusters: []domain.Cluster{{
			ID:      "c1",
			Label:   "pdf to word",
			Members: []domain.KeywordRecord{{Keyword: "pdf to word"}},
			Metrics: domain.ClusterMetrics{Intent: domain.IntentInformational, Score: 0.42, BrandFit: 0.5},
		}},
		Topics: []domain.TopicIdea{{
			ClusterID:          "c1",
			Title:              "Convert PDF to Word in Java",
			Angle:              "Step by step",
			Outline:            []string{"Setup", "Convert", "Verify"},
			TargetPersona:      "Java developer",
			PrimaryKeyword:     "pdf to word",
			SupportingKeywords: []string{"pdf to word java", "convert pdf"},
		}},
	}
}

func TestMarkdownFileName(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	if got := MarkdownFileName(res); got != "1a2b3c4d_aspose-words_java_topics.md" {
		t.Fatalf("unexpected name %q", got)
	}
	res.Platform = ""
	res.RunID = "1a2b3c4d5e6f"
	if got := MarkdownFileName(res); got != "1a2b3c4d_aspose-words_all_topics.md" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderMarkdown(sampleResult())
	for _, want := range []string{
		"# Blog Topics for Aspose.Words (en-US)\n",
		"- **Platform:** java\n",
		"- **Topics:** 1\n",
		"## 1. Convert PDF to Word in Java\n",
		"- **Cluster ID:** `c1`\n",
		"- **Supporting keywords:** `pdf to word java`, `convert pdf`\n",
		"**Suggested outline:**\n- Setup\n- Convert\n- Verify\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestFileWriter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewFileWriter(dir, true, nil)
	paths, err := w.WriteArtifacts(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 artifacts, got %v", paths)
	}

	wantJSON := filepath.Join(dir, "kra_result_aspose_1a2b3c4d.json")
	wantMD := filepath.Join(dir, "aspose", "output", "1a2b3c4d_aspose-words_java_topics.md")
	if paths[0] != wantJSON || paths[1] != wantMD {
		t.Fatalf("unexpected paths %v", paths)
	}

	data, err := os.ReadFile(wantJSON)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded domain.RunResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded.RunID != "1a2b3c4d" || len(decoded.Topics) != 1 || decoded.Clusters[0].ID != "c1" {
		t.Fatalf("unexpected decoded result %+v", decoded)
	}
}

func TestFileWriterMarkdownOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths, err := NewFileWriter(dir, false, nil).WriteArtifacts(context.Background(), sampleResult())
	if err != nil || len(paths) != 1 {
		t.Fatalf("unexpected %v %v", paths, err)
	}
}

func TestRenderTables(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	RenderSummary(&buf, sampleResult())
	out := buf.String()
	if !strings.Contains(out, "Run ID: 1a2b3c4d") || !strings.Contains(out, "Convert PDF to Word in Java") || !strings.Contains(out, "0.420") {
		t.Fatalf("unexpected summary:\n%s", out)
	}

	buf.Reset()
	RenderHistory(&buf, []domain.RunRecord{{RunID: "1a2b3c4d", Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Success: true}})
	if !strings.Contains(buf.String(), "2026-01-01 00:00:00") {
		t.Fatalf("unexpected history table:\n%s", buf.String())
	}
}
