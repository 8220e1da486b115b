package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

// FileWriter stores the JSON result in the output dir and the Markdown
// report under <output>/<brand>/output.
type FileWriter struct {
	outputDir string
	writeJSON bool
	logger    *slog.Logger
}

var _ ports.ArtifactWriter = (*FileWriter)(nil)

// NewFileWriter wires the output directory.
func NewFileWriter(outputDir string, writeJSON bool, log *slog.Logger) *FileWriter {
	return &FileWriter{outputDir: outputDir, writeJSON: writeJSON, logger: log}
}

// JSONFileName is "kra_result_<brand>_<run_id>.json".
func JSONFileName(result domain.RunResult) string {
	return fmt.Sprintf("kra_result_%s_%s.json", Slug(result.Brand), result.RunID)
}

// WriteArtifacts writes every artifact and returns the paths written.
func (w *FileWriter) WriteArtifacts(ctx context.Context, result domain.RunResult) ([]string, error) {
	var paths []string

	if w.writeJSON {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(w.outputDir, JSONFileName(result))
		if err := writeJSONFile(path, result); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		w.info("saved result", "path", path)
	}

	if err := ctx.Err(); err != nil {
		return paths, err
	}
	dir := filepath.Join(w.outputDir, Slug(result.Brand), "output")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return paths, fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, MarkdownFileName(result))
	if err := os.WriteFile(path, []byte(RenderMarkdown(result)), 0o644); err != nil {
		return paths, fmt.Errorf("write topics report: %w", err)
	}
	paths = append(paths, path)
	w.info("saved topics markdown", "path", path)

	return paths, nil
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func (w *FileWriter) info(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}
