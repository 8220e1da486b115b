// Package importer reads keyword exports from local files.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

const defaultFileName = "keywords"

var defaultExtensions = []string{".xlsx", ".csv"}

// FileSource imports uploaded keyword files.
type FileSource struct {
	dataDir  string
	fallback []string
	logger   *slog.Logger
}

var _ ports.KeywordSource = (*FileSource)(nil)

// NewFileSource wires the data directory and the ordered fallback
// directories searched when no file path is given.
func NewFileSource(dataDir string, fallback []string, log *slog.Logger) *FileSource {
	return &FileSource{dataDir: dataDir, fallback: fallback, logger: log}
}

// Name identifies the source inside the registry.
func (s *FileSource) Name() string { return string(domain.SourceUpload) }

// Available is always true; a missing file is reported by Fetch.
func (s *FileSource) Available() bool { return true }

// Fetch resolves the input file and reads at most query.MaxRows records.
func (s *FileSource) Fetch(ctx context.Context, query domain.KeywordQuery) ([]domain.KeywordRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.Resolve(query.FilePath)
	if err != nil {
		return nil, err
	}
	s.debug("read keyword file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f, filepath.Ext(path), query.Locale, query.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// Resolve returns the explicit path when it exists, or the first existing
// keywords.{xlsx,csv} in the data directory and the fallback directories.
func (s *FileSource) Resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", domain.ErrInputNotFound, explicit)
			}
			return "", fmt.Errorf("stat %s: %w", explicit, err)
		}
		return explicit, nil
	}

	var tried []string
	for _, dir := range s.candidateDirs() {
		for _, ext := range defaultExtensions {
			candidate := filepath.Join(dir, defaultFileName+ext)
			tried = append(tried, candidate)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: none of %s", domain.ErrInputNotFound, strings.Join(tried, ", "))
}

func (s *FileSource) candidateDirs() []string {
	dirs := make([]string, 0, len(s.fallback)+1)
	if s.dataDir != "" {
		dirs = append(dirs, s.dataDir)
	}
	return append(dirs, s.fallback...)
}

// ReadRecords parses a keyword export in the format implied by ext.
func ReadRecords(r io.Reader, ext, locale string, maxRows int) ([]domain.KeywordRecord, error) {
	if locale == "" {
		locale = domain.DefaultLocale
	}
	limit := 0
	if maxRows > 0 {
		limit = maxRows + headerScanLimit
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(ext) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(r, limit)
	case ".html", ".htm":
		rows, err = readHTMLTable(r, limit)
	case ".tsv":
		rows, err = readDelimited(r, '\t', limit)
	case ".csv", ".txt", "":
		rows, err = readDelimited(r, 0, limit)
	default:
		return nil, fmt.Errorf("unsupported keyword file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	return recordsFromRows(rows, locale, maxRows), nil
}

func (s *FileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
