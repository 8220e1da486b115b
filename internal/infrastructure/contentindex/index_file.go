package contentindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/ports"
)

// IndexEntry is one post in a prebuilt index file (blog_index.json).
type IndexEntry struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	URL             string   `json:"url,omitempty"`
	Product         string   `json:"product,omitempty"`
	RelPath         string   `json:"rel_path,omitempty"`
	Date            string   `json:"date,omitempty"`
	Platforms       []string `json:"platforms"`
	PrimaryPlatform string   `json:"primary_platform,omitempty"`
}

func entryFromPost(p domain.ExistingPost) IndexEntry {
	platforms := p.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	return IndexEntry{
		Title:           p.Title,
		Slug:            p.Slug,
		URL:             p.URL,
		Product:         p.Product,
		RelPath:         p.RelPath,
		Date:            p.Date,
		Platforms:       platforms,
		PrimaryPlatform: p.Platform,
	}
}

func (e IndexEntry) post() domain.ExistingPost {
	return domain.ExistingPost{
		Title:     e.Title,
		Slug:      e.Slug,
		URL:       e.URL,
		Product:   e.Product,
		Platform:  e.PrimaryPlatform,
		Platforms: e.Platforms,
		RelPath:   e.RelPath,
		Date:      e.Date,
	}
}

// BuildIndexFile scans the content tree and writes every post to path as a
// JSON array. It returns the number of entries written.
func BuildIndexFile(ctx context.Context, dir *DirectoryIndex, path string) (int, error) {
	posts, err := dir.Scan(ctx)
	if err != nil {
		return 0, err
	}

	entries := make([]IndexEntry, len(posts))
	for i, p := range posts {
		entries[i] = entryFromPost(p)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode index: %w", err)
	}

	if dirName := filepath.Dir(path); dirName != "" {
		if err := os.MkdirAll(dirName, 0o755); err != nil {
			return 0, fmt.Errorf("create index dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, fmt.Errorf("replace index: %w", err)
	}
	return len(entries), nil
}

// FileIndex serves lookups from a prebuilt index file.
type FileIndex struct {
	path   string
	logger *slog.Logger
}

var _ ports.ContentIndex = (*FileIndex)(nil)

func NewFileIndex(path string, log *slog.Logger) *FileIndex {
	return &FileIndex{path: path, logger: log}
}

// Lookup reads the index file and filters it like DirectoryIndex.Lookup. A
// missing file reports ErrContentRootMissing.
func (f *FileIndex) Lookup(ctx context.Context, productCode, platformName string) ([]domain.ExistingPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: index file %s", domain.ErrContentRootMissing, f.path)
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode index file %s: %w", f.path, err)
	}
	posts := make([]domain.ExistingPost, len(entries))
	for i, e := range entries {
		posts[i] = e.post()
	}

	posts = FilterPosts(posts, productCode, platformName)
	SortByDate(posts)
	if f.logger != nil {
		f.logger.Debug("index file lookup", "path", f.path, "product", productCode, "platform", platformName, "matches", len(posts))
	}
	return posts, nil
}
