package contentindex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/platform"
	"KeywordAnalyzer/internal/ports"
)

// IndexFileName is the page-bundle file holding a post.
const IndexFileName = "index.md"

// DirectoryIndex scans a Hugo content tree laid out as
// {root}/{product}/.../{slug}/index.md.
type DirectoryIndex struct {
	root      string
	platforms *platform.Table
	logger    *slog.Logger
}

var _ ports.ContentIndex = (*DirectoryIndex)(nil)

// NewDirectoryIndex wires the content root and the platform table.
func NewDirectoryIndex(root string, platforms *platform.Table, log *slog.Logger) *DirectoryIndex {
	return &DirectoryIndex{root: root, platforms: platforms, logger: log}
}

// Lookup returns posts of productCode, optionally restricted to a canonical
// platform, oldest first. Undated posts come last. A missing root is an
// error; unreadable posts are skipped.
func (d *DirectoryIndex) Lookup(ctx context.Context, productCode, platformName string) ([]domain.ExistingPost, error) {
	all, err := d.Scan(ctx)
	if err != nil {
		return nil, err
	}
	posts := FilterPosts(all, productCode, platformName)
	d.debug("content index lookup", "product", productCode, "platform", platformName, "matches", len(posts))
	return posts, nil
}

// Scan reads every post bundle under the root, oldest first.
func (d *DirectoryIndex) Scan(ctx context.Context) ([]domain.ExistingPost, error) {
	root, err := filepath.Abs(d.root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentRootMissing, root)
	}

	var posts []domain.ExistingPost
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || entry.Name() != IndexFileName {
			return nil
		}
		if post, ok := d.readPost(root, path); ok {
			posts = append(posts, post)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content root: %w", err)
	}

	SortByDate(posts)
	return posts, nil
}

// FilterPosts keeps posts of productCode and, when set, platformName. Order
// is preserved.
func FilterPosts(posts []domain.ExistingPost, productCode, platformName string) []domain.ExistingPost {
	product := strings.ToLower(strings.TrimSpace(productCode))
	wantPlatform := strings.ToLower(strings.TrimSpace(platformName))

	var out []domain.ExistingPost
	for _, post := range posts {
		if strings.ToLower(post.Product) != product {
			continue
		}
		if wantPlatform != "" && !contains(post.Platforms, wantPlatform) {
			continue
		}
		out = append(out, post)
	}
	return out
}

func (d *DirectoryIndex) readPost(root, path string) (domain.ExistingPost, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		d.warn("skip unreadable post", "path", path, "error", err)
		return domain.ExistingPost{}, false
	}
	fm, err := ParseFrontMatter(path, data)
	if err != nil {
		var fmErr *FrontMatterError
		if errors.As(err, &fmErr) {
			d.warn("skip post without front matter", "path", fmErr.Path, "reason", fmErr.Reason)
		}
		return domain.ExistingPost{}, false
	}

	bundle := filepath.Dir(path)
	rel, _ := filepath.Rel(root, path)
	post := domain.ExistingPost{
		Title:   fm.String("title"),
		Slug:    filepath.Base(bundle),
		URL:     fm.String("url"),
		Product: productFromBundle(root, bundle),
		RelPath: filepath.ToSlash(rel),
		Date:    fm.Date(),
	}
	if d.platforms != nil {
		post.Platforms = d.platforms.Detect(fm.PlatformText())
	}
	if len(post.Platforms) > 0 {
		post.Platform = post.Platforms[0]
	}
	return post, true
}

// productFromBundle takes the first path segment of the bundle's parent
// relative to the root.
func productFromBundle(root, bundle string) string {
	rel, err := filepath.Rel(root, filepath.Dir(bundle))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return strings.Split(filepath.ToSlash(rel), "/")[0]
}

// SortByDate orders posts oldest first; unparseable dates sort last and
// keep their relative order.
func SortByDate(posts []domain.ExistingPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, okI := parseDate(posts[i].Date)
		tj, okJ := parseDate(posts[j].Date)
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if strings.ToLower(v) == want {
			return true
		}
	}
	return false
}

func (d *DirectoryIndex) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *DirectoryIndex) warn(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
