package contentindex

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/platform"
	"KeywordAnalyzer/internal/ports"
)

// FeedIndex reads published posts from a site feed (Hugo's index.xml) when
// the content tree is not checked out locally. Post URLs are expected as
// /{product}/.../{slug}/.
type FeedIndex struct {
	feedURL   string
	platforms *platform.Table
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.ContentIndex = (*FeedIndex)(nil)

// NewFeedIndex wires the feed location and the platform table.
func NewFeedIndex(feedURL string, platforms *platform.Table, log *slog.Logger) *FeedIndex {
	return &FeedIndex{
		feedURL:   feedURL,
		platforms: platforms,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    log,
	}
}

// Lookup fetches the feed and filters it like DirectoryIndex.Lookup.
func (f *FeedIndex) Lookup(ctx context.Context, productCode, platformName string) ([]domain.ExistingPost, error) {
	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", f.feedURL, err)
	}

	posts := f.postsFromFeed(feed, productCode, platformName)
	SortByDate(posts)
	if f.logger != nil {
		f.logger.Debug("feed index lookup", "product", productCode, "platform", platformName, "matches", len(posts))
	}
	return posts, nil
}

func (f *FeedIndex) postsFromFeed(feed *gofeed.Feed, productCode, platformName string) []domain.ExistingPost {
	product := strings.ToLower(strings.TrimSpace(productCode))
	wantPlatform := strings.ToLower(strings.TrimSpace(platformName))

	var posts []domain.ExistingPost
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		segments := pathSegments(item.Link)
		if len(segments) == 0 || strings.ToLower(segments[0]) != product {
			continue
		}

		post := domain.ExistingPost{
			Title:   strings.TrimSpace(item.Title),
			Slug:    segments[len(segments)-1],
			URL:     item.Link,
			Product: segments[0],
			Date:    itemDate(item),
		}
		if f.platforms != nil {
			text := strings.Join(append([]string{item.Title, item.Description, item.Link}, item.Categories...), " ")
			post.Platforms = f.platforms.Detect(text)
		}
		if len(post.Platforms) > 0 {
			post.Platform = post.Platforms[0]
		}
		if wantPlatform != "" && !contains(post.Platforms, wantPlatform) {
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

func pathSegments(link string) []string {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	var out []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func itemDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}
