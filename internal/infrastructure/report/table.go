package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"KeywordAnalyzer/internal/domain"
)

const (
	summaryClusters = 5
	summaryTopics   = 10
)

// RenderSummary prints the top clusters and topic ideas of a run.
func RenderSummary(out io.Writer, result domain.RunResult) {
	fmt.Fprintf(out, "\nRun ID: %s\n", result.RunID)
	fmt.Fprintf(out, "Brand: %s | Product: %s | Locale: %s\n", result.Brand, result.Product, result.Locale)
	fmt.Fprintf(out, "Top %d clusters (score desc):\n", len(result.Clusters))

	clusters := table.NewWriter()
	clusters.SetOutputMirror(out)
	clusters.SetStyle(table.StyleLight)
	clusters.AppendHeader(table.Row{"Cluster", "Intent", "Score", "Brand Fit", "Label", "Keywords"})
	for i, c := range result.Clusters {
		if i == summaryClusters {
			break
		}
		clusters.AppendRow(table.Row{
			c.ID,
			c.Metrics.Intent,
			fmt.Sprintf("%.3f", c.Metrics.Score),
			fmt.Sprintf("%.2f", c.Metrics.BrandFit),
			c.Label,
			len(c.Members),
		})
	}
	clusters.Render()

	fmt.Fprintln(out, "\nTopic ideas:")
	topics := table.NewWriter()
	topics.SetOutputMirror(out)
	topics.SetStyle(table.StyleLight)
	topics.AppendHeader(table.Row{"#", "Title", "Cluster"})
	for i, t := range result.Topics {
		if i == summaryTopics {
			break
		}
		topics.AppendRow(table.Row{i + 1, t.Title, t.ClusterID})
	}
	topics.Render()
}

// RenderHistory prints run history rows.
func RenderHistory(out io.Writer, runs []domain.RunRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run ID", "When (UTC)", "Brand", "Product", "Platform", "Keywords", "Topics", "Dropped", "Tokens", "Duration", "Success"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID,
			r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			r.Brand,
			r.Product,
			r.Platform,
			r.KeywordsProcessed,
			r.TopicsAfterDedup,
			r.DuplicatesDropped,
			r.TotalTokens(),
			fmt.Sprintf("%.1fs", r.RunDurationSeconds),
			r.Success,
		})
	}
	t.Render()
}

// RenderPosts prints existing posts from the content index.
func RenderPosts(out io.Writer, posts []domain.ExistingPost) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Date", "Title", "Slug", "Platforms"})
	for _, p := range posts {
		t.AppendRow(table.Row{p.Date, p.Title, p.Slug, fmt.Sprint(p.Platforms)})
	}
	t.Render()
}
