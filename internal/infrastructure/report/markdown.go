// Package report writes run artifacts: the JSON result, the topics Markdown
// report and CLI tables.
package report

import (
	"fmt"
	"strings"

	"KeywordAnalyzer/internal/domain"
)

// Slug turns a brand, product or platform into a file-name-safe key.
func Slug(s string) string {
	if k := domain.NormalizeKey(s); k != "" {
		return k
	}
	return "unknown"
}

// MarkdownFileName is "<run>_<product>_<platform|all>_topics.md".
func MarkdownFileName(result domain.RunResult) string {
	run := result.RunID
	if len(run) > 8 {
		run = run[:8]
	}
	if run == "" {
		run = "run"
	}
	platform := result.Platform
	if platform == "" {
		platform = "all"
	}
	return fmt.Sprintf("%s_%s_%s_topics.md", run, Slug(result.Product), Slug(platform))
}

// RenderMarkdown lists the run header and one section per topic.
func RenderMarkdown(result domain.RunResult) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	platform := result.Platform
	if platform == "" {
		platform = "all"
	}

	line("# Blog Topics for %s (%s)", result.Product, result.Locale)
	line("")
	line("- **Brand:** %s", result.Brand)
	line("- **Product:** %s", result.Product)
	line("- **Platform:** %s", platform)
	line("- **Run ID:** %s", result.RunID)
	line("- **Topics:** %d", len(result.Topics))
	line("")
	line("---")
	line("")

	for i, t := range result.Topics {
		line("## %d. %s", i+1, t.Title)
		if t.ClusterID != "" {
			line("- **Cluster ID:** `%s`", t.ClusterID)
		}
		if t.TargetPersona != "" {
			line("- **Target persona:** %s", t.TargetPersona)
		}
		if t.Angle != "" {
			line("- **Angle:** %s", t.Angle)
		}
		if t.PrimaryKeyword != "" {
			line("- **Primary keyword:** `%s`", t.PrimaryKeyword)
		}
		if len(t.SupportingKeywords) > 0 {
			quoted := make([]string, len(t.SupportingKeywords))
			for j, kw := range t.SupportingKeywords {
				quoted[j] = "`" + kw + "`"
			}
			line("- **Supporting keywords:** %s", strings.Join(quoted, ", "))
		}
		if len(t.Outline) > 0 {
			line("")
			line("**Suggested outline:**")
			for _, bullet := range t.Outline {
				line("- %s", bullet)
			}
		}
		line("")
		line("---")
		line("")
	}
	return b.String()
}
