package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"KeywordAnalyzer/internal/domain"
	"KeywordAnalyzer/internal/infrastructure/report"
	"KeywordAnalyzer/internal/telemetry"
	"KeywordAnalyzer/internal/usecase"
)

type runFlags struct {
	brand          string
	product        string
	locale         string
	file           string
	platform       string
	clusters       int
	topClusters    int
	maxRows        int
	useSerpAPI     bool
	serpTopic      string
	noContentIndex bool
	contentRoot    string
	weights        domain.Weights
}

func newRunCommand(root *rootOptions) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run keyword clustering and topic generation once",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := root.open(cmd.Context(), false)
			defer application.Close()

			req, opts := f.request(cmd, application.Config().Scoring.Weights)
			result, metrics, err := application.Run(cmd.Context(), req, opts)
			printRun(cmd.OutOrStdout(), result, metrics, err)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.brand, "brand", "", "brand slug, e.g. aspose")
	fl.StringVar(&f.product, "product", "", "product name, e.g. Aspose.Words")
	fl.StringVar(&f.locale, "locale", domain.DefaultLocale, "keyword locale")
	fl.StringVar(&f.file, "file", "", "keyword export (.csv, .tsv, .xlsx, .html); defaults are searched when empty")
	fl.StringVar(&f.platform, "platform", "", "target platform, e.g. java, csharp")
	fl.IntVar(&f.clusters, "clusters", 0, "force the number of clusters")
	fl.IntVar(&f.topClusters, "top-clusters", 0, "clusters carried to topic generation")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum keyword rows to read")
	fl.BoolVar(&f.useSerpAPI, "use-serp-api", false, "fetch keywords from SerpAPI instead of a file")
	fl.StringVar(&f.serpTopic, "serp-topic", "", "topic appended to the product in the SerpAPI query")
	fl.BoolVar(&f.noContentIndex, "no-content-index", false, "skip the existing-content lookup")
	fl.StringVar(&f.contentRoot, "content-root", "", "content tree to deduplicate against")
	fl.Float64Var(&f.weights.Volume, "w-volume", 0, "volume weight")
	fl.Float64Var(&f.weights.KD, "w-kd", 0, "keyword difficulty weight")
	fl.Float64Var(&f.weights.CPC, "w-cpc", 0, "cpc weight")
	fl.Float64Var(&f.weights.Brand, "w-brand", 0, "brand fit weight")
	fl.Float64Var(&f.weights.Intent, "w-intent", 0, "intent weight")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

// request merges explicitly set weight flags over the configured weights.
func (f *runFlags) request(cmd *cobra.Command, base domain.Weights) (domain.RunRequest, usecase.RunOptions) {
	weights := base
	changed := cmd.Flags().Changed
	if changed("w-volume") {
		weights.Volume = f.weights.Volume
	}
	if changed("w-kd") {
		weights.KD = f.weights.KD
	}
	if changed("w-cpc") {
		weights.CPC = f.weights.CPC
	}
	if changed("w-brand") {
		weights.Brand = f.weights.Brand
	}
	if changed("w-intent") {
		weights.Intent = f.weights.Intent
	}

	sources := []string{string(domain.SourceUpload)}
	if f.useSerpAPI {
		sources = []string{string(domain.SourceSerpAPI)}
	}

	req := domain.RunRequest{
		Brand:        f.brand,
		Product:      f.product,
		Locale:       f.locale,
		FilePath:     f.file,
		ClusterCount: f.clusters,
		TopClusters:  f.topClusters,
		MaxRows:      f.maxRows,
		Weights:      weights,
	}
	opts := usecase.RunOptions{
		Platform:        f.platform,
		UseContentIndex: !f.noContentIndex,
		Topic:           f.serpTopic,
		Sources:         sources,
		ContentRoot:     f.contentRoot,
	}
	return req, opts
}

func printRun(out io.Writer, result domain.RunResult, metrics *telemetry.RunMetrics, err error) {
	if err == nil {
		report.RenderSummary(out, result)
	} else {
		fmt.Fprintf(out, "run failed: %v\n", err)
	}
	if metrics != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, metrics.CLISummary())
	}
}
