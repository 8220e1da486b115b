package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"KeywordAnalyzer/internal/infrastructure/report"
)

func newIndexCommand(root *rootOptions) *cobra.Command {
	var product, platformName, contentRoot string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List published posts for a product and platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := root.open(cmd.Context(), false)
			defer application.Close()

			posts, err := application.Lookup(cmd.Context(), product, platformName, contentRoot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(posts) == 0 {
				fmt.Fprintln(out, "no matching posts")
				return nil
			}
			report.RenderPosts(out, posts)
			return nil
		},
	}
	cmd.Flags().StringVar(&product, "product", "", "product name or code, e.g. Aspose.Words")
	cmd.Flags().StringVar(&platformName, "platform", "", "platform filter")
	cmd.Flags().StringVar(&contentRoot, "content-root", "", "content tree (defaults to config)")
	_ = cmd.MarkFlagRequired("product")
	cmd.AddCommand(newIndexBuildCommand(root))
	return cmd
}

func newIndexBuildCommand(root *rootOptions) *cobra.Command {
	var contentRoot, out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the content tree to a JSON index file (blog_index.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _ := root.open(cmd.Context(), false)
			defer application.Close()

			path, n, err := application.BuildIndex(cmd.Context(), contentRoot, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d posts into %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&contentRoot, "content-root", "", "content tree (defaults to config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "index file (defaults to contentIndex.indexFile)")
	return cmd
}
