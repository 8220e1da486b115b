package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/usecase"
)

func newJobCommand(root *rootOptions) *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Run one or more saved job files (kra_run.yaml) in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := make([]config.Job, 0, len(files))
			debug := false
			for _, path := range files {
				job, err := config.LoadJob(path)
				if err != nil {
					return err
				}
				debug = debug || job.Engine.Debug
				jobs = append(jobs, job)
			}

			application, logger := root.open(cmd.Context(), debug)
			defer application.Close()

			items := make([]usecase.BatchItem, len(jobs))
			for i, job := range jobs {
				items[i] = application.JobItem(filepath.Base(files[i]), job)
			}

			outcomes, err := usecase.NewBatch(application).Run(cmd.Context(), items)
			out := cmd.OutOrStdout()
			for _, o := range outcomes {
				fmt.Fprintf(out, "\n=== %s ===\n", o.Name)
				printRun(out, o.Result, o.Metrics, o.Err)
			}
			if err != nil {
				logger.Error("batch finished with errors", "jobs", len(items), "attempted", len(outcomes), "err", err)
			}
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&files, "job", "c", nil, "job file; repeat for several")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}
