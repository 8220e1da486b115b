package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"KeywordAnalyzer/internal/app"
	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "keywordanalyzer",
		Short:         "Cluster keyword research and generate blog topic ideas",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $KEYWORD_ANALYZER_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newJobCommand(opts))
	cmd.AddCommand(newIndexCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	return cmd
}

func (o *rootOptions) loadConfig() config.Config {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

// open loads configuration and wires the application. Callers close it.
func (o *rootOptions) open(ctx context.Context, debug bool) (*app.Application, *slog.Logger) {
	cfg := o.loadConfig()
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	if debug {
		level = "debug"
	}
	logger := logging.NewWithWriter(os.Stderr, level)
	return app.New(ctx, cfg, logger), logger
}
