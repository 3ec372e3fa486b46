package main

import (
	"github.com/spf13/cobra"

	"github.com/krisalay/recency-cache/config"
	"github.com/krisalay/recency-cache/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pageindex",
		Short: "Freshness-gated page metadata indexer",
		Long: `pageindex decides, for every page visit, whether to re-extract the page's
structured data or to answer from a bounded recency cache, and reports
the result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			opts.cfg = cfg
			return logging.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newBenchCmd(opts))
	return cmd
}
