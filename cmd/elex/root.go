package main

import (
	"log/slog"

	"github.com/energylabel/elex/internal/utils"
	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	debug      bool
	projectDir string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "elex",
		Short: "elex - energy efficiency labels for ML models",
		Long: `elex rates machine-learning models with A-E energy efficiency labels.

Measurements of several models in one or more environments are indexed
against a reference model, classified per metric with configurable
boundaries and weights, and combined into a compound label.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.projectDir, "project", ".", "Directory to search upwards for .elex.yaml")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		slog.SetDefault(utils.NewLogger(cmd.ErrOrStderr(), opts.debug))
	}

	cmd.AddCommand(newRateCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newCalibrateCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newDashboardCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newJournalCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
