package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "napr",
		Short: "napr - evaluate and compare classifiers on tabular data",
		Long: `napr is a command-line tool for evaluating classification models.

It fits every model in an experiment file on the same split of a CSV dataset,
scores each one on a shared set of metrics, and reports a comparison table
that can be checked against minimum thresholds in CI.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newEvalCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newStatCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
