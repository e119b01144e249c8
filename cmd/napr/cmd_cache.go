package main

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/napr/internal/cache"
	"github.com/spboyer/napr/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage evaluation result cache",
		Long: `Manage the evaluation result cache.

The cache stores outcomes of seeded experiments so repeated runs with the same
experiment file and dataset contents skip fitting. Cached results are keyed by
the experiment definition and the decompressed content of every dataset.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the evaluation result cache",
		Long: `Clear all cached evaluation results.

The next run of every experiment fits its models from scratch. Directories
holding anything other than cache files are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cacheDir
			if dir == "" {
				project, err := projectconfig.Load(".")
				if err != nil {
					return fmt.Errorf("loading %s: %w", projectconfig.FileName, err)
				}
				dir = project.Cache.Dir
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			if err := cache.New(absDir).Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default: cache.dir from .napr.yaml)")

	return cmd
}
