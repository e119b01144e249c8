package main

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/napr/internal/discovery"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/projectconfig"
	"github.com/spboyer/napr/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [experiment.yaml | directory ...]",
		Short: "Validate experiment files against the schema",
		Long: `Validate one or more experiment files.

Each file is checked against the experiment JSON schema and then loaded to
catch constraints the schema cannot express, such as duplicate model names.
Directories are searched for experiment files. With no arguments, the
experiments directory from .napr.yaml is searched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				project, err := projectconfig.Load(".")
				if err != nil {
					return fmt.Errorf("loading %s: %w", projectconfig.FileName, err)
				}
				args = []string{filepath.Clean(project.Paths.Experiments)}
			}

			paths, err := discovery.Expand(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range paths {
				errs, err := validation.ValidateExperimentFile(path)
				if err != nil {
					return err
				}
				if len(errs) == 0 {
					if _, err := models.LoadExperimentSpec(path); err != nil {
						errs = append(errs, err.Error())
					}
				}
				if len(errs) == 0 {
					fmt.Fprintf(out, "✓ %s\n", path) //nolint:errcheck
					continue
				}
				invalid++
				fmt.Fprintf(out, "✗ %s\n", path) //nolint:errcheck
				for _, e := range errs {
					fmt.Fprintf(out, "    %s\n", e) //nolint:errcheck
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d experiment file(s) invalid", invalid, len(paths))
			}
			return nil
		},
	}
}
