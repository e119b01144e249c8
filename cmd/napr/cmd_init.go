package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/projectconfig"
	"github.com/spboyer/napr/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new experiment",
		Long: `Initialize a new napr project.

Creates a .napr.yaml project file, an experiments/ directory holding an
experiment.yaml template, and an empty results/ directory. Existing files are
never overwritten.

Use --interactive to run a guided wizard that collects the dataset, split and
classifiers for the experiment.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initCommandE(cmd, args, interactive)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run guided experiment wizard")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string, interactive bool) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var spec *models.ExperimentSpec
	if interactive {
		var err error
		spec, err = wizard.RunExperimentWizard(cmd.InOrStdin(), cmd.OutOrStdout(), filepath.Base(absOrSelf(dir)))
		if err != nil {
			return err
		}
	} else {
		spec = wizard.DefaultExperiment(sanitizeName(filepath.Base(absOrSelf(dir))))
	}

	experimentYAML, err := wizard.GenerateExperimentYAML(spec)
	if err != nil {
		return err
	}

	project := projectconfig.New()
	projectYAML, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", projectconfig.FileName, err)
	}

	for _, sub := range []string{project.Paths.Experiments, project.Paths.Results} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", sub, err)
		}
	}

	files := []struct {
		name    string
		content []byte
	}{
		{filepath.Join(project.Paths.Experiments, "experiment.yaml"), []byte(experimentYAML)},
		{projectconfig.FileName, projectYAML},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Initialized napr project:") //nolint:errcheck
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		created, err := writeIfMissing(path, f.content)
		if err != nil {
			return err
		}
		status := "created"
		if !created {
			status = "exists, skipped"
		}
		fmt.Fprintf(out, "  %s (%s)\n", path, status) //nolint:errcheck
	}
	return nil
}

func writeIfMissing(path string, content []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close() //nolint:errcheck
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, f.Close()
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func sanitizeName(name string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	name = r.Replace(strings.ToLower(name))
	if name == "" || name == "." || name == "-" {
		return ""
	}
	return name
}
