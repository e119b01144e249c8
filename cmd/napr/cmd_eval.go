package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spboyer/napr/internal/baseline"
	"github.com/spboyer/napr/internal/cache"
	"github.com/spboyer/napr/internal/config"
	"github.com/spboyer/napr/internal/evaluation"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/orchestration"
	"github.com/spboyer/napr/internal/projectconfig"
	"github.com/spboyer/napr/internal/reporting"
	"github.com/spboyer/napr/internal/spinner"
	"github.com/spboyer/napr/internal/template"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type evalOptions struct {
	outputPath   string
	junitPath    string
	format       string
	interpret    bool
	verbose      bool
	enableCache  bool
	disableCache bool
	cacheDir     string
	modelFilters []string
	baseline     string
	seed         int64
	split        float64
}

func newEvalCommand() *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <experiment.yaml>",
		Short: "Run an experiment",
		Long: `Run an experiment from an experiment file.

Every model in the file is fitted on the same training rows and scored on the
same evaluation rows. Relative dataset paths are resolved against the
experiment file's directory. Defaults from the nearest .napr.yaml apply to
settings the experiment leaves unset.

Exits with code 1 when a model misses a threshold and 2 on any other error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evalCommandE(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output JSON file for results (may use {{.Experiment}}, {{.RunID}}, {{.Date}}, {{.Timestamp}}, {{.Seed}})")
	cmd.Flags().StringVar(&opts.junitPath, "junit", "", "Write a JUnit XML report to this file (same placeholders as --output)")
	cmd.Flags().StringVar(&opts.format, "format", "table", "Output format: table, markdown, html")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output with per-model progress")
	cmd.Flags().BoolVar(&opts.enableCache, "cache", false, "Enable result caching (seeded experiments only)")
	cmd.Flags().BoolVar(&opts.disableCache, "no-cache", false, "Disable result caching even if .napr.yaml enables it")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "Cache directory (default: cache.dir from .napr.yaml)")
	cmd.Flags().StringArrayVar(&opts.modelFilters, "model", nil, "Only evaluate models whose name matches this glob (can be repeated)")
	cmd.Flags().StringVar(&opts.baseline, "baseline", "", "Report each model's improvement over this estimator (e.g. DummyClassifier)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Override the experiment's random seed")
	cmd.Flags().Float64Var(&opts.split, "split", 0, "Override the evaluation fraction")

	return cmd
}

func evalCommandE(cmd *cobra.Command, specPath string, opts *evalOptions) error {
	switch opts.format {
	case "table", "markdown", "html":
	default:
		return fmt.Errorf("unknown output format: %s (supported: table, markdown, html)", opts.format)
	}

	spec, err := models.LoadExperimentSpec(specPath)
	if err != nil {
		return fmt.Errorf("failed to load experiment: %w", err)
	}

	// CLI flags override the experiment file
	if cmd.Flags().Changed("seed") {
		seed := opts.seed
		spec.Config.Seed = &seed
	}
	if cmd.Flags().Changed("split") {
		spec.Config.Split = opts.split
	}

	specDir, err := filepath.Abs(filepath.Dir(specPath))
	if err != nil {
		return fmt.Errorf("resolving experiment directory: %w", err)
	}

	project, err := projectconfig.Load(specDir)
	if err != nil {
		return fmt.Errorf("loading %s: %w", projectconfig.FileName, err)
	}

	runnerOpts := []orchestration.RunnerOption{
		orchestration.WithProjectDefaults(project),
		orchestration.WithModelFilters(opts.modelFilters...),
	}

	useCache := (opts.enableCache || project.CacheEnabled()) && !opts.disableCache
	if useCache {
		dir := opts.cacheDir
		if dir == "" {
			dir = project.Cache.Dir
		}
		absCacheDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving cache directory: %w", err)
		}
		runnerOpts = append(runnerOpts, orchestration.WithCache(cache.New(absCacheDir)))
		slog.Debug("Cache enabled", "dir", absCacheDir)
	}

	cfg := newRunConfig(spec, specDir, opts)
	runner := orchestration.NewExperimentRunner(cfg, runnerOpts...)

	out := cmd.OutOrStdout()
	// Progress goes to stderr when stdout carries a document.
	progressOut := out
	if opts.format != "table" {
		progressOut = cmd.ErrOrStderr()
	}
	switch {
	case cfg.Verbose():
		runner.OnProgress(verboseProgressListener(progressOut))
	case isTerminal(progressOut):
		listener, stop := spinnerProgressListener(progressOut)
		defer stop()
		runner.OnProgress(listener)
	default:
		runner.OnProgress(simpleProgressListener(progressOut))
	}

	fmt.Fprintf(progressOut, "Running experiment: %s\n", spec.Name) //nolint:errcheck
	fmt.Fprintf(progressOut, "Dataset: %s\n\n", spec.Dataset.Path)  //nolint:errcheck

	outcome, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("experiment failed: %w", err)
	}

	switch opts.format {
	case "markdown":
		fmt.Fprint(out, reporting.FormatMarkdown(outcome)) //nolint:errcheck
	case "html":
		page, err := reporting.RenderHTML(outcome)
		if err != nil {
			return fmt.Errorf("rendering html: %w", err)
		}
		if _, err := out.Write(page); err != nil {
			return err
		}
	default:
		printSummary(out, outcome)
		if opts.interpret {
			fmt.Fprintln(out)                                       //nolint:errcheck
			fmt.Fprint(out, reporting.FormatSummaryReport(outcome)) //nolint:errcheck
		}
	}

	if opts.baseline != "" {
		imps, err := baseline.Compare(outcome.Table, opts.baseline)
		if err != nil {
			return err
		}
		printImprovements(progressOut, opts.baseline, imps)
	}

	nameCtx := template.NewContext(outcome)
	if cfg.OutputPath() != "" {
		path, err := reportPath(cfg.OutputPath(), nameCtx)
		if err != nil {
			return fmt.Errorf("--output: %w", err)
		}
		if err := saveOutcome(outcome, path); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Fprintf(progressOut, "\nResults saved to: %s\n", path) //nolint:errcheck
	}
	if opts.junitPath != "" {
		path, err := reportPath(opts.junitPath, nameCtx)
		if err != nil {
			return fmt.Errorf("--junit: %w", err)
		}
		if err := reporting.WriteJUnitXML(outcome, path); err != nil {
			return fmt.Errorf("failed to write junit report: %w", err)
		}
		fmt.Fprintf(progressOut, "JUnit report saved to: %s\n", path) //nolint:errcheck
	}

	if !outcome.Passed() {
		return &ThresholdFailureError{
			Message: fmt.Sprintf("experiment completed with %d threshold failure(s)", len(outcome.ThresholdFailures)),
		}
	}
	return nil
}

// newRunConfig carries the flags that shape reporting into the run config.
// Everything after the run reads them back from there.
func newRunConfig(spec *models.ExperimentSpec, specDir string, opts *evalOptions) *config.RunConfig {
	return config.NewRunConfig(spec,
		config.WithSpecDir(specDir),
		config.WithOutputPath(opts.outputPath),
		config.WithVerbose(opts.verbose),
	)
}

func verboseProgressListener(w io.Writer) evaluation.ProgressListener {
	return func(event evaluation.ProgressEvent) {
		switch event.EventType {
		case evaluation.EventEvaluationStart:
			if event.TotalFolds > 0 {
				fmt.Fprintf(w, "Cross-validating %d model(s) over %d folds...\n", event.TotalModels, event.TotalFolds) //nolint:errcheck
				return
			}
			fmt.Fprintf(w, "Evaluating %d model(s) (train=%v, eval=%v)...\n", event.TotalModels, event.Details["train_rows"], event.Details["eval_rows"]) //nolint:errcheck
		case evaluation.EventFoldStart:
			fmt.Fprintf(w, "Fold %d/%d\n", event.Fold, event.TotalFolds) //nolint:errcheck
		case evaluation.EventModelStart:
			fmt.Fprintf(w, "  [%d/%d] %s...", event.ModelNum, event.TotalModels, event.ModelName) //nolint:errcheck
		case evaluation.EventModelComplete:
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(w, " done (%v)\n", duration) //nolint:errcheck
		case evaluation.EventEvaluationComplete:
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(w, "Completed in %v\n\n", duration) //nolint:errcheck
		case orchestration.EventCached:
			fmt.Fprintf(w, "Using cached results (run %v)\n\n", event.Details["run_id"]) //nolint:errcheck
		}
	}
}

func simpleProgressListener(w io.Writer) evaluation.ProgressListener {
	return func(event evaluation.ProgressEvent) {
		switch event.EventType {
		case evaluation.EventModelComplete:
			if event.TotalFolds > 0 {
				return
			}
			fmt.Fprintf(w, "✓ [%d/%d] %s\n", event.ModelNum, event.TotalModels, event.ModelName) //nolint:errcheck
		case orchestration.EventCached:
			fmt.Fprintf(w, "✓ %d model(s) [cached]\n", event.TotalModels) //nolint:errcheck
		}
	}
}

// spinnerProgressListener animates the model being fitted. The returned stop
// function clears any spinner still running.
func spinnerProgressListener(w io.Writer) (evaluation.ProgressListener, func()) {
	var (
		mu sync.Mutex
		sp *spinner.Spinner
	)
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if sp != nil {
			sp.Stop()
			sp = nil
		}
	}

	simple := simpleProgressListener(w)
	listener := func(event evaluation.ProgressEvent) {
		switch event.EventType {
		case evaluation.EventModelStart:
			msg := fmt.Sprintf("[%d/%d] Fitting %s", event.ModelNum, event.TotalModels, event.ModelName)
			if event.TotalFolds > 0 {
				msg = fmt.Sprintf("Fold %d/%d: fitting %s", event.Fold, event.TotalFolds, event.ModelName)
			}
			mu.Lock()
			if sp == nil {
				sp = spinner.Start(w, msg)
			} else {
				sp.Update(msg)
			}
			mu.Unlock()
		case evaluation.EventModelComplete, evaluation.EventEvaluationComplete:
			if event.EventType == evaluation.EventEvaluationComplete || event.TotalFolds == 0 {
				stop()
			}
			simple(event)
		default:
			simple(event)
		}
	}
	return listener, stop
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// reportPath renders placeholders in path and creates its directory.
func reportPath(path string, ctx *template.Context) (string, error) {
	rendered, err := template.Render(path, ctx)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(rendered); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return rendered, nil
}

func printImprovements(w io.Writer, baselineName string, imps []baseline.Improvement) {
	fmt.Fprintf(w, "Improvement over %s:\n", baselineName) //nolint:errcheck
	header := []string{"Estimator", "Lift"}
	var rows [][]string
	for _, imp := range imps {
		rows = append(rows, []string{
			truncateName(imp.Estimator, 30),
			formatDelta(&imp.Lift),
		})
	}
	writeTable(w, "  ", header, rows)
	fmt.Fprintln(w) //nolint:errcheck
}

func saveOutcome(outcome *models.EvaluationOutcome, path string) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
