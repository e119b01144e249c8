// Package orchestration turns an experiment file into an evaluation outcome:
// it loads the datasets, builds the classifiers and drives the harness.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spboyer/napr/internal/cache"
	"github.com/spboyer/napr/internal/classifier"
	"github.com/spboyer/napr/internal/config"
	"github.com/spboyer/napr/internal/dataset"
	"github.com/spboyer/napr/internal/evaluation"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/projectconfig"
	"github.com/spboyer/napr/internal/utils"
	"gonum.org/v1/gonum/mat"
)

// ErrNoModels is returned when model filters exclude every model.
var ErrNoModels = errors.New("no models selected")

// EventCached is emitted instead of the evaluation events when an outcome is
// served from the cache.
const EventCached evaluation.EventType = "evaluation_cached"

// ExperimentRunner orchestrates one experiment
type ExperimentRunner struct {
	cfg *config.RunConfig

	// Model filtering
	modelFilters []string

	// Result caching
	cache *cache.Cache

	// Fallbacks for settings the experiment leaves unset
	defaults *projectconfig.ProjectConfig

	// Progress tracking
	progressMu sync.Mutex
	listeners  []evaluation.ProgressListener
}

// RunnerOption configures an ExperimentRunner.
type RunnerOption func(*ExperimentRunner)

// WithModelFilters sets glob patterns used to select models by name.
func WithModelFilters(patterns ...string) RunnerOption {
	return func(r *ExperimentRunner) {
		r.modelFilters = patterns
	}
}

// WithCache enables result caching
func WithCache(c *cache.Cache) RunnerOption {
	return func(r *ExperimentRunner) {
		r.cache = c
	}
}

// WithProjectDefaults fills unset experiment settings from a project config.
func WithProjectDefaults(pc *projectconfig.ProjectConfig) RunnerOption {
	return func(r *ExperimentRunner) {
		r.defaults = pc
	}
}

// NewExperimentRunner creates a new experiment runner
func NewExperimentRunner(cfg *config.RunConfig, opts ...RunnerOption) *ExperimentRunner {
	r := &ExperimentRunner{
		cfg:       cfg,
		listeners: []evaluation.ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *ExperimentRunner) OnProgress(listener evaluation.ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *ExperimentRunner) notifyProgress(event evaluation.ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]evaluation.ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// EffectiveSpec returns a copy of the experiment with unset settings filled
// from the project defaults.
func (r *ExperimentRunner) EffectiveSpec() *models.ExperimentSpec {
	spec := *r.cfg.Spec()
	if r.defaults == nil {
		return &spec
	}

	d := r.defaults.Defaults
	if spec.Config.Seed == nil && d.Seed != nil {
		spec.Config.Seed = utils.Ptr(*d.Seed)
	}
	if spec.Config.Split == 0 {
		spec.Config.Split = d.Split
	}
	if spec.Config.Average == "" {
		spec.Config.Average = d.Average
	}
	if spec.Config.Parallelism == 0 {
		spec.Config.Parallelism = d.Parallelism
	}
	if len(spec.Config.Metrics) == 0 {
		spec.Config.Metrics = slices.Clone(d.Metrics)
	}
	return &spec
}

// Run executes the experiment. Model errors abort the run and are returned
// unchanged; missed thresholds are reported in the outcome, not as an error.
func (r *ExperimentRunner) Run(ctx context.Context) (*models.EvaluationOutcome, error) {
	startTime := time.Now()
	spec := r.EffectiveSpec()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}

	// Check cache if enabled
	var cacheKey string
	if r.cache != nil && cache.Cacheable(spec) && len(r.modelFilters) == 0 {
		key, err := cache.CacheKey(spec, r.cfg.SpecDir())
		if err != nil {
			slog.Warn("Cache key unavailable", "error", err)
		} else if cached, found := r.cache.Get(key); found && cached.Table != nil {
			cached.Cached = true
			r.notifyProgress(evaluation.ProgressEvent{
				EventType:   EventCached,
				TotalModels: cached.Table.Len(),
				Details:     map[string]any{"run_id": cached.RunID},
			})
			return cached, nil
		} else {
			cacheKey = key
		}
	}

	data, err := r.loadData(spec)
	if err != nil {
		return nil, err
	}

	reg, err := r.buildRegistry(spec)
	if err != nil {
		return nil, err
	}

	h := evaluation.New(harnessOptions(spec, data)...)
	h.OnProgress(r.notifyProgress)

	X := data.features.Matrix()
	table, err := h.Evaluate(ctx, reg, X, data.labels)
	if err != nil {
		return nil, err
	}

	var cv *models.CVResult
	if spec.Config.CVFolds >= 2 {
		cv, err = h.CrossValidate(ctx, reg, X, data.labels, spec.Config.CVFolds)
		if err != nil {
			return nil, err
		}
	}

	failures, err := CheckThresholds(table, spec.Thresholds)
	if err != nil {
		return nil, err
	}

	train, eval := h.SplitSizes(data.features.Rows())
	outcome := &models.EvaluationOutcome{
		RunID:          uuid.NewString(),
		ExperimentName: spec.Name,
		Timestamp:      startTime,
		Setup: models.OutcomeSetup{
			Dataset:     spec.Dataset.Path,
			TrainRows:   train,
			EvalRows:    eval,
			Features:    data.features.Cols(),
			Split:       spec.Config.Split,
			Seed:        spec.Config.Seed,
			Parallelism: spec.Config.Parallelism,
			Average:     string(averageOf(spec)),
			Metrics:     table.Metrics,
			CVFolds:     spec.Config.CVFolds,
		},
		Table:             table,
		CrossValidation:   cv,
		Best:              BestModel(table),
		ThresholdFailures: failures,
		DurationMs:        time.Since(startTime).Milliseconds(),
	}
	if held := spec.ResolvedHeldOut(); held != nil {
		outcome.Setup.HeldOut = held.Path
	}

	if cacheKey != "" {
		if err := r.cache.Put(cacheKey, outcome); err != nil {
			slog.Warn("Failed to write cache", "experiment", spec.Name, "error", err)
		}
	}

	return outcome, nil
}

type loadedData struct {
	features       *dataset.Frame
	labels         []string
	heldOut        *dataset.Frame
	heldOutLabels  []string
	heldOutPresent bool
}

func (r *ExperimentRunner) loadData(spec *models.ExperimentSpec) (loadedData, error) {
	var data loadedData

	load := func(dc models.DatasetConfig) (*dataset.Frame, []string, error) {
		var (
			frame  *dataset.Frame
			labels []string
		)
		path := utils.ResolvePath(dc.Path, r.cfg.SpecDir())
		err := utils.Timed("Loading "+dc.Path, func() error {
			var err error
			frame, labels, err = dataset.LoadCSV(path, dataset.LoadOptions{
				Target:      dc.Target,
				Drop:        dc.Drop,
				IndexColumn: dc.IndexColumn,
			})
			return err
		})
		return frame, labels, err
	}

	var err error
	data.features, data.labels, err = load(spec.Dataset)
	if err != nil {
		return loadedData{}, fmt.Errorf("loading dataset: %w", err)
	}

	if held := spec.ResolvedHeldOut(); held != nil {
		data.heldOut, data.heldOutLabels, err = load(*held)
		if err != nil {
			return loadedData{}, fmt.Errorf("loading held-out dataset: %w", err)
		}
		if !slices.Equal(data.heldOut.Columns(), data.features.Columns()) {
			return loadedData{}, fmt.Errorf("held-out columns %v do not match dataset columns %v",
				data.heldOut.Columns(), data.features.Columns())
		}
		data.heldOutPresent = true
	}
	return data, nil
}

// buildRegistry creates the configured classifiers in file order and applies
// the model filters.
func (r *ExperimentRunner) buildRegistry(spec *models.ExperimentSpec) (*evaluation.Registry, error) {
	all := evaluation.NewRegistry()
	seen := make(map[string]int, len(spec.Models))
	for i, mc := range spec.Models {
		c, err := classifier.New(classifier.Kind(mc.Kind), mc.Params)
		if err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
		name := mc.Name
		if name == "" {
			name = classifier.TypeName(c)
		}
		if j, ok := seen[name]; ok {
			return nil, fmt.Errorf("models[%d]: name %q is already used by models[%d]", i, name, j)
		}
		seen[name] = i
		all.Add(name, c)
	}

	entries, err := FilterModels(all.Entries(), r.modelFilters)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: filters %v match none of %v", ErrNoModels, r.modelFilters, all.Names())
	}

	reg := evaluation.NewRegistry()
	for _, e := range entries {
		reg.Add(e.Name, e.Classifier)
	}
	return reg, nil
}

func harnessOptions(spec *models.ExperimentSpec, data loadedData) []evaluation.Option {
	opts := []evaluation.Option{
		evaluation.WithMetrics(spec.Config.Metrics...),
		evaluation.WithAverage(averageOf(spec)),
	}
	if spec.Config.Split != 0 {
		opts = append(opts, evaluation.WithSplitFraction(spec.Config.Split))
	}
	if spec.Config.Seed != nil {
		opts = append(opts, evaluation.WithSeed(*spec.Config.Seed))
	}
	if spec.Config.Parallelism != 0 {
		opts = append(opts, evaluation.WithParallelism(spec.Config.Parallelism))
	}
	if data.heldOutPresent {
		var hX mat.Matrix = data.heldOut.Matrix()
		opts = append(opts, evaluation.WithHeldOut(hX, data.heldOutLabels))
	}
	return opts
}

func averageOf(spec *models.ExperimentSpec) metrics.Average {
	a, err := metrics.ParseAverage(spec.Config.Average)
	if err != nil {
		return metrics.AverageWeighted
	}
	return a
}

// CheckThresholds lists every (model, metric) pair scoring below its minimum,
// ordered by model then metric name. A threshold on a metric the table lacks
// is an error.
func CheckThresholds(table *models.ResultTable, thresholds map[string]float64) ([]models.ThresholdFailure, error) {
	names := make([]string, 0, len(thresholds))
	for name := range thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !table.Has(name) || !metrics.Name(name).IsScalar() {
			return nil, fmt.Errorf("threshold on %q, which is not a computed scalar metric", name)
		}
	}

	var failures []models.ThresholdFailure
	for _, row := range table.Rows {
		for _, name := range names {
			score := row.Scores[metrics.Name(name)]
			if score < thresholds[name] {
				failures = append(failures, models.ThresholdFailure{
					Estimator: row.Estimator,
					Metric:    metrics.Name(name),
					Score:     score,
					Minimum:   thresholds[name],
				})
			}
		}
	}
	return failures, nil
}

// BestModel picks the top estimator by the first scalar metric in the table,
// preferring F1 when it was computed. Nil when the table has no scalar
// metric.
func BestModel(table *models.ResultTable) *models.BestModel {
	name, ok := rankingMetric(table)
	if !ok {
		return nil
	}
	row, ok := table.Best(name)
	if !ok {
		return nil
	}
	return &models.BestModel{Estimator: row.Estimator, Metric: name, Score: row.Scores[name]}
}

func rankingMetric(table *models.ResultTable) (metrics.Name, bool) {
	if table.Has(string(metrics.NameF1)) {
		return metrics.NameF1, true
	}
	for _, m := range table.Metrics {
		if m.IsScalar() {
			return m, true
		}
	}
	return "", false
}
