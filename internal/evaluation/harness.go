// Package evaluation fits a set of classifiers under a common protocol and
// scores them into a comparison table.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/spboyer/napr/internal/classifier"
	"github.com/spboyer/napr/internal/dataset"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidArgument marks malformed evaluation input. It is the same value
// as metrics.ErrInvalidArgument, so scoring errors match it too.
var ErrInvalidArgument = metrics.ErrInvalidArgument

// DefaultSplitFraction is the share of rows held out for scoring when no
// explicit held-out set or fraction is given.
const DefaultSplitFraction = 0.2

// Harness runs the fit/predict/score protocol. Configure it with Options; a
// Harness may be reused across calls but not concurrently.
type Harness struct {
	heldOutX mat.Matrix
	heldOutY []string
	heldOut  bool

	splitFraction float64
	metricNames   []string
	average       metrics.Average

	seed   int64
	seeded bool

	parallelism    int
	parallelismSet bool

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures a Harness.
type Option func(*Harness)

// WithHeldOut scores on X, y instead of splitting the input. The split
// fraction is then ignored.
func WithHeldOut(X mat.Matrix, y []string) Option {
	return func(h *Harness) {
		h.heldOutX = X
		h.heldOutY = y
		h.heldOut = true
	}
}

// WithSplitFraction sets the share of input rows held out for scoring.
func WithSplitFraction(f float64) Option {
	return func(h *Harness) {
		h.splitFraction = f
	}
}

// WithMetrics selects the metrics to compute. No names selects every metric.
func WithMetrics(names ...string) Option {
	return func(h *Harness) {
		h.metricNames = names
	}
}

// WithSeed makes the split and seedable classifiers reproducible.
func WithSeed(seed int64) Option {
	return func(h *Harness) {
		h.seed = seed
		h.seeded = true
	}
}

// WithParallelism is forwarded to classifiers that can use it.
func WithParallelism(n int) Option {
	return func(h *Harness) {
		h.parallelism = n
		h.parallelismSet = true
	}
}

// WithAverage selects how precision, recall and F1 combine labels.
func WithAverage(a metrics.Average) Option {
	return func(h *Harness) {
		h.average = a
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		splitFraction: DefaultSplitFraction,
		average:       metrics.AverageWeighted,
		listeners:     []ProgressListener{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Evaluate is shorthand for New(opts...).Evaluate.
func Evaluate(ctx context.Context, reg *Registry, X mat.Matrix, y []string, opts ...Option) (*models.ResultTable, error) {
	return New(opts...).Evaluate(ctx, reg, X, y)
}

// Evaluate fits every classifier in reg on the fit partition, predicts the
// evaluation partition and scores it. Input errors wrap ErrInvalidArgument
// and are reported before any classifier is touched. An error from a
// classifier's Fit or Predict is returned unchanged and no table is produced.
func (h *Harness) Evaluate(ctx context.Context, reg *Registry, X mat.Matrix, y []string) (*models.ResultTable, error) {
	cfg, err := h.prepare(reg, X, y)
	if err != nil {
		return nil, err
	}

	part, err := h.partition(X, y)
	if err != nil {
		return nil, err
	}

	h.configure(reg)

	start := time.Now()
	h.notifyProgress(ProgressEvent{
		EventType:   EventEvaluationStart,
		TotalModels: reg.Len(),
		Details: map[string]any{
			"train_rows": len(part.trainY),
			"eval_rows":  len(part.evalY),
		},
	})

	rows, err := h.run(ctx, reg, part, cfg, 0, 0)
	if err != nil {
		return nil, err
	}

	table := models.NewResultTable(cfg.metrics)
	for _, r := range rows {
		if err := table.Append(r); err != nil {
			return nil, err
		}
	}

	h.notifyProgress(ProgressEvent{
		EventType:   EventEvaluationComplete,
		TotalModels: reg.Len(),
		DurationMs:  time.Since(start).Milliseconds(),
	})
	return table, nil
}

// SplitSizes reports the fit and evaluation row counts Evaluate would use
// for n input rows.
func (h *Harness) SplitSizes(n int) (train, eval int) {
	if h.heldOut {
		rows, _ := dims(h.heldOutX)
		return n, rows
	}
	s, err := dataset.TrainTestSplit(n, h.splitFraction, dataset.NewRand(0, true))
	if err != nil {
		return n, 0
	}
	return len(s.Train), len(s.Eval)
}

type runConfig struct {
	metrics []metrics.Name
	average metrics.Average
}

type partitions struct {
	trainX, evalX *mat.Dense
	trainY, evalY []string
	trainW, evalW []float64
}

// prepare validates everything that does not depend on the split.
func (h *Harness) prepare(reg *Registry, X mat.Matrix, y []string) (runConfig, error) {
	if reg.Len() == 0 {
		return runConfig{}, fmt.Errorf("%w: no models to evaluate", ErrInvalidArgument)
	}
	for _, e := range reg.Entries() {
		if e.Name == "" {
			return runConfig{}, fmt.Errorf("%w: model with empty name", ErrInvalidArgument)
		}
		if isNilClassifier(e.Classifier) {
			return runConfig{}, fmt.Errorf("%w: model %q is nil", ErrInvalidArgument, e.Name)
		}
	}

	rows, cols := dims(X)
	if rows == 0 || cols == 0 {
		return runConfig{}, fmt.Errorf("%w: features are empty", ErrInvalidArgument)
	}
	if len(y) == 0 {
		return runConfig{}, fmt.Errorf("%w: labels are empty", ErrInvalidArgument)
	}
	if len(y) != rows {
		return runConfig{}, fmt.Errorf("%w: %d feature rows but %d labels", ErrInvalidArgument, rows, len(y))
	}

	names, err := metrics.ParseNames(h.metricNames)
	if err != nil {
		return runConfig{}, err
	}
	avg, err := metrics.ParseAverage(string(h.average))
	if err != nil {
		return runConfig{}, err
	}

	if h.heldOut {
		hr, hc := dims(h.heldOutX)
		if hr == 0 {
			return runConfig{}, fmt.Errorf("%w: held-out features are empty", ErrInvalidArgument)
		}
		if hc != cols {
			return runConfig{}, fmt.Errorf("%w: held-out features have %d columns, expected %d", ErrInvalidArgument, hc, cols)
		}
		if len(h.heldOutY) != hr {
			return runConfig{}, fmt.Errorf("%w: %d held-out rows but %d held-out labels", ErrInvalidArgument, hr, len(h.heldOutY))
		}
	}

	return runConfig{metrics: names, average: avg}, nil
}

func (h *Harness) partition(X mat.Matrix, y []string) (partitions, error) {
	var p partitions
	if h.heldOut {
		p.trainX, p.trainY = mat.DenseCopyOf(X), y
		p.evalX, p.evalY = mat.DenseCopyOf(h.heldOutX), h.heldOutY
	} else {
		rows, _ := dims(X)
		split, err := dataset.TrainTestSplit(rows, h.splitFraction, dataset.NewRand(h.seed, h.seeded))
		if err != nil {
			return partitions{}, asInvalid(err)
		}
		p = subsets(X, y, split)
	}
	p.trainW = metrics.BalancedSampleWeights(p.trainY)
	p.evalW = metrics.BalancedSampleWeights(p.evalY)
	return p, nil
}

func subsets(X mat.Matrix, y []string, split dataset.Split) partitions {
	return partitions{
		trainX: selectRows(X, split.Train),
		trainY: dataset.SelectLabels(y, split.Train),
		evalX:  selectRows(X, split.Eval),
		evalY:  dataset.SelectLabels(y, split.Eval),
	}
}

// configure hands seed and parallelism to the classifiers that declare them.
func (h *Harness) configure(reg *Registry) {
	for _, e := range reg.Entries() {
		if s, ok := e.Classifier.(classifier.Seedable); ok && h.seeded {
			s.SetSeed(h.seed)
		}
		if p, ok := e.Classifier.(classifier.Parallelizable); ok && h.parallelismSet {
			p.SetParallelism(h.parallelism)
		}
	}
}

// run fits and scores every model on one partition.
func (h *Harness) run(ctx context.Context, reg *Registry, part partitions, cfg runConfig, fold, folds int) ([]models.Row, error) {
	entries := reg.Entries()
	rows := make([]models.Row, 0, len(entries))

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		h.notifyProgress(ProgressEvent{
			EventType:   EventModelStart,
			ModelName:   e.Name,
			ModelNum:    i + 1,
			TotalModels: len(entries),
			Fold:        fold,
			TotalFolds:  folds,
		})

		start := time.Now()
		var err error
		if wf, ok := e.Classifier.(classifier.WeightedFitter); ok {
			err = wf.FitWeighted(ctx, part.trainX, part.trainY, part.trainW)
		} else {
			err = e.Classifier.Fit(ctx, part.trainX, part.trainY)
		}
		elapsed := time.Since(start)
		if err != nil {
			return nil, err
		}
		if elapsed <= 0 {
			elapsed = time.Nanosecond
		}

		pred, err := e.Classifier.Predict(ctx, part.evalX)
		if err != nil {
			return nil, err
		}

		row, err := ScoresRow(ScoresInput{
			Name:    e.Name,
			Elapsed: elapsed,
			Metrics: cfg.metrics,
			YTrue:   part.evalY,
			YPred:   pred,
			Weights: part.evalW,
			Average: cfg.average,
			Labels:  e.Classifier.Classes(),
		})
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", e.Name, err)
		}
		rows = append(rows, row)

		slog.Debug("Model evaluated", "model", e.Name, "fit_seconds", row.Time, "fold", fold)
		h.notifyProgress(ProgressEvent{
			EventType:   EventModelComplete,
			ModelName:   e.Name,
			ModelNum:    i + 1,
			TotalModels: len(entries),
			Fold:        fold,
			TotalFolds:  folds,
			DurationMs:  elapsed.Milliseconds(),
			Details:     rowDetails(row),
		})
	}
	return rows, nil
}

func rowDetails(r models.Row) map[string]any {
	details := map[string]any{"time": r.Time}
	for name, v := range r.Scores {
		details[string(name)] = v
	}
	return details
}

func dims(X mat.Matrix) (int, int) {
	if classifier.IsNilMatrix(X) {
		return 0, 0
	}
	return X.Dims()
}

func selectRows(X mat.Matrix, rows []int) *mat.Dense {
	_, cols := X.Dims()
	if len(rows) == 0 {
		return nil
	}
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

func isNilClassifier(c classifier.Classifier) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// asInvalid re-tags a dataset validation error with ErrInvalidArgument.
func asInvalid(err error) error {
	if errors.Is(err, dataset.ErrInvalidArgument) {
		msg := strings.TrimPrefix(err.Error(), dataset.ErrInvalidArgument.Error()+": ")
		return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
	}
	return err
}
