package evaluation

import (
	"context"
	"time"

	"github.com/spboyer/napr/internal/dataset"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/statistics"
	"gonum.org/v1/gonum/mat"
)

// CVConfidenceLevel is the bootstrap interval level of cross-validation
// summaries.
const CVConfidenceLevel = 0.95

// CrossValidate scores every classifier under stratified k-fold: each fold
// is held out once while the classifiers are fit on the others. Held-out
// data and split fraction options are ignored.
func (h *Harness) CrossValidate(ctx context.Context, reg *Registry, X mat.Matrix, y []string, folds int) (*models.CVResult, error) {
	saved := h.heldOut
	h.heldOut = false
	cfg, err := h.prepare(reg, X, y)
	h.heldOut = saved
	if err != nil {
		return nil, err
	}

	splits, err := dataset.StratifiedKFold(y, folds, dataset.NewRand(h.seed, h.seeded))
	if err != nil {
		return nil, asInvalid(err)
	}

	h.configure(reg)

	start := time.Now()
	h.notifyProgress(ProgressEvent{
		EventType:   EventEvaluationStart,
		TotalModels: reg.Len(),
		TotalFolds:  folds,
	})

	result := &models.CVResult{Folds: folds}
	for f, split := range splits {
		h.notifyProgress(ProgressEvent{
			EventType:   EventFoldStart,
			TotalModels: reg.Len(),
			Fold:        f + 1,
			TotalFolds:  folds,
		})

		part := subsets(X, y, split)
		part.trainW = metrics.BalancedSampleWeights(part.trainY)
		part.evalW = metrics.BalancedSampleWeights(part.evalY)

		rows, err := h.run(ctx, reg, part, cfg, f+1, folds)
		if err != nil {
			return nil, err
		}
		result.FoldRows = append(result.FoldRows, rows)
	}

	result.Summaries = h.summarize(reg, cfg, result.FoldRows)

	h.notifyProgress(ProgressEvent{
		EventType:   EventEvaluationComplete,
		TotalModels: reg.Len(),
		TotalFolds:  folds,
		DurationMs:  time.Since(start).Milliseconds(),
	})
	return result, nil
}

// CrossValidate is shorthand for New(opts...).CrossValidate.
func CrossValidate(ctx context.Context, reg *Registry, X mat.Matrix, y []string, folds int, opts ...Option) (*models.CVResult, error) {
	return New(opts...).CrossValidate(ctx, reg, X, y, folds)
}

func (h *Harness) summarize(reg *Registry, cfg runConfig, foldRows [][]models.Row) []models.CVSummary {
	seed := int64(-1)
	if h.seeded && h.seed >= 0 {
		seed = h.seed
	}

	names := reg.Names()
	summaries := make([]models.CVSummary, 0, len(names))
	for i, name := range names {
		s := models.CVSummary{
			Estimator: name,
			Metrics:   make(map[metrics.Name]models.MetricSummary),
		}

		times := make([]float64, len(foldRows))
		for f, rows := range foldRows {
			times[f] = rows[i].Time
		}
		s.MeanTime = statistics.Mean(times)

		for _, m := range cfg.metrics {
			if !m.IsScalar() {
				continue
			}
			values := foldScores(foldRows, i, m)
			s.Metrics[m] = models.MetricSummary{
				Mean:   statistics.Mean(values),
				StdDev: statistics.StdDev(values),
				CI:     statistics.BootstrapCIWithSeed(values, CVConfidenceLevel, seed),
			}
		}
		summaries = append(summaries, s)
	}

	for _, m := range cfg.metrics {
		if m.IsScalar() {
			markBehindBest(summaries, foldRows, m, seed)
		}
	}
	return summaries
}

// markBehindBest flags every model whose per-fold gap to the model with the
// highest mean has a confidence interval excluding zero.
func markBehindBest(summaries []models.CVSummary, foldRows [][]models.Row, m metrics.Name, seed int64) {
	best := 0
	for i, s := range summaries {
		if s.Metrics[m].Mean > summaries[best].Metrics[m].Mean {
			best = i
		}
	}
	top := foldScores(foldRows, best, m)

	for i := range summaries {
		if i == best {
			continue
		}
		gaps := foldScores(foldRows, i, m)
		for f := range gaps {
			gaps[f] -= top[f]
		}
		ci := statistics.BootstrapCIWithSeed(gaps, CVConfidenceLevel, seed)
		ms := summaries[i].Metrics[m]
		ms.BehindBest = statistics.IsSignificant(ci)
		summaries[i].Metrics[m] = ms
	}
}

func foldScores(foldRows [][]models.Row, model int, m metrics.Name) []float64 {
	values := make([]float64, len(foldRows))
	for f, rows := range foldRows {
		values[f] = rows[model].Scores[m]
	}
	return values
}
