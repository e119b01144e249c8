package baseline

import (
	"fmt"
	"math"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
)

// Improvement pairs an estimator with its score deltas over a baseline
// estimator from the same result table.
type Improvement struct {
	Estimator string                   `json:"estimator"`
	Baseline  string                   `json:"baseline"`
	Deltas    map[metrics.Name]float64 `json:"deltas"`
	Breakdown ImprovementBreakdown     `json:"improvement_breakdown"`
	Lift      float64                  `json:"lift"`
}

// ImprovementBreakdown captures relative changes between baseline and
// estimator. Positive values mean the estimator was better.
type ImprovementBreakdown struct {
	// QualityDelta is the mean delta over the table's scalar metrics.
	QualityDelta float64 `json:"quality_delta"`
	// TimeReduction is the relative fit time change; negative means faster.
	TimeReduction float64 `json:"time_reduction"`
}

// Compare computes the improvement of every other estimator in table over
// baselineName. Estimators keep table order.
func Compare(table *models.ResultTable, baselineName string) ([]Improvement, error) {
	base, ok := table.Row(baselineName)
	if !ok {
		return nil, fmt.Errorf("baseline estimator %q not in results", baselineName)
	}

	var out []Improvement
	for _, row := range table.Rows {
		if row.Estimator == baselineName {
			continue
		}
		out = append(out, ComputeImprovement(base, row))
	}
	return out, nil
}

// ComputeImprovement calculates per-metric deltas and an overall lift for
// row relative to base. Lift is in [-1, 1] where positive means row is better.
func ComputeImprovement(base, row models.Row) Improvement {
	imp := Improvement{
		Estimator: row.Estimator,
		Baseline:  base.Estimator,
		Deltas:    make(map[metrics.Name]float64),
	}

	var sum float64
	for name, score := range row.Scores {
		b, ok := base.Scores[name]
		if !ok {
			continue
		}
		imp.Deltas[name] = score - b
		sum += score - b
	}
	if len(imp.Deltas) > 0 {
		imp.Breakdown.QualityDelta = sum / float64(len(imp.Deltas))
	}

	if base.Time > 0 {
		imp.Breakdown.TimeReduction = (row.Time - base.Time) / base.Time
	}

	imp.Lift = computeComposite(imp.Breakdown)
	return imp
}

// computeComposite produces a [-1, 1] lift score from the quality delta.
func computeComposite(b ImprovementBreakdown) float64 {
	return math.Max(-1.0, math.Min(1.0, b.QualityDelta))
}
