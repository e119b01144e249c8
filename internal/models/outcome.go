package models

import (
	"time"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/statistics"
)

// EvaluationOutcome represents the complete result of an experiment run
type EvaluationOutcome struct {
	RunID             string             `json:"run_id"`
	ExperimentName    string             `json:"experiment"`
	Timestamp         time.Time          `json:"timestamp"`
	Setup             OutcomeSetup       `json:"config"`
	Table             *ResultTable       `json:"results"`
	CrossValidation   *CVResult          `json:"cross_validation,omitempty"`
	Best              *BestModel         `json:"best,omitempty"`
	ThresholdFailures []ThresholdFailure `json:"threshold_failures,omitempty"`
	DurationMs        int64              `json:"duration_ms"`
	Cached            bool               `json:"cached,omitempty"`
}

type OutcomeSetup struct {
	Dataset     string         `json:"dataset"`
	HeldOut     string         `json:"held_out,omitempty"`
	TrainRows   int            `json:"train_rows"`
	EvalRows    int            `json:"eval_rows"`
	Features    int            `json:"features"`
	Split       float64        `json:"split,omitempty"`
	Seed        *int64         `json:"seed,omitempty"`
	Parallelism int            `json:"parallelism,omitempty"`
	Average     string         `json:"average"`
	Metrics     []metrics.Name `json:"metrics"`
	CVFolds     int            `json:"cv_folds,omitempty"`
}

// BestModel names the top estimator by one metric.
type BestModel struct {
	Estimator string       `json:"estimator"`
	Metric    metrics.Name `json:"metric"`
	Score     float64      `json:"score"`
}

// ThresholdFailure records a model scoring below a configured minimum.
type ThresholdFailure struct {
	Estimator string       `json:"estimator"`
	Metric    metrics.Name `json:"metric"`
	Score     float64      `json:"score"`
	Minimum   float64      `json:"minimum"`
}

// Passed reports whether every model met every threshold.
func (o *EvaluationOutcome) Passed() bool {
	return len(o.ThresholdFailures) == 0
}

// CVResult holds per-fold rows and per-model summaries of a k-fold run.
type CVResult struct {
	Folds int `json:"folds"`
	// FoldRows[f] is the result table rows for fold f.
	FoldRows  [][]Row     `json:"fold_rows"`
	Summaries []CVSummary `json:"summaries"`
}

// CVSummary aggregates one model's scalar metrics across folds.
type CVSummary struct {
	Estimator string                         `json:"estimator"`
	MeanTime  float64                        `json:"mean_time"`
	Metrics   map[metrics.Name]MetricSummary `json:"metrics"`
}

type MetricSummary struct {
	Mean       float64                       `json:"mean"`
	StdDev     float64                       `json:"std_dev"`
	CI         statistics.ConfidenceInterval `json:"ci"`
	// BehindBest is set when the model trails the top model on this metric
	// by a significant paired per-fold margin.
	BehindBest bool                          `json:"behind_best,omitempty"`
}

// Summary returns the summary for estimator.
func (r *CVResult) Summary(estimator string) (CVSummary, bool) {
	for _, s := range r.Summaries {
		if s.Estimator == estimator {
			return s, true
		}
	}
	return CVSummary{}, false
}
