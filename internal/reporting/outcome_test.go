package reporting

import (
	"time"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/statistics"
	"github.com/spboyer/napr/internal/utils"
)

func newTestOutcome() *models.EvaluationOutcome {
	names := []metrics.Name{metrics.NameAccuracy, metrics.NameF1, metrics.NameConfusionMatrix}
	table := models.NewResultTable(names)
	table.Rows = []models.Row{
		{
			Estimator: "knn",
			Time:      0.012,
			Metrics:   names,
			Scores:    map[metrics.Name]float64{metrics.NameAccuracy: 0.95, metrics.NameF1: 0.94},
			ConfusionMatrix: &metrics.ConfusionMatrix{
				Labels: []string{"mono", "sesqui"},
				Counts: [][]float64{{10, 1}, {0, 9}},
			},
		},
		{
			Estimator: "base|line",
			Time:      0.001,
			Metrics:   names,
			Scores:    map[metrics.Name]float64{metrics.NameAccuracy: 0.5, metrics.NameF1: 0.33},
			ConfusionMatrix: &metrics.ConfusionMatrix{
				Labels: []string{"mono", "sesqui"},
				Counts: [][]float64{{11, 0}, {9, 0}},
			},
		},
	}

	return &models.EvaluationOutcome{
		RunID:          "run-1",
		ExperimentName: "Terpene classifiers",
		Timestamp:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Setup: models.OutcomeSetup{
			Dataset:   "terpenes.csv.gz",
			TrainRows: 80,
			EvalRows:  20,
			Features:  12,
			Seed:      utils.Ptr(int64(7)),
			Average:   "weighted",
			Metrics:   names,
		},
		Table: table,
		CrossValidation: &models.CVResult{
			Folds: 5,
			Summaries: []models.CVSummary{
				{Estimator: "knn", MeanTime: 0.01, Metrics: map[metrics.Name]models.MetricSummary{
					metrics.NameAccuracy: {Mean: 0.93, StdDev: 0.01, CI: statistics.ConfidenceInterval{Lower: 0.91, Upper: 0.95, ConfidenceLevel: 0.95}},
					metrics.NameF1:       {Mean: 0.92, StdDev: 0.01, CI: statistics.ConfidenceInterval{Lower: 0.90, Upper: 0.94, ConfidenceLevel: 0.95}},
				}},
				{Estimator: "base|line", MeanTime: 0.001, Metrics: map[metrics.Name]models.MetricSummary{
					metrics.NameAccuracy: {Mean: 0.5, StdDev: 0.08, CI: statistics.ConfidenceInterval{Lower: 0.4, Upper: 0.6, ConfidenceLevel: 0.95}},
					metrics.NameF1:       {Mean: 0.33, StdDev: 0.03, CI: statistics.ConfidenceInterval{Lower: 0.3, Upper: 0.36, ConfidenceLevel: 0.95}},
				}},
			},
		},
		Best: &models.BestModel{Estimator: "knn", Metric: metrics.NameF1, Score: 0.94},
		ThresholdFailures: []models.ThresholdFailure{
			{Estimator: "base|line", Metric: metrics.NameAccuracy, Score: 0.5, Minimum: 0.7},
			{Estimator: "base|line", Metric: metrics.NameF1, Score: 0.33, Minimum: 0.6},
		},
		DurationMs: 3500,
	}
}
