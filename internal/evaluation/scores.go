package evaluation

import (
	"fmt"
	"time"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
)

// ScoresInput is everything needed to score one model.
type ScoresInput struct {
	Name    string
	Elapsed time.Duration
	Metrics []metrics.Name
	YTrue   []string
	YPred   []string
	// Weights are per-sample weights for every metric. nil weighs samples equally.
	Weights []float64
	// Average defaults to weighted.
	Average metrics.Average
	// Labels orders the confusion matrix. nil uses the sorted observed labels.
	Labels []string
}

// ScoresRow computes the requested metrics for one model. The row holds
// exactly the requested metrics plus estimator and time.
func ScoresRow(in ScoresInput) (models.Row, error) {
	if in.Name == "" {
		return models.Row{}, fmt.Errorf("%w: estimator name is empty", ErrInvalidArgument)
	}
	if in.Elapsed <= 0 {
		return models.Row{}, fmt.Errorf("%w: elapsed time must be positive, got %s", ErrInvalidArgument, in.Elapsed)
	}
	for _, m := range in.Metrics {
		if !m.Valid() {
			return models.Row{}, fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, m)
		}
	}
	if len(in.Metrics) > 0 && (in.YTrue == nil || in.YPred == nil) {
		return models.Row{}, fmt.Errorf("%w: metrics %v need true and predicted labels", ErrInvalidArgument, in.Metrics)
	}

	row := models.Row{
		Estimator: in.Name,
		Time:      in.Elapsed.Seconds(),
		Metrics:   append([]metrics.Name(nil), in.Metrics...),
	}
	if len(in.Metrics) == 0 {
		return row, nil
	}
	row.Scores = make(map[metrics.Name]float64)

	var precision, recall, f1 float64
	if needsPRF(in.Metrics) {
		var err error
		precision, recall, f1, err = metrics.PrecisionRecallF1(in.YTrue, in.YPred, in.Weights, in.Average)
		if err != nil {
			return models.Row{}, err
		}
	}

	for _, m := range in.Metrics {
		switch m {
		case metrics.NameAccuracy:
			acc, err := metrics.Accuracy(in.YTrue, in.YPred, in.Weights)
			if err != nil {
				return models.Row{}, err
			}
			row.Scores[m] = acc
		case metrics.NamePrecision:
			row.Scores[m] = precision
		case metrics.NameRecall:
			row.Scores[m] = recall
		case metrics.NameF1:
			row.Scores[m] = f1
		case metrics.NameConfusionMatrix:
			cm, err := metrics.NewConfusionMatrix(in.YTrue, in.YPred, in.Weights, in.Labels)
			if err != nil {
				return models.Row{}, err
			}
			row.ConfusionMatrix = cm
		}
	}
	return row, nil
}

func needsPRF(names []metrics.Name) bool {
	for _, m := range names {
		switch m {
		case metrics.NamePrecision, metrics.NameRecall, metrics.NameF1:
			return true
		}
	}
	return false
}
