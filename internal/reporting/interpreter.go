package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
)

// InterpretScore returns a plain-language label for a numeric score (0–1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretSpread explains how stable a cross-validated score is.
func InterpretSpread(s models.MetricSummary) string {
	if s.StdDev < 0.02 {
		return fmt.Sprintf("Stable across folds (std %.3f).", s.StdDev)
	}
	if s.StdDev < 0.05 {
		return fmt.Sprintf("Some variation across folds (std %.3f).", s.StdDev)
	}
	return fmt.Sprintf("Large variation across folds (std %.3f). Consider more data or more folds.", s.StdDev)
}

// FormatSummaryReport produces a full plain-language report from an EvaluationOutcome.
func FormatSummaryReport(outcome *models.EvaluationOutcome) string {
	var b strings.Builder

	duration := time.Duration(outcome.DurationMs) * time.Millisecond

	b.WriteString("=== Interpretation ===\n\n")

	if outcome.Best != nil {
		fmt.Fprintf(&b, "Best Model:    %s (%s %.2f, %s)\n",
			outcome.Best.Estimator, outcome.Best.Metric, outcome.Best.Score, InterpretScore(outcome.Best.Score))
	}
	fmt.Fprintf(&b, "Models:        %d\n", outcome.Table.Len())
	fmt.Fprintf(&b, "Rows:          %d fit, %d scored\n", outcome.Setup.TrainRows, outcome.Setup.EvalRows)
	fmt.Fprintf(&b, "Duration:      %v\n", duration)
	if outcome.Cached {
		b.WriteString("Source:        cache\n")
	}

	// Per-model interpretation
	if outcome.Table.Len() > 0 {
		b.WriteString("\nPer-Model Interpretation:\n")
		for _, row := range outcome.Table.Rows {
			icon := "✓"
			if failed(outcome, row.Estimator) {
				icon = "✗"
			}
			fmt.Fprintf(&b, "  %s %s (fit %.3fs)\n", icon, row.Estimator, row.Time)
			for _, m := range row.Metrics {
				if !m.IsScalar() {
					continue
				}
				score := row.Scores[m]
				fmt.Fprintf(&b, "    %-9s %.2f (%s)\n", m+":", score, InterpretScore(score))
			}
			if cv := outcome.CrossValidation; cv != nil {
				if s, ok := cv.Summary(row.Estimator); ok {
					if ms, ok := s.Metrics[primaryMetric(row.Metrics)]; ok {
						fmt.Fprintf(&b, "    %s\n", InterpretSpread(ms))
					}
				}
			}
		}
	}

	if len(outcome.ThresholdFailures) > 0 {
		b.WriteString("\nThreshold Failures:\n")
		for _, f := range outcome.ThresholdFailures {
			fmt.Fprintf(&b, "  ✗ %s: %s %.2f < %.2f\n", f.Estimator, f.Metric, f.Score, f.Minimum)
		}
	}

	return b.String()
}

func failed(outcome *models.EvaluationOutcome, estimator string) bool {
	for _, f := range outcome.ThresholdFailures {
		if f.Estimator == estimator {
			return true
		}
	}
	return false
}

// primaryMetric is the first scalar metric, used where only one fits.
func primaryMetric(names []metrics.Name) metrics.Name {
	for _, m := range names {
		if m.IsScalar() {
			return m
		}
	}
	return ""
}
