package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncateName shortens a name to maxWidth display columns, ending in "…".
func truncateName(name string, maxWidth int) string {
	if runewidth.StringWidth(name) <= maxWidth {
		return name
	}
	return runewidth.Truncate(name, maxWidth, "…")
}

// writeTable prints rows under header with columns aligned by display width.
func writeTable(w io.Writer, indent string, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		b.WriteString(indent)
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, widths[i]))
			}
		}
		fmt.Fprintln(w, b.String()) //nolint:errcheck
	}

	line(header)
	total := 0
	for _, wd := range widths {
		total += wd
	}
	fmt.Fprintln(w, indent+strings.Repeat("─", total+2*(len(widths)-1))) //nolint:errcheck
	for _, row := range rows {
		line(row)
	}
}

func scalarMetrics(names []metrics.Name) []metrics.Name {
	var out []metrics.Name
	for _, n := range names {
		if n.IsScalar() {
			out = append(out, n)
		}
	}
	return out
}

func printSummary(w io.Writer, outcome *models.EvaluationOutcome) {
	fmt.Fprintln(w, "="+strings.Repeat("=", 60))                        //nolint:errcheck
	fmt.Fprintf(w, " EXPERIMENT RESULTS: %s\n", outcome.ExperimentName) //nolint:errcheck
	fmt.Fprintln(w, "="+strings.Repeat("=", 60))                        //nolint:errcheck
	fmt.Fprintln(w)                                                     //nolint:errcheck

	setup := outcome.Setup
	fmt.Fprintf(w, "Dataset:     %s\n", setup.Dataset) //nolint:errcheck
	if setup.HeldOut != "" {
		fmt.Fprintf(w, "Held out:    %s\n", setup.HeldOut) //nolint:errcheck
	}
	fmt.Fprintf(w, "Rows:        %d train / %d eval (%d features)\n", setup.TrainRows, setup.EvalRows, setup.Features) //nolint:errcheck
	if setup.Seed != nil {
		fmt.Fprintf(w, "Seed:        %d\n", *setup.Seed) //nolint:errcheck
	}
	fmt.Fprintf(w, "Average:     %s\n", setup.Average)                                                      //nolint:errcheck
	fmt.Fprintf(w, "Duration:    %s\n", formatDuration(time.Duration(outcome.DurationMs)*time.Millisecond)) //nolint:errcheck
	if outcome.Cached {
		fmt.Fprintln(w, "Source:      cache") //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck

	if outcome.Table == nil {
		return
	}

	scalars := scalarMetrics(outcome.Table.Metrics)
	header := []string{"Estimator", "Time (s)"}
	for _, m := range scalars {
		header = append(header, string(m))
	}
	var rows [][]string
	for _, row := range outcome.Table.Rows {
		cells := []string{truncateName(row.Estimator, 30), fmt.Sprintf("%.4f", row.Time)}
		for _, m := range scalars {
			cells = append(cells, fmt.Sprintf("%.4f", row.Scores[m]))
		}
		rows = append(rows, cells)
	}
	writeTable(w, "", header, rows)
	fmt.Fprintln(w) //nolint:errcheck

	for _, row := range outcome.Table.Rows {
		if row.ConfusionMatrix == nil {
			continue
		}
		fmt.Fprintf(w, "Confusion matrix: %s\n", row.Estimator) //nolint:errcheck
		printConfusionMatrix(w, row.ConfusionMatrix)
		fmt.Fprintln(w) //nolint:errcheck
	}

	if cv := outcome.CrossValidation; cv != nil && len(cv.Summaries) > 0 {
		fmt.Fprintf(w, "Cross-validation (%d folds):\n", cv.Folds) //nolint:errcheck
		cvHeader := []string{"Estimator"}
		for _, m := range scalars {
			cvHeader = append(cvHeader, string(m))
		}
		var cvRows [][]string
		behind := false
		for _, s := range cv.Summaries {
			cells := []string{truncateName(s.Estimator, 30)}
			for _, m := range scalars {
				ms, ok := s.Metrics[m]
				if !ok {
					cells = append(cells, "-")
					continue
				}
				cell := fmt.Sprintf("%.4f ± %.4f", ms.Mean, ms.StdDev)
				if ms.BehindBest {
					cell += " ↓"
					behind = true
				}
				cells = append(cells, cell)
			}
			cvRows = append(cvRows, cells)
		}
		writeTable(w, "  ", cvHeader, cvRows)
		if behind {
			fmt.Fprintln(w, "  ↓ significantly behind the top model across folds") //nolint:errcheck
		}
		fmt.Fprintln(w) //nolint:errcheck
	}

	if outcome.Best != nil {
		fmt.Fprintf(w, "Best model:  %s (%s %.4f)\n", outcome.Best.Estimator, outcome.Best.Metric, outcome.Best.Score) //nolint:errcheck
	}

	if len(outcome.ThresholdFailures) > 0 {
		fmt.Fprintln(w, "\nThreshold failures:") //nolint:errcheck
		for _, f := range outcome.ThresholdFailures {
			fmt.Fprintf(w, "  ✗ %s: %s %.4f < %.4f\n", f.Estimator, f.Metric, f.Score, f.Minimum) //nolint:errcheck
		}
	}
	fmt.Fprintln(w) //nolint:errcheck
}

func printConfusionMatrix(w io.Writer, cm *metrics.ConfusionMatrix) {
	header := append([]string{"true \\ pred"}, cm.Labels...)
	rows := make([][]string, 0, len(cm.Labels))
	for i, l := range cm.Labels {
		cells := []string{l}
		for _, v := range cm.Counts[i] {
			cells = append(cells, fmt.Sprintf("%.4g", v))
		}
		rows = append(rows, cells)
	}
	writeTable(w, "  ", header, rows)
}
