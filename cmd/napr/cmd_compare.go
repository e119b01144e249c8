package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/spf13/cobra"
)

func newCompareCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "compare <result1.json> <result2.json> [result3.json ...]",
		Short: "Compare multiple evaluation result files",
		Long: `Compare results from multiple experiment runs side by side.

Loads two or more result JSON files written by "napr eval --output" and shows,
for every estimator and scalar metric, the score in each file and the delta
between the last and the first file.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compareCommandE(cmd.OutOrStdout(), args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

// metricComparison holds one estimator's score for one metric across files.
// A nil score means the estimator or metric is missing from that file.
type metricComparison struct {
	Estimator string       `json:"estimator"`
	Metric    metrics.Name `json:"metric"`
	Scores    []*float64   `json:"scores"`
	Delta     *float64     `json:"delta,omitempty"`
}

// comparisonReport is the full comparison output.
type comparisonReport struct {
	Files       []string           `json:"files"`
	Experiments []string           `json:"experiments"`
	RunIDs      []string           `json:"run_ids"`
	DurationsMs []int64            `json:"durations_ms"`
	Deltas      []metricComparison `json:"deltas"`
}

func compareCommandE(w io.Writer, files []string, format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", format)
	}

	outcomes := make([]*models.EvaluationOutcome, 0, len(files))
	for _, path := range files {
		o, err := loadOutcomeFile(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		outcomes = append(outcomes, o)
	}

	report := buildComparisonReport(files, outcomes)

	if format == "json" {
		return printComparisonJSON(w, report)
	}
	printComparisonTable(w, report)
	return nil
}

func loadOutcomeFile(path string) (*models.EvaluationOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var outcome models.EvaluationOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, err
	}
	if outcome.Table == nil {
		return nil, fmt.Errorf("no results table")
	}
	return &outcome, nil
}

func buildComparisonReport(files []string, outcomes []*models.EvaluationOutcome) *comparisonReport {
	report := &comparisonReport{Files: files}

	for _, o := range outcomes {
		report.Experiments = append(report.Experiments, o.ExperimentName)
		report.RunIDs = append(report.RunIDs, o.RunID)
		report.DurationsMs = append(report.DurationsMs, o.DurationMs)
	}

	// Estimators in first-seen order, metrics in canonical order.
	var estimators []string
	seen := make(map[string]bool)
	present := make(map[metrics.Name]bool)
	for _, o := range outcomes {
		for _, r := range o.Table.Rows {
			if !seen[r.Estimator] {
				seen[r.Estimator] = true
				estimators = append(estimators, r.Estimator)
			}
		}
		for _, m := range o.Table.Metrics {
			present[m] = true
		}
	}
	var names []metrics.Name
	for _, m := range metrics.All() {
		if present[m] && m.IsScalar() {
			names = append(names, m)
		}
	}

	n := len(outcomes)
	for _, est := range estimators {
		for _, m := range names {
			mc := metricComparison{Estimator: est, Metric: m}
			for _, o := range outcomes {
				var score *float64
				if row, ok := o.Table.Row(est); ok {
					if v, ok := row.Score(m); ok {
						score = &v
					}
				}
				mc.Scores = append(mc.Scores, score)
			}
			if mc.Scores[0] != nil && mc.Scores[n-1] != nil {
				d := *mc.Scores[n-1] - *mc.Scores[0]
				mc.Delta = &d
			}
			report.Deltas = append(report.Deltas, mc)
		}
	}

	return report
}

func printComparisonTable(w io.Writer, r *comparisonReport) {
	fmt.Fprintln(w, strings.Repeat("=", 70)) //nolint:errcheck
	fmt.Fprintln(w, " COMPARISON REPORT")    //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("=", 70)) //nolint:errcheck
	fmt.Fprintln(w)                          //nolint:errcheck

	for i, f := range r.Files {
		fmt.Fprintf(w, "  [%d] %s  (experiment: %s, %dms)\n", i+1, f, r.Experiments[i], r.DurationsMs[i]) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck

	header := []string{"Estimator", "Metric"}
	for i := range r.Files {
		header = append(header, fmt.Sprintf("[%d]", i+1))
	}
	header = append(header, "Delta")

	var rows [][]string
	for _, mc := range r.Deltas {
		cells := []string{truncateName(mc.Estimator, 25), string(mc.Metric)}
		for _, s := range mc.Scores {
			if s == nil {
				cells = append(cells, "n/a")
			} else {
				cells = append(cells, fmt.Sprintf("%.4f", *s))
			}
		}
		cells = append(cells, formatDelta(mc.Delta))
		rows = append(rows, cells)
	}
	writeTable(w, "  ", header, rows)
	fmt.Fprintln(w) //nolint:errcheck
}

func formatDelta(d *float64) string {
	if d == nil {
		return "n/a"
	}
	icon := " "
	if *d > 0 {
		icon = "↑"
	} else if *d < 0 {
		icon = "↓"
	}
	return fmt.Sprintf("%s%+.4f", icon, *d)
}

func printComparisonJSON(w io.Writer, r *comparisonReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison report: %w", err)
	}
	fmt.Fprintln(w, string(data)) //nolint:errcheck
	return nil
}
