package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FormatMarkdown renders the outcome as a Markdown document: a setup list,
// the result table, confusion matrices and cross-validation summaries.
func FormatMarkdown(outcome *models.EvaluationOutcome) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", outcome.ExperimentName)
	fmt.Fprintf(&b, "- Run: `%s`\n", outcome.RunID)
	fmt.Fprintf(&b, "- Dataset: `%s`", outcome.Setup.Dataset)
	if outcome.Setup.HeldOut != "" {
		fmt.Fprintf(&b, " (held out: `%s`)", outcome.Setup.HeldOut)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Rows: %d fit, %d scored, %d features\n", outcome.Setup.TrainRows, outcome.Setup.EvalRows, outcome.Setup.Features)
	fmt.Fprintf(&b, "- Averaging: %s\n", outcome.Setup.Average)
	if outcome.Setup.Seed != nil {
		fmt.Fprintf(&b, "- Seed: %d\n", *outcome.Setup.Seed)
	}
	if outcome.Best != nil {
		fmt.Fprintf(&b, "- Best: **%s** (%s %.4f)\n", outcome.Best.Estimator, outcome.Best.Metric, outcome.Best.Score)
	}

	b.WriteString("\n## Results\n\n")
	writeResultTable(&b, outcome.Table)

	if outcome.Table.Has(string(metrics.NameConfusionMatrix)) {
		b.WriteString("\n## Confusion matrices\n")
		for _, row := range outcome.Table.Rows {
			if row.ConfusionMatrix == nil {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n", row.Estimator)
			writeConfusionMatrix(&b, row.ConfusionMatrix)
		}
	}

	if cv := outcome.CrossValidation; cv != nil && len(cv.Summaries) > 0 {
		fmt.Fprintf(&b, "\n## Cross-validation (%d folds)\n\n", cv.Folds)
		writeCVTable(&b, cv)
	}

	if len(outcome.ThresholdFailures) > 0 {
		b.WriteString("\n## Threshold failures\n\n")
		for _, f := range outcome.ThresholdFailures {
			fmt.Fprintf(&b, "- %s: %s %.4f < %.4f\n", f.Estimator, f.Metric, f.Score, f.Minimum)
		}
	}

	return b.String()
}

func writeResultTable(b *strings.Builder, table *models.ResultTable) {
	header := []string{"estimator", "time"}
	var scalars []metrics.Name
	for _, m := range table.Metrics {
		if m.IsScalar() {
			scalars = append(scalars, m)
			header = append(header, string(m))
		}
	}
	writeRow(b, header)
	writeRow(b, separator(len(header)))

	for _, row := range table.Rows {
		cells := []string{escapeCell(row.Estimator), fmt.Sprintf("%.4f", row.Time)}
		for _, m := range scalars {
			cells = append(cells, fmt.Sprintf("%.4f", row.Scores[m]))
		}
		writeRow(b, cells)
	}
}

func writeConfusionMatrix(b *strings.Builder, cm *metrics.ConfusionMatrix) {
	header := []string{"true \\ pred"}
	for _, l := range cm.Labels {
		header = append(header, escapeCell(l))
	}
	writeRow(b, header)
	writeRow(b, separator(len(header)))

	for i, l := range cm.Labels {
		cells := []string{escapeCell(l)}
		for _, v := range cm.Counts[i] {
			cells = append(cells, fmt.Sprintf("%.4g", v))
		}
		writeRow(b, cells)
	}
}

func writeCVTable(b *strings.Builder, cv *models.CVResult) {
	var names []metrics.Name
	for _, m := range metrics.All() {
		if _, ok := cv.Summaries[0].Metrics[m]; ok {
			names = append(names, m)
		}
	}

	header := []string{"estimator", "mean time"}
	for _, m := range names {
		header = append(header, fmt.Sprintf("%s (mean ± std)", m), fmt.Sprintf("%s %.0f%% CI", m, cv.Summaries[0].Metrics[m].CI.ConfidenceLevel*100))
	}
	writeRow(b, header)
	writeRow(b, separator(len(header)))

	for _, s := range cv.Summaries {
		cells := []string{escapeCell(s.Estimator), fmt.Sprintf("%.4f", s.MeanTime)}
		for _, m := range names {
			ms := s.Metrics[m]
			cells = append(cells,
				fmt.Sprintf("%.4f ± %.4f", ms.Mean, ms.StdDev),
				fmt.Sprintf("[%.4f, %.4f]", ms.CI.Lower, ms.CI.Upper))
		}
		writeRow(b, cells)
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func separator(n int) []string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = "---"
	}
	return cells
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderHTML renders the Markdown report as a standalone HTML page.
func RenderHTML(outcome *models.EvaluationOutcome) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdown(outcome)), &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(outcome.ExperimentName))
	page.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px;text-align:right}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
