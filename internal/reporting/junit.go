package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spboyer/napr/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one experiment run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one estimator.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a missed threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts an EvaluationOutcome to JUnit XML format. Each
// estimator is a test case that fails when it misses any threshold.
func ConvertToJUnit(outcome *models.EvaluationOutcome) *JUnitTestSuites {
	durationSec := float64(outcome.DurationMs) / 1000.0

	suite := JUnitTestSuite{
		Name:      outcome.ExperimentName,
		Tests:     outcome.Table.Len(),
		Time:      durationSec,
		Timestamp: outcome.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "run_id", Value: outcome.RunID},
			{Name: "dataset", Value: outcome.Setup.Dataset},
			{Name: "average", Value: outcome.Setup.Average},
			{Name: "train_rows", Value: fmt.Sprint(outcome.Setup.TrainRows)},
			{Name: "eval_rows", Value: fmt.Sprint(outcome.Setup.EvalRows)},
		},
	}
	if outcome.Setup.Seed != nil {
		suite.Properties = append(suite.Properties, JUnitProperty{Name: "seed", Value: fmt.Sprint(*outcome.Setup.Seed)})
	}

	failuresByModel := make(map[string][]models.ThresholdFailure)
	for _, f := range outcome.ThresholdFailures {
		failuresByModel[f.Estimator] = append(failuresByModel[f.Estimator], f)
	}

	for _, row := range outcome.Table.Rows {
		tc := JUnitTestCase{
			Name:      row.Estimator,
			Classname: outcome.ExperimentName,
			Time:      row.Time,
			SystemOut: formatScores(row),
		}
		if fs := failuresByModel[row.Estimator]; len(fs) > 0 {
			tc.Failure = buildFailure(row.Estimator, fs)
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Time:       durationSec,
		TestSuites: []JUnitTestSuite{suite},
	}
}

func buildFailure(estimator string, fs []models.ThresholdFailure) *JUnitFailure {
	var body strings.Builder
	for _, f := range fs {
		fmt.Fprintf(&body, "[FAIL] %s: %.4f < %.4f\n", f.Metric, f.Score, f.Minimum)
	}
	return &JUnitFailure{
		Message: fmt.Sprintf("%s: %d threshold(s) missed", estimator, len(fs)),
		Type:    "ThresholdFailure",
		Body:    body.String(),
	}
}

func formatScores(row models.Row) string {
	var parts []string
	for _, m := range row.Metrics {
		if m.IsScalar() {
			parts = append(parts, fmt.Sprintf("%s=%.4f", m, row.Scores[m]))
		}
	}
	return strings.Join(parts, " ")
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(outcome *models.EvaluationOutcome, path string) error {
	suites := ConvertToJUnit(outcome)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
