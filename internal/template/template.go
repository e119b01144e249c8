package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/spboyer/napr/internal/models"
)

// Context holds all variables available when naming report files.
type Context struct {
	Experiment string
	RunID      string
	// Date is the run's start date as 2006-01-02.
	Date string
	// Timestamp is the run's start time as 20060102-150405.
	Timestamp string
	// Seed is empty for unseeded runs.
	Seed string
}

// NewContext describes an evaluation outcome.
func NewContext(outcome *models.EvaluationOutcome) *Context {
	ctx := &Context{
		Experiment: outcome.ExperimentName,
		RunID:      outcome.RunID,
		Date:       outcome.Timestamp.Format("2006-01-02"),
		Timestamp:  outcome.Timestamp.Format("20060102-150405"),
	}
	if outcome.Setup.Seed != nil {
		ctx.Seed = strconv.FormatInt(*outcome.Setup.Seed, 10)
	}
	return ctx
}

// Render resolves template expressions in the given string.
// Uses Go's text/template syntax: {{.Experiment}}, {{.RunID}}.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, ctx *Context) (string, error) {
	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}
