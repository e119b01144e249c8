package template

import (
	"testing"
	"time"

	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		ctx     *Context
		want    string
		wantErr bool
	}{
		{
			name: "experiment name",
			tmpl: "results/{{.Experiment}}.json",
			ctx:  &Context{Experiment: "terpenes"},
			want: "results/terpenes.json",
		},
		{
			name: "run id and timestamp",
			tmpl: "{{.Timestamp}}-{{.RunID}}.xml",
			ctx:  &Context{RunID: "abc-123", Timestamp: "20260218-120000"},
			want: "20260218-120000-abc-123.xml",
		},
		{
			name: "no templates passthrough",
			tmpl: "plain/path.json",
			ctx:  &Context{Experiment: "ignored"},
			want: "plain/path.json",
		},
		{
			name: "empty string input",
			tmpl: "",
			ctx:  &Context{},
			want: "",
		},
		{
			name: "conditional on seed",
			tmpl: `{{.Experiment}}{{if .Seed}}-seed{{.Seed}}{{end}}.json`,
			ctx:  &Context{Experiment: "x", Seed: "42"},
			want: "x-seed42.json",
		},
		{
			name: "conditional on missing seed",
			tmpl: `{{.Experiment}}{{if .Seed}}-seed{{.Seed}}{{end}}.json`,
			ctx:  &Context{Experiment: "x"},
			want: "x.json",
		},
		{
			name:    "missing field",
			tmpl:    "{{.NoSuchField}}",
			ctx:     &Context{},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "bad {{.Unclosed",
			ctx:     &Context{},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Render(tc.tmpl, tc.ctx)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "template:")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewContext(t *testing.T) {
	outcome := &models.EvaluationOutcome{
		RunID:          "run-1",
		ExperimentName: "iris",
		Timestamp:      time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Setup:          models.OutcomeSetup{Seed: utils.Ptr(int64(11))},
	}

	ctx := NewContext(outcome)
	assert.Equal(t, &Context{
		Experiment: "iris",
		RunID:      "run-1",
		Date:       "2026-03-04",
		Timestamp:  "20260304-050607",
		Seed:       "11",
	}, ctx)

	outcome.Setup.Seed = nil
	assert.Empty(t, NewContext(outcome).Seed)
}
