package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/napr/internal/cache"
	"github.com/spboyer/napr/internal/config"
	"github.com/spboyer/napr/internal/evaluation"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/projectconfig"
	"github.com/spboyer/napr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBlobs writes n rows of three well separated classes.
func writeBlobs(t *testing.T, dir, name string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,x,y,noise,class\n")
	for i := 0; i < n; i++ {
		c := i % 3
		fmt.Fprintf(&b, "r%d,%g,%g,%d,c%d\n", i, float64(c*10)+float64(i%5)*0.1, float64(c*10)-float64(i%7)*0.1, i, c)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644))
}

func experiment() *models.ExperimentSpec {
	return &models.ExperimentSpec{
		SpecIdentity: models.SpecIdentity{Name: "blobs"},
		Dataset: models.DatasetConfig{
			Path:        "data.csv",
			Target:      "class",
			IndexColumn: "id",
			Drop:        []string{"noise"},
		},
		Config: models.EvalConfig{Seed: utils.Ptr(int64(3))},
		Models: []models.ModelConfig{
			{Kind: "knn", Name: "knn-1", Params: map[string]any{"n_neighbors": 1}},
			{Kind: "gaussian_nb"},
			{Kind: "dummy", Params: map[string]any{"strategy": "most_frequent"}},
		},
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)

	r := NewExperimentRunner(config.NewRunConfig(experiment(), config.WithSpecDir(dir)))

	var events []evaluation.EventType
	r.OnProgress(func(e evaluation.ProgressEvent) { events = append(events, e.EventType) })

	outcome, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.RunID)
	assert.Equal(t, "blobs", outcome.ExperimentName)
	assert.Equal(t, []string{"knn-1", "GaussianNB", "DummyClassifier"}, outcome.Table.Estimators())
	assert.Equal(t, 2, outcome.Setup.Features)
	assert.Equal(t, 24, outcome.Setup.TrainRows)
	assert.Equal(t, 6, outcome.Setup.EvalRows)
	assert.Equal(t, "weighted", outcome.Setup.Average)
	assert.Equal(t, metrics.All(), outcome.Setup.Metrics)
	assert.Nil(t, outcome.CrossValidation)
	assert.True(t, outcome.Passed())

	require.NotNil(t, outcome.Best)
	assert.Equal(t, metrics.NameF1, outcome.Best.Metric)
	assert.Equal(t, "knn-1", outcome.Best.Estimator)

	assert.Equal(t, evaluation.EventEvaluationStart, events[0])
	assert.Equal(t, evaluation.EventEvaluationComplete, events[len(events)-1])
}

func TestRun_CrossValidationAndHeldOut(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)
	writeBlobs(t, dir, "test.csv", 9)

	spec := experiment()
	spec.HeldOut = &models.DatasetConfig{Path: "test.csv"}
	spec.Config.CVFolds = 3
	spec.Config.Metrics = []string{"accuracy", "recall"}

	outcome, err := NewExperimentRunner(config.NewRunConfig(spec, config.WithSpecDir(dir))).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test.csv", outcome.Setup.HeldOut)
	assert.Equal(t, 30, outcome.Setup.TrainRows)
	assert.Equal(t, 9, outcome.Setup.EvalRows)
	assert.Equal(t, []string{"estimator", "time", "accuracy", "recall"}, outcome.Table.Columns())
	assert.Equal(t, metrics.NameAccuracy, outcome.Best.Metric)

	require.NotNil(t, outcome.CrossValidation)
	assert.Equal(t, 3, outcome.CrossValidation.Folds)
	assert.Len(t, outcome.CrossValidation.Summaries, 3)
}

func TestRun_Thresholds(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)

	spec := experiment()
	spec.Thresholds = map[string]float64{"accuracy": 0.9, "f1": 0.5}

	outcome, err := NewExperimentRunner(config.NewRunConfig(spec, config.WithSpecDir(dir))).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, outcome.Passed())
	var failed []string
	for _, f := range outcome.ThresholdFailures {
		failed = append(failed, fmt.Sprintf("%s/%s", f.Estimator, f.Metric))
	}
	assert.Equal(t, []string{"DummyClassifier/accuracy", "DummyClassifier/f1"}, failed)
}

func TestRun_ModelFilters(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)

	r := NewExperimentRunner(config.NewRunConfig(experiment(), config.WithSpecDir(dir)), WithModelFilters("knn-*", "Gauss*"))
	outcome, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"knn-1", "GaussianNB"}, outcome.Table.Estimators())

	r = NewExperimentRunner(config.NewRunConfig(experiment(), config.WithSpecDir(dir)), WithModelFilters("svm"))
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestRun_Cache(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)
	c := cache.New(filepath.Join(dir, ".cache"))

	run := func() *models.EvaluationOutcome {
		r := NewExperimentRunner(config.NewRunConfig(experiment(), config.WithSpecDir(dir)), WithCache(c))
		outcome, err := r.Run(context.Background())
		require.NoError(t, err)
		return outcome
	}

	first := run()
	assert.False(t, first.Cached)

	second := run()
	assert.True(t, second.Cached)
	assert.Equal(t, first.RunID, second.RunID)
	assert.Equal(t, first.Table.Scores(metrics.NameAccuracy), second.Table.Scores(metrics.NameAccuracy))
}

func TestRun_NoCacheWithoutSeed(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)
	cacheDir := filepath.Join(dir, ".cache")

	spec := experiment()
	spec.Config.Seed = nil
	_, err := NewExperimentRunner(config.NewRunConfig(spec, config.WithSpecDir(dir)), WithCache(cache.New(cacheDir))).Run(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(cacheDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ProjectDefaults(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)

	pc := projectconfig.New()
	pc.Defaults.Split = 0.5
	pc.Defaults.Average = "macro"
	pc.Defaults.Metrics = []string{"accuracy"}

	spec := experiment()
	spec.Config.Seed = nil
	pc.Defaults.Seed = utils.Ptr(int64(11))

	r := NewExperimentRunner(config.NewRunConfig(spec, config.WithSpecDir(dir)), WithProjectDefaults(pc))
	eff := r.EffectiveSpec()
	require.NotNil(t, eff.Config.Seed)
	assert.Equal(t, int64(11), *eff.Config.Seed)
	assert.Nil(t, spec.Config.Seed, "original experiment must not change")

	outcome, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, outcome.Setup.EvalRows)
	assert.Equal(t, "macro", outcome.Setup.Average)
	assert.Equal(t, []string{"estimator", "time", "accuracy"}, outcome.Table.Columns())
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	writeBlobs(t, dir, "data.csv", 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("id,z,noise,class\nr0,1,0,c0\n"), 0o644))

	tests := []struct {
		name    string
		mutate  func(*models.ExperimentSpec)
		wantErr string
		invalid bool
	}{
		{"missing dataset", func(s *models.ExperimentSpec) { s.Dataset.Path = "nope.csv" }, "loading dataset", false},
		{"unknown kind", func(s *models.ExperimentSpec) { s.Models[0].Kind = "svm" }, "not a valid classifier kind", false},
		{"bad params", func(s *models.ExperimentSpec) { s.Models[0].Params = map[string]any{"n_neighbours": 3} }, "models[0]", false},
		{"held-out columns differ", func(s *models.ExperimentSpec) { s.HeldOut = &models.DatasetConfig{Path: "other.csv"} }, "do not match", false},
		{"threshold on missing metric", func(s *models.ExperimentSpec) {
			s.Config.Metrics = []string{"accuracy"}
			s.Thresholds = map[string]float64{"f1": 0.5}
		}, "not a computed scalar metric", false},
		{"too many folds", func(s *models.ExperimentSpec) { s.Config.CVFolds = 31 }, "", true},
		{"invalid spec", func(s *models.ExperimentSpec) { s.Models = nil }, "invalid experiment", false},
		{"unnamed model shadows a named one", func(s *models.ExperimentSpec) {
			s.Models = append(s.Models, models.ModelConfig{Kind: "knn", Name: "GaussianNB"})
		}, `name "GaussianNB" is already used by models[1]`, false},
		{"two unnamed models of one kind", func(s *models.ExperimentSpec) {
			s.Models = append(s.Models, models.ModelConfig{Kind: "gaussian_nb", Params: map[string]any{"var_smoothing": 1e-3}})
		}, "give one of them a name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := experiment()
			tt.mutate(spec)
			_, err := NewExperimentRunner(config.NewRunConfig(spec, config.WithSpecDir(dir))).Run(context.Background())
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.invalid {
				assert.True(t, errors.Is(err, evaluation.ErrInvalidArgument), err.Error())
			}
		})
	}
}

func TestCheckThresholds(t *testing.T) {
	table := models.NewResultTable([]metrics.Name{metrics.NameAccuracy, metrics.NameConfusionMatrix})
	table.Rows = append(table.Rows,
		models.Row{Estimator: "a", Metrics: table.Metrics, Scores: map[metrics.Name]float64{metrics.NameAccuracy: 0.9}},
		models.Row{Estimator: "b", Metrics: table.Metrics, Scores: map[metrics.Name]float64{metrics.NameAccuracy: 0.5}},
	)

	failures, err := CheckThresholds(table, map[string]float64{"accuracy": 0.8})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, models.ThresholdFailure{Estimator: "b", Metric: metrics.NameAccuracy, Score: 0.5, Minimum: 0.8}, failures[0])

	failures, err = CheckThresholds(table, nil)
	require.NoError(t, err)
	assert.Empty(t, failures)

	_, err = CheckThresholds(table, map[string]float64{"confusion_matrix": 0.1})
	assert.Error(t, err)

	best := BestModel(table)
	require.NotNil(t, best)
	assert.Equal(t, "a", best.Estimator)
	assert.Equal(t, metrics.NameAccuracy, best.Metric)

	assert.Nil(t, BestModel(models.NewResultTable([]metrics.Name{metrics.NameConfusionMatrix})))
}
