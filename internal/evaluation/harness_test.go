package evaluation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spboyer/napr/internal/classifier"
	"github.com/spboyer/napr/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gonum.org/v1/gonum/mat"
)

// blobs returns n well separated samples of three classes.
func blobs(n int) (*mat.Dense, []string) {
	X := mat.NewDense(n, 2, nil)
	y := make([]string, n)
	for i := 0; i < n; i++ {
		c := i % 3
		X.Set(i, 0, float64(c*10)+float64(i%5)*0.1)
		X.Set(i, 1, float64(c*10)-float64(i%7)*0.1)
		y[i] = fmt.Sprint(c + 1)
	}
	return X, y
}

func newKNN(t *testing.T, k int) *classifier.KNeighborsClassifier {
	t.Helper()
	p := classifier.DefaultKNNParams()
	p.NNeighbors = k
	knn, err := classifier.NewKNeighborsClassifier(p)
	require.NoError(t, err)
	return knn
}

func newNB(t *testing.T) *classifier.GaussianNB {
	t.Helper()
	nb, err := classifier.NewGaussianNB(classifier.DefaultGaussianNBParams())
	require.NoError(t, err)
	return nb
}

func TestEvaluate_SingleModelDefaults(t *testing.T) {
	X, y := blobs(30)

	table, err := Evaluate(context.Background(), Single(newKNN(t, 3)), X, y, WithSeed(1))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	for _, col := range []string{"estimator", "time", "accuracy", "precision", "recall", "f1", "confusion_matrix"} {
		assert.True(t, table.Has(col), col)
	}
	assert.Equal(t, []string{"KNeighborsClassifier"}, table.Estimators())
	assert.Greater(t, table.Rows[0].Time, 0.0)
	assert.InDelta(t, 1.0, table.Rows[0].Scores[metrics.NameAccuracy], 1e-12)

	// default split holds out ceil(30*0.2) rows; balanced weights sum to that
	assert.InDelta(t, 6.0, table.Rows[0].ConfusionMatrix.Total(), 1e-9)
}

func TestEvaluate_SingleMetric(t *testing.T) {
	X, y := blobs(30)

	table, err := Evaluate(context.Background(), Single(newNB(t)), X, y, WithMetrics("accuracy"), WithSeed(2))
	require.NoError(t, err)
	assert.True(t, table.Has("accuracy"))
	assert.False(t, table.Has("precision"))
	assert.False(t, table.Has("confusion_matrix"))
	assert.Equal(t, []string{"estimator", "time", "accuracy"}, table.Columns())
}

func TestEvaluate_NamedModels(t *testing.T) {
	X, y := blobs(30)

	reg := FromMap(map[string]classifier.Classifier{"custom": newKNN(t, 1), "bayes": newNB(t)})
	table, err := Evaluate(context.Background(), reg, X, y, WithSeed(3))
	require.NoError(t, err)

	est, ok := table.Column("estimator")
	require.True(t, ok)
	assert.Equal(t, []any{"bayes", "custom"}, est)
}

func TestEvaluate_ListUsesTypeNames(t *testing.T) {
	X, y := blobs(30)

	reg := FromList([]classifier.Classifier{newKNN(t, 1), newNB(t), newKNN(t, 3)})
	assert.Equal(t, []string{"KNeighborsClassifier", "GaussianNB"}, reg.Names())

	table, err := Evaluate(context.Background(), reg, X, y, WithSeed(4))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	knn, ok := reg.Get("KNeighborsClassifier")
	require.True(t, ok)
	assert.Equal(t, 3, knn.(*classifier.KNeighborsClassifier).Params().NNeighbors)
}

func TestEvaluate_HeldOutIgnoresSplitFraction(t *testing.T) {
	X, y := blobs(30)
	hX, hy := blobs(9)
	// flip one held-out label so scores are not trivially perfect
	hy[0] = "2"

	run := func(fraction float64) float64 {
		table, err := Evaluate(context.Background(), Single(newKNN(t, 1)), X, y,
			WithHeldOut(hX, hy), WithSplitFraction(fraction), WithSeed(5))
		require.NoError(t, err)
		return table.Rows[0].Scores[metrics.NameAccuracy]
	}

	a := run(0.2)
	assert.Equal(t, a, run(0.5))
	assert.Equal(t, a, run(0.9))
	assert.Less(t, a, 1.0)
}

func TestEvaluate_Idempotent(t *testing.T) {
	X, y := blobs(40)
	// overlapping classes so the split matters
	for i := 0; i < 40; i += 4 {
		y[i] = "1"
	}

	run := func() []float64 {
		d, err := classifier.NewDummyClassifier(classifier.DummyParams{Strategy: classifier.StrategyStratified})
		require.NoError(t, err)
		reg := NewRegistry().Add("knn", newKNN(t, 3)).Add("nb", newNB(t)).Add("dummy", d)
		table, err := Evaluate(context.Background(), reg, X, y, WithSeed(99))
		require.NoError(t, err)
		var out []float64
		for _, name := range []metrics.Name{metrics.NameAccuracy, metrics.NamePrecision, metrics.NameRecall, metrics.NameF1} {
			out = append(out, table.Scores(name)...)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestEvaluate_InvalidArguments(t *testing.T) {
	X, y := blobs(10)
	knn := newKNN(t, 1)

	tests := []struct {
		name string
		reg  *Registry
		X    mat.Matrix
		y    []string
		opts []Option
	}{
		{"nil registry", nil, X, y, nil},
		{"empty registry", NewRegistry(), X, y, nil},
		{"nil model", NewRegistry().Add("x", nil), X, y, nil},
		{"typed nil model", NewRegistry().Add("x", (*classifier.GaussianNB)(nil)), X, y, nil},
		{"empty model name", NewRegistry().Add("", knn), X, y, nil},
		{"nil features", Single(knn), nil, y, nil},
		{"typed nil features", Single(knn), (*mat.Dense)(nil), y, nil},
		{"nil labels", Single(knn), X, nil, nil},
		{"misaligned labels", Single(knn), X, y[:5], nil},
		{"unknown metric", Single(knn), X, y, []Option{WithMetrics("accuracy", "roc_auc")}},
		{"unknown average", Single(knn), X, y, []Option{WithAverage("binary")}},
		{"split fraction out of range", Single(knn), X, y, []Option{WithSplitFraction(1.5)}},
		{"held-out column mismatch", Single(knn), X, y, []Option{WithHeldOut(mat.NewDense(2, 3, nil), []string{"1", "2"})}},
		{"held-out label mismatch", Single(knn), X, y, []Option{WithHeldOut(mat.NewDense(2, 2, nil), []string{"1"})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(context.Background(), tt.reg, tt.X, tt.y, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument), err.Error())
		})
	}
}

func TestEvaluate_ValidatesBeforeTouchingModels(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClassifier(ctrl)
	// no EXPECT: any call fails the test

	X, y := blobs(10)
	_, err := Evaluate(context.Background(), Single(m), X, y, WithMetrics("kappa"))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestEvaluate_FitErrorPropagatesUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	boom := errors.New("shape mismatch")

	first := NewMockClassifier(ctrl)
	first.EXPECT().Fit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	first.EXPECT().Predict(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, X mat.Matrix) ([]string, error) {
		r, _ := X.Dims()
		return make([]string, r), nil
	})
	first.EXPECT().Classes().Return(nil)

	failing := NewMockClassifier(ctrl)
	failing.EXPECT().Fit(gomock.Any(), gomock.Any(), gomock.Any()).Return(boom)

	last := NewMockClassifier(ctrl)
	// never reached

	X, y := blobs(10)
	reg := NewRegistry().Add("first", first).Add("failing", failing).Add("last", last)
	table, err := Evaluate(context.Background(), reg, X, y, WithSeed(1))
	assert.Nil(t, table)
	assert.Same(t, boom, err)
}

func TestEvaluate_PredictErrorPropagatesUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	boom := errors.New("unsupported parameter")

	m := NewMockClassifier(ctrl)
	gomock.InOrder(
		m.EXPECT().Fit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		m.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(nil, boom),
	)

	X, y := blobs(10)
	_, err := Evaluate(context.Background(), Single(m), X, y)
	assert.Same(t, boom, err)
}

func TestEvaluate_UnweightedFitForPlainClassifiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	X, y := blobs(10)

	m := NewMockClassifier(ctrl)
	m.EXPECT().Fit(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, X mat.Matrix, y []string) error {
		r, _ := X.Dims()
		assert.Equal(t, 8, r)
		assert.Len(t, y, 8)
		return nil
	})
	m.EXPECT().Predict(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, X mat.Matrix) ([]string, error) {
		r, _ := X.Dims()
		assert.Equal(t, 2, r)
		return []string{"1", "1"}, nil
	})
	m.EXPECT().Classes().Return([]string{"1", "2", "3"})

	table, err := Evaluate(context.Background(), Single(m), X, y, WithSeed(6), WithMetrics("confusion_matrix"))
	require.NoError(t, err)
	cm := table.Rows[0].ConfusionMatrix
	assert.Equal(t, []string{"1", "2", "3"}, cm.Labels)
	assert.Len(t, cm.Counts, 3)
}

type recordingNB struct {
	*classifier.GaussianNB
	weights []float64
	seed    *int64
	jobs    *int
}

func (r *recordingNB) FitWeighted(ctx context.Context, X mat.Matrix, y []string, w []float64) error {
	r.weights = w
	return r.GaussianNB.FitWeighted(ctx, X, y, w)
}

func (r *recordingNB) SetSeed(seed int64)    { r.seed = &seed }
func (r *recordingNB) SetParallelism(n int) { r.jobs = &n }

func TestEvaluate_CapabilitiesReceiveSettings(t *testing.T) {
	X, y := blobs(12)
	rec := &recordingNB{GaussianNB: newNB(t)}

	_, err := Evaluate(context.Background(), Single(rec), X, y, WithSeed(8), WithParallelism(-1), WithSplitFraction(0.25))
	require.NoError(t, err)

	require.NotNil(t, rec.seed)
	assert.Equal(t, int64(8), *rec.seed)
	require.NotNil(t, rec.jobs)
	assert.Equal(t, -1, *rec.jobs)

	require.Len(t, rec.weights, 9)
	sum := 0.0
	for _, w := range rec.weights {
		sum += w
	}
	assert.InDelta(t, 9.0, sum, 1e-9)
}

func TestEvaluate_NoSettingsWithoutOptions(t *testing.T) {
	X, y := blobs(12)
	rec := &recordingNB{GaussianNB: newNB(t)}

	_, err := Evaluate(context.Background(), Single(rec), X, y)
	require.NoError(t, err)
	assert.Nil(t, rec.seed)
	assert.Nil(t, rec.jobs)
}

func TestEvaluate_ProgressEvents(t *testing.T) {
	X, y := blobs(30)
	h := New(WithSeed(1))

	var events []ProgressEvent
	h.OnProgress(func(e ProgressEvent) { events = append(events, e) })

	reg := NewRegistry().Add("a", newKNN(t, 1)).Add("b", newNB(t))
	_, err := h.Evaluate(context.Background(), reg, X, y)
	require.NoError(t, err)

	var types []EventType
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []EventType{
		EventEvaluationStart,
		EventModelStart, EventModelComplete,
		EventModelStart, EventModelComplete,
		EventEvaluationComplete,
	}, types)
	assert.Equal(t, "b", events[3].ModelName)
	assert.Equal(t, 2, events[3].ModelNum)
	assert.Contains(t, events[2].Details, "accuracy")
}

func TestEvaluate_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClassifier(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	X, y := blobs(10)
	_, err := Evaluate(ctx, Single(m), X, y)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSizes(t *testing.T) {
	train, eval := New().SplitSizes(10)
	assert.Equal(t, 8, train)
	assert.Equal(t, 2, eval)

	train, eval = New(WithHeldOut(mat.NewDense(3, 1, nil), []string{"a", "b", "c"})).SplitSizes(10)
	assert.Equal(t, 10, train)
	assert.Equal(t, 3, eval)
}
