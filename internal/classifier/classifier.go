// Package classifier defines the fit/predict contract evaluated by the
// harness and the adapters that implement it.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/spboyer/napr/internal/metrics"
	"gonum.org/v1/gonum/mat"
)

//go:generate go tool mockgen -destination=../evaluation/mock_classifier_test.go -package=evaluation github.com/spboyer/napr/internal/classifier Classifier

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("classifier is not fitted")
	// ErrInvalidArgument marks malformed training or prediction input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Classifier is a model that learns labels from a numeric feature matrix.
// Rows of X are samples.
type Classifier interface {
	Fit(ctx context.Context, X mat.Matrix, y []string) error
	Predict(ctx context.Context, X mat.Matrix) ([]string, error)
	// Classes returns the labels seen during Fit in sorted order.
	Classes() []string
}

// WeightedFitter is implemented by classifiers that honor per-sample weights
// during training.
type WeightedFitter interface {
	FitWeighted(ctx context.Context, X mat.Matrix, y []string, weights []float64) error
}

// Seedable is implemented by classifiers with internal randomness.
type Seedable interface {
	SetSeed(seed int64)
}

// Parallelizable is implemented by classifiers that can spread work over
// goroutines. n <= 0 means one worker per CPU.
type Parallelizable interface {
	SetParallelism(n int)
}

// TypeName returns the concrete type name of c, without package or pointer
// decoration, e.g. "GaussianNB".
func TypeName(c any) string {
	t := reflect.TypeOf(c)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// IsNilMatrix reports whether X is nil or a typed nil pointer.
func IsNilMatrix(X mat.Matrix) bool {
	if X == nil {
		return true
	}
	v := reflect.ValueOf(X)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func dims(X mat.Matrix) (int, int) {
	if IsNilMatrix(X) {
		return 0, 0
	}
	return X.Dims()
}

func checkTrainingData(X mat.Matrix, y []string, weights []float64) (rows, cols int, err error) {
	rows, cols = dims(X)
	if rows == 0 || cols == 0 {
		return 0, 0, fmt.Errorf("%w: empty feature matrix", ErrInvalidArgument)
	}
	if len(y) != rows {
		return 0, 0, fmt.Errorf("%w: %d feature rows but %d labels", ErrInvalidArgument, rows, len(y))
	}
	if weights != nil && len(weights) != rows {
		return 0, 0, fmt.Errorf("%w: %d sample weights for %d rows", ErrInvalidArgument, len(weights), rows)
	}
	for i, w := range weights {
		if w < 0 {
			return 0, 0, fmt.Errorf("%w: negative sample weight %g at row %d", ErrInvalidArgument, w, i)
		}
	}
	return rows, cols, nil
}

func checkPredictData(X mat.Matrix, fittedCols int) (int, error) {
	rows, cols := dims(X)
	if rows == 0 {
		return 0, nil
	}
	if cols != fittedCols {
		return 0, fmt.Errorf("%w: fitted on %d features, got %d", ErrInvalidArgument, fittedCols, cols)
	}
	return rows, nil
}

func row(X mat.Matrix, i, cols int, dst []float64) []float64 {
	if rv, ok := X.(mat.RawRowViewer); ok {
		return rv.RawRowView(i)
	}
	dst = dst[:0]
	for j := 0; j < cols; j++ {
		dst = append(dst, X.At(i, j))
	}
	return dst
}

// classIndex returns the sorted classes in y and each sample's class position.
func classIndex(y []string) ([]string, []int) {
	classes := metrics.UniqueLabels(y)
	pos := make(map[string]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	idx := make([]int, len(y))
	for i, l := range y {
		idx[i] = pos[l]
	}
	return classes, idx
}

func weightAt(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
