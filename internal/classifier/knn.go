package classifier

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Neighbor vote weighting.
const (
	WeightsUniform  = "uniform"
	WeightsDistance = "distance"
)

// Distance metrics.
const (
	MetricEuclidean = "euclidean"
	MetricManhattan = "manhattan"
)

// KNNParams configures a KNeighborsClassifier.
type KNNParams struct {
	NNeighbors int    `mapstructure:"n_neighbors"`
	Weights    string `mapstructure:"weights"`
	Metric     string `mapstructure:"metric"`
	NJobs      int    `mapstructure:"n_jobs"`
}

// DefaultKNNParams returns five uniformly weighted euclidean neighbors.
func DefaultKNNParams() KNNParams {
	return KNNParams{NNeighbors: 5, Weights: WeightsUniform, Metric: MetricEuclidean, NJobs: 1}
}

// KNeighborsClassifier votes among the k nearest training samples. It does
// not support sample weights.
type KNeighborsClassifier struct {
	params KNNParams

	x       *mat.Dense
	yIdx    []int
	classes []string
}

// NewKNeighborsClassifier validates params and returns an unfitted model.
func NewKNeighborsClassifier(params KNNParams) (*KNeighborsClassifier, error) {
	if params.NNeighbors < 1 {
		return nil, fmt.Errorf("%w: n_neighbors must be >= 1, got %d", ErrInvalidArgument, params.NNeighbors)
	}
	switch params.Weights {
	case WeightsUniform, WeightsDistance:
	default:
		return nil, fmt.Errorf("%w: unknown weights %q", ErrInvalidArgument, params.Weights)
	}
	switch params.Metric {
	case MetricEuclidean, MetricManhattan:
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, params.Metric)
	}
	return &KNeighborsClassifier{params: params}, nil
}

// SetParallelism sets the number of prediction workers.
func (k *KNeighborsClassifier) SetParallelism(n int) {
	k.params.NJobs = n
}

// Params returns the current configuration.
func (k *KNeighborsClassifier) Params() KNNParams {
	return k.params
}

func (k *KNeighborsClassifier) Fit(ctx context.Context, X mat.Matrix, y []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, _, err := checkTrainingData(X, y, nil)
	if err != nil {
		return err
	}
	if k.params.NNeighbors > rows {
		return fmt.Errorf("%w: n_neighbors %d exceeds %d training samples", ErrInvalidArgument, k.params.NNeighbors, rows)
	}

	k.x = mat.DenseCopyOf(X)
	k.classes, k.yIdx = classIndex(y)
	return nil
}

func (k *KNeighborsClassifier) Classes() []string {
	return append([]string(nil), k.classes...)
}

func (k *KNeighborsClassifier) Predict(ctx context.Context, X mat.Matrix) ([]string, error) {
	if k.x == nil {
		return nil, ErrNotFitted
	}
	_, cols := k.x.Dims()
	rows, err := checkPredictData(X, cols)
	if err != nil {
		return nil, err
	}

	out := make([]string, rows)
	workers := k.params.NJobs
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < rows; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf := make([]float64, 0, cols)
			out[i] = k.classes[k.vote(row(X, i, cols, buf))]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type neighbor struct {
	index int
	dist  float64
}

func (k *KNeighborsClassifier) vote(sample []float64) int {
	n, _ := k.x.Dims()
	neighbors := make([]neighbor, n)
	for i := 0; i < n; i++ {
		neighbors[i] = neighbor{index: i, dist: k.distance(sample, k.x.RawRowView(i))}
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].index < neighbors[b].index
	})
	nearest := neighbors[:k.params.NNeighbors]

	votes := make([]float64, len(k.classes))
	if k.params.Weights == WeightsDistance {
		// exact matches take all the weight
		exact := false
		for _, nb := range nearest {
			if nb.dist == 0 {
				exact = true
				votes[k.yIdx[nb.index]]++
			}
		}
		if exact {
			return argmax(votes)
		}
		for _, nb := range nearest {
			votes[k.yIdx[nb.index]] += 1 / nb.dist
		}
		return argmax(votes)
	}

	for _, nb := range nearest {
		votes[k.yIdx[nb.index]]++
	}
	return argmax(votes)
}

func (k *KNeighborsClassifier) distance(a, b []float64) float64 {
	if k.params.Metric == MetricManhattan {
		return floats.Distance(a, b, 1)
	}
	d := floats.Distance(a, b, 2)
	if math.IsNaN(d) {
		return math.Inf(1)
	}
	return d
}
