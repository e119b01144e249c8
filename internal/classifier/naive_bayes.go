package classifier

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GaussianNBParams configures a GaussianNB.
type GaussianNBParams struct {
	// VarSmoothing is the fraction of the largest feature variance added to
	// every per-class variance.
	VarSmoothing float64 `mapstructure:"var_smoothing"`
}

// DefaultGaussianNBParams returns the customary 1e-9 smoothing.
func DefaultGaussianNBParams() GaussianNBParams {
	return GaussianNBParams{VarSmoothing: 1e-9}
}

// GaussianNB is a naive Bayes classifier with per-class normal likelihoods.
// Sample weights shift class priors, means and variances.
type GaussianNB struct {
	params GaussianNBParams

	classes  []string
	logPrior []float64
	theta    [][]float64
	variance [][]float64
}

func NewGaussianNB(params GaussianNBParams) (*GaussianNB, error) {
	if params.VarSmoothing < 0 || math.IsNaN(params.VarSmoothing) {
		return nil, fmt.Errorf("%w: var_smoothing must be >= 0, got %g", ErrInvalidArgument, params.VarSmoothing)
	}
	return &GaussianNB{params: params}, nil
}

func (g *GaussianNB) Fit(ctx context.Context, X mat.Matrix, y []string) error {
	return g.FitWeighted(ctx, X, y, nil)
}

func (g *GaussianNB) FitWeighted(ctx context.Context, X mat.Matrix, y []string, weights []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, cols, err := checkTrainingData(X, y, weights)
	if err != nil {
		return err
	}

	classes, idx := classIndex(y)
	byClass := make([][]int, len(classes))
	for i, c := range idx {
		byClass[c] = append(byClass[c], i)
	}

	epsilon := 0.0
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, X)
		_, v := stat.PopMeanVariance(column, nil)
		epsilon = math.Max(epsilon, v)
	}
	epsilon *= g.params.VarSmoothing
	if epsilon == 0 {
		epsilon = g.params.VarSmoothing
	}

	total := 0.0
	classWeight := make([]float64, len(classes))
	for i := range idx {
		w := weightAt(weights, i)
		classWeight[idx[i]] += w
		total += w
	}
	if total == 0 {
		return fmt.Errorf("%w: sample weights sum to zero", ErrInvalidArgument)
	}

	theta := make([][]float64, len(classes))
	variance := make([][]float64, len(classes))
	logPrior := make([]float64, len(classes))
	for c, members := range byClass {
		theta[c] = make([]float64, cols)
		variance[c] = make([]float64, cols)
		logPrior[c] = math.Log(classWeight[c] / total)

		var w []float64
		if weights != nil {
			w = make([]float64, len(members))
			for k, i := range members {
				w[k] = weights[i]
			}
		}
		values := make([]float64, len(members))
		for j := 0; j < cols; j++ {
			for k, i := range members {
				values[k] = X.At(i, j)
			}
			m, v := stat.PopMeanVariance(values, w)
			if math.IsNaN(m) {
				// every member has zero weight
				m, v = stat.PopMeanVariance(values, nil)
			}
			theta[c][j] = m
			variance[c][j] = v + epsilon
		}
	}

	g.classes = classes
	g.logPrior = logPrior
	g.theta = theta
	g.variance = variance
	return nil
}

func (g *GaussianNB) Classes() []string {
	return append([]string(nil), g.classes...)
}

func (g *GaussianNB) Predict(ctx context.Context, X mat.Matrix) ([]string, error) {
	if g.classes == nil {
		return nil, ErrNotFitted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols := len(g.theta[0])
	rows, err := checkPredictData(X, cols)
	if err != nil {
		return nil, err
	}

	out := make([]string, rows)
	joint := make([]float64, len(g.classes))
	buf := make([]float64, 0, cols)
	for i := 0; i < rows; i++ {
		x := row(X, i, cols, buf)
		for c := range g.classes {
			joint[c] = g.logPrior[c] + g.logLikelihood(c, x)
		}
		out[i] = g.classes[floats.MaxIdx(joint)]
	}
	return out, nil
}

func (g *GaussianNB) logLikelihood(c int, x []float64) float64 {
	ll := 0.0
	for j, v := range x {
		variance := g.variance[c][j]
		d := v - g.theta[c][j]
		ll -= 0.5*math.Log(2*math.Pi*variance) + d*d/(2*variance)
	}
	return ll
}
