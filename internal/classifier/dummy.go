package classifier

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Dummy strategies.
const (
	StrategyPrior        = "prior"
	StrategyMostFrequent = "most_frequent"
	StrategyStratified   = "stratified"
	StrategyUniform      = "uniform"
)

// DummyParams configures a DummyClassifier.
type DummyParams struct {
	Strategy string `mapstructure:"strategy"`
	Seed     *int64 `mapstructure:"seed"`
}

// DummyClassifier ignores the features. It is a baseline for the other
// models in a comparison.
type DummyClassifier struct {
	strategy string
	seed     *int64
	rng      *rand.Rand

	classes []string
	prior   []float64
}

func NewDummyClassifier(params DummyParams) (*DummyClassifier, error) {
	switch params.Strategy {
	case "":
		params.Strategy = StrategyPrior
	case StrategyPrior, StrategyMostFrequent, StrategyStratified, StrategyUniform:
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, params.Strategy)
	}
	d := &DummyClassifier{strategy: params.Strategy}
	if params.Seed != nil {
		d.SetSeed(*params.Seed)
	}
	return d, nil
}

// SetSeed makes the stratified and uniform strategies reproducible.
func (d *DummyClassifier) SetSeed(seed int64) {
	d.seed = &seed
	d.resetRNG()
}

// resetRNG restarts the generator from the seed, or from entropy when no
// seed is set.
func (d *DummyClassifier) resetRNG() {
	if d.seed != nil {
		d.rng = rand.New(rand.NewPCG(uint64(*d.seed), 0))
		return
	}
	d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Strategy returns the configured strategy.
func (d *DummyClassifier) Strategy() string {
	return d.strategy
}

func (d *DummyClassifier) Fit(ctx context.Context, X mat.Matrix, y []string) error {
	return d.FitWeighted(ctx, X, y, nil)
}

func (d *DummyClassifier) FitWeighted(ctx context.Context, X mat.Matrix, y []string, weights []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := checkTrainingData(X, y, weights); err != nil {
		return err
	}

	classes, idx := classIndex(y)
	prior := make([]float64, len(classes))
	total := 0.0
	for i, c := range idx {
		w := weightAt(weights, i)
		prior[c] += w
		total += w
	}
	if total == 0 {
		return fmt.Errorf("%w: sample weights sum to zero", ErrInvalidArgument)
	}
	for c := range prior {
		prior[c] /= total
	}

	d.classes = classes
	d.prior = prior
	d.resetRNG()
	return nil
}

func (d *DummyClassifier) Classes() []string {
	return append([]string(nil), d.classes...)
}

func (d *DummyClassifier) Predict(ctx context.Context, X mat.Matrix) ([]string, error) {
	if d.classes == nil {
		return nil, ErrNotFitted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, _ := dims(X)

	out := make([]string, rows)
	for i := range out {
		switch d.strategy {
		case StrategyStratified:
			out[i] = d.classes[d.sample()]
		case StrategyUniform:
			out[i] = d.classes[d.rng.IntN(len(d.classes))]
		default:
			out[i] = d.classes[argmax(d.prior)]
		}
	}
	return out, nil
}

func (d *DummyClassifier) sample() int {
	r := d.rng.Float64()
	acc := 0.0
	for c, p := range d.prior {
		acc += p
		if r < acc {
			return c
		}
	}
	return len(d.prior) - 1
}
