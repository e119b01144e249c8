package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// Split holds row indices of the fit and evaluation partitions.
type Split struct {
	Train []int
	Eval  []int
}

// TrainTestSplit shuffles row indices 0..n-1 and assigns ceil(n*fraction) of
// them to the evaluation partition. Both partitions must end up non-empty.
func TrainTestSplit(n int, fraction float64, rng *rand.Rand) (Split, error) {
	if fraction <= 0 || fraction >= 1 || math.IsNaN(fraction) {
		return Split{}, fmt.Errorf("%w: split fraction %g must be in (0, 1)", ErrInvalidArgument, fraction)
	}

	nEval := int(math.Ceil(float64(n) * fraction))
	if nEval < 1 || n-nEval < 1 {
		return Split{}, fmt.Errorf("%w: split fraction %g of %d rows leaves an empty partition", ErrInvalidArgument, fraction, n)
	}

	perm := rng.Perm(n)
	return Split{
		Train: perm[nEval:],
		Eval:  perm[:nEval],
	}, nil
}

// StratifiedKFold assigns each row to one of k folds so that every class is
// spread as evenly as possible across folds. Rows of each class are shuffled
// with rng before being dealt out. The returned splits use each fold once as
// the evaluation partition.
func StratifiedKFold(labels []string, k int, rng *rand.Rand) ([]Split, error) {
	n := len(labels)
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrInvalidArgument, k)
	}
	if k > n {
		return nil, fmt.Errorf("%w: %d folds for %d samples", ErrInvalidArgument, k, n)
	}

	byClass := make(map[string][]int)
	var classes []string
	for i, l := range labels {
		if _, ok := byClass[l]; !ok {
			classes = append(classes, l)
		}
		byClass[l] = append(byClass[l], i)
	}
	sort.Strings(classes)

	fold := make([]int, n)
	next := 0
	for _, c := range classes {
		rows := byClass[c]
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		for _, r := range rows {
			fold[r] = next % k
			next++
		}
	}

	splits := make([]Split, k)
	for i := 0; i < n; i++ {
		for f := 0; f < k; f++ {
			if fold[i] == f {
				splits[f].Eval = append(splits[f].Eval, i)
			} else {
				splits[f].Train = append(splits[f].Train, i)
			}
		}
	}
	return splits, nil
}

// NewRand returns a deterministic generator for seed, or a randomly seeded
// one when seeded is false.
func NewRand(seed int64, seeded bool) *rand.Rand {
	if !seeded {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}
