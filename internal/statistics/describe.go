// Package statistics summarizes score samples: means, spreads, bootstrap
// intervals and interval coverage.
package statistics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyData is returned when a summary needs at least one value.
var ErrEmptyData = errors.New("data cannot be empty")

// Mean returns the arithmetic mean, or 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the population standard deviation, or 0 for fewer than two
// values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	_, v := stat.PopMeanVariance(values, nil)
	return math.Sqrt(v)
}

// Inclusive selects which interval bounds count as inside.
type Inclusive string

const (
	InclusiveBoth    Inclusive = "both"
	InclusiveNeither Inclusive = "neither"
	InclusiveLeft    Inclusive = "left"
	InclusiveRight   Inclusive = "right"
)

// ParseInclusive validates an inclusivity mode. Empty selects both.
func ParseInclusive(s string) (Inclusive, error) {
	switch Inclusive(s) {
	case "", InclusiveBoth:
		return InclusiveBoth, nil
	case InclusiveNeither, InclusiveLeft, InclusiveRight:
		return Inclusive(s), nil
	default:
		return "", fmt.Errorf("inclusive must be one of both, neither, left, right; got %q", s)
	}
}

// PercentWithin returns the percentage (0-100) of data inside the interval
// spanned by a and b. The bounds may be given in either order.
func PercentWithin(data []float64, a, b float64, inclusive Inclusive) (float64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyData
	}
	inc, err := ParseInclusive(string(inclusive))
	if err != nil {
		return 0, err
	}

	lo, hi := math.Min(a, b), math.Max(a, b)
	within := 0
	for _, v := range data {
		aboveLo := v > lo || (v == lo && (inc == InclusiveBoth || inc == InclusiveLeft))
		belowHi := v < hi || (v == hi && (inc == InclusiveBoth || inc == InclusiveRight))
		if aboveLo && belowHi {
			within++
		}
	}
	return 100 * float64(within) / float64(len(data)), nil
}
