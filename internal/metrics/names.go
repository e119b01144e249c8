// Package metrics computes classification scores over aligned label vectors.
//
// Labels are strings. Per-sample weights are optional everywhere: a nil weight
// slice means every sample counts once.
package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument marks malformed metric inputs (unknown names, misaligned
// vectors, negative weights).
var ErrInvalidArgument = errors.New("invalid argument")

// Name identifies a metric that can be requested from the evaluation harness.
type Name string

const (
	NameAccuracy        Name = "accuracy"
	NamePrecision       Name = "precision"
	NameRecall          Name = "recall"
	NameF1              Name = "f1"
	NameConfusionMatrix Name = "confusion_matrix"
)

var allNames = []Name{NameAccuracy, NamePrecision, NameRecall, NameF1, NameConfusionMatrix}

// All returns every recognized metric in canonical order.
func All() []Name {
	out := make([]Name, len(allNames))
	copy(out, allNames)
	return out
}

// IsScalar reports whether the metric produces a single number.
func (n Name) IsScalar() bool {
	return n != NameConfusionMatrix
}

// Valid reports whether n is a recognized metric.
func (n Name) Valid() bool {
	for _, known := range allNames {
		if n == known {
			return true
		}
	}
	return false
}

// ParseNames converts raw metric names into Names, preserving order and
// dropping duplicates. An empty input yields All().
func ParseNames(raw []string) ([]Name, error) {
	if len(raw) == 0 {
		return All(), nil
	}

	seen := make(map[Name]bool, len(raw))
	names := make([]Name, 0, len(raw))
	for _, r := range raw {
		n := Name(strings.TrimSpace(r))
		if !n.Valid() {
			return nil, fmt.Errorf("%w: unknown metric %q (supported: %s)", ErrInvalidArgument, r, joinNames(allNames))
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names, nil
}

// Average selects how per-label precision, recall and F1 are combined.
type Average string

const (
	// AverageWeighted weights each label by its (sample-weighted) support.
	AverageWeighted Average = "weighted"
	// AverageMacro is the unweighted mean over labels.
	AverageMacro Average = "macro"
	// AverageMicro pools true/false positives over all labels.
	AverageMicro Average = "micro"
)

// ParseAverage validates an averaging strategy. Empty selects weighted.
func ParseAverage(s string) (Average, error) {
	switch Average(strings.TrimSpace(s)) {
	case "", AverageWeighted:
		return AverageWeighted, nil
	case AverageMacro:
		return AverageMacro, nil
	case AverageMicro:
		return AverageMicro, nil
	default:
		return "", fmt.Errorf("%w: unknown average %q (supported: weighted, macro, micro)", ErrInvalidArgument, s)
	}
}

func joinNames(names []Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
