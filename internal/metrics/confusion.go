package metrics

import "fmt"

// ConfusionMatrix counts samples by (true label, predicted label) under a
// fixed label ordering. Counts[i][j] is the summed weight of samples whose
// true label is Labels[i] and whose prediction is Labels[j].
type ConfusionMatrix struct {
	Labels []string    `json:"labels"`
	Counts [][]float64 `json:"counts"`
}

// NewConfusionMatrix builds an unnormalized confusion matrix. When labels is
// nil the sorted union of observed labels is used. Samples whose true or
// predicted label is not in labels are left out.
func NewConfusionMatrix(yTrue, yPred []string, weights []float64, labels []string) (*ConfusionMatrix, error) {
	if err := checkAligned(yTrue, yPred, weights); err != nil {
		return nil, err
	}

	if labels == nil {
		labels = UniqueLabels(yTrue, yPred)
	} else {
		labels = append([]string(nil), labels...)
	}

	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := pos[l]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q in confusion matrix ordering", ErrInvalidArgument, l)
		}
		pos[l] = i
	}

	counts := make([][]float64, len(labels))
	for i := range counts {
		counts[i] = make([]float64, len(labels))
	}

	for i := range yTrue {
		t, okT := pos[yTrue[i]]
		p, okP := pos[yPred[i]]
		if !okT || !okP {
			continue
		}
		counts[t][p] += weightAt(weights, i)
	}

	return &ConfusionMatrix{Labels: labels, Counts: counts}, nil
}

// Total returns the summed weight of every counted sample.
func (m *ConfusionMatrix) Total() float64 {
	total := 0.0
	for _, row := range m.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Diagonal returns the summed weight of correctly classified samples.
func (m *ConfusionMatrix) Diagonal() float64 {
	d := 0.0
	for i := range m.Counts {
		d += m.Counts[i][i]
	}
	return d
}
