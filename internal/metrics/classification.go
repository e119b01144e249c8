package metrics

import "fmt"

// LabelScores holds the weighted counts behind one label's precision and recall.
type LabelScores struct {
	Label     string  `json:"label"`
	TP        float64 `json:"true_positives"`
	Predicted float64 `json:"predicted"`
	Support   float64 `json:"support"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Accuracy returns the weighted fraction of samples whose prediction matches
// the true label.
func Accuracy(yTrue, yPred []string, weights []float64) (float64, error) {
	if err := checkAligned(yTrue, yPred, weights); err != nil {
		return 0, err
	}

	var correct, total float64
	for i := range yTrue {
		w := weightAt(weights, i)
		total += w
		if yTrue[i] == yPred[i] {
			correct += w
		}
	}
	return safeDivide(correct, total), nil
}

// PerLabel computes weighted true positives, predicted counts and support for
// every label in the sorted union of yTrue and yPred.
func PerLabel(yTrue, yPred []string, weights []float64) ([]LabelScores, error) {
	if err := checkAligned(yTrue, yPred, weights); err != nil {
		return nil, err
	}

	labels := UniqueLabels(yTrue, yPred)
	pos := make(map[string]int, len(labels))
	scores := make([]LabelScores, len(labels))
	for i, l := range labels {
		pos[l] = i
		scores[i].Label = l
	}

	for i := range yTrue {
		w := weightAt(weights, i)
		t, p := pos[yTrue[i]], pos[yPred[i]]
		scores[t].Support += w
		scores[p].Predicted += w
		if t == p {
			scores[t].TP += w
		}
	}

	for i := range scores {
		s := &scores[i]
		s.Precision = safeDivide(s.TP, s.Predicted)
		s.Recall = safeDivide(s.TP, s.Support)
		s.F1 = safeDivide(2*s.TP, s.Predicted+s.Support)
	}
	return scores, nil
}

// PrecisionRecallF1 combines per-label scores using the given averaging
// strategy. Undefined ratios (no predictions or no support) count as 0.
func PrecisionRecallF1(yTrue, yPred []string, weights []float64, average Average) (precision, recall, f1 float64, err error) {
	avg, err := ParseAverage(string(average))
	if err != nil {
		return 0, 0, 0, err
	}

	scores, err := PerLabel(yTrue, yPred, weights)
	if err != nil {
		return 0, 0, 0, err
	}
	if len(scores) == 0 {
		return 0, 0, 0, nil
	}

	switch avg {
	case AverageMicro:
		var tp, predicted, support float64
		for _, s := range scores {
			tp += s.TP
			predicted += s.Predicted
			support += s.Support
		}
		return safeDivide(tp, predicted), safeDivide(tp, support), safeDivide(2*tp, predicted+support), nil
	case AverageMacro:
		for _, s := range scores {
			precision += s.Precision
			recall += s.Recall
			f1 += s.F1
		}
		n := float64(len(scores))
		return precision / n, recall / n, f1 / n, nil
	default:
		var support float64
		for _, s := range scores {
			precision += s.Precision * s.Support
			recall += s.Recall * s.Support
			f1 += s.F1 * s.Support
			support += s.Support
		}
		return safeDivide(precision, support), safeDivide(recall, support), safeDivide(f1, support), nil
	}
}

// Precision is the averaged precision score.
func Precision(yTrue, yPred []string, weights []float64, average Average) (float64, error) {
	p, _, _, err := PrecisionRecallF1(yTrue, yPred, weights, average)
	return p, err
}

// Recall is the averaged recall score.
func Recall(yTrue, yPred []string, weights []float64, average Average) (float64, error) {
	_, r, _, err := PrecisionRecallF1(yTrue, yPred, weights, average)
	return r, err
}

// F1 is the averaged F1 score.
func F1(yTrue, yPred []string, weights []float64, average Average) (float64, error) {
	_, _, f, err := PrecisionRecallF1(yTrue, yPred, weights, average)
	return f, err
}

func checkAligned(yTrue, yPred []string, weights []float64) error {
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: %d true labels but %d predictions", ErrInvalidArgument, len(yTrue), len(yPred))
	}
	if weights != nil && len(weights) != len(yTrue) {
		return fmt.Errorf("%w: %d sample weights for %d samples", ErrInvalidArgument, len(weights), len(yTrue))
	}
	for i, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: negative sample weight %g at index %d", ErrInvalidArgument, w, i)
		}
	}
	return nil
}

func weightAt(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
