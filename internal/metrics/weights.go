package metrics

// BalancedSampleWeights returns per-sample weights inversely proportional to
// class frequency: n / (k * count(class)), where k is the number of distinct
// classes. The weights sum to n.
func BalancedSampleWeights(y []string) []float64 {
	if len(y) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, l := range y {
		counts[l]++
	}

	n := float64(len(y))
	k := float64(len(counts))
	weights := make([]float64, len(y))
	for i, l := range y {
		weights[i] = n / (k * float64(counts[l]))
	}
	return weights
}
