package metrics

import (
	"sort"
	"strconv"
)

// UniqueLabels returns the distinct labels across all given vectors in
// SortLabels order.
func UniqueLabels(vectors ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range vectors {
		for _, l := range v {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	SortLabels(out)
	return out
}

// SortLabels sorts labels in place. When every label parses as a number the
// order is numeric ("2" before "10"); otherwise it is lexical.
func SortLabels(labels []string) {
	values := make([]float64, len(labels))
	numeric := true
	for i, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}

	if !numeric {
		sort.Strings(labels)
		return
	}

	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		if va != vb {
			return va < vb
		}
		return labels[idx[a]] < labels[idx[b]]
	})

	sorted := make([]string, len(labels))
	for i, j := range idx {
		sorted[i] = labels[j]
	}
	copy(labels, sorted)
}
