package dataset

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainTestSplit(t *testing.T) {
	s, err := TrainTestSplit(10, 0.2, NewRand(42, true))
	require.NoError(t, err)
	assert.Len(t, s.Eval, 2)
	assert.Len(t, s.Train, 8)

	all := append(append([]int{}, s.Train...), s.Eval...)
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)

	t.Run("rounds eval size up", func(t *testing.T) {
		s, err := TrainTestSplit(5, 0.3, NewRand(1, true))
		require.NoError(t, err)
		assert.Len(t, s.Eval, 2)
	})

	t.Run("deterministic with seed", func(t *testing.T) {
		a, err := TrainTestSplit(20, 0.25, NewRand(7, true))
		require.NoError(t, err)
		b, err := TrainTestSplit(20, 0.25, NewRand(7, true))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestTrainTestSplit_Errors(t *testing.T) {
	for _, tt := range []struct {
		n        int
		fraction float64
	}{
		{10, 0}, {10, 1}, {10, -0.5}, {1, 0.5}, {0, 0.2},
	} {
		_, err := TrainTestSplit(tt.n, tt.fraction, NewRand(0, true))
		assert.True(t, errors.Is(err, ErrInvalidArgument), "n=%d fraction=%g", tt.n, tt.fraction)
	}
}

func TestStratifiedKFold(t *testing.T) {
	labels := []string{"a", "a", "a", "a", "b", "b", "b", "b", "c", "c"}
	splits, err := StratifiedKFold(labels, 2, NewRand(3, true))
	require.NoError(t, err)
	require.Len(t, splits, 2)

	seen := make(map[int]int)
	for _, s := range splits {
		assert.Len(t, s.Train, len(labels)-len(s.Eval))
		counts := make(map[string]int)
		for _, r := range s.Eval {
			seen[r]++
			counts[labels[r]]++
		}
		assert.Equal(t, 2, counts["a"])
		assert.Equal(t, 2, counts["b"])
		assert.Equal(t, 1, counts["c"])
	}
	assert.Len(t, seen, len(labels))
	for r, n := range seen {
		assert.Equal(t, 1, n, "row %d", r)
	}
}

func TestStratifiedKFold_Errors(t *testing.T) {
	_, err := StratifiedKFold([]string{"a", "b"}, 1, NewRand(0, true))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = StratifiedKFold([]string{"a", "b"}, 3, NewRand(0, true))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
