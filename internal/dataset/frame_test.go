package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := FrameFromRows([]string{"a", "b", "c"}, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	require.NoError(t, err)
	return f
}

func TestFrameSelect(t *testing.T) {
	f := sampleFrame(t)

	sub, err := f.Select([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Rows())
	col, err := sub.Column("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 1}, col)

	_, err = f.Select([]int{3})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	empty, err := f.Select(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Rows())
	assert.Equal(t, 3, empty.Cols())
}

func TestFrameDrop(t *testing.T) {
	f := sampleFrame(t)

	out, err := f.Drop("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, out.Columns())
	col, err := out.Column("c")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 9}, col)

	_, err = f.Drop("z")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestNewFrameErrors(t *testing.T) {
	_, err := FrameFromRows([]string{"a", "b"}, [][]float64{{1}})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = NewFrame([]string{"a", "a"}, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestAllBut(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, AllBut([]string{"a", "b", "c"}, []string{"b", "x"}))
	assert.Empty(t, AllBut(nil, []string{"a"}))
}

func TestSelectLabels(t *testing.T) {
	assert.Equal(t, []string{"z", "x"}, SelectLabels([]string{"x", "y", "z"}, []int{2, 0}))
}
