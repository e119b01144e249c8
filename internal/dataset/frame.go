// Package dataset loads numeric tabular data and splits it for evaluation.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidArgument marks malformed dataset inputs.
var ErrInvalidArgument = errors.New("invalid argument")

// Frame is a named-column numeric table. Rows are samples.
type Frame struct {
	columns []string
	data    *mat.Dense
}

// NewFrame wraps data with column names. data may be nil for an empty frame.
func NewFrame(columns []string, data *mat.Dense) (*Frame, error) {
	if data != nil {
		_, c := data.Dims()
		if c != len(columns) {
			return nil, fmt.Errorf("%w: %d column names for %d columns", ErrInvalidArgument, len(columns), c)
		}
	}
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidArgument, name)
		}
		seen[name] = true
	}
	return &Frame{columns: append([]string(nil), columns...), data: data}, nil
}

// FrameFromRows builds a frame from row-major values.
func FrameFromRows(columns []string, rows [][]float64) (*Frame, error) {
	if len(rows) == 0 {
		return NewFrame(columns, nil)
	}
	flat := make([]float64, 0, len(rows)*len(columns))
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrInvalidArgument, i, len(r), len(columns))
		}
		flat = append(flat, r...)
	}
	return NewFrame(columns, mat.NewDense(len(rows), len(columns), flat))
}

// Rows returns the number of samples.
func (f *Frame) Rows() int {
	if f == nil || f.data == nil {
		return 0
	}
	r, _ := f.data.Dims()
	return r
}

// Cols returns the number of feature columns.
func (f *Frame) Cols() int {
	if f == nil {
		return 0
	}
	return len(f.columns)
}

// Columns returns a copy of the column names.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Matrix returns the underlying matrix, or nil for an empty frame.
func (f *Frame) Matrix() *mat.Dense {
	if f == nil {
		return nil
	}
	return f.data
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	j := f.index(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidArgument, name)
	}
	if f.data == nil {
		return []float64{}, nil
	}
	return mat.Col(nil, j, f.data), nil
}

// Select returns a new frame holding the given rows in the given order.
func (f *Frame) Select(rows []int) (*Frame, error) {
	if len(rows) == 0 || f.Cols() == 0 {
		return NewFrame(f.columns, nil)
	}
	n := f.Rows()
	out := mat.NewDense(len(rows), f.Cols(), nil)
	for i, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("%w: row %d out of range [0, %d)", ErrInvalidArgument, r, n)
		}
		out.SetRow(i, f.data.RawRowView(r))
	}
	return &Frame{columns: f.Columns(), data: out}, nil
}

// Drop returns a new frame without the named columns.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	for _, name := range names {
		if f.index(name) < 0 {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidArgument, name)
		}
	}

	keep := AllBut(f.columns, names)
	if f.data == nil {
		return NewFrame(keep, nil)
	}

	idx := make([]int, len(keep))
	for i, name := range keep {
		idx[i] = f.index(name)
	}
	n := f.Rows()
	if len(keep) == 0 {
		return &Frame{data: nil}, nil
	}
	out := mat.NewDense(n, len(keep), nil)
	for i := 0; i < n; i++ {
		for j, src := range idx {
			out.Set(i, j, f.data.At(i, src))
		}
	}
	return &Frame{columns: keep, data: out}, nil
}

func (f *Frame) index(name string) int {
	for i, c := range f.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AllBut returns the elements of all that are not in but, preserving order.
func AllBut(all, but []string) []string {
	skip := make(map[string]bool, len(but))
	for _, b := range but {
		skip[b] = true
	}
	out := make([]string, 0, len(all))
	for _, a := range all {
		if !skip[a] {
			out = append(out, a)
		}
	}
	return out
}

// SelectLabels returns labels at the given indices.
func SelectLabels(labels []string, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = labels[r]
	}
	return out
}
