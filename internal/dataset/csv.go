package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadOptions controls how a CSV file maps onto features and labels.
type LoadOptions struct {
	// Target names the label column. Empty means the file has no labels.
	Target string
	// Drop lists columns excluded from the features.
	Drop []string
	// IndexColumn names a row identifier column, excluded from the features.
	IndexColumn string
}

// LoadCSV reads a (possibly compressed) CSV file. The first row is the
// header. Every column other than the target, index and dropped columns must
// be numeric.
func LoadCSV(path string, opts LoadOptions) (*Frame, []string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close() //nolint:errcheck

	frame, labels, err := ReadCSV(rc, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return frame, labels, nil
}

// ReadCSV parses CSV content from r. See LoadCSV.
func ReadCSV(r io.Reader, opts LoadOptions) (*Frame, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("csv: empty input (no header row)")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("csv: parse header: %w", err)
	}

	targetIdx := -1
	skip := make(map[string]bool, len(opts.Drop)+1)
	for _, d := range opts.Drop {
		skip[d] = true
	}
	if opts.IndexColumn != "" {
		skip[opts.IndexColumn] = true
	}

	present := make(map[string]bool, len(header))
	var featureIdx []int
	var columns []string
	for i, h := range header {
		h = strings.TrimSpace(h)
		present[h] = true
		switch {
		case opts.Target != "" && h == opts.Target:
			targetIdx = i
		case skip[h]:
		default:
			featureIdx = append(featureIdx, i)
			columns = append(columns, h)
		}
	}

	if opts.Target != "" && targetIdx < 0 {
		return nil, nil, fmt.Errorf("csv: target column %q not found", opts.Target)
	}
	for name := range skip {
		if !present[name] {
			return nil, nil, fmt.Errorf("csv: column %q not found", name)
		}
	}

	var values []float64
	var labels []string
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("csv: parse: %w", err)
		}

		for k, idx := range featureIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("csv: row %d column %q: value %q is not numeric", line, columns[k], record[idx])
			}
			values = append(values, v)
		}
		if targetIdx >= 0 {
			labels = append(labels, strings.TrimSpace(record[targetIdx]))
		}
	}

	if line == 1 {
		frame, err := NewFrame(columns, nil)
		return frame, labels, err
	}

	var data *mat.Dense
	if len(columns) > 0 {
		data = mat.NewDense(line-1, len(columns), values)
	}
	frame, err := NewFrame(columns, data)
	if err != nil {
		return nil, nil, err
	}
	return frame, labels, nil
}
