package models

import (
	"fmt"

	"github.com/spboyer/napr/internal/metrics"
)

// Fixed result table columns.
const (
	ColumnEstimator = "estimator"
	ColumnTime      = "time"
)

// Row is one model's scores.
type Row struct {
	Estimator string `json:"estimator"`
	// Time is the fit duration in seconds.
	Time            float64                  `json:"time"`
	Metrics         []metrics.Name           `json:"metrics"`
	Scores          map[metrics.Name]float64 `json:"scores,omitempty"`
	ConfusionMatrix *metrics.ConfusionMatrix `json:"confusion_matrix,omitempty"`
}

// Keys returns estimator, time and the row's metrics in request order.
func (r Row) Keys() []string {
	keys := []string{ColumnEstimator, ColumnTime}
	for _, m := range r.Metrics {
		keys = append(keys, string(m))
	}
	return keys
}

// Has reports whether key is one of the row's fields.
func (r Row) Has(key string) bool {
	for _, k := range r.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Value returns the field for key: a string for estimator, float64 for time
// and scalar metrics, *metrics.ConfusionMatrix for the confusion matrix.
func (r Row) Value(key string) (any, bool) {
	if !r.Has(key) {
		return nil, false
	}
	switch key {
	case ColumnEstimator:
		return r.Estimator, true
	case ColumnTime:
		return r.Time, true
	case string(metrics.NameConfusionMatrix):
		return r.ConfusionMatrix, true
	default:
		v, ok := r.Scores[metrics.Name(key)]
		return v, ok
	}
}

// Score returns a scalar metric.
func (r Row) Score(name metrics.Name) (float64, bool) {
	v, ok := r.Scores[name]
	return v, ok
}

// ResultTable is the comparison table produced by an evaluation. Row i in
// every column describes the i-th model in evaluation order.
type ResultTable struct {
	Metrics []metrics.Name `json:"metrics"`
	Rows    []Row          `json:"rows"`
}

func NewResultTable(names []metrics.Name) *ResultTable {
	return &ResultTable{Metrics: append([]metrics.Name(nil), names...), Rows: []Row{}}
}

// Append adds a row. The row must carry exactly the table's metrics.
func (t *ResultTable) Append(r Row) error {
	if len(r.Metrics) != len(t.Metrics) {
		return fmt.Errorf("row %q has %d metrics, table has %d", r.Estimator, len(r.Metrics), len(t.Metrics))
	}
	for i := range r.Metrics {
		if r.Metrics[i] != t.Metrics[i] {
			return fmt.Errorf("row %q metric %d is %s, table expects %s", r.Estimator, i, r.Metrics[i], t.Metrics[i])
		}
	}
	t.Rows = append(t.Rows, r)
	return nil
}

// Len returns the number of models.
func (t *ResultTable) Len() int {
	return len(t.Rows)
}

// Columns returns estimator, time and the requested metrics in order.
func (t *ResultTable) Columns() []string {
	return Row{Metrics: t.Metrics}.Keys()
}

// Has reports whether the table has the named column.
func (t *ResultTable) Has(column string) bool {
	return Row{Metrics: t.Metrics}.Has(column)
}

// Column returns the named column's values in row order.
func (t *ResultTable) Column(column string) ([]any, bool) {
	if !t.Has(column) {
		return nil, false
	}
	values := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		values[i], _ = r.Value(column)
	}
	return values, true
}

// ColumnMap returns the table as column name to values.
func (t *ResultTable) ColumnMap() map[string][]any {
	out := make(map[string][]any)
	for _, c := range t.Columns() {
		out[c], _ = t.Column(c)
	}
	return out
}

// Estimators returns the estimator column.
func (t *ResultTable) Estimators() []string {
	names := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		names[i] = r.Estimator
	}
	return names
}

// Scores returns a scalar metric column.
func (t *ResultTable) Scores(name metrics.Name) []float64 {
	values := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		values[i] = r.Scores[name]
	}
	return values
}

// Row looks up a row by estimator name.
func (t *ResultTable) Row(estimator string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Estimator == estimator {
			return r, true
		}
	}
	return Row{}, false
}

// Best returns the row with the highest score for name. Ties keep the
// earlier row. ok is false when the table lacks the metric or has no rows.
func (t *ResultTable) Best(name metrics.Name) (Row, bool) {
	if !name.IsScalar() || !t.Has(string(name)) || len(t.Rows) == 0 {
		return Row{}, false
	}
	best := 0
	for i, r := range t.Rows {
		if r.Scores[name] > t.Rows[best].Scores[name] {
			best = i
		}
	}
	return t.Rows[best], true
}
