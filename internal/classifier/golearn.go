package classifier

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
	"gonum.org/v1/gonum/mat"
)

// GolearnKNNParams configures a GolearnKNN.
type GolearnKNNParams struct {
	NNeighbors int    `mapstructure:"n_neighbors"`
	Distance   string `mapstructure:"distance"`
	Algorithm  string `mapstructure:"algorithm"`
}

// DefaultGolearnKNNParams mirrors DefaultKNNParams.
func DefaultGolearnKNNParams() GolearnKNNParams {
	return GolearnKNNParams{NNeighbors: 5, Distance: "euclidean", Algorithm: "linear"}
}

// GolearnKNN adapts golearn's k-NN classifier. It serves as an independent
// reference for KNeighborsClassifier and does not support sample weights.
type GolearnKNN struct {
	params GolearnKNNParams

	model     *knn.KNNClassifier
	features  []base.Attribute
	classAttr *base.CategoricalAttribute
	classes   []string
}

func NewGolearnKNN(params GolearnKNNParams) (*GolearnKNN, error) {
	if params.NNeighbors < 1 {
		return nil, fmt.Errorf("%w: n_neighbors must be >= 1, got %d", ErrInvalidArgument, params.NNeighbors)
	}
	switch params.Distance {
	case "euclidean", "manhattan", "cosine":
	default:
		return nil, fmt.Errorf("%w: unknown distance %q", ErrInvalidArgument, params.Distance)
	}
	switch params.Algorithm {
	case "linear", "kdtree":
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidArgument, params.Algorithm)
	}
	return &GolearnKNN{params: params}, nil
}

func (g *GolearnKNN) Fit(ctx context.Context, X mat.Matrix, y []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, cols, err := checkTrainingData(X, y, nil)
	if err != nil {
		return err
	}
	if g.params.NNeighbors > rows {
		return fmt.Errorf("%w: n_neighbors %d exceeds %d training samples", ErrInvalidArgument, g.params.NNeighbors, rows)
	}

	g.features = make([]base.Attribute, cols)
	for j := range g.features {
		g.features[j] = base.NewFloatAttribute("f" + strconv.Itoa(j))
	}
	g.classAttr = base.NewCategoricalAttribute()
	g.classAttr.SetName("class")

	train, err := g.grid(X, rows, cols, y)
	if err != nil {
		return err
	}

	model := knn.NewKnnClassifier(g.params.Distance, g.params.Algorithm, g.params.NNeighbors)
	if err := model.Fit(train); err != nil {
		return fmt.Errorf("golearn knn fit: %w", err)
	}
	g.model = model
	g.classes, _ = classIndex(y)
	return nil
}

func (g *GolearnKNN) Classes() []string {
	return append([]string(nil), g.classes...)
}

func (g *GolearnKNN) Predict(ctx context.Context, X mat.Matrix) ([]string, error) {
	if g.model == nil {
		return nil, ErrNotFitted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := checkPredictData(X, len(g.features))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return []string{}, nil
	}

	test, err := g.grid(X, rows, len(g.features), nil)
	if err != nil {
		return nil, err
	}
	predictions, err := g.model.Predict(test)
	if err != nil {
		return nil, fmt.Errorf("golearn knn predict: %w", err)
	}

	out := make([]string, rows)
	for i := range out {
		out[i] = base.GetClass(predictions, i)
	}
	return out, nil
}

// grid converts X into golearn instances sharing this model's attributes.
// Labels are left unset when y is nil.
func (g *GolearnKNN) grid(X mat.Matrix, rows, cols int, y []string) (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, cols)
	for j, a := range g.features {
		specs[j] = inst.AddAttribute(a)
	}
	classSpec := inst.AddAttribute(g.classAttr)
	if err := inst.AddClassAttribute(g.classAttr); err != nil {
		return nil, fmt.Errorf("golearn class attribute: %w", err)
	}
	if err := inst.Extend(rows); err != nil {
		return nil, fmt.Errorf("golearn extend: %w", err)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			inst.Set(specs[j], i, base.PackFloatToBytes(X.At(i, j)))
		}
		if y != nil {
			inst.Set(classSpec, i, g.classAttr.GetSysValFromString(y[i]))
		}
	}
	return inst, nil
}
