package classifier

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Kind names a classifier adapter in experiment files.
type Kind string

const (
	KindKNN        Kind = "knn"
	KindGaussianNB Kind = "gaussian_nb"
	KindDummy      Kind = "dummy"
	KindGolearnKNN Kind = "golearn_knn"
)

// Kinds lists every supported adapter.
func Kinds() []Kind {
	return []Kind{KindKNN, KindGaussianNB, KindDummy, KindGolearnKNN}
}

// New creates a classifier of the given kind. params are decoded onto the
// adapter's defaults; unknown keys are rejected.
func New(kind Kind, params map[string]any) (Classifier, error) {
	switch kind {
	case KindKNN:
		p := DefaultKNNParams()
		if err := decodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", kind, err)
		}
		return NewKNeighborsClassifier(p)
	case KindGaussianNB:
		p := DefaultGaussianNBParams()
		if err := decodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", kind, err)
		}
		return NewGaussianNB(p)
	case KindDummy:
		p := DummyParams{Strategy: StrategyPrior}
		if err := decodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", kind, err)
		}
		return NewDummyClassifier(p)
	case KindGolearnKNN:
		p := DefaultGolearnKNNParams()
		if err := decodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("%s params: %w", kind, err)
		}
		return NewGolearnKNN(p)
	default:
		return nil, fmt.Errorf("'%s' is not a valid classifier kind", kind)
	}
}

func decodeParams(params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}
