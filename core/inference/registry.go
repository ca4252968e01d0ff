package inference

import (
	"fmt"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kilianp07/citypredict/core/factory"
)

// Decode fills out the provided struct from raw params using json tags.
func Decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return nil
}

var (
	regressors = factory.NewRegistry[Regressor]()
	sequences  = factory.NewRegistry[SequenceRegressor]()
)

// RegisterRegressor adds a point-model decoder.
func RegisterRegressor(kind string, d factory.Factory[Regressor]) error {
	return regressors.Register(kind, d)
}

// RegisterSequence adds a sequence-model decoder.
func RegisterSequence(kind string, d factory.Factory[SequenceRegressor]) error {
	return sequences.Register(kind, d)
}

// Kinds lists the registered point and sequence model kinds.
func Kinds() (point, sequence []string) {
	return regressors.Names(), sequences.Names()
}

func create[T any](r *factory.Registry[T], a Artifact) (T, error) {
	if !slices.Contains(r.Names(), a.Kind) {
		var zero T
		return zero, fmt.Errorf("unknown model kind %q (known: %v)", a.Kind, r.Names())
	}
	return r.Create(factory.ModuleConfig{Type: a.Kind, Conf: a.Params})
}

func init() {
	_ = RegisterRegressor("random_forest", func(p map[string]any) (Regressor, error) { return decodeForest(p) })
	_ = RegisterRegressor("linear", func(p map[string]any) (Regressor, error) { return decodeLinear(p) })
	_ = RegisterRegressor("knn", func(p map[string]any) (Regressor, error) { return decodeKNN(p) })
	_ = RegisterRegressor("logistic", func(p map[string]any) (Regressor, error) { return decodeLogistic(p) })
	_ = RegisterSequence("lstm", func(p map[string]any) (SequenceRegressor, error) { return decodeLSTM(p) })
}
