package prediction

import (
	"fmt"

	"github.com/kilianp07/citypredict/core/history"
	"github.com/kilianp07/citypredict/core/inference"
	"github.com/kilianp07/citypredict/core/preprocess"
)

// WaterVariant names the water model family selected at load time.
type WaterVariant string

const (
	VariantSequence WaterVariant = "sequence"
	VariantLinear   WaterVariant = "linear"
)

// WaterModel predicts consumption in litres from a chronological window.
type WaterModel interface {
	Variant() WaterVariant
	Predict(window []history.Row) (float64, error)
}

// SequenceWater feeds the whole window to a recurrent model. Inputs and
// target were scaled independently during training.
type SequenceWater struct {
	Model  inference.SequenceRegressor
	Inputs *preprocess.StandardScaler
	Target *preprocess.StandardScaler
}

// Variant implements WaterModel.
func (SequenceWater) Variant() WaterVariant { return VariantSequence }

// Predict implements WaterModel.
func (w SequenceWater) Predict(window []history.Row) (float64, error) {
	if len(window) != history.WindowSize {
		return 0, fmt.Errorf("%w: have %d, need %d", history.ErrShortHistory, len(window), history.WindowSize)
	}
	rows := make([][]float64, len(window))
	for i, r := range window {
		rows[i] = r.Features()
	}
	scaled, err := w.Inputs.TransformRows(rows)
	if err != nil {
		return 0, err
	}
	y, err := w.Model.PredictSequence(scaled)
	if err != nil {
		return 0, err
	}
	out, err := w.Target.Inverse([]float64{y})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// LinearWater predicts from the most recent row only.
type LinearWater struct {
	Model  inference.Regressor
	Scaler *preprocess.StandardScaler
}

// Variant implements WaterModel.
func (LinearWater) Variant() WaterVariant { return VariantLinear }

// Predict implements WaterModel.
func (w LinearWater) Predict(window []history.Row) (float64, error) {
	if len(window) == 0 {
		return 0, fmt.Errorf("%w: empty window", history.ErrShortHistory)
	}
	x, err := w.Scaler.Transform(window[len(window)-1].Features())
	if err != nil {
		return 0, err
	}
	return w.Model.Predict(x)
}
