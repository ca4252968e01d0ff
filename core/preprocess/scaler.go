package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrDimension is returned when a vector does not match the fitted width.
var ErrDimension = errors.New("dimension mismatch")

// StandardScaler applies (x - mean) / scale per feature.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// NewStandardScaler validates and copies the fitted parameters. A zero scale
// entry is replaced by 1, matching how constant features were fitted.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("scaler: empty mean")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("scaler: %w: mean has %d entries, scale has %d", ErrDimension, len(mean), len(scale))
	}
	s := &StandardScaler{Mean: make([]float64, len(mean)), Scale: make([]float64, len(scale))}
	copy(s.Mean, mean)
	for i, v := range scale {
		if v == 0 {
			v = 1
		}
		s.Scale[i] = v
	}
	return s, nil
}

// Width is the number of features the scaler was fitted on.
func (s *StandardScaler) Width() int { return len(s.Mean) }

// Transform returns a scaled copy of x.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scale: %w: got %d features, want %d", ErrDimension, len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	floats.SubTo(out, x, s.Mean)
	floats.Div(out, s.Scale)
	return out, nil
}

// TransformRows scales every row of a window independently.
func (s *StandardScaler) TransformRows(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		scaled, err := s.Transform(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}

// Inverse maps a scaled vector back to the original units.
func (s *StandardScaler) Inverse(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("inverse scale: %w: got %d features, want %d", ErrDimension, len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	floats.MulTo(out, x, s.Scale)
	floats.Add(out, s.Mean)
	return out, nil
}
