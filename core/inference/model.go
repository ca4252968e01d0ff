package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned when an input does not match the trained shape.
	ErrShape = errors.New("input shape mismatch")
	// ErrInvalidArtifact is returned when decoded parameters are inconsistent.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// Regressor predicts a single value from a flat feature vector. Classifiers
// implement it too and return the predicted class label.
type Regressor interface {
	Predict(x []float64) (float64, error)
	// Features is the width of the vector Predict expects.
	Features() int
}

// SequenceRegressor predicts a single value from a window of feature rows.
type SequenceRegressor interface {
	PredictSequence(seq [][]float64) (float64, error)
	// Shape returns the expected number of timesteps and features per step.
	// A zero step count means any window length is accepted.
	Shape() (steps, features int)
}

func checkWidth(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d features, want %d", ErrShape, len(x), want)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, fmt.Sprintf(format, args...))
}
