package prediction

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrModelsUnavailable marks a domain whose artifacts could not be loaded.
	ErrModelsUnavailable = errors.New("models not available")
	// ErrNonFinite is returned when a model produces NaN or an infinity.
	ErrNonFinite = errors.New("model produced a non-finite value")
	// ErrNotBinary is returned when the air model yields something other than class 0 or 1.
	ErrNotBinary = errors.New("air model did not return a binary class")
	// ErrInference wraps a panic raised while evaluating a model.
	ErrInference = errors.New("inference failed")
)

// LoadError lists the domains that failed to load.
type LoadError struct {
	Failures map[Domain]error
}

func (e *LoadError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for d := range e.Failures {
		keys = append(keys, string(d))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, e.Failures[Domain(k)])
	}
	return "load models: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-domain causes to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		out = append(out, err)
	}
	return out
}

func finite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrNonFinite, v)
	}
	return nil
}
