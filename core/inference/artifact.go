package inference

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the on-disk envelope of a trained model.
type Artifact struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params"`
}

// ReadArtifact reads and decodes the envelope at path.
func ReadArtifact(path string) (Artifact, error) {
	var a Artifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("decode %s: %w", path, err)
	}
	if a.Kind == "" {
		return a, fmt.Errorf("%s: %w: missing kind", path, ErrInvalidArtifact)
	}
	return a, nil
}

// LoadRegressor reads a point model from path.
func LoadRegressor(path string) (Regressor, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	m, err := create(regressors, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadSequence reads a sequence model from path.
func LoadSequence(path string) (SequenceRegressor, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	m, err := create(sequences, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
