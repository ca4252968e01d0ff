// Package preprocess holds the fitted feature transforms applied before
// inference: label encoders for categorical fields and standard scalers for
// numeric vectors. Both are loaded once from JSON and are read-only afterwards.
package preprocess

import (
	"errors"
	"fmt"
)

// ErrUnseenLabel is returned when a label was not part of the fitted classes.
var ErrUnseenLabel = errors.New("unseen label")

// LabelEncoder maps category labels to the integer indices used during training.
type LabelEncoder struct {
	Classes []string `json:"classes"`
	index   map[string]int
}

// NewLabelEncoder builds an encoder over the given classes. Classes must be unique.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder: no classes")
	}
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("label encoder: duplicate class %q", c)
		}
		idx[c] = i
	}
	cp := make([]string, len(classes))
	copy(cp, classes)
	return &LabelEncoder{Classes: cp, index: idx}, nil
}

// Transform returns the index of label.
func (e *LabelEncoder) Transform(label string) (int, error) {
	i, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q (known: %v)", ErrUnseenLabel, label, e.Classes)
	}
	return i, nil
}

// Inverse returns the label for index i.
func (e *LabelEncoder) Inverse(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("label index %d out of range [0,%d)", i, len(e.Classes))
	}
	return e.Classes[i], nil
}
