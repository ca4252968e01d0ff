package inference

import "gonum.org/v1/gonum/floats"

// Linear is an ordinary least squares model: coef·x + intercept.
type Linear struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func decodeLinear(params map[string]any) (*Linear, error) {
	var l Linear
	if err := Decode(params, &l); err != nil {
		return nil, err
	}
	if len(l.Coef) == 0 {
		return nil, invalid("linear: empty coef")
	}
	return &l, nil
}

// Features implements Regressor.
func (l *Linear) Features() int { return len(l.Coef) }

// Predict implements Regressor.
func (l *Linear) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, len(l.Coef)); err != nil {
		return 0, err
	}
	return floats.Dot(l.Coef, x) + l.Intercept, nil
}
