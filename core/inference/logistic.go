package inference

import "gonum.org/v1/gonum/floats"

// Logistic is a fitted binary logistic classifier. Predict returns
// Classes[1] when the decision function is positive, Classes[0] otherwise.
type Logistic struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Classes   []float64 `json:"classes"`
}

func decodeLogistic(params map[string]any) (*Logistic, error) {
	l := Logistic{Classes: []float64{0, 1}}
	if err := Decode(params, &l); err != nil {
		return nil, err
	}
	if len(l.Coef) == 0 {
		return nil, invalid("logistic: empty coef")
	}
	if len(l.Classes) != 2 {
		return nil, invalid("logistic: want 2 classes, got %d", len(l.Classes))
	}
	return &l, nil
}

// Features implements Regressor.
func (l *Logistic) Features() int { return len(l.Coef) }

// Decision returns the raw decision function value.
func (l *Logistic) Decision(x []float64) (float64, error) {
	if err := checkWidth(x, len(l.Coef)); err != nil {
		return 0, err
	}
	return floats.Dot(l.Coef, x) + l.Intercept, nil
}

// Predict implements Regressor.
func (l *Logistic) Predict(x []float64) (float64, error) {
	d, err := l.Decision(x)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return l.Classes[1], nil
	}
	return l.Classes[0], nil
}
