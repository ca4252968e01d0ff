package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LSTMLayer holds the weights of one recurrent layer. Gate blocks are laid
// out as input, forget, cell, output along the 4*units axis.
type LSTMLayer struct {
	Units           int         `json:"units"`
	Activation      string      `json:"activation"`
	Kernel          [][]float64 `json:"kernel"`
	RecurrentKernel [][]float64 `json:"recurrent_kernel"`
	Bias            []float64   `json:"bias"`

	w, u *mat.Dense
	b    *mat.VecDense
	act  func(float64) float64
}

// DenseLayer maps the last hidden state to the scalar output.
type DenseLayer struct {
	Kernel [][]float64 `json:"kernel"`
	Bias   []float64   `json:"bias"`

	w *mat.Dense
}

// LSTM is a stack of recurrent layers followed by a dense head.
type LSTM struct {
	Timesteps int         `json:"timesteps"`
	Layers    []LSTMLayer `json:"layers"`
	Dense     DenseLayer  `json:"dense"`
}

func decodeLSTM(params map[string]any) (*LSTM, error) {
	var m LSTM
	if err := Decode(params, &m); err != nil {
		return nil, err
	}
	if err := m.build(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *LSTM) build() error {
	if len(m.Layers) == 0 {
		return invalid("lstm: no layers")
	}
	if m.Timesteps < 0 {
		return invalid("lstm: negative timesteps")
	}
	in := 0
	for i := range m.Layers {
		l := &m.Layers[i]
		if l.Units <= 0 {
			return invalid("lstm: layer %d has no units", i)
		}
		w, err := denseFrom(l.Kernel)
		if err != nil {
			return invalid("lstm: layer %d kernel: %v", i, err)
		}
		rows, cols := w.Dims()
		if cols != 4*l.Units {
			return invalid("lstm: layer %d kernel has %d columns, want %d", i, cols, 4*l.Units)
		}
		if i > 0 && rows != in {
			return invalid("lstm: layer %d kernel has %d rows, want %d", i, rows, in)
		}
		u, err := denseFrom(l.RecurrentKernel)
		if err != nil {
			return invalid("lstm: layer %d recurrent kernel: %v", i, err)
		}
		if ur, uc := u.Dims(); ur != l.Units || uc != 4*l.Units {
			return invalid("lstm: layer %d recurrent kernel is %dx%d, want %dx%d", i, ur, uc, l.Units, 4*l.Units)
		}
		if len(l.Bias) != 4*l.Units {
			return invalid("lstm: layer %d bias has %d entries, want %d", i, len(l.Bias), 4*l.Units)
		}
		act, err := activation(l.Activation)
		if err != nil {
			return invalid("lstm: layer %d: %v", i, err)
		}
		l.w, l.u, l.act = w, u, act
		l.b = mat.NewVecDense(len(l.Bias), append([]float64(nil), l.Bias...))
		in = l.Units
	}
	w, err := denseFrom(m.Dense.Kernel)
	if err != nil {
		return invalid("lstm: dense kernel: %v", err)
	}
	if r, c := w.Dims(); r != in || c != 1 {
		return invalid("lstm: dense kernel is %dx%d, want %dx1", r, c, in)
	}
	if len(m.Dense.Bias) != 1 {
		return invalid("lstm: dense bias must have one entry")
	}
	m.Dense.w = w
	return nil
}

// Shape implements SequenceRegressor.
func (m *LSTM) Shape() (int, int) {
	r, _ := m.Layers[0].w.Dims()
	return m.Timesteps, r
}

// PredictSequence implements SequenceRegressor. seq is ordered oldest first.
func (m *LSTM) PredictSequence(seq [][]float64) (float64, error) {
	steps, width := m.Shape()
	if len(seq) == 0 || (steps > 0 && len(seq) != steps) {
		return 0, fmt.Errorf("%w: got %d timesteps, want %d", ErrShape, len(seq), steps)
	}
	xs := make([]*mat.VecDense, len(seq))
	for t, row := range seq {
		if len(row) != width {
			return 0, fmt.Errorf("%w: timestep %d has %d features, want %d", ErrShape, t, len(row), width)
		}
		xs[t] = mat.NewVecDense(width, append([]float64(nil), row...))
	}
	for i := range m.Layers {
		xs = m.Layers[i].forward(xs)
	}
	last := xs[len(xs)-1]
	return mat.Dot(last, m.Dense.w.ColView(0)) + m.Dense.Bias[0], nil
}

// forward runs the layer over the whole sequence and returns every hidden state.
func (l *LSTMLayer) forward(xs []*mat.VecDense) []*mat.VecDense {
	n := l.Units
	h := mat.NewVecDense(n, nil)
	c := make([]float64, n)
	z := mat.NewVecDense(4*n, nil)
	rec := mat.NewVecDense(4*n, nil)
	out := make([]*mat.VecDense, len(xs))
	for t, x := range xs {
		z.MulVec(l.w.T(), x)
		rec.MulVec(l.u.T(), h)
		z.AddVec(z, rec)
		z.AddVec(z, l.b)
		next := make([]float64, n)
		for j := 0; j < n; j++ {
			ig := sigmoid(z.AtVec(j))
			fg := sigmoid(z.AtVec(n + j))
			cg := l.act(z.AtVec(2*n + j))
			og := sigmoid(z.AtVec(3*n + j))
			c[j] = fg*c[j] + ig*cg
			next[j] = og * l.act(c[j])
		}
		h = mat.NewVecDense(n, next)
		out[t] = h
	}
	return out
}

func denseFrom(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), cols)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case "", "tanh":
		return math.Tanh, nil
	case "relu":
		return func(v float64) float64 { return math.Max(0, v) }, nil
	case "sigmoid":
		return sigmoid, nil
	case "linear":
		return func(v float64) float64 { return v }, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
