package inference

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KNN is a k-nearest-neighbour regressor over its stored training points.
type KNN struct {
	K       int         `json:"k"`
	Points  [][]float64 `json:"points"`
	Targets []float64   `json:"targets"`
	// Weights is "uniform" (default) or "distance".
	Weights string `json:"weights"`
}

func decodeKNN(params map[string]any) (*KNN, error) {
	k := KNN{K: 5, Weights: "uniform"}
	if err := Decode(params, &k); err != nil {
		return nil, err
	}
	if len(k.Points) == 0 {
		return nil, invalid("knn: no points")
	}
	if len(k.Points) != len(k.Targets) {
		return nil, invalid("knn: %d points but %d targets", len(k.Points), len(k.Targets))
	}
	width := len(k.Points[0])
	if width == 0 {
		return nil, invalid("knn: zero-width points")
	}
	for i, p := range k.Points {
		if len(p) != width {
			return nil, invalid("knn: point %d has %d features, want %d", i, len(p), width)
		}
	}
	if k.K <= 0 {
		return nil, invalid("knn: k must be positive")
	}
	if k.K > len(k.Points) {
		k.K = len(k.Points)
	}
	if k.Weights != "uniform" && k.Weights != "distance" {
		return nil, invalid("knn: unknown weights %q", k.Weights)
	}
	return &k, nil
}

// Features implements Regressor.
func (k *KNN) Features() int { return len(k.Points[0]) }

// Predict implements Regressor.
func (k *KNN) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, k.Features()); err != nil {
		return 0, err
	}
	type neighbour struct {
		dist float64
		idx  int
	}
	ns := make([]neighbour, len(k.Points))
	for i, p := range k.Points {
		ns[i] = neighbour{dist: floats.Distance(p, x, 2), idx: i}
	}
	sort.SliceStable(ns, func(a, b int) bool { return ns[a].dist < ns[b].dist })
	ns = ns[:k.K]

	if k.Weights == "uniform" {
		var sum float64
		for _, n := range ns {
			sum += k.Targets[n.idx]
		}
		return sum / float64(len(ns)), nil
	}

	// Exact matches take all the weight.
	var exact []float64
	for _, n := range ns {
		if n.dist == 0 {
			exact = append(exact, k.Targets[n.idx])
		}
	}
	if len(exact) > 0 {
		return floats.Sum(exact) / float64(len(exact)), nil
	}
	var num, den float64
	for _, n := range ns {
		w := 1 / n.dist
		num += w * k.Targets[n.idx]
		den += w
	}
	return num / den, nil
}
