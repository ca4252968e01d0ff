package inference

// TreeNode is one node of a fitted regression tree. A node is a leaf when
// Left is negative.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flattened regression tree rooted at node 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Forest averages the predictions of its trees.
type Forest struct {
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

func decodeForest(params map[string]any) (*Forest, error) {
	var f Forest
	if err := Decode(params, &f); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Forest) validate() error {
	if f.NFeatures <= 0 {
		return invalid("random_forest: n_features must be positive")
	}
	if len(f.Trees) == 0 {
		return invalid("random_forest: no trees")
	}
	for ti, t := range f.Trees {
		n := len(t.Nodes)
		if n == 0 {
			return invalid("random_forest: tree %d is empty", ti)
		}
		for ni, node := range t.Nodes {
			if node.Left < 0 {
				continue
			}
			if node.Left >= n || node.Right < 0 || node.Right >= n {
				return invalid("random_forest: tree %d node %d has child out of range", ti, ni)
			}
			if node.Left <= ni || node.Right <= ni {
				return invalid("random_forest: tree %d node %d points backwards", ti, ni)
			}
			if node.Feature < 0 || node.Feature >= f.NFeatures {
				return invalid("random_forest: tree %d node %d splits on feature %d", ti, ni, node.Feature)
			}
		}
	}
	return nil
}

// Features implements Regressor.
func (f *Forest) Features() int { return f.NFeatures }

// Predict implements Regressor.
func (f *Forest) Predict(x []float64) (float64, error) {
	if err := checkWidth(x, f.NFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.eval(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// eval walks from the root. Children always have a higher index than their
// parent, so the walk terminates.
func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
