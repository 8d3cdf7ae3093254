package classifier

import "math/rand"

// Tree is a single CART classification tree.
type Tree struct {
	Criterion       string `json:"criterion"`
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	// MaxFeatures limits the features tried at each node; 0 tries all of them.
	MaxFeatures int   `json:"max_features"`
	Seed        int64 `json:"seed"`

	Classes []int         `json:"classes"`
	Tree    *DecisionTree `json:"tree"`
}

// Family implements Classifier.
func (t *Tree) Family() string { return "tree" }

// Fit implements Classifier.
func (t *Tree) Fit(X [][]float64, y []int) error {
	if _, err := checkInput(X, y); err != nil {
		return err
	}
	imp, err := criterion(t.Criterion)
	if err != nil {
		return err
	}
	classes, yIdx := encodeLabels(y)

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	g := growth{
		x:           X,
		maxDepth:    t.MaxDepth,
		minSplit:    t.MinSamplesSplit,
		maxFeatures: t.MaxFeatures,
		rng:         rand.New(rand.NewSource(t.Seed)),
		split:       classSplit(X, yIdx, len(classes), imp),
		leaf:        classLeaf(yIdx, len(classes)),
	}
	t.Classes = classes
	t.Tree = g.run(idx)
	return nil
}

// Proba returns the class probabilities for x, ordered like Classes.
func (t *Tree) Proba(x []float64) []float64 {
	return t.Tree.Evaluate(x)
}

// Predict implements Classifier.
func (t *Tree) Predict(x []float64) int {
	return t.Classes[argmax(t.Proba(x))]
}
