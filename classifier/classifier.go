// Package classifier implements the tree based classifiers compared by walkid: a single CART tree, a
// random forest, gradient boosted trees and a majority baseline. All of them share the flat tree
// representation in tree.go and serialize to JSON.
package classifier

import (
	"sort"

	"github.com/pkg/errors"
)

// A Classifier learns integer labels from feature vectors.
type Classifier interface {
	// Family names the model family, e.g. "forest".
	Family() string
	// Fit trains the classifier on the rows of X labelled by y.
	Fit(X [][]float64, y []int) error
	// Predict returns the label for a single feature vector.
	Predict(x []float64) int
}

// Params carries the hyperparameters of every family; each family reads only the fields it uses.
type Params struct {
	Criterion       string
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     string
	NEstimators     int
	LearningRate    float64
	Bootstrap       bool
	Workers         int
	Seed            int64
}

var (
	// ErrEmpty is returned when fitting on no samples.
	ErrEmpty = errors.New("no training samples")
	// ErrNotFitted is returned when a model without learned state is serialized.
	ErrNotFitted = errors.New("classifier has not been fitted")
)

// New returns an unfitted classifier of the given family.
func New(family string, p Params) (Classifier, error) {
	switch family {
	case "tree":
		return &Tree{
			Criterion:       p.Criterion,
			MaxDepth:        p.MaxDepth,
			MinSamplesSplit: p.MinSamplesSplit,
			Seed:            p.Seed,
		}, nil
	case "forest":
		return &Forest{
			NEstimators:     p.NEstimators,
			Criterion:       p.Criterion,
			MaxDepth:        p.MaxDepth,
			MinSamplesSplit: p.MinSamplesSplit,
			MaxFeatures:     p.MaxFeatures,
			Bootstrap:       p.Bootstrap,
			Workers:         p.Workers,
			Seed:            p.Seed,
		}, nil
	case "boosting":
		return &Boosting{
			NEstimators:  p.NEstimators,
			LearningRate: p.LearningRate,
			MaxDepth:     p.MaxDepth,
		}, nil
	case "majority":
		return &Majority{}, nil
	default:
		return nil, errors.Errorf("unknown classifier family %q", family)
	}
}

// PredictAll predicts every row of X.
func PredictAll(c Classifier, X [][]float64) []int {
	out := make([]int, len(X))
	for i, x := range X {
		out[i] = c.Predict(x)
	}
	return out
}

// checkInput validates a training set and returns its feature dimension.
func checkInput(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmpty
	}
	if len(X) != len(y) {
		return 0, errors.Errorf("%d feature vectors but %d labels", len(X), len(y))
	}
	dim := len(X[0])
	if dim == 0 {
		return 0, errors.New("feature vectors are empty")
	}
	for i, x := range X {
		if len(x) != dim {
			return 0, errors.Errorf("feature vector %d has length %d, expected %d", i, len(x), dim)
		}
	}
	return dim, nil
}

// encodeLabels returns the sorted distinct labels of y and y rewritten as indices into them.
func encodeLabels(y []int) ([]int, []int) {
	seen := make(map[int]bool)
	var classes []int
	for _, l := range y {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Ints(classes)

	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	idx := make([]int, len(y))
	for i, l := range y {
		idx[i] = pos[l]
	}
	return classes, idx
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
