package classifier

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Forest is a random forest of classification trees grown on bootstrap samples with per-node feature
// subsampling. Predictions average the leaf class distributions of all trees.
type Forest struct {
	NEstimators     int    `json:"n_estimators"`
	Criterion       string `json:"criterion"`
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	// MaxFeatures is "sqrt", "log2" or "all".
	MaxFeatures string `json:"max_features"`
	Bootstrap   bool   `json:"bootstrap"`
	// Workers bounds how many trees grow at once. Results do not depend on it.
	Workers int   `json:"-"`
	Seed    int64 `json:"seed"`

	Classes []int          `json:"classes"`
	Trees   []DecisionTree `json:"trees"`
}

// Family implements Classifier.
func (f *Forest) Family() string { return "forest" }

func maxFeatures(rule string, dim int) (int, error) {
	var n int
	switch rule {
	case "", "sqrt":
		n = int(math.Sqrt(float64(dim)))
	case "log2":
		n = int(math.Log2(float64(dim)))
	case "all":
		n = dim
	default:
		return 0, errors.Errorf("unknown max_features %q", rule)
	}
	if n < 1 {
		n = 1
	}
	return n, nil
}

// Fit implements Classifier.
func (f *Forest) Fit(X [][]float64, y []int) error {
	dim, err := checkInput(X, y)
	if err != nil {
		return err
	}
	if f.NEstimators < 1 {
		return errors.Errorf("forest needs at least one tree, got n_estimators=%d", f.NEstimators)
	}
	imp, err := criterion(f.Criterion)
	if err != nil {
		return err
	}
	nf, err := maxFeatures(f.MaxFeatures, dim)
	if err != nil {
		return err
	}
	classes, yIdx := encodeLabels(y)

	// Seeds are drawn up front so tree i is the same however the trees are scheduled.
	master := rand.New(rand.NewSource(f.Seed))
	seeds := make([]int64, f.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]DecisionTree, f.NEstimators)
	var g errgroup.Group
	workers := f.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			idx := make([]int, len(X))
			for k := range idx {
				if f.Bootstrap {
					idx[k] = rng.Intn(len(X))
				} else {
					idx[k] = k
				}
			}
			gr := growth{
				x:           X,
				maxDepth:    f.MaxDepth,
				minSplit:    f.MinSamplesSplit,
				maxFeatures: nf,
				rng:         rng,
				split:       classSplit(X, yIdx, len(classes), imp),
				leaf:        classLeaf(yIdx, len(classes)),
			}
			trees[i] = *gr.run(idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.Classes = classes
	f.Trees = trees
	return nil
}

// Proba returns the mean class distribution over all trees, ordered like Classes.
func (f *Forest) Proba(x []float64) []float64 {
	p := make([]float64, len(f.Classes))
	for i := range f.Trees {
		for c, v := range f.Trees[i].Evaluate(x) {
			p[c] += v
		}
	}
	for c := range p {
		p[c] /= float64(len(f.Trees))
	}
	return p
}

// Predict implements Classifier.
func (f *Forest) Predict(x []float64) int {
	return f.Classes[argmax(f.Proba(x))]
}
