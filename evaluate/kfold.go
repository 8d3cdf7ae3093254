// Package evaluate runs k-fold cross-validation of classifiers and derives confusion matrix metrics.
package evaluate

import (
	"math/rand"

	"github.com/pkg/errors"
)

// KFold partitions sample indices into Splits folds of near equal size.
type KFold struct {
	Splits  int
	Shuffle bool
	Seed    int64
}

// Fold is one train/test partition.
type Fold struct {
	Train []int
	Test  []int
}

// Split returns the folds for n samples. The first n%Splits folds hold one extra test sample. Every
// sample is in exactly one test set.
func (k KFold) Split(n int) ([]Fold, error) {
	if k.Splits < 2 {
		return nil, errors.Errorf("k-fold needs at least 2 splits, got %d", k.Splits)
	}
	if n < k.Splits {
		return nil, errors.Errorf("cannot split %d samples into %d folds", n, k.Splits)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if k.Shuffle {
		rng := rand.New(rand.NewSource(k.Seed))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	folds := make([]Fold, 0, k.Splits)
	start := 0
	for f := 0; f < k.Splits; f++ {
		size := n / k.Splits
		if f < n%k.Splits {
			size++
		}
		end := start + size

		test := append([]int(nil), order[start:end]...)
		train := make([]int, 0, n-size)
		train = append(train, order[:start]...)
		train = append(train, order[end:]...)
		folds = append(folds, Fold{Train: train, Test: test})
		start = end
	}
	return folds, nil
}
