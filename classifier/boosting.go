package classifier

import (
	"math"

	"github.com/pkg/errors"
)

// Boosting is a gradient boosted ensemble of regression trees minimizing log-loss. Two classes use one
// tree per stage on the log-odds; more classes use one tree per class per stage on softmax scores.
type Boosting struct {
	NEstimators  int     `json:"n_estimators"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`

	Classes []int `json:"classes"`
	// Init holds the initial raw score per output (one for two classes, one per class otherwise).
	Init []float64 `json:"init"`
	// Stages holds, per boosting stage, one regression tree per output.
	Stages [][]DecisionTree `json:"stages"`
}

// Family implements Classifier.
func (b *Boosting) Family() string { return "boosting" }

// denominators below this make a Newton step meaningless; the leaf then outputs 0.
const tinyDenominator = 1e-150

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(z []float64) []float64 {
	m := z[0]
	for _, v := range z[1:] {
		m = math.Max(m, v)
	}
	p := make([]float64, len(z))
	var sum float64
	for k, v := range z {
		p[k] = math.Exp(v - m)
		sum += p[k]
	}
	for k := range p {
		p[k] /= sum
	}
	return p
}

// Fit implements Classifier.
func (b *Boosting) Fit(X [][]float64, y []int) error {
	if _, err := checkInput(X, y); err != nil {
		return err
	}
	if b.NEstimators < 1 {
		return errors.Errorf("boosting needs at least one stage, got n_estimators=%d", b.NEstimators)
	}
	if b.LearningRate <= 0 {
		return errors.Errorf("learning_rate must be positive, got %v", b.LearningRate)
	}
	classes, yIdx := encodeLabels(y)
	b.Classes = classes
	b.Stages = nil

	switch len(classes) {
	case 1:
		b.Init = []float64{0}
		return nil
	case 2:
		b.fitBinary(X, yIdx)
	default:
		b.fitMultinomial(X, yIdx, len(classes))
	}
	return nil
}

func (b *Boosting) regressor(X [][]float64, target []float64, leaf func(idx []int) []float64) *DecisionTree {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	g := growth{
		x:        X,
		maxDepth: b.MaxDepth,
		split:    regressionSplit(X, target),
		leaf:     leaf,
	}
	return g.run(idx)
}

func (b *Boosting) fitBinary(X [][]float64, y []int) {
	n := float64(len(y))
	var pos float64
	for _, c := range y {
		pos += float64(c)
	}
	p := pos / n
	b.Init = []float64{math.Log(p / (1 - p))}

	raw := make([]float64, len(y))
	for i := range raw {
		raw[i] = b.Init[0]
	}
	residual := make([]float64, len(y))
	for s := 0; s < b.NEstimators; s++ {
		for i := range residual {
			residual[i] = float64(y[i]) - sigmoid(raw[i])
		}
		tree := b.regressor(X, residual, func(idx []int) []float64 {
			var num, den float64
			for _, i := range idx {
				r := residual[i]
				num += r
				den += (float64(y[i]) - r) * (1 - float64(y[i]) + r)
			}
			if math.Abs(den) < tinyDenominator {
				return []float64{0}
			}
			return []float64{num / den}
		})
		for i, x := range X {
			raw[i] += b.LearningRate * tree.Evaluate(x)[0]
		}
		b.Stages = append(b.Stages, []DecisionTree{*tree})
	}
}

func (b *Boosting) fitMultinomial(X [][]float64, y []int, k int) {
	n := float64(len(y))
	b.Init = make([]float64, k)
	for _, c := range y {
		b.Init[c]++
	}
	for c := range b.Init {
		b.Init[c] = math.Log(b.Init[c] / n)
	}

	raw := make([][]float64, len(y))
	for i := range raw {
		raw[i] = append([]float64(nil), b.Init...)
	}
	factor := float64(k-1) / float64(k)
	residual := make([]float64, len(y))
	for s := 0; s < b.NEstimators; s++ {
		probs := make([][]float64, len(y))
		for i := range raw {
			probs[i] = softmax(raw[i])
		}
		stage := make([]DecisionTree, k)
		for c := 0; c < k; c++ {
			for i := range residual {
				target := 0.
				if y[i] == c {
					target = 1
				}
				residual[i] = target - probs[i][c]
			}
			tree := b.regressor(X, residual, func(idx []int) []float64 {
				var num, den float64
				for _, i := range idx {
					r := residual[i]
					num += r
					den += math.Abs(r) * (1 - math.Abs(r))
				}
				if math.Abs(den) < tinyDenominator {
					return []float64{0}
				}
				return []float64{factor * num / den}
			})
			for i, x := range X {
				raw[i][c] += b.LearningRate * tree.Evaluate(x)[0]
			}
			stage[c] = *tree
		}
		b.Stages = append(b.Stages, stage)
	}
}

// Decision returns the raw scores for x: log-odds of the second class for two classes, unnormalized
// class scores otherwise.
func (b *Boosting) Decision(x []float64) []float64 {
	raw := append([]float64(nil), b.Init...)
	for _, stage := range b.Stages {
		for c := range stage {
			raw[c] += b.LearningRate * stage[c].Evaluate(x)[0]
		}
	}
	return raw
}

// Predict implements Classifier.
func (b *Boosting) Predict(x []float64) int {
	if len(b.Classes) == 1 {
		return b.Classes[0]
	}
	raw := b.Decision(x)
	if len(b.Classes) == 2 {
		if raw[0] > 0 {
			return b.Classes[1]
		}
		return b.Classes[0]
	}
	return b.Classes[argmax(raw)]
}
