package classifier

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// minGain is the smallest impurity decrease that justifies a split.
const minGain = 1e-12

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// growth grows one DecisionTree depth first. split and leaf define what kind of tree it is.
type growth struct {
	x           [][]float64
	maxDepth    int // 0 means unlimited
	minSplit    int
	maxFeatures int // 0 means all features at every node
	rng         *rand.Rand

	split func(idx, features []int) (split, bool)
	leaf  func(idx []int) []float64

	tree *DecisionTree
}

func (g *growth) run(idx []int) *DecisionTree {
	g.tree = &DecisionTree{FeatureSize: len(g.x[0])}
	if g.minSplit < 2 {
		g.minSplit = 2
	}
	g.grow(idx, 0)
	return g.tree
}

// grow adds the subtree for idx and returns its position and whether it is a leaf.
func (g *growth) grow(idx []int, depth int) (int, bool) {
	if (g.maxDepth > 0 && depth >= g.maxDepth) || len(idx) < g.minSplit {
		return g.addLeaf(idx)
	}
	s, ok := g.split(idx, g.candidates())
	if !ok {
		return g.addLeaf(idx)
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if g.x[i][s.feature] < s.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	pos := len(g.tree.Nodes)
	g.tree.Nodes = append(g.tree.Nodes, Node{FeatureIndex: s.feature, Threshold: s.threshold})
	if depth+1 > g.tree.Depth {
		g.tree.Depth = depth + 1
	}
	l, lLeaf := g.grow(left, depth+1)
	r, rLeaf := g.grow(right, depth+1)

	n := &g.tree.Nodes[pos]
	n.LeftChild, n.LeftIsLeaf = l, lLeaf
	n.RightChild, n.RightIsLeaf = r, rLeaf
	return pos, false
}

func (g *growth) addLeaf(idx []int) (int, bool) {
	g.tree.Outputs = append(g.tree.Outputs, g.leaf(idx))
	return len(g.tree.Outputs) - 1, true
}

// candidates returns the features a node may split on.
func (g *growth) candidates() []int {
	dim := len(g.x[0])
	if g.maxFeatures <= 0 || g.maxFeatures >= dim || g.rng == nil {
		all := make([]int, dim)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return g.rng.Perm(dim)[:g.maxFeatures]
}

// sortedBy returns a copy of idx ordered by feature f.
func sortedBy(x [][]float64, idx []int, f int) []int {
	s := make([]int, len(idx))
	copy(s, idx)
	sort.SliceStable(s, func(a, b int) bool { return x[s[a]][f] < x[s[b]][f] })
	return s
}

// midpoint returns a threshold t with a < t <= b.
func midpoint(a, b float64) float64 {
	t := a + (b-a)/2
	if !(t > a) {
		return b
	}
	return t
}

type impurity func(counts []float64, total float64) float64

func entropy(counts []float64, total float64) float64 {
	var h float64
	for _, c := range counts {
		if c > 0 {
			p := c / total
			h -= p * math.Log2(p)
		}
	}
	return h
}

func gini(counts []float64, total float64) float64 {
	g := 1.
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}

func criterion(name string) (impurity, error) {
	switch name {
	case "", "gini":
		return gini, nil
	case "entropy":
		return entropy, nil
	default:
		return nil, errors.Errorf("unknown split criterion %q", name)
	}
}

// classSplit finds the split of idx over features that most reduces imp, with y holding class indices.
func classSplit(x [][]float64, y []int, nClasses int, imp impurity) func(idx, features []int) (split, bool) {
	return func(idx, features []int) (split, bool) {
		n := float64(len(idx))
		total := make([]float64, nClasses)
		for _, i := range idx {
			total[y[i]]++
		}
		parent := imp(total, n)
		if parent <= 0 {
			return split{}, false
		}

		best := split{gain: minGain}
		found := false
		left := make([]float64, nClasses)
		right := make([]float64, nClasses)
		for _, f := range features {
			order := sortedBy(x, idx, f)
			for c := range left {
				left[c] = 0
				right[c] = total[c]
			}
			for k := 0; k+1 < len(order); k++ {
				cls := y[order[k]]
				left[cls]++
				right[cls]--
				a, b := x[order[k]][f], x[order[k+1]][f]
				if a == b {
					continue
				}
				nl := float64(k + 1)
				nr := n - nl
				gain := parent - nl/n*imp(left, nl) - nr/n*imp(right, nr)
				if gain > best.gain {
					best = split{feature: f, threshold: midpoint(a, b), gain: gain}
					found = true
				}
			}
		}
		return best, found
	}
}

// regressionSplit finds the split of idx over features that most reduces the squared error of target.
func regressionSplit(x [][]float64, target []float64) func(idx, features []int) (split, bool) {
	return func(idx, features []int) (split, bool) {
		var sum, sumSq float64
		for _, i := range idx {
			sum += target[i]
			sumSq += target[i] * target[i]
		}
		n := float64(len(idx))
		parent := sumSq - sum*sum/n

		best := split{gain: minGain}
		found := false
		for _, f := range features {
			order := sortedBy(x, idx, f)
			var ls, lsq float64
			for k := 0; k+1 < len(order); k++ {
				v := target[order[k]]
				ls += v
				lsq += v * v
				a, b := x[order[k]][f], x[order[k+1]][f]
				if a == b {
					continue
				}
				nl := float64(k + 1)
				nr := n - nl
				rs, rsq := sum-ls, sumSq-lsq
				sse := (lsq - ls*ls/nl) + (rsq - rs*rs/nr)
				if gain := parent - sse; gain > best.gain {
					best = split{feature: f, threshold: midpoint(a, b), gain: gain}
					found = true
				}
			}
		}
		return best, found
	}
}

// classLeaf returns the class distribution of idx.
func classLeaf(y []int, nClasses int) func(idx []int) []float64 {
	return func(idx []int) []float64 {
		p := make([]float64, nClasses)
		for _, i := range idx {
			p[y[i]]++
		}
		for c := range p {
			p[c] /= float64(len(idx))
		}
		return p
	}
}
