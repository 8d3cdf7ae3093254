package classifier

// A Node represents a splitting decision of the form "x[FeatureIndex] < Threshold ?" in a decision tree
type Node struct {
	// FeatureIndex indicates which feature is used in this splitting decision
	FeatureIndex int `json:"feature_index"`
	// Threshold indicates the cutoff value between the left and right subtrees
	Threshold float64 `json:"threshold"`
	// LeftChild is the index of the node representing the left subtree, or of its output if LeftIsLeaf
	LeftChild int `json:"left_child"`
	// LeftIsLeaf indicates whether the left subtree is a leaf node
	LeftIsLeaf bool `json:"left_is_leaf"`
	// RightChild is the index of the node representing the right subtree, or of its output if RightIsLeaf
	RightChild int `json:"right_child"`
	// RightIsLeaf indicates whether the right subtree is a leaf node
	RightIsLeaf bool `json:"right_is_leaf"`
}

// A DecisionTree maps a feature vector to the output vector of the leaf it falls into. Classification
// trees store class probabilities in their leaves, regression trees a single value.
type DecisionTree struct {
	// Nodes is a flat list of all internal nodes; the root is Nodes[0]. A tree that is a single leaf has none.
	Nodes []Node `json:"nodes"`
	// Outputs holds one vector per leaf
	Outputs [][]float64 `json:"outputs"`
	// FeatureSize is the length of feature vectors processed by this tree
	FeatureSize int `json:"feature_size"`
	// Depth is the maximum number of decisions on any root to leaf path
	Depth int `json:"depth"`
}

// Bin drops a feature vector down a decision tree and returns the index of the leaf that it ends up in
func (t *DecisionTree) Bin(x []float64) int {
	if len(x) != t.FeatureSize {
		panic("feature vector had incorrect length")
	}
	if t.Outputs == nil {
		panic("tree not initialized")
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	cur := t.Nodes[0]
	for i := 0; i < t.Depth; i++ {
		if x[cur.FeatureIndex] < cur.Threshold {
			if cur.LeftIsLeaf {
				return cur.LeftChild
			}
			cur = t.Nodes[cur.LeftChild]
		} else {
			if cur.RightIsLeaf {
				return cur.RightChild
			}
			cur = t.Nodes[cur.RightChild]
		}
	}
	panic("tree traversal did not terminate")
}

// Evaluate returns the output associated with the leaf x ends up in.
func (t *DecisionTree) Evaluate(x []float64) []float64 {
	return t.Outputs[t.Bin(x)]
}

// Leaves is the number of leaves in the tree.
func (t *DecisionTree) Leaves() int {
	return len(t.Outputs)
}
