package classifier

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns n points per label, centred at 10*label on every feature with unit noise.
func blobs(seed int64, labels []int, n, dim int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	var X [][]float64
	var y []int
	for _, l := range labels {
		for i := 0; i < n; i++ {
			x := make([]float64, dim)
			for j := range x {
				x[j] = 10*float64(l) + rng.NormFloat64()
			}
			X = append(X, x)
			y = append(y, l)
		}
	}
	return X, y
}

func accuracy(c Classifier, X [][]float64, y []int) float64 {
	var hit int
	for i, p := range PredictAll(c, X) {
		if p == y[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(y))
}

func families(t *testing.T) []Classifier {
	var out []Classifier
	for _, tc := range []struct {
		family string
		params Params
	}{
		{"tree", Params{Criterion: "entropy", MaxDepth: 3, MinSamplesSplit: 2}},
		{"forest", Params{NEstimators: 25, Criterion: "gini", MaxFeatures: "sqrt", Bootstrap: true, Workers: 4, Seed: 7}},
		{"boosting", Params{NEstimators: 20, LearningRate: 1.0, MaxDepth: 1}},
	} {
		c, err := New(tc.family, tc.params)
		require.NoError(t, err)
		assert.Equal(t, tc.family, c.Family())
		out = append(out, c)
	}
	return out
}

func TestSeparableTwoClasses(t *testing.T) {
	X, y := blobs(1, []int{1, 2}, 30, 4)
	test, want := blobs(2, []int{1, 2}, 10, 4)
	for _, c := range families(t) {
		require.NoError(t, c.Fit(X, y), c.Family())
		assert.Equal(t, 1., accuracy(c, test, want), c.Family())
	}
}

func TestSeparableThreeClasses(t *testing.T) {
	X, y := blobs(3, []int{0, 1, 2}, 30, 3)
	test, want := blobs(4, []int{0, 1, 2}, 10, 3)
	for _, c := range families(t) {
		require.NoError(t, c.Fit(X, y), c.Family())
		assert.Equal(t, 1., accuracy(c, test, want), c.Family())
	}
}

func TestSingleClass(t *testing.T) {
	X, y := blobs(5, []int{3}, 10, 2)
	for _, c := range families(t) {
		require.NoError(t, c.Fit(X, y), c.Family())
		assert.Equal(t, 3, c.Predict(X[0]), c.Family())
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	for _, c := range families(t) {
		assert.Equal(t, ErrEmpty, c.Fit(nil, nil), c.Family())
		assert.Error(t, c.Fit([][]float64{{1}, {2}}, []int{0}), c.Family())
		assert.Error(t, c.Fit([][]float64{{1, 2}, {2}}, []int{0, 1}), c.Family())
	}
	_, err := New("svm", Params{})
	assert.Error(t, err)
}

func TestForestIndependentOfWorkers(t *testing.T) {
	X, y := blobs(6, []int{0, 1}, 20, 5)
	one := &Forest{NEstimators: 15, MaxFeatures: "sqrt", Bootstrap: true, Workers: 1, Seed: 11}
	many := &Forest{NEstimators: 15, MaxFeatures: "sqrt", Bootstrap: true, Workers: 8, Seed: 11}
	require.NoError(t, one.Fit(X, y))
	require.NoError(t, many.Fit(X, y))
	assert.Equal(t, one.Trees, many.Trees)
}

func TestMajorityBaseline(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []int{1, 2, 2, 1, 2, 1}

	m := &Majority{}
	require.NoError(t, m.Fit(X, y))
	assert.Equal(t, 1, m.Label, "ties go to the smallest label")
	assert.GreaterOrEqual(t, accuracy(m, X, y), 0.5)

	require.NoError(t, m.Fit(X[:3], y[:3]))
	assert.Equal(t, 2, m.Label)
}

func TestRoundTrip(t *testing.T) {
	X, y := blobs(8, []int{0, 1, 2}, 15, 4)
	held, _ := blobs(9, []int{0, 1, 2}, 5, 4)
	all := append(families(t), &Majority{})
	for _, c := range all {
		require.NoError(t, c.Fit(X, y), c.Family())

		data, err := Marshal(c)
		require.NoError(t, err, c.Family())
		back, err := Load(bytes.NewReader(data))
		require.NoError(t, err, c.Family())

		assert.Equal(t, c.Family(), back.Family())
		assert.Equal(t, PredictAll(c, held), PredictAll(back, held), c.Family())
	}
}

func TestMarshalUnfitted(t *testing.T) {
	_, err := Marshal(&Forest{NEstimators: 3})
	assert.Equal(t, ErrNotFitted, err)

	_, err = Unmarshal([]byte(`{"family":"tree","model":{}}`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{"family":"knn","model":{}}`))
	assert.Error(t, err)
}
