package evaluate

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/walkid/classifier"
)

func TestKFoldPartition(t *testing.T) {
	for _, tc := range []struct{ n, k int }{{10, 10}, {23, 10}, {7, 3}, {100, 4}} {
		folds, err := KFold{Splits: tc.k, Shuffle: true, Seed: 3}.Split(tc.n)
		require.NoError(t, err)
		require.Len(t, folds, tc.k)

		var tested []int
		for i, f := range folds {
			want := tc.n / tc.k
			if i < tc.n%tc.k {
				want++
			}
			assert.Len(t, f.Test, want)
			assert.Len(t, f.Train, tc.n-want)
			tested = append(tested, f.Test...)

			seen := make(map[int]bool)
			for _, j := range f.Train {
				seen[j] = true
			}
			for _, j := range f.Test {
				assert.False(t, seen[j], "sample %d in both train and test", j)
			}
		}
		sort.Ints(tested)
		for i, j := range tested {
			assert.Equal(t, i, j)
		}
	}
}

func TestKFoldSeeded(t *testing.T) {
	a, err := KFold{Splits: 5, Shuffle: true, Seed: 9}.Split(50)
	require.NoError(t, err)
	b, err := KFold{Splits: 5, Shuffle: true, Seed: 9}.Split(50)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	plain, err := KFold{Splits: 5}.Split(10)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, plain[0].Test)
	assert.Equal(t, []int{8, 9}, plain[4].Test)
}

func TestKFoldTooFewSamples(t *testing.T) {
	_, err := KFold{Splits: 10}.Split(9)
	assert.Error(t, err)
	_, err = KFold{Splits: 1}.Split(9)
	assert.Error(t, err)
}

func TestConfusionMetrics(t *testing.T) {
	c := FromCounts([]int{1, 2}, [][]float64{{3, 1}, {0, 4}})
	assert.InDelta(t, 7./8, c.Accuracy(), 1e-12)
	assert.InDeltaSlice(t, []float64{3. / 4, 1}, c.Precision(), 1e-12)
	assert.InDeltaSlice(t, []float64{1, 4. / 5}, c.Recall(), 1e-12)
}

func TestConfusionZeroDivision(t *testing.T) {
	c := FromCounts([]int{1, 2}, [][]float64{{0, 0}, {2, 5}})
	assert.Equal(t, []float64{0, 5. / 7}, c.Precision())
	assert.InDeltaSlice(t, []float64{0, 1}, c.Recall(), 1e-12)

	empty := FromCounts([]int{1, 2}, [][]float64{{0, 0}, {0, 0}})
	assert.Equal(t, 0., empty.Accuracy())
	assert.Equal(t, []float64{0, 0}, empty.Precision())
	assert.Equal(t, []float64{0, 0}, empty.Recall())
}

func TestNewConfusionIgnoresOtherLabels(t *testing.T) {
	actual := []int{1, 1, 2, 2, 0, 1}
	predicted := []int{1, 2, 2, 2, 1, 0}
	c := NewConfusion([]int{1, 2}, actual, predicted)
	assert.Equal(t, [][]float64{{1, 1}, {0, 2}}, c.Rows())
	assert.Equal(t, 4., c.Total())
}

func TestConfusionRowsAreActualLabels(t *testing.T) {
	c := NewConfusion([]int{1, 2}, []int{1, 1, 1, 1}, []int{1, 1, 2, 2})
	assert.Equal(t, [][]float64{{2, 2}, {0, 0}}, c.Rows())
	assert.InDeltaSlice(t, []float64{0.5, 0}, c.Precision(), 1e-12)
	assert.InDeltaSlice(t, []float64{1, 0}, c.Recall(), 1e-12)
	assert.Equal(t, 0.5, c.Accuracy())
}

func TestMajorityBaselineAccuracy(t *testing.T) {
	var X [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, 1+i%2)
	}

	m := &classifier.Majority{}
	require.NoError(t, m.Fit(X, y))
	conf := NewConfusion([]int{1, 2}, y, classifier.PredictAll(m, X))
	assert.GreaterOrEqual(t, conf.Accuracy(), 0.5)

	cv := &CrossValidator{KFold: KFold{Splits: 4, Shuffle: true, Seed: 1}}
	report, err := cv.Run(context.Background(), "majority", func() (classifier.Classifier, error) {
		return &classifier.Majority{}, nil
	}, X, y)
	require.NoError(t, err)
	assert.Len(t, report.Folds, 4)
	assert.Equal(t, []int{1, 2}, report.Labels)

	var sum float64
	for _, f := range report.Folds {
		sum += f.Accuracy
	}
	assert.InDelta(t, sum/4, report.Mean.Accuracy, 1e-12, "mean divides by the number of folds")
}

func TestCrossValidateSeparable(t *testing.T) {
	var X [][]float64
	var y []int
	for i := 0; i < 30; i++ {
		X = append(X, []float64{float64(i % 3 * 10), float64(i)})
		y = append(y, i%3)
	}
	log, hook := test.NewNullLogger()
	// Contiguous folds of six hold two samples of every class.
	cv := &CrossValidator{KFold: KFold{Splits: 5}, Log: log}
	report, err := cv.Run(context.Background(), "tree", func() (classifier.Classifier, error) {
		return classifier.New("tree", classifier.Params{Criterion: "entropy", MaxDepth: 3})
	}, X, y)
	require.NoError(t, err)
	assert.Equal(t, 1., report.Mean.Accuracy)
	assert.Equal(t, []float64{1, 1, 1}, report.Mean.Precision)
	assert.Equal(t, []float64{1, 1, 1}, report.Mean.Recall)
	assert.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestCrossValidateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cv := &CrossValidator{KFold: KFold{Splits: 2}}
	_, err := cv.Run(ctx, "majority", func() (classifier.Classifier, error) {
		return &classifier.Majority{}, nil
	}, [][]float64{{1}, {2}, {3}}, []int{0, 1, 0})
	assert.Equal(t, context.Canceled, err)
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, []*Report{{
		Family: "forest",
		Labels: []int{0, 1},
		Folds:  make([]FoldResult, 10),
		Mean:   Metrics{Accuracy: 0.95, Precision: []float64{0.9, 1}, Recall: []float64{1, 0.9}},
	}}, func(l int) string { return []string{"alice", "bob"}[l] })

	out := buf.String()
	assert.Contains(t, out, "forest")
	assert.Contains(t, out, "0.9500")
	assert.Contains(t, out, "alice=0.900")
	assert.Contains(t, out, "bob=0.900")
}
