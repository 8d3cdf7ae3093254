package evaluate

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Confusion is a confusion matrix over a fixed label set. Row i counts samples whose true label is
// Labels[i], column j counts predictions of Labels[j]. Pairs involving labels outside the set are
// ignored.
type Confusion struct {
	Labels []int
	Counts *mat.Dense
}

// NewConfusion tallies predicted against actual over labels.
func NewConfusion(labels, actual, predicted []int) *Confusion {
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	c := &Confusion{
		Labels: append([]int(nil), labels...),
		Counts: mat.NewDense(len(labels), len(labels), nil),
	}
	for i := range actual {
		a, okA := pos[actual[i]]
		p, okP := pos[predicted[i]]
		if !okA || !okP {
			continue
		}
		c.Counts.Set(a, p, c.Counts.At(a, p)+1)
	}
	return c
}

// FromCounts wraps an existing square matrix of counts.
func FromCounts(labels []int, rows [][]float64) *Confusion {
	n := len(labels)
	data := make([]float64, 0, n*n)
	for _, r := range rows {
		data = append(data, r...)
	}
	return &Confusion{Labels: labels, Counts: mat.NewDense(n, n, data)}
}

// Total is the number of counted pairs.
func (c *Confusion) Total() float64 {
	return mat.Sum(c.Counts)
}

// Accuracy is the trace over the total, 0 for an empty matrix.
func (c *Confusion) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return mat.Trace(c.Counts) / total
}

// Precision is the diagonal over the row sums, with 0 for rows that sum to 0.
func (c *Confusion) Precision() []float64 {
	n := len(c.Labels)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if s := mat.Sum(c.Counts.RowView(i)); s > 0 {
			out[i] = c.Counts.At(i, i) / s
		}
	}
	return out
}

// Recall is the diagonal over the column sums, with 0 for columns that sum to 0.
func (c *Confusion) Recall() []float64 {
	n := len(c.Labels)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		if s := mat.Sum(c.Counts.ColView(j)); s > 0 {
			out[j] = c.Counts.At(j, j) / s
		}
	}
	return out
}

// Rows returns the counts as nested slices, for reports.
func (c *Confusion) Rows() [][]float64 {
	n := len(c.Labels)
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, c.Counts)
	}
	return out
}

// ObservedLabels returns the distinct labels of y in ascending order.
func ObservedLabels(y []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range y {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out
}
