package classifier

// Majority always predicts the most frequent training label, the smallest one on ties.
type Majority struct {
	Label int `json:"label"`
}

// Family implements Classifier.
func (m *Majority) Family() string { return "majority" }

// Fit implements Classifier.
func (m *Majority) Fit(X [][]float64, y []int) error {
	if _, err := checkInput(X, y); err != nil {
		return err
	}
	counts := make(map[int]int)
	for _, l := range y {
		counts[l]++
	}
	classes, _ := encodeLabels(y)
	best := classes[0]
	for _, c := range classes[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	m.Label = best
	return nil
}

// Predict implements Classifier.
func (m *Majority) Predict(x []float64) int {
	return m.Label
}
