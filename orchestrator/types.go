package orchestrator

// Sample is one accelerometer reading. The field order matches the CSV column order.
type Sample struct {
	Timestamp float64 `csv:"timestamp" json:"timestamp"`
	X         float64 `csv:"gFx" json:"x"`
	Y         float64 `csv:"gFy" json:"y"`
	Z         float64 `csv:"gFz" json:"z"`
	Magnitude float64 `csv:"TgF" json:"magnitude"`
	// Label is the speaker label of the recording the sample came from.
	Label int `csv:"-" json:"label"`
}

// Value returns the named column.
func (s Sample) Value(column string) float64 {
	switch column {
	case "timestamp":
		return s.Timestamp
	case "x":
		return s.X
	case "y":
		return s.Y
	case "z":
		return s.Z
	case "magnitude":
		return s.Magnitude
	}
	panic("unknown signal column " + column)
}

// Recording holds the samples of one data file.
type Recording struct {
	Path    string
	Speaker string
	Label   int
	Samples []Sample
}

// Corpus is everything the loader found.
type Corpus struct {
	// Classes maps labels to speaker names; label i is Classes[i].
	Classes    []string
	Recordings []Recording
}

// Samples is the number of samples over all recordings.
func (c *Corpus) Samples() int {
	var n int
	for _, r := range c.Recordings {
		n += len(r.Samples)
	}
	return n
}

// Window is a run of consecutive samples of one recording, labelled by its last sample.
type Window struct {
	Index   int
	Samples []Sample
	Label   int
}

// Signal extracts one column of the window.
func (w Window) Signal(column string) []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = s.Value(column)
	}
	return out
}

// Dataset is the labelled feature matrix. X and Y are row aligned.
type Dataset struct {
	X       [][]float64
	Y       []int
	Classes []string
}

// Counts returns how many rows carry each label.
func (d *Dataset) Counts() map[int]int {
	out := make(map[int]int)
	for _, l := range d.Y {
		out[l]++
	}
	return out
}
