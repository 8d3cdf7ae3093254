package orchestrator

import (
	"github.com/pkg/errors"
)

// WindowCount is the number of complete windows of size over n samples advanced by step.
func WindowCount(n, size, step int) int {
	if size <= 0 || step <= 0 || n < size {
		return 0
	}
	return (n-size)/step + 1
}

// Windows cuts samples into windows of size samples starting every step samples. A trailing run shorter
// than size is dropped. Windows share the backing array of samples.
func Windows(samples []Sample, size, step int) []Window {
	n := WindowCount(len(samples), size, step)
	out := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		start := i * step
		w := samples[start : start+size : start+size]
		out = append(out, Window{Index: i, Samples: w, Label: w[len(w)-1].Label})
	}
	return out
}

// toVector extracts the feature vector of one window and checks its length.
func (p *Pipeline) toVector(w Window) ([]float64, error) {
	x, err := p.extractor.Extract(w.Signal(p.cfg.Features.Signal))
	if err != nil {
		return nil, err
	}
	if len(x) != p.cfg.Features.FeatureDim {
		return nil, errors.Errorf("received feature vector of length %d, expected %d", len(x), p.cfg.Features.FeatureDim)
	}
	return x, nil
}

// dataset windows every recording separately and extracts one labelled feature vector per window.
func (p *Pipeline) dataset(corpus *Corpus) (*Dataset, error) {
	size, step := p.cfg.Features.WindowSize, p.cfg.Features.StepSize

	total := 0
	for _, r := range corpus.Recordings {
		total += WindowCount(len(r.Samples), size, step)
	}
	ds := &Dataset{
		X:       make([][]float64, 0, total),
		Y:       make([]int, 0, total),
		Classes: corpus.Classes,
	}
	for _, r := range corpus.Recordings {
		for _, w := range Windows(r.Samples, size, step) {
			x, err := p.toVector(w)
			if err != nil {
				return nil, errors.Wrapf(err, "%s window %d", r.Path, w.Index)
			}
			ds.X = append(ds.X, x)
			ds.Y = append(ds.Y, w.Label)
		}
	}
	if len(ds.X) == 0 {
		return nil, errors.Errorf("no complete windows of %d samples in %d recordings", size, len(corpus.Recordings))
	}
	p.log.Infof("Finished feature extraction over %d windows", len(ds.X))
	p.log.Infof("Unique labels found: %v", ds.Counts())
	return ds, nil
}
