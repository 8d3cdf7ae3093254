package orchestrator

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/maastricht-university/walkid/classifier"
	cfg "github.com/maastricht-university/walkid/config"
	"github.com/maastricht-university/walkid/features"
)

// FilePrediction holds the offline classification of one recording.
type FilePrediction struct {
	Path string `json:"path"`
	// Windows holds the predicted speaker of every window, in order.
	Windows []string `json:"windows"`
	// Votes counts windows per predicted speaker.
	Votes map[string]int `json:"votes"`
	// Speaker is the most voted speaker, the alphabetically first one on ties.
	Speaker string `json:"speaker"`
}

// Predictor classifies recordings with a persisted model, windowing them the way the model was trained.
type Predictor struct {
	Artifact   *Artifact
	Classifier classifier.Classifier
	Loader     *Loader
}

// NewPredictor loads the model at path.
func NewPredictor(fs afero.Fs, path string, data cfg.Data, log logrus.FieldLogger) (*Predictor, error) {
	a, c, err := LoadArtifact(fs, path)
	if err != nil {
		return nil, err
	}
	if a.FeatureDim != features.Dim {
		return nil, errors.Errorf("model expects %d features, extractor produces %d", a.FeatureDim, features.Dim)
	}
	return &Predictor{
		Artifact:   a,
		Classifier: c,
		Loader:     &Loader{Fs: fs, Cfg: data, Log: log},
	}, nil
}

// PredictFile classifies every complete window of the recording at path.
func (p *Predictor) PredictFile(path string) (*FilePrediction, error) {
	samples, err := p.Loader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	windows := Windows(samples, p.Artifact.WindowSize, p.Artifact.StepSize)
	if len(windows) == 0 {
		return nil, errors.Errorf("%s has %d samples, fewer than one window of %d", path, len(samples), p.Artifact.WindowSize)
	}

	ex := features.NewExtractor()
	out := &FilePrediction{Path: path, Votes: make(map[string]int)}
	for _, w := range windows {
		x, err := ex.Extract(w.Signal(p.Artifact.Signal))
		if err != nil {
			return nil, errors.Wrapf(err, "%s window %d", path, w.Index)
		}
		speaker := p.Artifact.Speaker(p.Classifier.Predict(x))
		out.Windows = append(out.Windows, speaker)
		out.Votes[speaker]++
	}

	out.Speaker = winner(out.Votes)
	return out, nil
}

// winner returns the most voted name, the alphabetically first one on ties.
func winner(votes map[string]int) string {
	names := make([]string, 0, len(votes))
	for n := range votes {
		names = append(names, n)
	}
	sort.Strings(names)
	best := -1
	for i, n := range names {
		if best < 0 || votes[n] > votes[names[best]] {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return names[best]
}
