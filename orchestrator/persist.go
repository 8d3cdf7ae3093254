package orchestrator

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/maastricht-university/walkid/classifier"
	"github.com/maastricht-university/walkid/evaluate"
)

// ArtifactFormat identifies the model file layout.
const ArtifactFormat = "walkid/classifier/v1"

// Artifact is the persisted model together with what is needed to use it: the speaker name of every
// label and the windowing and feature settings it was trained with.
type Artifact struct {
	Format       string          `json:"format"`
	CreatedAt    time.Time       `json:"created_at"`
	Classes      []string        `json:"classes"`
	FeatureDim   int             `json:"feature_dim"`
	FeatureNames []string        `json:"feature_names"`
	WindowSize   int             `json:"window_size"`
	StepSize     int             `json:"step_size"`
	Signal       string          `json:"signal"`
	Family       string          `json:"family"`
	Windows      int             `json:"training_windows"`
	Model        json.RawMessage `json:"model"`
}

// Classifier decodes the model.
func (a *Artifact) Classifier() (classifier.Classifier, error) {
	return classifier.Load(bytes.NewReader(a.Model))
}

// Speaker maps a predicted label back to its name.
func (a *Artifact) Speaker(label int) string {
	if label < 0 || label >= len(a.Classes) {
		return ""
	}
	return a.Classes[label]
}

// EvaluationBundle is the cross-validation record written next to the model.
type EvaluationBundle struct {
	GeneratedAt time.Time          `json:"generated_at"`
	DataDir     string             `json:"data_dir"`
	Classes     []string           `json:"classes"`
	Windows     int                `json:"windows"`
	NFolds      int                `json:"n_folds"`
	Seed        int64              `json:"seed"`
	Reports     []*evaluate.Report `json:"reports"`
}

func writeJSON(fs afero.Fs, path string, v any) (err error) {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteArtifact stores a at path and returns the size of the written file.
func WriteArtifact(fs afero.Fs, path string, a *Artifact) (int64, error) {
	if err := writeJSON(fs, path, a); err != nil {
		return 0, errors.Wrapf(err, "writing model %s", path)
	}
	st, err := fs.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// LoadArtifact reads an artifact written by WriteArtifact and decodes its model.
func LoadArtifact(fs afero.Fs, path string) (*Artifact, classifier.Classifier, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening model %s", path)
	}
	defer f.Close()

	var a Artifact
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, nil, errors.Wrapf(err, "decoding model %s", path)
	}
	if a.Format != ArtifactFormat {
		return nil, nil, errors.Errorf("%s has format %q, expected %q", path, a.Format, ArtifactFormat)
	}
	c, err := a.Classifier()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decoding model %s", path)
	}
	return &a, c, nil
}
