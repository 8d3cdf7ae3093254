package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./data", cfg.Paths.Data)
	assert.Equal(t, "training_output", cfg.Paths.Outputs)
	assert.Equal(t, 20, cfg.Features.WindowSize)
	assert.Equal(t, 20, cfg.Features.StepSize)
	assert.Equal(t, 20, cfg.Features.FeatureDim)
	assert.Equal(t, 10, cfg.Evaluation.NFolds)
	assert.Equal(t, []string{"tree", "forest", "boosting"}, cfg.Evaluation.Models)
	assert.Equal(t, "entropy", cfg.Models.Tree.Criterion)
	assert.Equal(t, 3, cfg.Models.Tree.MaxDepth)
	assert.Equal(t, 100, cfg.Models.Forest.NEstimators)
	assert.Equal(t, 1.0, cfg.Models.Boosting.LearningRate)
	assert.Equal(t, "forest", cfg.Models.Final)
	assert.Empty(t, cfg.Evaluation.ConfusionLabels)
	require.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("features:\n  window_size: 32\n  step_size: 16\nevaluation:\n  n_folds: 5\n  confusion_labels: [1, 2]\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	t.Setenv("WALKID_EVALUATION_N_FOLDS", "4")

	v := viper.New()
	v.Set("paths.outputs", "from-flag")
	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Features.WindowSize, "file overrides default")
	assert.Equal(t, 16, cfg.Features.StepSize)
	assert.Equal(t, 4, cfg.Evaluation.NFolds, "env overrides file")
	assert.Equal(t, "from-flag", cfg.Paths.Outputs, "explicit value overrides everything")
	assert.Equal(t, []int{1, 2}, cfg.Evaluation.ConfusionLabels)
	assert.Equal(t, 20, cfg.Features.FeatureDim, "untouched keys keep defaults")
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("features: [unclosed"), 0o644))

	_, err := Load(viper.New(), path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Root)
	}{
		{"zero window", func(r *Root) { r.Features.WindowSize = 0 }},
		{"negative step", func(r *Root) { r.Features.StepSize = -1 }},
		{"one fold", func(r *Root) { r.Evaluation.NFolds = 1 }},
		{"few columns", func(r *Root) { r.Data.Columns = 3 }},
		{"unknown signal", func(r *Root) { r.Features.Signal = "w" }},
		{"unknown model", func(r *Root) { r.Evaluation.Models = []string{"svm"} }},
		{"unknown final", func(r *Root) { r.Models.Final = "knn" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))

	var back Root
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, cfg.Features, back.Features)
	assert.Equal(t, cfg.Models, back.Models)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.LogLvl = "debug"
	cfg.Pipeline.LogFormat = "json"

	var buf bytes.Buffer
	log, err := cfg.Logger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("speaker", "alice").Info("loaded")
	assert.Contains(t, buf.String(), `"speaker":"alice"`)

	cfg.Pipeline.LogLvl = "loud"
	_, err = cfg.Logger(&buf)
	assert.Error(t, err)
}
