package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. WALKID_FEATURES_WINDOW_SIZE.
const EnvPrefix = "WALKID"

// Known model families and signal columns.
var (
	Families = []string{"tree", "forest", "boosting", "majority"}
	Signals  = []string{"timestamp", "x", "y", "z", "magnitude"}
)

type Pipeline struct {
	Name      string `yaml:"name" mapstructure:"name"`
	Version   string `yaml:"version" mapstructure:"version"`
	LogLvl    string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`
}

type Paths struct {
	Data       string `yaml:"data" mapstructure:"data"`
	Outputs    string `yaml:"outputs" mapstructure:"outputs"`
	ModelFile  string `yaml:"model_file" mapstructure:"model_file"`
	ReportFile string `yaml:"report_file" mapstructure:"report_file"`
}

// Data describes how recordings are discovered and parsed.
type Data struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Suffix string `yaml:"suffix" mapstructure:"suffix"`
	// SpeakerField is the index of the hyphen-separated file name segment naming the speaker.
	SpeakerField int `yaml:"speaker_field" mapstructure:"speaker_field"`
	Columns      int `yaml:"columns" mapstructure:"columns"`
}

type Features struct {
	WindowSize int    `yaml:"window_size" mapstructure:"window_size"`
	StepSize   int    `yaml:"step_size" mapstructure:"step_size"`
	FeatureDim int    `yaml:"feature_dim" mapstructure:"feature_dim"`
	Signal     string `yaml:"signal" mapstructure:"signal"`
}

type Evaluation struct {
	NFolds  int   `yaml:"n_folds" mapstructure:"n_folds"`
	Shuffle bool  `yaml:"shuffle" mapstructure:"shuffle"`
	Seed    int64 `yaml:"seed" mapstructure:"seed"`
	// ConfusionLabels restricts the confusion matrix to these labels. Empty means every observed label.
	ConfusionLabels []int    `yaml:"confusion_labels" mapstructure:"confusion_labels"`
	Models          []string `yaml:"models" mapstructure:"models"`
}

type Tree struct {
	Criterion       string `yaml:"criterion" mapstructure:"criterion"`
	MaxDepth        int    `yaml:"max_depth" mapstructure:"max_depth"`
	MinSamplesSplit int    `yaml:"min_samples_split" mapstructure:"min_samples_split"`
}

type Forest struct {
	NEstimators int    `yaml:"n_estimators" mapstructure:"n_estimators"`
	Criterion   string `yaml:"criterion" mapstructure:"criterion"`
	MaxDepth    int    `yaml:"max_depth" mapstructure:"max_depth"`
	MaxFeatures string `yaml:"max_features" mapstructure:"max_features"`
	Bootstrap   bool   `yaml:"bootstrap" mapstructure:"bootstrap"`
	Workers     int    `yaml:"workers" mapstructure:"workers"`
}

type Boosting struct {
	NEstimators  int     `yaml:"n_estimators" mapstructure:"n_estimators"`
	LearningRate float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	MaxDepth     int     `yaml:"max_depth" mapstructure:"max_depth"`
}

type Models struct {
	Tree     Tree     `yaml:"tree" mapstructure:"tree"`
	Forest   Forest   `yaml:"forest" mapstructure:"forest"`
	Boosting Boosting `yaml:"boosting" mapstructure:"boosting"`
	// Final is the family fit on the whole dataset and persisted.
	Final string `yaml:"final" mapstructure:"final"`
}

type Root struct {
	Pipeline   Pipeline   `yaml:"pipeline" mapstructure:"pipeline"`
	Paths      Paths      `yaml:"paths" mapstructure:"paths"`
	Data       Data       `yaml:"data" mapstructure:"data"`
	Features   Features   `yaml:"features" mapstructure:"features"`
	Evaluation Evaluation `yaml:"evaluation" mapstructure:"evaluation"`
	Models     Models     `yaml:"models" mapstructure:"models"`
}

// SetDefaults registers every default on v. Keys that have no default cannot be overridden from the
// environment, so each field is listed here.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "walkid")
	v.SetDefault("pipeline.version", "1")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")

	v.SetDefault("paths.data", "./data")
	v.SetDefault("paths.outputs", "training_output")
	v.SetDefault("paths.model_file", "classifier.json")
	v.SetDefault("paths.report_file", "evaluation.json")

	v.SetDefault("data.prefix", "walking-data")
	v.SetDefault("data.suffix", ".csv")
	v.SetDefault("data.speaker_field", 2)
	v.SetDefault("data.columns", 5)

	v.SetDefault("features.window_size", 20)
	v.SetDefault("features.step_size", 20)
	v.SetDefault("features.feature_dim", 20)
	v.SetDefault("features.signal", "x")

	v.SetDefault("evaluation.n_folds", 10)
	v.SetDefault("evaluation.shuffle", true)
	v.SetDefault("evaluation.seed", 42)
	v.SetDefault("evaluation.confusion_labels", []int{})
	v.SetDefault("evaluation.models", []string{"tree", "forest", "boosting"})

	v.SetDefault("models.tree.criterion", "entropy")
	v.SetDefault("models.tree.max_depth", 3)
	v.SetDefault("models.tree.min_samples_split", 2)
	v.SetDefault("models.forest.n_estimators", 100)
	v.SetDefault("models.forest.criterion", "gini")
	v.SetDefault("models.forest.max_depth", 0)
	v.SetDefault("models.forest.max_features", "sqrt")
	v.SetDefault("models.forest.bootstrap", true)
	v.SetDefault("models.forest.workers", 1)
	v.SetDefault("models.boosting.n_estimators", 20)
	v.SetDefault("models.boosting.learning_rate", 1.0)
	v.SetDefault("models.boosting.max_depth", 1)
	v.SetDefault("models.final", "forest")
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Root {
	v := viper.New()
	SetDefaults(v)
	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// guess returns the first config file found on the search path, or "" when none exists.
func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	candidates := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Load resolves the configuration from defaults, the config file at path (or the search path when
// path is empty), WALKID_* environment variables and any flags already bound on v.
func Load(v *viper.Viper, path string) (*Root, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no run could succeed with.
func (r *Root) Validate() error {
	switch {
	case r.Features.WindowSize <= 0:
		return errors.Errorf("features.window_size must be positive, got %d", r.Features.WindowSize)
	case r.Features.StepSize <= 0:
		return errors.Errorf("features.step_size must be positive, got %d", r.Features.StepSize)
	case r.Features.FeatureDim <= 0:
		return errors.Errorf("features.feature_dim must be positive, got %d", r.Features.FeatureDim)
	case r.Evaluation.NFolds < 2:
		return errors.Errorf("evaluation.n_folds must be at least 2, got %d", r.Evaluation.NFolds)
	case r.Data.Columns < len(Signals):
		return errors.Errorf("data.columns must be at least %d, got %d", len(Signals), r.Data.Columns)
	case r.Data.SpeakerField < 0:
		return errors.Errorf("data.speaker_field must not be negative, got %d", r.Data.SpeakerField)
	case r.Paths.Data == "":
		return errors.New("paths.data must be set")
	case r.Paths.Outputs == "":
		return errors.New("paths.outputs must be set")
	}
	if !contains(Signals, r.Features.Signal) {
		return errors.Errorf("unknown features.signal %q (want one of %s)", r.Features.Signal, strings.Join(Signals, ", "))
	}
	for _, m := range r.Evaluation.Models {
		if !contains(Families, m) {
			return errors.Errorf("unknown model family %q in evaluation.models", m)
		}
	}
	if !contains(Families, r.Models.Final) {
		return errors.Errorf("unknown model family %q in models.final", r.Models.Final)
	}
	return nil
}

// Write emits the configuration as YAML.
func (r *Root) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
