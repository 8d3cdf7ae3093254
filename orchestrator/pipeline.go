package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/maastricht-university/walkid/classifier"
	cfg "github.com/maastricht-university/walkid/config"
	"github.com/maastricht-university/walkid/evaluate"
	"github.com/maastricht-university/walkid/features"
)

type Pipeline struct {
	cfg       *cfg.Root
	fs        afero.Fs
	log       logrus.FieldLogger
	extractor *features.Extractor

	// Out receives the evaluation summary table.
	Out io.Writer
	// Now stamps artifacts.
	Now func() time.Time
}

// Result describes a finished training run.
type Result struct {
	Dataset    *Dataset
	Reports    []*evaluate.Report
	Model      classifier.Classifier
	ModelPath  string
	ReportPath string
}

func NewPipeline(c *cfg.Root, fs afero.Fs, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		cfg:       c,
		fs:        fs,
		log:       log,
		extractor: features.NewExtractor(),
		Out:       os.Stdout,
		Now:       time.Now,
	}
}

func (p *Pipeline) check() error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if d := p.extractor.Dim(); d != p.cfg.Features.FeatureDim {
		return errors.Errorf("features.feature_dim is %d but the extractor produces %d features", p.cfg.Features.FeatureDim, d)
	}
	if p.cfg.Features.WindowSize < features.MinWindow {
		return errors.Errorf("features.window_size must be at least %d, got %d", features.MinWindow, p.cfg.Features.WindowSize)
	}
	if p.cfg.Features.StepSize > p.cfg.Features.WindowSize {
		p.log.Warnf("step_size %d exceeds window_size %d, samples between windows are skipped",
			p.cfg.Features.StepSize, p.cfg.Features.WindowSize)
	}
	return nil
}

// params maps the configured hyperparameters of a family onto classifier.Params.
func (p *Pipeline) params(family string) classifier.Params {
	m := p.cfg.Models
	params := classifier.Params{Seed: p.cfg.Evaluation.Seed}
	switch family {
	case "tree":
		params.Criterion = m.Tree.Criterion
		params.MaxDepth = m.Tree.MaxDepth
		params.MinSamplesSplit = m.Tree.MinSamplesSplit
	case "forest":
		params.NEstimators = m.Forest.NEstimators
		params.Criterion = m.Forest.Criterion
		params.MaxDepth = m.Forest.MaxDepth
		params.MaxFeatures = m.Forest.MaxFeatures
		params.Bootstrap = m.Forest.Bootstrap
		params.Workers = m.Forest.Workers
	case "boosting":
		params.NEstimators = m.Boosting.NEstimators
		params.LearningRate = m.Boosting.LearningRate
		params.MaxDepth = m.Boosting.MaxDepth
	}
	return params
}

func (p *Pipeline) factory(family string) evaluate.Factory {
	params := p.params(family)
	return func() (classifier.Classifier, error) {
		return classifier.New(family, params)
	}
}

// Load reads the corpus and builds the labelled dataset.
func (p *Pipeline) Load() (*Dataset, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	loader := &Loader{Fs: p.fs, Dir: p.cfg.Paths.Data, Cfg: p.cfg.Data, Log: p.log}
	corpus, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return p.dataset(corpus)
}

// Evaluate cross-validates every configured family on ds.
func (p *Pipeline) Evaluate(ctx context.Context, ds *Dataset) ([]*evaluate.Report, error) {
	cv := &evaluate.CrossValidator{
		KFold: evaluate.KFold{
			Splits:  p.cfg.Evaluation.NFolds,
			Shuffle: p.cfg.Evaluation.Shuffle,
			Seed:    p.cfg.Evaluation.Seed,
		},
		Labels: p.cfg.Evaluation.ConfusionLabels,
		Log:    p.log,
	}
	var reports []*evaluate.Report
	for _, family := range p.cfg.Evaluation.Models {
		p.log.Infof("---------------------- %s ----------------------", family)
		r, err := cv.Run(ctx, family, p.factory(family), ds.X, ds.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating %s", family)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Run loads the data, cross-validates every configured family, fits the final model on all windows and
// writes the model and the evaluation report to the output directory.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	ds, err := p.Load()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reports, err := p.Evaluate(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(reports) > 0 {
		evaluate.Summary(p.Out, reports, func(l int) string {
			if l >= 0 && l < len(ds.Classes) {
				return ds.Classes[l]
			}
			return ""
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := p.cfg.Models.Final
	model, err := p.factory(final)()
	if err != nil {
		return nil, err
	}
	p.log.WithField("model", final).Infof("Training final %s classifier over %d points...", final, len(ds.Y))
	if err := model.Fit(ds.X, ds.Y); err != nil {
		return nil, errors.Wrapf(err, "fitting final %s", final)
	}

	res := &Result{Dataset: ds, Reports: reports, Model: model}
	if err := p.persist(ds, reports, model, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) persist(ds *Dataset, reports []*evaluate.Report, model classifier.Classifier, res *Result) error {
	out := p.cfg.Paths.Outputs
	if err := p.fs.MkdirAll(out, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", out)
	}

	encoded, err := classifier.Marshal(model)
	if err != nil {
		return err
	}
	now := p.Now()
	artifact := &Artifact{
		Format:       ArtifactFormat,
		CreatedAt:    now,
		Classes:      ds.Classes,
		FeatureDim:   p.cfg.Features.FeatureDim,
		FeatureNames: features.Names,
		WindowSize:   p.cfg.Features.WindowSize,
		StepSize:     p.cfg.Features.StepSize,
		Signal:       p.cfg.Features.Signal,
		Family:       model.Family(),
		Windows:      len(ds.Y),
		Model:        encoded,
	}
	res.ModelPath = filepath.Join(out, p.cfg.Paths.ModelFile)
	p.log.Infof("Saving best classifier to %s...", res.ModelPath)
	size, err := WriteArtifact(p.fs, res.ModelPath, artifact)
	if err != nil {
		return err
	}
	p.log.WithField("size", humanize.Bytes(uint64(size))).Infof("Saved %s classifier", model.Family())

	res.ReportPath = filepath.Join(out, p.cfg.Paths.ReportFile)
	bundle := EvaluationBundle{
		GeneratedAt: now,
		DataDir:     p.cfg.Paths.Data,
		Classes:     ds.Classes,
		Windows:     len(ds.Y),
		NFolds:      p.cfg.Evaluation.NFolds,
		Seed:        p.cfg.Evaluation.Seed,
		Reports:     reports,
	}
	if err := writeJSON(p.fs, res.ReportPath, bundle); err != nil {
		return errors.Wrapf(err, "writing report %s", res.ReportPath)
	}
	return nil
}
