package evaluate

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/walkid/classifier"
)

// Metrics summarizes one confusion matrix, or the mean of several.
type Metrics struct {
	Accuracy  float64   `json:"accuracy"`
	Precision []float64 `json:"precision"`
	Recall    []float64 `json:"recall"`
}

// FoldResult is the outcome of evaluating one fold.
type FoldResult struct {
	Fold      int         `json:"fold"`
	Train     int         `json:"train_size"`
	Test      int         `json:"test_size"`
	Confusion [][]float64 `json:"confusion"`
	Metrics
}

// Report collects every fold of one model family and their mean.
type Report struct {
	Family string       `json:"family"`
	Labels []int        `json:"labels"`
	Folds  []FoldResult `json:"folds"`
	Mean   Metrics      `json:"mean"`
}

// Factory returns a fresh, unfitted classifier.
type Factory func() (classifier.Classifier, error)

// CrossValidator evaluates classifiers fold by fold.
type CrossValidator struct {
	KFold KFold
	// Labels fixes the confusion matrix label set; when empty the labels observed in y are used.
	Labels []int
	Log    logrus.FieldLogger
}

// Run fits and scores a new classifier from factory on every fold of X, y. Folds run sequentially; ctx
// is checked between them.
func (cv *CrossValidator) Run(ctx context.Context, family string, factory Factory, X [][]float64, y []int) (*Report, error) {
	if len(X) != len(y) {
		return nil, errors.Errorf("%d feature vectors but %d labels", len(X), len(y))
	}
	labels := cv.Labels
	if len(labels) == 0 {
		labels = ObservedLabels(y)
	}
	if len(labels) == 0 {
		return nil, errors.New("no labels to evaluate")
	}
	folds, err := cv.KFold.Split(len(X))
	if err != nil {
		return nil, err
	}
	log := cv.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	report := &Report{Family: family, Labels: labels}
	mean := Metrics{
		Precision: make([]float64, len(labels)),
		Recall:    make([]float64, len(labels)),
	}
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		flog := log.WithFields(logrus.Fields{"model": family, "fold": i})

		xTrain, yTrain := subset(X, y, fold.Train)
		xTest, yTest := subset(X, y, fold.Test)

		c, err := factory()
		if err != nil {
			return nil, err
		}
		flog.Infof("Training %s classifier over %d points...", family, len(yTrain))
		if err := c.Fit(xTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "fitting %s on fold %d", family, i)
		}

		flog.Infof("Evaluating classifier over %d points...", len(yTest))
		pred := classifier.PredictAll(c, xTest)
		flog.Debugf("predicted %v", pred)
		flog.Debugf("actual    %v", yTest)

		conf := NewConfusion(labels, yTest, pred)
		res := FoldResult{
			Fold:      i,
			Train:     len(yTrain),
			Test:      len(yTest),
			Confusion: conf.Rows(),
			Metrics: Metrics{
				Accuracy:  conf.Accuracy(),
				Precision: conf.Precision(),
				Recall:    conf.Recall(),
			},
		}
		flog.WithField("accuracy", res.Accuracy).Debug("fold scored")
		report.Folds = append(report.Folds, res)

		mean.Accuracy += res.Accuracy
		for k := range labels {
			mean.Precision[k] += res.Precision[k]
			mean.Recall[k] += res.Recall[k]
		}
	}

	n := float64(len(report.Folds))
	mean.Accuracy /= n
	for k := range labels {
		mean.Precision[k] /= n
		mean.Recall[k] /= n
	}
	report.Mean = mean

	log.WithField("model", family).Infof("The average accuracy is %.4f", mean.Accuracy)
	log.WithField("model", family).Infof("The average precision is %v", round(mean.Precision))
	log.WithField("model", family).Infof("The average recall is %v", round(mean.Recall))
	return report, nil
}

func subset(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for k, i := range idx {
		xs[k] = X[i]
		ys[k] = y[i]
	}
	return xs, ys
}
