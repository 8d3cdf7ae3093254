// Package features turns one window of a walking signal into a fixed-length feature vector.
package features

import (
	"math"
	"math/cmplx"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Names lists the extracted features in output order.
var Names = []string{
	"mean",
	"std",
	"variance",
	"min",
	"max",
	"range",
	"median",
	"p25",
	"p75",
	"iqr",
	"mad",
	"skewness",
	"kurtosis",
	"rms",
	"energy",
	"mean_crossing_rate",
	"peak_count",
	"autocorr_lag1",
	"dominant_frequency",
	"spectral_entropy",
}

// Dim is the length of every vector returned by Extract.
var Dim = len(Names)

// MinWindow is the shortest window with well defined quartiles.
const MinWindow = 4

// ErrShortWindow is returned for a window with fewer than MinWindow samples.
var ErrShortWindow = errors.Errorf("window needs at least %d samples", MinWindow)

// Extractor computes time and frequency domain summaries of a window. It holds no state between calls.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Dim satisfies callers that check the vector length up front.
func (e *Extractor) Dim() int {
	return Dim
}

// Extract maps window to a vector of length Dim.
func (e *Extractor) Extract(window []float64) ([]float64, error) {
	if len(window) < MinWindow {
		return nil, ErrShortWindow
	}
	for i, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("window sample %d is not finite", i)
		}
	}
	data := stats.Float64Data(window)

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, errors.Wrap(err, "mean")
	}
	std, err := stats.StdDevP(data)
	if err != nil {
		return nil, errors.Wrap(err, "std")
	}
	variance, err := stats.PopulationVariance(data)
	if err != nil {
		return nil, errors.Wrap(err, "variance")
	}
	lo, err := stats.Min(data)
	if err != nil {
		return nil, errors.Wrap(err, "min")
	}
	hi, err := stats.Max(data)
	if err != nil {
		return nil, errors.Wrap(err, "max")
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, errors.Wrap(err, "median")
	}
	p25, err := stats.Percentile(data, 25)
	if err != nil {
		return nil, errors.Wrap(err, "p25")
	}
	p75, err := stats.Percentile(data, 75)
	if err != nil {
		return nil, errors.Wrap(err, "p75")
	}
	mad, err := stats.MedianAbsoluteDeviationPopulation(data)
	if err != nil {
		return nil, errors.Wrap(err, "mad")
	}

	skew, kurt := moments(window, mean, std)
	energy := 0.
	for _, v := range window {
		energy += v * v
	}
	rms := math.Sqrt(energy / float64(len(window)))
	dominant, entropy := spectrum(window, mean)

	return []float64{
		mean,
		std,
		variance,
		lo,
		hi,
		hi - lo,
		median,
		p25,
		p75,
		p75 - p25,
		mad,
		skew,
		kurt,
		rms,
		energy,
		crossingRate(window, mean),
		float64(peaks(window)),
		autocorr(window, mean, variance),
		dominant,
		entropy,
	}, nil
}

// moments returns the population skewness and excess kurtosis; both are 0 for a constant window.
func moments(x []float64, mean, std float64) (float64, float64) {
	if std == 0 {
		return 0, 0
	}
	var m3, m4 float64
	for _, v := range x {
		d := (v - mean) / std
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(x))
	return m3 / n, m4/n - 3
}

// crossingRate is the fraction of consecutive sample pairs on opposite sides of the mean.
func crossingRate(x []float64, mean float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var n int
	for i := 1; i < len(x); i++ {
		if (x[i-1]-mean)*(x[i]-mean) < 0 {
			n++
		}
	}
	return float64(n) / float64(len(x)-1)
}

// peaks counts strict local maxima.
func peaks(x []float64) int {
	var n int
	for i := 1; i+1 < len(x); i++ {
		if x[i] > x[i-1] && x[i] > x[i+1] {
			n++
		}
	}
	return n
}

func autocorr(x []float64, mean, variance float64) float64 {
	if len(x) < 2 || variance == 0 {
		return 0
	}
	var s float64
	for i := 1; i < len(x); i++ {
		s += (x[i] - mean) * (x[i-1] - mean)
	}
	return s / (float64(len(x)) * variance)
}

// spectrum returns the dominant non-DC frequency bin as a fraction of the Nyquist bin and the
// normalised Shannon entropy of the power spectrum. A flat signal has neither, so both are 0.
func spectrum(x []float64, mean float64) (float64, float64) {
	if len(x) < 2 {
		return 0, 0
	}
	centred := make([]float64, len(x))
	for i, v := range x {
		centred[i] = v - mean
	}
	coeffs := fourier.NewFFT(len(centred)).Coefficients(nil, centred)

	power := make([]float64, 0, len(coeffs)-1)
	var total float64
	best, bestPower := 0, 0.
	for k := 1; k < len(coeffs); k++ {
		p := cmplx.Abs(coeffs[k])
		p *= p
		power = append(power, p)
		total += p
		if p > bestPower {
			best, bestPower = k, p
		}
	}
	if total == 0 {
		return 0, 0
	}

	var entropy float64
	for _, p := range power {
		if p > 0 {
			q := p / total
			entropy -= q * math.Log(q)
		}
	}
	if len(power) > 1 {
		entropy /= math.Log(float64(len(power)))
	}
	return float64(best) / float64(len(coeffs)-1), entropy
}
