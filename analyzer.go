// Package warming analyzes a yearly greenhouse gas and temperature anomaly dataset: scenario
// regressions over shifted gas concentrations, summary statistics, and anomaly forecasts.
package warming

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/aouyang1/go-warming/arima"
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/export"
	"github.com/aouyang1/go-warming/forecast"
	"github.com/aouyang1/go-warming/scenario"
	"github.com/aouyang1/go-warming/stats"
	"github.com/aouyang1/go-warming/timedataset"
)

var (
	ErrUnknownModel         = errors.New("unknown forecast model")
	ErrInsufficientResidual = errors.New("insufficient samples remaining after outlier removal")
)

// ModelKind names a forecasting model
type ModelKind string

const (
	ModelARIMA    ModelKind = "arima"
	ModelAdditive ModelKind = "additive"
)

// ModelKinds lists the supported forecasting models
var ModelKinds = []ModelKind{ModelARIMA, ModelAdditive}

// ParseModelKind resolves a model by name, ignoring case
func ParseModelKind(s string) (ModelKind, error) {
	k := ModelKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ModelKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%q, %w", s, ErrUnknownModel)
}

// Analyzer holds an immutable baseline observation table. Every method works on copies so an
// Analyzer can be shared across goroutines.
type Analyzer struct {
	opt *Options

	baseline *dataset.Frame
	years    []int
	anomaly  []float64
}

// NewAnalyzer validates the baseline and stores a private copy of it
func NewAnalyzer(baseline *dataset.Frame, opt *Options) (*Analyzer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if err := dataset.ValidateObservations(baseline); err != nil {
		return nil, err
	}

	b := baseline.Copy()
	years, err := dataset.Years(b)
	if err != nil {
		return nil, err
	}
	anomaly, err := b.Floats(dataset.ColAnomaly)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		opt:      opt,
		baseline: b,
		years:    years,
		anomaly:  anomaly,
	}, nil
}

// LoadAnalyzer reads the baseline from a csv file
func LoadAnalyzer(path string, opt *Options) (*Analyzer, error) {
	f, err := dataset.LoadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := NewAnalyzer(f, opt)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset %s, %w", path, err)
	}
	return a, nil
}

// Options returns a copy of the analyzer options
func (a *Analyzer) Options() Options {
	return *a.opt
}

// Baseline returns a deep copy of the observation table
func (a *Analyzer) Baseline() *dataset.Frame {
	return a.baseline.Copy()
}

// Years returns the observed years
func (a *Analyzer) Years() []int {
	return timedataset.YearSlice(a.years).Copy()
}

// Preview returns the first n rows of the baseline. Non-positive n uses the configured preview
// size.
func (a *Analyzer) Preview(n int) *dataset.Frame {
	if n <= 0 {
		n = a.opt.PreviewRows
	}
	return a.baseline.Head(n)
}

// Scenario shifts the gas concentrations by the offsets and refits the anomaly regression
func (a *Analyzer) Scenario(off scenario.Offsets) (*scenario.Result, error) {
	return scenario.Fit(a.baseline, off)
}

// Correlation returns the pairwise correlation of the numeric baseline columns
func (a *Analyzer) Correlation() (*stats.Matrix, error) {
	return stats.Correlation(a.baseline)
}

// Describe summarizes every numeric baseline column
func (a *Analyzer) Describe() ([]stats.Summary, error) {
	return stats.Describe(a.baseline)
}

// Export writes the baseline in the given report format
func (a *Analyzer) Export(w io.Writer, format export.Format) error {
	return export.Write(w, a.baseline, format)
}

// Forecast predicts the anomaly for the horizon years following the last observed year.
// Non-positive horizons use the configured default.
func (a *Analyzer) Forecast(kind ModelKind, horizon int) (*Results, error) {
	if horizon <= 0 {
		horizon = a.opt.Horizon
	}
	switch kind {
	case ModelARIMA:
		return a.forecastARIMA(horizon)
	case ModelAdditive:
		return a.forecastAdditive(horizon)
	default:
		return nil, fmt.Errorf("%q, %w", kind, ErrUnknownModel)
	}
}

func (a *Analyzer) newResults(kind ModelKind, horizon int) (*Results, error) {
	years, err := timedataset.YearSlice(a.years).Horizon(horizon)
	if err != nil {
		return nil, err
	}
	actual := make([]float64, len(a.anomaly))
	copy(actual, a.anomaly)
	return &Results{
		Model:        kind,
		HistoryYears: a.Years(),
		Actual:       actual,
		Years:        years,
	}, nil
}

func (a *Analyzer) forecastAdditive(horizon int) (*Results, error) {
	res, err := a.newResults(ModelAdditive, horizon)
	if err != nil {
		return nil, err
	}

	f, err := forecast.New(a.opt.ForecastOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize additive forecast, %w", err)
	}

	y := make([]float64, len(a.anomaly))
	copy(y, a.anomaly)
	outliers, err := a.fitWithOutliers(f, y)
	if err != nil {
		return nil, err
	}
	for _, idx := range outliers {
		res.OutlierYears = append(res.OutlierYears, a.years[idx])
	}

	pred, err := f.Predict(res.Years)
	if err != nil {
		return nil, fmt.Errorf("unable to predict horizon, %w", err)
	}
	res.Forecast = pred.Yhat
	res.Upper = pred.Upper
	res.Lower = pred.Lower

	if res.Equation, err = f.ModelEq(); err != nil {
		return nil, err
	}
	return res, nil
}

// fitWithOutliers repeatedly fits the forecast, masking residual outliers from y between passes.
// It returns the indices that were masked.
func (a *Analyzer) fitWithOutliers(f *forecast.Forecast, y []float64) ([]int, error) {
	numPasses := 0
	if a.opt.OutlierOptions != nil {
		numPasses = a.opt.OutlierOptions.NumPasses
	}

	var masked []int
	for i := 0; i <= numPasses; i++ {
		if err := f.Fit(a.years, y); err != nil {
			return nil, fmt.Errorf("unable to fit additive forecast, %w", err)
		}

		// break out if no outlier options provided
		if a.opt.OutlierOptions == nil || i == numPasses {
			break
		}

		outlierIdxs := stats.DetectOutliers(
			f.Residuals(),
			a.opt.OutlierOptions.LowerPercentile,
			a.opt.OutlierOptions.UpperPercentile,
			a.opt.OutlierOptions.TukeyFactor,
		)

		// no more outliers detected with outlier options so break early
		if len(outlierIdxs) == 0 {
			break
		}

		remaining := 0
		for _, v := range y {
			if !math.IsNaN(v) {
				remaining++
			}
		}
		if remaining-len(outlierIdxs) < 2 {
			return nil, ErrInsufficientResidual
		}
		for _, idx := range outlierIdxs {
			y[idx] = math.NaN()
		}
		masked = append(masked, outlierIdxs...)
		slog.Debug("masked forecast outliers", "pass", i, "count", len(outlierIdxs))
	}
	return masked, nil
}

func (a *Analyzer) forecastARIMA(horizon int) (*Results, error) {
	res, err := a.newResults(ModelARIMA, horizon)
	if err != nil {
		return nil, err
	}

	// missing anomalies are skipped rather than imputed
	y := make([]float64, 0, len(a.anomaly))
	for _, v := range a.anomaly {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			y = append(y, v)
		}
	}
	if skipped := len(a.anomaly) - len(y); skipped > 0 {
		slog.Warn("skipping missing anomalies for arima fit", "count", skipped)
	}

	m, err := arima.New(a.opt.ARIMAOptions)
	if err != nil {
		return nil, err
	}
	if err := m.Fit(y); err != nil {
		return nil, fmt.Errorf("unable to fit arima, %w", err)
	}
	pred, err := m.ForecastInterval(horizon, a.opt.ForecastOptions.IntervalWidth)
	if err != nil {
		return nil, err
	}
	res.Forecast = pred.Mean
	res.Upper = pred.Upper
	res.Lower = pred.Lower
	res.Equation = arimaEq(m)
	return res, nil
}

func arimaEq(m *arima.Model) string {
	p := m.Params()
	var sb strings.Builder
	fmt.Fprintf(&sb, "ARIMA%s", m.Order())
	for i, v := range p.AR {
		fmt.Fprintf(&sb, " ar%d=%.4f", i+1, v)
	}
	for i, v := range p.MA {
		fmt.Fprintf(&sb, " ma%d=%.4f", i+1, v)
	}
	if p.Mean != 0 {
		fmt.Fprintf(&sb, " mean=%.4f", p.Mean)
	}
	fmt.Fprintf(&sb, " sigma2=%.4g aic=%.2f", p.Sigma2, m.AIC())
	return sb.String()
}
