// Package stats summarizes numeric columns of a frame for the visualization and upload pages
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrMinimumColumns     = errors.New("need at least 2 numeric columns to compute correlation")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
	ErrNoData             = errors.New("no finite values")
	ErrInvalidBins        = errors.New("number of bins out of range")
)

// Tukey fence defaults used when counting outliers in a summary
const (
	OutlierLowerPerc   = 0.25
	OutlierUpperPerc   = 0.75
	OutlierTukeyFactor = 1.5
)

// DetectOutliers returns the indices of values outside the Tukey fences computed from the given
// lower and upper percentiles. NaN values are never reported.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := finiteSorted(y)
	if len(sorted) == 0 {
		return nil
	}
	lowerIdx := int(math.Floor(float64(len(sorted)-1) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(sorted)-1) * upperPerc))

	lower := sorted[lowerIdx]
	upper := sorted[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// VarianceInflationFactor regresses each feature on the remaining ones and returns 1/(1-R^2).
// Perfectly explained features report +Inf.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	var m int
	for _, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(feature)
			continue
		}
		if m != len(feature) {
			return nil, ErrFeatureLenMismatch
		}
	}

	labels := make([]string, 0, len(features))
	for label := range features {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	vif := make(map[string]float64, len(labels))
	for _, label := range labels {
		others := make([][]float64, 0, len(labels)-1)
		for _, other := range labels {
			if other != label {
				others = append(others, features[other])
			}
		}
		x, err := mat.NewDenseFromColumns(others...)
		if err != nil {
			return nil, err
		}
		y, err := mat.NewColumn(features[label])
		if err != nil {
			return nil, err
		}

		model, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
		if err != nil {
			return nil, err
		}
		if err := model.Fit(x, y); err != nil {
			if errors.Is(err, linearmodel.ErrSingularMatrix) {
				vif[label] = math.Inf(1)
				continue
			}
			return nil, fmt.Errorf("unable to regress %s on remaining features, %w", label, err)
		}
		r2, err := model.Score(x, y)
		if err != nil {
			return nil, err
		}
		if r2 >= 1.0 {
			vif[label] = math.Inf(1)
			continue
		}
		vif[label] = 1.0 / (1.0 - r2)
	}
	return vif, nil
}

// Matrix is a square labeled matrix of pairwise statistics
type Matrix struct {
	Names  []string    `json:"names"`
	Values [][]float64 `json:"values"`
}

// At returns the value for the named pair
func (m *Matrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, name := range m.Names {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

// Correlation computes the Pearson correlation between every pair of numeric columns of the
// frame. Each pair only uses rows where both values are present. Text columns are skipped.
func Correlation(f *dataset.Frame) (*Matrix, error) {
	names := f.NumericNames()
	if len(names) < 2 {
		return nil, fmt.Errorf("found %d numeric columns, %w", len(names), ErrMinimumColumns)
	}

	cols := make([][]float64, len(names))
	for i, name := range names {
		vals, err := f.Floats(name)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
	}

	res := &Matrix{
		Names:  names,
		Values: make([][]float64, len(names)),
	}
	for i := range names {
		res.Values[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			r := PairwisePearson(cols[i], cols[j])
			res.Values[i][j] = r
			res.Values[j][i] = r
		}
	}
	return res, nil
}

// PairwisePearson returns the Pearson correlation over rows where both values are finite. Fewer
// than 2 complete rows or a constant series yields NaN.
func PairwisePearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Summary describes a single numeric column
type Summary struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"25%"`
	Q50      float64 `json:"50%"`
	Q75      float64 `json:"75%"`
	Max      float64 `json:"max"`
	Outliers int     `json:"outliers"`
}

// Describe summarizes every numeric column of the frame in column order
func Describe(f *dataset.Frame) ([]Summary, error) {
	names := f.NumericNames()
	res := make([]Summary, 0, len(names))
	for _, name := range names {
		vals, err := f.Floats(name)
		if err != nil {
			return nil, err
		}
		res = append(res, Summarize(name, vals))
	}
	return res, nil
}

// Summarize computes count, mean, sample standard deviation, min, quartiles and max of the
// finite values. Missing statistics are NaN.
func Summarize(name string, vals []float64) Summary {
	sorted := finiteSorted(vals)
	s := Summary{
		Column:   name,
		Count:    len(sorted),
		Mean:     math.NaN(),
		Std:      math.NaN(),
		Min:      math.NaN(),
		Q25:      math.NaN(),
		Q50:      math.NaN(),
		Q75:      math.NaN(),
		Max:      math.NaN(),
		Outliers: len(DetectOutliers(vals, OutlierLowerPerc, OutlierUpperPerc, OutlierTukeyFactor)),
	}
	if s.Count == 0 {
		return s
	}
	s.Mean = stat.Mean(sorted, nil)
	if s.Count > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = Quantile(sorted, 0.25)
	s.Q50 = Quantile(sorted, 0.50)
	s.Q75 = Quantile(sorted, 0.75)
	return s
}

// Quantile linearly interpolates the p-th quantile of sorted values
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func finiteSorted(vals []float64) []float64 {
	res := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isFinite(v) {
			res = append(res, v)
		}
	}
	sort.Float64s(res)
	return res
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
