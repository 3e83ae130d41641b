package stats

import (
	"math"
	"testing"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		expected []int
	}{
		"empty": {},
		"single value": {
			y: []float64{1},
		},
		"constant": {
			y: []float64{2, 2, 2, 2},
		},
		"high spike": {
			y:        []float64{1, 2, 1, 2, 1, 2, 50, 1},
			expected: []int{6},
		},
		"low spike with nan": {
			y:        []float64{10, 11, math.NaN(), 10, -40, 11, 10},
			expected: []int{4},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DetectOutliers(td.y, OutlierLowerPerc, OutlierUpperPerc, OutlierTukeyFactor)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestVarianceInflationFactor(t *testing.T) {
	testData := map[string]struct {
		features map[string][]float64
		expected map[string]float64
		err      error
	}{
		"too few features": {
			features: map[string][]float64{"a": {1, 2}},
			err:      ErrMinimumFeatures,
		},
		"too few points": {
			features: map[string][]float64{"a": {1}, "b": {2}},
			err:      ErrFeatureLen,
		},
		"length mismatch": {
			features: map[string][]float64{"a": {1, 2, 3}, "b": {2, 3}},
			err:      ErrFeatureLenMismatch,
		},
		"orthogonal": {
			features: map[string][]float64{
				"a": {1, -1, 1, -1},
				"b": {1, 1, -1, -1},
			},
			expected: map[string]float64{"a": 1, "b": 1},
		},
		"collinear": {
			features: map[string][]float64{
				"a": {1, 2, 3, 4},
				"b": {2, 4, 6, 8},
			},
			expected: map[string]float64{"a": math.Inf(1), "b": math.Inf(1)},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := VarianceInflationFactor(td.features)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.Len(t, res, len(td.expected))
			for label, expected := range td.expected {
				if math.IsInf(expected, 1) {
					assert.Greater(t, res[label], 1e6, label)
					continue
				}
				assert.InDelta(t, expected, res[label], 1e-9, label)
			}
		})
	}
}

func TestCorrelation(t *testing.T) {
	f, err := dataset.NewFrame(
		dataset.NewFloatColumn("a", []float64{1, 2, 3, 4, math.NaN()}),
		dataset.NewStringColumn("label", []string{"v", "w", "x", "y", "z"}),
		dataset.NewFloatColumn("b", []float64{2, 4, 6, 8, 100}),
		dataset.NewFloatColumn("c", []float64{4, 3, 2, 1, 0}),
		dataset.NewFloatColumn("d", []float64{7, 7, 7, 7, 7}),
	)
	require.Nil(t, err)

	res, err := Correlation(f)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, res.Names)

	ab, _ := res.At("a", "b")
	assert.InDelta(t, 1.0, ab, 1e-12)
	ac, _ := res.At("a", "c")
	assert.InDelta(t, -1.0, ac, 1e-12)
	aa, _ := res.At("a", "a")
	assert.InDelta(t, 1.0, aa, 1e-12)
	ad, _ := res.At("a", "d")
	assert.True(t, math.IsNaN(ad))

	_, exists := res.At("a", "label")
	assert.False(t, exists)

	for i := range res.Names {
		for j := range res.Names {
			if math.IsNaN(res.Values[i][j]) {
				continue
			}
			assert.Equal(t, res.Values[i][j], res.Values[j][i])
		}
	}
}

func TestCorrelationNotEnoughColumns(t *testing.T) {
	f, err := dataset.NewFrame(
		dataset.NewFloatColumn("a", []float64{1, 2}),
		dataset.NewStringColumn("b", []string{"x", "y"}),
	)
	require.Nil(t, err)

	_, err = Correlation(f)
	assert.ErrorIs(t, err, ErrMinimumColumns)
}

func TestSummarize(t *testing.T) {
	res := Summarize("x", []float64{4, 1, math.NaN(), 3, 2})
	assert.Equal(t, "x", res.Column)
	assert.Equal(t, 4, res.Count)
	assert.InDelta(t, 2.5, res.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), res.Std, 1e-12)
	assert.Equal(t, 1.0, res.Min)
	assert.InDelta(t, 1.75, res.Q25, 1e-12)
	assert.InDelta(t, 2.5, res.Q50, 1e-12)
	assert.InDelta(t, 3.25, res.Q75, 1e-12)
	assert.Equal(t, 4.0, res.Max)
	assert.Equal(t, 0, res.Outliers)

	empty := Summarize("y", []float64{math.NaN()})
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Max))

	single := Summarize("z", []float64{3})
	assert.Equal(t, 3.0, single.Mean)
	assert.True(t, math.IsNaN(single.Std))
}

func TestDescribe(t *testing.T) {
	f, err := dataset.NewFrame(
		dataset.NewFloatColumn("a", []float64{1, 2, 3}),
		dataset.NewStringColumn("b", []string{"x", "y", "z"}),
		dataset.NewFloatColumn("c", []float64{10, 10, 10}),
	)
	require.Nil(t, err)

	res, err := Describe(f)
	require.Nil(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a", res[0].Column)
	assert.Equal(t, "c", res[1].Column)
	assert.Equal(t, 0.0, res[1].Std)
}

func TestQuantile(t *testing.T) {
	testData := map[string]struct {
		sorted   []float64
		p        float64
		expected float64
	}{
		"single":       {sorted: []float64{5}, p: 0.75, expected: 5},
		"exact index":  {sorted: []float64{1, 2, 3}, p: 0.5, expected: 2},
		"interpolated": {sorted: []float64{1, 2, 3, 4}, p: 0.5, expected: 2.5},
		"max":          {sorted: []float64{1, 2, 3, 4}, p: 1.0, expected: 4},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, Quantile(td.sorted, td.p), 1e-12)
		})
	}
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}
