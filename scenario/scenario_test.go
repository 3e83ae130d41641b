package scenario

import (
	"math"
	"testing"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBaseline(t *testing.T, years, co2, ch4, n2o, anomaly []float64) *dataset.Frame {
	t.Helper()
	f, err := dataset.NewFrame(
		dataset.NewFloatColumn(dataset.ColYear, years),
		dataset.NewFloatColumn(dataset.ColCO2, co2),
		dataset.NewFloatColumn(dataset.ColCH4, ch4),
		dataset.NewFloatColumn(dataset.ColN2O, n2o),
		dataset.NewFloatColumn(dataset.ColAnomaly, anomaly),
	)
	require.Nil(t, err)
	return f
}

func sixYearBaseline(t *testing.T) *dataset.Frame {
	return newBaseline(t,
		[]float64{2015, 2016, 2017, 2018, 2019, 2020},
		[]float64{400, 401.5, 403, 404, 406, 407.2},
		[]float64{1800, 1803, 1801, 1810, 1812, 1811},
		[]float64{330, 330.4, 331, 330.8, 331.5, 332},
		[]float64{1.0, 1.05, 1.08, 1.1, 1.2, 1.22},
	)
}

func floatsOf(t *testing.T, f *dataset.Frame, name string) []float64 {
	t.Helper()
	vals, err := f.Floats(name)
	require.Nil(t, err)
	return vals
}

func TestGenerateTwoRowExample(t *testing.T) {
	baseline := newBaseline(t,
		[]float64{2020, 2021},
		[]float64{400, 402},
		[]float64{1800, 1805},
		[]float64{330, 331},
		[]float64{1.1, 1.15},
	)

	res, err := Generate(baseline, Offsets{CO2: 5})
	require.Nil(t, err)

	assert.Equal(t, 2, res.Len())
	assert.Equal(t, []float64{405, 407}, floatsOf(t, res, dataset.ColCO2))
	assert.Equal(t, []float64{1800, 1805}, floatsOf(t, res, dataset.ColCH4))
	assert.Equal(t, []float64{330, 331}, floatsOf(t, res, dataset.ColN2O))
	assert.Equal(t, []float64{1.1, 1.15}, floatsOf(t, res, dataset.ColAnomaly))
	assert.InDeltaSlice(t, []float64{1.1, 1.15}, floatsOf(t, res, dataset.ColPredicted), 1e-9)
}

func TestGenerateDeterministic(t *testing.T) {
	baseline := sixYearBaseline(t)
	off := Offsets{CO2: 2.5, CH4: -15, N2O: 1}

	a, err := Generate(baseline, off)
	require.Nil(t, err)
	b, err := Generate(baseline, off)
	require.Nil(t, err)
	assert.Equal(t, a.Records(), b.Records())
}

func TestGenerateDoesNotMutateBaseline(t *testing.T) {
	baseline := sixYearBaseline(t)
	before := baseline.Copy()

	_, err := Generate(baseline, Offsets{CO2: 10, CH4: 50, N2O: -5})
	require.Nil(t, err)

	assert.Equal(t, before.Records(), baseline.Records())
	assert.Equal(t, before.Names(), baseline.Names())
}

func TestGenerateZeroOffsetIdentity(t *testing.T) {
	baseline := sixYearBaseline(t)

	res, err := Generate(baseline, Offsets{})
	require.Nil(t, err)

	for _, name := range dataset.GasColumns {
		assert.Equal(t, floatsOf(t, baseline, name), floatsOf(t, res, name))
	}

	x, err := mat.NewDenseFromColumns(
		floatsOf(t, baseline, dataset.ColCO2),
		floatsOf(t, baseline, dataset.ColCH4),
		floatsOf(t, baseline, dataset.ColN2O),
	)
	require.Nil(t, err)
	y, err := mat.NewColumn(floatsOf(t, baseline, dataset.ColAnomaly))
	require.Nil(t, err)

	ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	require.Nil(t, err)
	require.Nil(t, ols.Fit(x, y))
	expected, err := ols.Predict(x)
	require.Nil(t, err)

	assert.InDeltaSlice(t, expected, floatsOf(t, res, dataset.ColPredicted), 1e-9)
}

func TestGenerateColumnCount(t *testing.T) {
	baseline := sixYearBaseline(t)
	require.Nil(t, baseline.AddColumn(dataset.NewStringColumn("Region", []string{"a", "b", "c", "d", "e", "f"})))

	res, err := Generate(baseline, Offsets{CH4: 5})
	require.Nil(t, err)

	assert.Equal(t, baseline.NumColumns()+1, res.NumColumns())
	assert.Equal(t, baseline.Len(), res.Len())
	assert.Equal(t, append(baseline.Names(), dataset.ColPredicted), res.Names())
	assert.Equal(t, floatsOf(t, baseline, dataset.ColYear), floatsOf(t, res, dataset.ColYear))
}

func TestGenerateOffsetLinearity(t *testing.T) {
	baseline := sixYearBaseline(t)
	first := Offsets{CO2: 1.5, CH4: 10, N2O: -0.5}
	second := Offsets{CO2: -4, CH4: 25, N2O: 2}

	out, err := Generate(baseline, first)
	require.Nil(t, err)
	chainedInput, err := out.Select(baseline.Names()...)
	require.Nil(t, err)
	chained, err := Generate(chainedInput, second)
	require.Nil(t, err)

	single, err := Generate(baseline, first.Add(second))
	require.Nil(t, err)

	for _, name := range []string{dataset.ColCO2, dataset.ColCH4, dataset.ColN2O, dataset.ColPredicted} {
		assert.InDeltaSlice(t, floatsOf(t, single, name), floatsOf(t, chained, name), 1e-9, name)
	}
}

func TestFitPredictionsIgnoreOffsets(t *testing.T) {
	baseline := sixYearBaseline(t)

	base, err := Fit(baseline, Offsets{})
	require.Nil(t, err)
	shifted, err := Fit(baseline, Offsets{CO2: 10, CH4: -50, N2O: 5})
	require.Nil(t, err)

	assert.InDeltaSlice(t,
		floatsOf(t, base.Frame, dataset.ColPredicted),
		floatsOf(t, shifted.Frame, dataset.ColPredicted),
		1e-8,
	)
	for _, name := range dataset.GasColumns {
		assert.InDelta(t, base.Model.Coef[name], shifted.Model.Coef[name], 1e-8)
	}
	assert.InDelta(t, base.Model.R2, shifted.Model.R2, 1e-9)
	assert.Greater(t, base.Model.R2, 0.0)
	assert.LessOrEqual(t, base.Model.R2, 1.0)
}

func TestGenerateErrors(t *testing.T) {
	collinear := newBaseline(t,
		[]float64{2000, 2001, 2002, 2003},
		[]float64{400, 401, 402, 403},
		[]float64{800, 802, 804, 806},
		[]float64{330, 331, 333, 330},
		[]float64{1, 1.1, 1.3, 1.2},
	)

	missing, err := dataset.NewFrame(
		dataset.NewFloatColumn(dataset.ColCO2, []float64{1}),
		dataset.NewFloatColumn(dataset.ColCH4, []float64{1}),
		dataset.NewFloatColumn(dataset.ColAnomaly, []float64{1}),
	)
	require.Nil(t, err)

	textual, err := dataset.NewFrame(
		dataset.NewFloatColumn(dataset.ColCO2, []float64{1}),
		dataset.NewFloatColumn(dataset.ColCH4, []float64{1}),
		dataset.NewStringColumn(dataset.ColN2O, []string{"high"}),
		dataset.NewFloatColumn(dataset.ColAnomaly, []float64{1}),
	)
	require.Nil(t, err)

	predicted := sixYearBaseline(t)
	require.Nil(t, predicted.AddFloats(dataset.ColPredicted, make([]float64, 6)))

	empty := newBaseline(t, []float64{}, []float64{}, []float64{}, []float64{}, []float64{})

	withNaN := sixYearBaseline(t)
	floatsOf(t, withNaN, dataset.ColAnomaly)[2] = math.NaN()

	testData := map[string]struct {
		baseline *dataset.Frame
		off      Offsets
		errs     []error
	}{
		"nil baseline": {
			errs: []error{dataset.ErrSchema},
		},
		"missing column": {
			baseline: missing,
			errs:     []error{dataset.ErrSchema},
		},
		"text column": {
			baseline: textual,
			errs:     []error{dataset.ErrSchema},
		},
		"predicted column exists": {
			baseline: predicted,
			errs:     []error{dataset.ErrSchema},
		},
		"no rows": {
			baseline: empty,
			errs:     []error{dataset.ErrSchema},
		},
		"nan offset": {
			baseline: sixYearBaseline(t),
			off:      Offsets{CO2: math.NaN()},
			errs:     []error{ErrInvalidOffset},
		},
		"infinite offset": {
			baseline: sixYearBaseline(t),
			off:      Offsets{N2O: math.Inf(-1)},
			errs:     []error{ErrInvalidOffset},
		},
		"collinear concentrations": {
			baseline: collinear,
			errs:     []error{ErrSingular, linearmodel.ErrSingularMatrix},
		},
		"collinear after offset": {
			baseline: collinear,
			off:      Offsets{CO2: 5, CH4: -20},
			errs:     []error{ErrSingular, linearmodel.ErrSingularMatrix},
		},
		"missing anomaly value": {
			baseline: withNaN,
			errs:     []error{linearmodel.ErrNonFinite},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Generate(td.baseline, td.off)
			assert.Nil(t, res)
			for _, expected := range td.errs {
				assert.ErrorIs(t, err, expected)
			}
		})
	}
}

func TestDesignMatrixErrors(t *testing.T) {
	_, err := designMatrix([][]float64{{1, 2, 3}, {1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, mat.ErrRowMismatch)
	assert.ErrorIs(t, err, linearmodel.ErrTargetLenMismatch)

	x, err := designMatrix([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.Nil(t, err)
	r, c := x.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
}

func TestModelEq(t *testing.T) {
	testData := map[string]struct {
		model    Model
		expected string
	}{
		"intercept only": {
			model:    Model{Intercept: 1.5},
			expected: "y ~ 1.5",
		},
		"mixed signs": {
			model: Model{
				Intercept: -2,
				Coef: map[string]float64{
					dataset.ColCO2: 0.5,
					dataset.ColCH4: -0.25,
					dataset.ColN2O: 0,
				},
			},
			expected: "y ~ -2 + 0.5*CO2_Concentration_ppm - 0.25*CH4_Concentration_ppb",
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.model.ModelEq())
		})
	}
}
