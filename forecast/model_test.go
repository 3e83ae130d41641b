package forecast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelTablePrint(t *testing.T) {
	m := Model{
		TrainStartYear: 1950,
		TrainEndYear:   2020,
		Options:        NewDefaultOptions(),
		Scores: &Scores{
			MAPE: 0.1234,
			MSE:  1.2345,
			R2:   0.0123,
		},
		Weights: Weights{
			Intercept: 0.5,
			Coef: []FeatureWeight{
				NewFeatureWeight(FeatureLabel{Type: FeatureTypeGrowth}, 1.25),
				NewFeatureWeight(FeatureLabel{Type: FeatureTypeChangepoint, Changepoint: NewChangepoint("c0", 1980)}, 0),
			},
		},
	}

	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "--", "**"))
	out := buf.String()
	assert.Contains(t, out, "--Forecast:\n")
	assert.Contains(t, out, "--**Training Years: 1950-2020\n")
	assert.Contains(t, out, "--**Regularization: 0.050\n")
	assert.Contains(t, out, "--**MAPE: 0.123    MSE: 1.234    R2: 0.012\n")
	assert.Contains(t, out, "1.250")
	assert.Contains(t, out, "1980")
	assert.Contains(t, out, "...")
}

func TestFeatureWeightToLabel(t *testing.T) {
	chpt := NewChangepoint("c0", 1980)
	testData := map[string]struct {
		fw       *FeatureWeight
		expected FeatureLabel
		err      error
	}{
		"nil": {
			err: ErrUnknownFeatureType,
		},
		"growth": {
			fw:       &FeatureWeight{Type: FeatureTypeGrowth},
			expected: FeatureLabel{Type: FeatureTypeGrowth},
		},
		"changepoint": {
			fw:       &FeatureWeight{Type: FeatureTypeChangepoint, Changepoint: &chpt},
			expected: FeatureLabel{Type: FeatureTypeChangepoint, Changepoint: chpt},
		},
		"changepoint without year": {
			fw:  &FeatureWeight{Type: FeatureTypeChangepoint},
			err: ErrUnknownFeatureType,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.fw.ToLabel()
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}
