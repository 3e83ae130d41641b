package dataset

import (
	"strings"
	"testing"

	"github.com/aouyang1/go-warming/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateObservations(t *testing.T) {
	header := "Year,CO2_Concentration_ppm,CH4_Concentration_ppb,N2O_Concentration_ppb,Temperature_Anomaly_C\n"
	testData := map[string]struct {
		in  string
		err error
	}{
		"valid": {
			in: header + "2020,400,1800,330,1.1\n2021,402,1805,331,1.15\n",
		},
		"no rows": {
			in:  header,
			err: ErrSchema,
		},
		"missing anomaly": {
			in:  "Year,CO2_Concentration_ppm,CH4_Concentration_ppb,N2O_Concentration_ppb\n2020,400,1800,330\n",
			err: ErrSchema,
		},
		"text gas column": {
			in:  header + "2020,high,1800,330,1.1\n",
			err: ErrSchema,
		},
		"fractional year": {
			in:  header + "2020.5,400,1800,330,1.1\n",
			err: ErrSchema,
		},
		"repeated year": {
			in:  header + "2020,400,1800,330,1.1\n2020,402,1805,331,1.15\n",
			err: timedataset.ErrNonMonotonic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := ReadCSV(strings.NewReader(td.in))
			require.Nil(t, err)

			err = ValidateObservations(f)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestYears(t *testing.T) {
	f, err := NewFrame(NewFloatColumn(ColYear, []float64{1990, 1991}))
	require.Nil(t, err)

	years, err := Years(f)
	require.Nil(t, err)
	assert.Equal(t, []int{1990, 1991}, years)

	_, err = Years(&Frame{})
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.ErrorIs(t, err, ErrSchema)
}
