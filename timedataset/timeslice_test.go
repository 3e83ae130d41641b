package timedataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEndYear(t *testing.T) {
	testData := map[string]struct {
		years YearSlice
		start int
		end   int
	}{
		"nil input": {},
		"single year": {
			years: YearSlice{2000},
			start: 2000,
			end:   2000,
		},
		"multiple years": {
			years: YearSlice{1990, 1991, 1995},
			start: 1990,
			end:   1995,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.start, td.years.StartYear())
			assert.Equal(t, td.end, td.years.EndYear())
		})
	}
}

func TestHorizon(t *testing.T) {
	testData := map[string]struct {
		years    YearSlice
		n        int
		expected []int
		err      error
	}{
		"zero steps": {
			years: YearSlice{2020, 2021},
			n:     0,
			err:   ErrInvalidHorizon,
		},
		"three steps": {
			years:    YearSlice{2020, 2021, 2024},
			n:        3,
			expected: []int{2025, 2026, 2027},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.years.Horizon(td.n)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestScale(t *testing.T) {
	ref := YearSlice{2000, 2001, 2002, 2003, 2004}
	res := YearSlice{2000, 2002, 2004, 2006}.Scale(ref)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1.0, 1.5}, res, 1e-12)

	res = YearSlice{2000, 2001}.Scale(YearSlice{2000})
	assert.InDeltaSlice(t, []float64{0, 1}, res, 1e-12)

	assert.Equal(t, []float64{1999, 2000}, YearSlice{1999, 2000}.Floats())
}
