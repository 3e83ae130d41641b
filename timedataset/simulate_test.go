package timedataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateYears(t *testing.T) {
	res := GenerateYears(1970, 4)
	assert.Equal(t, []int{1970, 1971, 1972, 1973}, res)
}

func TestSeries(t *testing.T) {
	numPnts := 7
	years := GenerateYears(2000, numPnts)
	s := GenerateConstY(numPnts, 1)

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	s.SetConst(years, 2.0, 2002, 2004)
	assert.Equal(t, Series([]float64{3, 3, 2, 2, 3, 3, 3}), s)

	trend := GenerateTrend(years, 1, 0.5)
	assert.Equal(t, Series([]float64{1, 1.5, 2, 2.5, 3, 3.5, 4}), trend)

	chg := GenerateChange(years, 2004, 1, 2)
	assert.Equal(t, Series([]float64{0, 0, 0, 0, 1, 3, 5}), chg)
}

func TestGenerateNoiseSeeded(t *testing.T) {
	a := GenerateNoise(20, 1.0, 7)
	b := GenerateNoise(20, 1.0, 7)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, GenerateNoise(20, 1.0, 8))

	ar := GenerateAR(20, []float64{0.5}, 1.0, 7)
	assert.InDelta(t, a[0], ar[0], 1e-12)
	assert.InDelta(t, a[1]+0.5*ar[0], ar[1], 1e-12)
}
