package warming

import (
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/timedataset"
)

// Simulated anomaly sensitivity to each gas concentration
const (
	simCO2Sensitivity = 0.01
	simCH4Sensitivity = 0.0004
	simN2OSensitivity = 0.002
	simAnomalyBias    = -4.9
)

// SimulateObservations generates n years of synthetic gas concentrations and a temperature
// anomaly that responds linearly to them. The same seed always produces the same table.
func SimulateObservations(start, n int, seed uint64) (*dataset.Frame, error) {
	years := timedataset.GenerateYears(start, n)

	co2 := timedataset.GenerateTrend(years, 315.0, 1.6).
		Add(timedataset.GenerateChange(years, start+n/2, 0.0, 0.6)).
		Add(timedataset.GenerateNoise(n, 0.8, seed))
	ch4 := timedataset.GenerateTrend(years, 1650.0, 6.0).
		Add(timedataset.GenerateWaveY(years, 12.0, 11.0, 1.0, 0.0)).
		Add(timedataset.GenerateNoise(n, 4.0, seed+1))
	n2o := timedataset.GenerateTrend(years, 295.0, 0.8).
		Add(timedataset.GenerateNoise(n, 0.5, seed+2))

	anomaly := timedataset.GenerateConstY(n, simAnomalyBias).
		Add(timedataset.GenerateAR(n, []float64{0.5}, 0.08, seed+3))
	for i := range anomaly {
		anomaly[i] += simCO2Sensitivity*co2[i] + simCH4Sensitivity*ch4[i] + simN2OSensitivity*n2o[i]
	}

	yearVals := make([]float64, n)
	for i, yr := range years {
		yearVals[i] = float64(yr)
	}
	return dataset.NewFrame(
		dataset.NewFloatColumn(dataset.ColYear, yearVals),
		dataset.NewFloatColumn(dataset.ColCO2, co2),
		dataset.NewFloatColumn(dataset.ColCH4, ch4),
		dataset.NewFloatColumn(dataset.ColN2O, n2o),
		dataset.NewFloatColumn(dataset.ColAnomaly, anomaly),
	)
}
