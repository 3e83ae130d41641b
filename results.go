package warming

// Results is a forecast of the temperature anomaly past the last observed year along with the
// history it was fit on
type Results struct {
	Model ModelKind `json:"model"`

	HistoryYears []int     `json:"history_years"`
	Actual       []float64 `json:"actual"`

	Years    []int     `json:"years"`
	Forecast []float64 `json:"forecast"`
	Upper    []float64 `json:"upper"`
	Lower    []float64 `json:"lower"`

	// Equation describes the fitted model
	Equation string `json:"equation"`

	// OutlierYears lists the years dropped from the fit by outlier passes
	OutlierYears []int `json:"outlier_years,omitempty"`
}
