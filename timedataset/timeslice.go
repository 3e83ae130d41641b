package timedataset

import (
	"errors"
)

var ErrInvalidHorizon = errors.New("horizon must be positive")

type YearSlice []int

func (y YearSlice) StartYear() int {
	if len(y) < 1 {
		return 0
	}
	return y[0]
}

func (y YearSlice) EndYear() int {
	if len(y) < 1 {
		return 0
	}
	return y[len(y)-1]
}

func (y YearSlice) Copy() []int {
	res := make([]int, len(y))
	copy(res, y)
	return res
}

// Floats converts the years into float values for plotting and regression
func (y YearSlice) Floats() []float64 {
	res := make([]float64, len(y))
	for i, yr := range y {
		res[i] = float64(yr)
	}
	return res
}

// Horizon returns the n consecutive years following the last year of the slice
func (y YearSlice) Horizon(n int) ([]int, error) {
	if n <= 0 {
		return nil, ErrInvalidHorizon
	}
	return GenerateYears(y.EndYear()+1, n), nil
}

// Scale maps each year onto [0, 1] using the range of the reference slice. Years past the end of
// the reference map above 1. A single year reference maps every year to its offset from it.
func (y YearSlice) Scale(ref YearSlice) []float64 {
	start := float64(ref.StartYear())
	span := float64(ref.EndYear() - ref.StartYear())
	if span == 0 {
		span = 1
	}
	res := make([]float64, len(y))
	for i, yr := range y {
		res[i] = (float64(yr) - start) / span
	}
	return res
}
