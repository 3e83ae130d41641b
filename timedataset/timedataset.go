package timedataset

import (
	"errors"
	"fmt"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMonotonic       = errors.New("year feature is not strictly increasing")
	ErrDatasetLenMismatch = errors.New("year feature has a different length than observations")
)

// TimeDataset represents a yearly series storing a slice of years and values.
// Both must be of the same length.
type TimeDataset struct {
	Years []int
	Y     []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a year and value slice.
func NewUnivariateDataset(years []int, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(years) != len(y) {
		return nil, fmt.Errorf(
			"year feature has length of %d, but values has a length of %d, %w",
			len(years), len(y), ErrDatasetLenMismatch,
		)
	}
	if err := ValidateYears(years); err != nil {
		return nil, err
	}

	ySeries := make([]float64, len(y))
	copy(ySeries, y)
	td := &TimeDataset{
		Years: YearSlice(years).Copy(),
		Y:     ySeries,
	}
	return td, nil
}

// ValidateYears verifies the years are strictly increasing
func ValidateYears(years []int) error {
	for i := 1; i < len(years); i++ {
		if years[i] <= years[i-1] {
			return fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
	}
	return nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	ySeries := make([]float64, len(td.Y))
	copy(ySeries, td.Y)
	return &TimeDataset{
		Years: YearSlice(td.Years).Copy(),
		Y:     ySeries,
	}
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	return len(td.Y)
}
