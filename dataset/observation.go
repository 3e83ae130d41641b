package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-warming/timedataset"
)

// Observation table column names
const (
	ColYear      = "Year"
	ColCO2       = "CO2_Concentration_ppm"
	ColCH4       = "CH4_Concentration_ppb"
	ColN2O       = "N2O_Concentration_ppb"
	ColAnomaly   = "Temperature_Anomaly_C"
	ColPredicted = "Predicted_Temperature_Anomaly_C"
)

var ErrSchema = errors.New("observation table schema violation")

// GasColumns lists the greenhouse gas concentration columns in regressor order
var GasColumns = []string{ColCO2, ColCH4, ColN2O}

// RequireNumeric verifies each named column exists and is numeric, reporting the first offender
// wrapped with ErrSchema.
func RequireNumeric(f *Frame, names ...string) error {
	if f == nil {
		return fmt.Errorf("nil frame, %w", ErrSchema)
	}
	for _, name := range names {
		c, exists := f.Column(name)
		if !exists {
			return fmt.Errorf("missing column %q, %w", name, ErrSchema)
		}
		if c.Kind != KindFloat {
			return fmt.Errorf("column %q has type %s, %w", name, c.Kind, ErrSchema)
		}
	}
	return nil
}

// ValidateObservations checks a frame can serve as the observation table: it must be non-empty,
// carry numeric Year, gas and anomaly columns, and have integral strictly increasing years.
func ValidateObservations(f *Frame) error {
	if err := RequireNumeric(f, ColYear, ColCO2, ColCH4, ColN2O, ColAnomaly); err != nil {
		return err
	}
	if f.Len() == 0 {
		return fmt.Errorf("observation table has no rows, %w", ErrSchema)
	}
	years, err := Years(f)
	if err != nil {
		return err
	}
	return timedataset.ValidateYears(years)
}

// Years returns the Year column as integers
func Years(f *Frame) ([]int, error) {
	vals, err := f.Floats(ColYear)
	if err != nil {
		return nil, fmt.Errorf("%w, %w", err, ErrSchema)
	}
	years := make([]int, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || v != math.Trunc(v) {
			return nil, fmt.Errorf("year at row %d is not an integer, %w", i, ErrSchema)
		}
		years[i] = int(v)
	}
	return years, nil
}
