// Package scenario shifts the greenhouse gas concentrations of an observation table and refits a
// linear model of temperature anomaly against the shifted concentrations.
//
// The model regresses the shifted concentrations against the unshifted observed anomaly, so the
// predicted column is a best fit through shifted inputs rather than a what-if projection. With an
// intercept the fitted values are therefore identical for every offset; only the coefficients'
// intercept moves.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/mat"
	gmat "gonum.org/v1/gonum/mat"
)

var (
	ErrSingular      = errors.New("greenhouse gas concentrations are collinear, unable to fit regression")
	ErrInvalidOffset = errors.New("offset must be a finite number")
)

// Offsets are added uniformly to every record of the respective concentration column
type Offsets struct {
	CO2 float64 `json:"co2"`
	CH4 float64 `json:"ch4"`
	N2O float64 `json:"n2o"`
}

// Validate rejects NaN and infinite offsets
func (o Offsets) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{dataset.ColCO2, o.CO2},
		{dataset.ColCH4, o.CH4},
		{dataset.ColN2O, o.N2O},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("%s offset of %v, %w", v.name, v.val, ErrInvalidOffset)
		}
	}
	return nil
}

// Add returns the element-wise sum of two offsets
func (o Offsets) Add(other Offsets) Offsets {
	return Offsets{
		CO2: o.CO2 + other.CO2,
		CH4: o.CH4 + other.CH4,
		N2O: o.N2O + other.N2O,
	}
}

func (o Offsets) byColumn() map[string]float64 {
	return map[string]float64{
		dataset.ColCO2: o.CO2,
		dataset.ColCH4: o.CH4,
		dataset.ColN2O: o.N2O,
	}
}

// Model is the fitted linear relationship between the shifted concentrations and the observed
// anomaly
type Model struct {
	Intercept float64            `json:"intercept"`
	Coef      map[string]float64 `json:"coefficients"`
	R2        float64            `json:"r_squared"`
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1*CO2 + m2*CH4 + m3*N2O
func (m Model) ModelEq() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("y ~ %.4g", m.Intercept))
	for _, name := range dataset.GasColumns {
		w, exists := m.Coef[name]
		if !exists || w == 0 {
			continue
		}
		sign := "+"
		if w < 0 {
			sign = "-"
		}
		sb.WriteString(fmt.Sprintf(" %s %.4g*%s", sign, math.Abs(w), name))
	}
	return sb.String()
}

// Result holds the augmented table along with the model that produced the predictions
type Result struct {
	Offsets Offsets
	Frame   *dataset.Frame
	Model   Model
}

// Generate returns a copy of the baseline with the offsets applied to the concentration columns
// and a Predicted_Temperature_Anomaly_C column of fitted values. The baseline is never modified.
func Generate(baseline *dataset.Frame, off Offsets) (*dataset.Frame, error) {
	res, err := Fit(baseline, off)
	if err != nil {
		return nil, err
	}
	return res.Frame, nil
}

// Fit runs the scenario and additionally returns the fitted model
func Fit(baseline *dataset.Frame, off Offsets) (*Result, error) {
	if err := off.Validate(); err != nil {
		return nil, err
	}
	if err := dataset.RequireNumeric(baseline, ColumnsRequired()...); err != nil {
		return nil, err
	}
	if baseline.Len() == 0 {
		return nil, fmt.Errorf("baseline has no rows, %w", dataset.ErrSchema)
	}
	if _, exists := baseline.Column(dataset.ColPredicted); exists {
		return nil, fmt.Errorf("baseline already has column %q, %w", dataset.ColPredicted, dataset.ErrSchema)
	}

	frame := baseline.Copy()

	gasCols := make([][]float64, 0, len(dataset.GasColumns))
	shift := off.byColumn()
	for _, name := range dataset.GasColumns {
		vals, err := frame.Floats(name)
		if err != nil {
			return nil, err
		}
		for i := range vals {
			vals[i] += shift[name]
		}
		gasCols = append(gasCols, vals)
	}

	anomaly, err := frame.Floats(dataset.ColAnomaly)
	if err != nil {
		return nil, err
	}

	x, err := designMatrix(gasCols)
	if err != nil {
		return nil, err
	}
	y, err := mat.NewColumn(anomaly)
	if err != nil {
		return nil, fmt.Errorf("unable to build target matrix, %w", err)
	}

	ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	if err := ols.Fit(x, y); err != nil {
		if errors.Is(err, linearmodel.ErrSingularMatrix) {
			return nil, fmt.Errorf("%w, %w", ErrSingular, err)
		}
		return nil, fmt.Errorf("unable to fit scenario regression, %w", err)
	}

	predicted, err := ols.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("unable to predict scenario anomaly, %w", err)
	}
	r2, err := ols.Score(x, y)
	if err != nil {
		return nil, fmt.Errorf("unable to score scenario regression, %w", err)
	}

	if err := frame.AddFloats(dataset.ColPredicted, predicted); err != nil {
		return nil, err
	}

	coef := ols.Coef()
	model := Model{
		Intercept: ols.Intercept(),
		Coef:      make(map[string]float64, len(coef)),
		R2:        r2,
	}
	for i, name := range dataset.GasColumns {
		model.Coef[name] = coef[i]
	}

	return &Result{
		Offsets: off,
		Frame:   frame,
		Model:   model,
	}, nil
}

func designMatrix(gasCols [][]float64) (gmat.Matrix, error) {
	x, err := mat.NewDenseFromColumns(gasCols...)
	if err != nil {
		return nil, fmt.Errorf("unable to build design matrix, %w, %w", err, linearmodel.ErrTargetLenMismatch)
	}
	return x, nil
}

// ColumnsRequired lists the numeric columns the scenario reads
func ColumnsRequired() []string {
	return append(append([]string(nil), dataset.GasColumns...), dataset.ColAnomaly)
}
