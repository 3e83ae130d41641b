package forecast

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
)

// Model represents a serializeable format of a forecast storing the forecast options, fit scores,
// residual spread and coefficients
type Model struct {
	TrainStartYear int      `json:"train_start_year"`
	TrainEndYear   int      `json:"train_end_year"`
	Options        *Options `json:"options"`
	Scores         *Scores  `json:"scores"`
	Sigma          float64  `json:"sigma"`
	Weights        Weights  `json:"weights"`
}

// LoadModel decodes a json encoded forecast model
func LoadModel(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("unable to decode forecast model, %w", err)
	}
	return m, nil
}

// Write encodes the model as indented json
func (m Model) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sForecast:\n", prefix, strings.Repeat(indent, 0)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sTraining Years: %d-%d\n", prefix, strings.Repeat(indent, 1), m.TrainStartYear, m.TrainEndYear); err != nil {
		return err
	}

	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%s%sRegularization: %.3f\n", prefix, strings.Repeat(indent, 1), m.Options.Regularization); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sInterval Width: %.2f\n", prefix, strings.Repeat(indent, 1), m.Options.IntervalWidth); err != nil {
			return err
		}
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sScores:\n", prefix, strings.Repeat(indent, 0)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%sMAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			prefix, strings.Repeat(indent, 1),
			m.Scores.MAPE,
			m.Scores.MSE,
			m.Scores.R2,
		); err != nil {
			return err
		}
	}

	return m.Weights.tablePrint(w, prefix, indent, 0)
}

// Weights stores the coefficients for the forecast model
type Weights struct {
	Intercept float64         `json:"intercept"`
	Coef      []FeatureWeight `json:"coefficients"`
}

// FeatureLabels returns all of the feature labels in the same order as the coefficients
func (w *Weights) FeatureLabels() ([]FeatureLabel, error) {
	labels := make([]FeatureLabel, 0, len(w.Coef))
	for _, fw := range w.Coef {
		label, err := fw.ToLabel()
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// Coefficients returns a slice copy of the coefficients ignoring the intercept.
func (w *Weights) Coefficients() []float64 {
	coef := make([]float64, 0, len(w.Coef))
	for _, fw := range w.Coef {
		coef = append(coef, fw.Value)
	}
	return coef
}

func (w Weights) tablePrint(wr io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(wr, "%s%sWeights:\n", prefix, strings.Repeat(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(wr, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sType\tYear\tValue\t\n", prefix, strings.Repeat(indent, indentGrowth+1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tbl, "%s%sintercept\t\t%.3f\t\n", prefix, strings.Repeat(indent, indentGrowth+1), w.Intercept); err != nil {
		return err
	}
	for _, fw := range w.Coef {
		val := fmt.Sprintf("%.3f", fw.Value)
		if fw.Value == 0 {
			val = "..."
		}
		year := ""
		if fw.Type == FeatureTypeChangepoint {
			year = fmt.Sprintf("%d", fw.Changepoint.Year)
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%s\t\n",
			prefix, strings.Repeat(indent, indentGrowth+1),
			fw.Type, year, val); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// FeatureWeight represents a feature described with a type e.g. changepoint, its changepoint
// if any and the value
type FeatureWeight struct {
	Type        FeatureType  `json:"type"`
	Changepoint *Changepoint `json:"changepoint,omitempty"`
	Value       float64      `json:"value"`
}

func NewFeatureWeight(label FeatureLabel, val float64) FeatureWeight {
	fw := FeatureWeight{
		Type:  label.Type,
		Value: val,
	}
	if label.Type == FeatureTypeChangepoint {
		chpt := label.Changepoint
		fw.Changepoint = &chpt
	}
	return fw
}

// ToLabel transforms the Type and Changepoint into a feature label
func (fw *FeatureWeight) ToLabel() (FeatureLabel, error) {
	if fw == nil {
		return FeatureLabel{}, ErrUnknownFeatureType
	}
	switch fw.Type {
	case FeatureTypeGrowth:
		return FeatureLabel{Type: FeatureTypeGrowth}, nil
	case FeatureTypeChangepoint:
		if fw.Changepoint == nil {
			return FeatureLabel{}, fmt.Errorf("changepoint weight without a year, %w", ErrUnknownFeatureType)
		}
		return FeatureLabel{Type: FeatureTypeChangepoint, Changepoint: *fw.Changepoint}, nil
	}
	return FeatureLabel{}, ErrUnknownFeatureType
}
