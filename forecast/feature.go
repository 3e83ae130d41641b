package forecast

import (
	"errors"

	"github.com/aouyang1/go-warming/timedataset"
	"gonum.org/v1/gonum/mat"
)

var ErrUnknownFeatureType = errors.New("unknown feature type")

// FeatureType distinguishes the trend features of the model
type FeatureType string

const (
	FeatureTypeGrowth      FeatureType = "growth"
	FeatureTypeChangepoint FeatureType = "changepoint"
)

// FeatureLabel identifies a single column of the design matrix
type FeatureLabel struct {
	Type        FeatureType `json:"type"`
	Changepoint Changepoint `json:"changepoint"`
}

func (f FeatureLabel) String() string {
	if f.Type == FeatureTypeChangepoint {
		return "chpt_" + f.Changepoint.Name
	}
	return string(f.Type)
}

// featureLabels returns the growth feature followed by one hinge feature per changepoint
func featureLabels(chpts []Changepoint) []FeatureLabel {
	labels := make([]FeatureLabel, 0, len(chpts)+1)
	labels = append(labels, FeatureLabel{Type: FeatureTypeGrowth})
	for _, chpt := range chpts {
		labels = append(labels, FeatureLabel{Type: FeatureTypeChangepoint, Changepoint: chpt})
	}
	return labels
}

// designMatrix builds the feature matrix for the given years. Time is scaled so the training
// window spans [0, 1]. Each changepoint contributes max(0, t - t_chpt).
func designMatrix(years []int, trainStart, trainEnd int, labels []FeatureLabel) (*mat.Dense, error) {
	ref := timedataset.YearSlice{trainStart, trainEnd}
	t := timedataset.YearSlice(years).Scale(ref)

	x := mat.NewDense(len(years), len(labels), nil)
	for j, label := range labels {
		switch label.Type {
		case FeatureTypeGrowth:
			x.SetCol(j, t)
		case FeatureTypeChangepoint:
			c := timedataset.YearSlice{label.Changepoint.Year}.Scale(ref)[0]
			col := make([]float64, len(t))
			for i, tPnt := range t {
				if tPnt > c {
					col[i] = tPnt - c
				}
			}
			x.SetCol(j, col)
		default:
			return nil, ErrUnknownFeatureType
		}
	}
	return x, nil
}
