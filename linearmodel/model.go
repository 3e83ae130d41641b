// Package linearmodel is a collection of linear regression fitting implementations used by the
// scenario generator and the trend forecaster
package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model is implemented by every regression in this package. x is an m x n design matrix and y
// is an m x 1 target matrix.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}

func allFinite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// linearPredict computes x*coef + intercept for every row of x
func linearPredict(x mat.Matrix, coef []float64, intercept float64) ([]float64, error) {
	m, n := x.Dims()
	if n != len(coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(coef), ErrFeatureLenMismatch)
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(n, coef))

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = res.AtVec(i) + intercept
	}
	return out, nil
}
