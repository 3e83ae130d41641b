package linearmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testModel(t *testing.T, model Model, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	t.Helper()

	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol, "intercept")

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol, "coefficients")

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol, "score")
}

// generateBenchData builds a yearly style design of nFeat slowly drifting concentration
// series with a noiseless linear target
func generateBenchData(nObs, nFeat int) (mat.Matrix, mat.Matrix) {
	x := mat.NewDense(nObs, nFeat, nil)
	y := mat.NewDense(nObs, 1, nil)
	for i := 0; i < nObs; i++ {
		var target float64
		for j := 0; j < nFeat; j++ {
			val := float64((i+1)*(j+2)%97) + float64(j)*0.5*float64(i)
			x.Set(i, j, val)
			target += float64(j+1) * val
		}
		y.Set(i, 0, target)
	}
	return x, y
}
