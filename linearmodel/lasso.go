package linearmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLambda     = 1.0
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

var (
	ErrNegativeLambda     = errors.New("negative lambda")
	ErrNegativeIterations = errors.New("negative iterations")
)

// LassoOptions represents input options to run the Lasso Regression
type LassoOptions struct {
	// Lambda represents the L1 multiplier, controlling the regularization. Must be a non-negative. 0.0 results in converging
	// to Ordinary Least Squares (OLS).
	Lambda float64

	// Iterations is the maximum number of times the fit loops through training all coefficients.
	Iterations int

	// Tolerance is the smallest coefficient change relative to the largest coefficient on each
	// iteration to determine when to stop iterating.
	Tolerance float64

	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate runs basic validation on Lasso options
func (l *LassoOptions) Validate() (*LassoOptions, error) {
	if l == nil {
		l = NewDefaultLassoOptions()
	}

	if l.Lambda < 0 {
		return nil, ErrNegativeLambda
	}
	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return l, nil
}

// NewDefaultLassoOptions returns a default set of Lasso Regression options
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:       DefaultLambda,
		Iterations:   DefaultIterations,
		Tolerance:    DefaultTolerance,
		FitIntercept: true,
	}
}

// LassoRegression computes the lasso regression using coordinate descent. lambda = 0 converges to OLS
type LassoRegression struct {
	opt *LassoOptions

	coef      []float64
	intercept float64
	numIter   int
	trained   bool
}

// NewLassoRegression initializes a Lasso model ready for fitting
func NewLassoRegression(opt *LassoOptions) (*LassoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LassoRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (l *LassoRegression) Fit(x, y mat.Matrix) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	if !allFinite(x) || !allFinite(y) {
		return ErrNonFinite
	}

	// features and target are centered when fitting an intercept so it is never penalized
	xcols := make([][]float64, 0, n)
	xMeans := make([]float64, n)
	for j := 0; j < n; j++ {
		xcols = append(xcols, mat.Col(nil, j, x))
	}
	yArr := mat.Col(nil, 0, y)
	var yMean float64
	if l.opt.FitIntercept {
		for j, col := range xcols {
			xMeans[j] = stat.Mean(col, nil)
			floats.AddConst(-xMeans[j], col)
		}
		yMean = stat.Mean(yArr, nil)
		floats.AddConst(-yMean, yArr)
	}

	xdot := make([]float64, n)
	gamma := make([]float64, n)
	for j, col := range xcols {
		xdot[j] = floats.Dot(col, col)
		if xdot[j] > 0 {
			gamma[j] = l.opt.Lambda / xdot[j]
		}
	}
	beta := make([]float64, n)

	// residual tracks y - x*beta and is updated in place as each coordinate moves
	residual := make([]float64, m)
	copy(residual, yArr)

	var iter int
	for iter = 0; iter < l.opt.Iterations; iter++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		for j := 0; j < n; j++ {
			// all zero feature cannot explain anything
			if xdot[j] == 0 {
				continue
			}
			betaCurr := beta[j]
			obsCol := xcols[j]

			betaNext := floats.Dot(obsCol, residual)/xdot[j] + betaCurr
			betaNext = SoftThreshold(betaNext, gamma[j])

			if delta := betaNext - betaCurr; delta != 0 {
				floats.AddScaled(residual, -delta, obsCol)
			}

			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
			beta[j] = betaNext
		}

		// break early if we've achieved the desired tolerance
		if maxUpdate <= l.opt.Tolerance*maxCoef {
			iter++
			break
		}
	}
	l.numIter = iter

	l.coef = beta
	l.intercept = 0.0
	if l.opt.FitIntercept {
		l.intercept = yMean - floats.Dot(xMeans, beta)
	}
	l.trained = true
	return nil
}

// Predict using the Lasso model
func (l *LassoRegression) Predict(x mat.Matrix) ([]float64, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !l.trained {
		return nil, ErrUntrainedModel
	}
	return linearPredict(x, l.coef, l.intercept)
}

// Score computes the coefficient of determination of the prediction
func (l *LassoRegression) Score(x, y mat.Matrix) (float64, error) {
	if l.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := l.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	score := stat.RSquaredFrom(res, ySlice, nil)
	if math.IsNaN(score) {
		score = 1.0
	}

	return score, nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (l *LassoRegression) Intercept() float64 {
	return l.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (l *LassoRegression) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

// Iterations returns the number of coordinate descent passes used by the last fit
func (l *LassoRegression) Iterations() int {
	return l.numIter
}

// SoftThreshold returns 0.0 if the absolute value is less than or equal to the gamma input and
// otherwise shrinks the value towards zero by gamma
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}
