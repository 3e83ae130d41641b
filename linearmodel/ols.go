package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept centers the features and target before solving and recovers the
	// intercept from the means afterwards.
	FitIntercept bool

	// RankTolerance is the relative singular value cutoff used to compute the numerical rank of
	// the design matrix. Zero uses DefaultRankTolerance.
	RankTolerance float64
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	if o.RankTolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS Regression options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using a singular value decomposition. When
// there are fewer observations than features the minimum norm solution is returned, which
// interpolates the training data exactly.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	rank      int
	trained   bool
}

// NewOLSRegression initializes an ordinary least squares model ready for fitting
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data. Returns ErrSingularMatrix if the
// numerical rank of the design is lower than the largest rank its shape allows, i.e. some
// feature is a linear combination of the others.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
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

	design := mat.DenseCopyOf(x)
	target := mat.Col(nil, 0, y)

	maxRank := min(m, n)
	xMeans := make([]float64, n)
	var yMean float64
	if o.opt.FitIntercept {
		// centering removes one degree of freedom from the rows
		maxRank = min(m-1, n)

		col := make([]float64, m)
		for j := 0; j < n; j++ {
			mat.Col(col, j, design)
			xMeans[j] = stat.Mean(col, nil)
			floats.AddConst(-xMeans[j], col)
			design.SetCol(j, col)
		}
		yMean = stat.Mean(target, nil)
		floats.AddConst(-yMean, target)
	}

	coef, rank, err := minNormSolve(design, target, o.opt.RankTolerance)
	if err != nil {
		return err
	}
	if rank < maxRank {
		return fmt.Errorf("design matrix has rank %d, expected %d, %w", rank, maxRank, ErrSingularMatrix)
	}

	o.coef = coef
	o.rank = rank
	o.intercept = 0.0
	if o.opt.FitIntercept {
		o.intercept = yMean - floats.Dot(xMeans, coef)
	}
	o.trained = true
	return nil
}

// minNormSolve returns the minimum norm least squares solution of x*c = y along with the
// numerical rank of x
func minNormSolve(x *mat.Dense, y []float64, rankTol float64) ([]float64, int, error) {
	m, n := x.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("singular value decomposition failed, %w", ErrSingularMatrix)
	}
	vals := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	if rankTol == 0 {
		rankTol = DefaultRankTolerance
	}
	var cutoff float64
	if len(vals) > 0 {
		cutoff = vals[0] * rankTol
	}

	var rank int
	for _, s := range vals {
		if s > cutoff {
			rank++
		}
	}

	coef := make([]float64, n)
	uCol := make([]float64, m)
	for k := 0; k < rank; k++ {
		mat.Col(uCol, k, &u)
		w := floats.Dot(uCol, y) / vals[k]
		for j := 0; j < n; j++ {
			coef[j] += w * v.At(j, k)
		}
	}
	return coef, rank, nil
}

// DefaultRankTolerance treats singular values below this fraction of the largest one as zero
const DefaultRankTolerance = 1e-10

// Predict using the OLS model
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !o.trained {
		return nil, ErrUntrainedModel
	}
	return linearPredict(x, o.coef, o.intercept)
}

// Score computes the coefficient of determination of the prediction
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
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

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	score := stat.RSquaredFrom(res, ySlice, nil)
	if math.IsNaN(score) {
		// constant target perfectly reproduced
		score = 1.0
	}
	return score, nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// Rank returns the numerical rank of the (centered) design matrix from the last fit
func (o *OLSRegression) Rank() int {
	return o.rank
}
