package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/mat"
	"github.com/aouyang1/go-warming/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrNoPredictionYears        = errors.New("no years to predict")
)

// Forecast represents an additive trend model of a yearly series. The trend is piecewise linear
// with slope changes allowed at each changepoint and is fit with lasso coordinate descent so
// unneeded changepoints are driven to zero.
type Forecast struct {
	opt    *Options
	scores *Scores // score calculations after training

	labels []FeatureLabel

	trainStartYear int
	trainEndYear   int
	residual       []float64
	sigma          float64

	coef      []float64
	intercept float64
	trained   bool
}

// Prediction holds the point forecast and its uncertainty interval for each requested year
type Prediction struct {
	Years []int     `json:"years"`
	Yhat  []float64 `json:"yhat"`
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *Options) (*Forecast, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Forecast{opt: opt}, nil
}

// NewFromModel creates a new forecast instance given a forecast Model to initialize. This
// instance can be used for inference immediately and does not need to be trained again.
func NewFromModel(model Model) (*Forecast, error) {
	opt, err := model.Options.Validate()
	if err != nil {
		return nil, err
	}
	labels, err := model.Weights.FeatureLabels()
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, ErrNoModelCoefficients
	}

	f := &Forecast{
		opt:            opt,
		labels:         labels,
		trainStartYear: model.TrainStartYear,
		trainEndYear:   model.TrainEndYear,
		sigma:          model.Sigma,
		intercept:      model.Weights.Intercept,
		coef:           model.Weights.Coefficients(),
		scores:         model.Scores,
		trained:        true,
	}
	return f, nil
}

// Fit takes the input training data and fits the intercept, growth and changepoint slopes
func (f *Forecast) Fit(years []int, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(years, y)
	if err != nil {
		return err
	}

	// drop out nans
	trainingYears := make([]int, 0, trainingData.Len())
	trainingY := make([]float64, 0, trainingData.Len())
	for i := 0; i < trainingData.Len(); i++ {
		if math.IsNaN(trainingData.Y[i]) {
			continue
		}
		trainingYears = append(trainingYears, trainingData.Years[i])
		trainingY = append(trainingY, trainingData.Y[i])
	}

	if len(trainingYears) <= 1 {
		return ErrInsufficientTrainingData
	}

	f.trainStartYear = timedataset.YearSlice(trainingYears).StartYear()
	f.trainEndYear = timedataset.YearSlice(trainingYears).EndYear()

	chptOpt := f.opt.ChangepointOptions
	chpts := chptOpt.Changepoints
	if chptOpt.Auto {
		chpts = generateAutoChangepoints(trainingYears, chptOpt.AutoNumChangepoints, chptOpt.Range)
	}
	f.labels = featureLabels(chpts)

	x, err := designMatrix(trainingYears, f.trainStartYear, f.trainEndYear, f.labels)
	if err != nil {
		return err
	}
	target, err := mat.NewColumn(trainingY)
	if err != nil {
		return err
	}

	lassoOpt := linearmodel.NewDefaultLassoOptions()
	lassoOpt.Lambda = f.opt.Regularization
	lassoOpt.Iterations = f.opt.Iterations
	lassoOpt.Tolerance = f.opt.Tolerance
	model, err := linearmodel.NewLassoRegression(lassoOpt)
	if err != nil {
		return err
	}
	if err := model.Fit(x, target); err != nil {
		return fmt.Errorf("unable to fit trend, %w", err)
	}
	f.intercept = model.Intercept()
	f.coef = model.Coef()
	f.trained = true

	// use input training to include NaNs
	predicted, err := f.predictMean(trainingData.Years)
	if err != nil {
		return err
	}

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, trainingData.Len())
	floats.Add(residual, trainingData.Y)
	floats.Sub(residual, predicted)
	f.residual = residual

	finite := make([]float64, 0, len(residual))
	for _, r := range residual {
		if !math.IsNaN(r) {
			finite = append(finite, r)
		}
	}
	f.sigma = 0.0
	if len(finite) > 1 {
		f.sigma = stat.StdDev(finite, nil)
	}
	return nil
}

func (f *Forecast) predictMean(years []int) ([]float64, error) {
	x, err := designMatrix(years, f.trainStartYear, f.trainEndYear, f.labels)
	if err != nil {
		return nil, err
	}

	res := make([]float64, len(years))
	for i := range years {
		res[i] = f.intercept + floats.Dot(x.RawRowView(i), f.coef)
	}
	return res, nil
}

// Predict takes a slice of years in any order and produces the predicted value for those
// years along with an uncertainty interval derived from the training residuals.
func (f *Forecast) Predict(years []int) (*Prediction, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}
	if len(years) == 0 {
		return nil, ErrNoPredictionYears
	}

	yhat, err := f.predictMean(years)
	if err != nil {
		return nil, err
	}

	z := distuv.UnitNormal.Quantile(0.5 + f.opt.IntervalWidth/2.0)
	band := z * f.sigma

	res := &Prediction{
		Years: timedataset.YearSlice(years).Copy(),
		Yhat:  yhat,
		Upper: make([]float64, len(yhat)),
		Lower: make([]float64, len(yhat)),
	}
	for i, v := range yhat {
		res.Upper[i] = v + band
		res.Lower[i] = v - band
	}
	return res, nil
}

// Horizon predicts the n years following the end of the training window
func (f *Forecast) Horizon(n int) (*Prediction, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	years, err := timedataset.YearSlice{f.trainEndYear}.Horizon(n)
	if err != nil {
		return nil, err
	}
	return f.Predict(years)
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []FeatureLabel {
	if f == nil {
		return nil
	}
	res := make([]FeatureLabel, len(f.labels))
	copy(res, f.labels)
	return res
}

// Changepoints returns the changepoints used by the trained model
func (f *Forecast) Changepoints() []Changepoint {
	if f == nil {
		return nil
	}
	var res []Changepoint
	for _, label := range f.labels {
		if label.Type == FeatureTypeChangepoint {
			res = append(res, label.Changepoint)
		}
	}
	return res
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	if len(f.labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[f.labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// Sigma returns the standard deviation of the training residuals
func (f *Forecast) Sigma() float64 {
	if f == nil {
		return 0
	}
	return f.sigma
}

// Model returns the serializeable format of the forecast model composing of the
// forecast options, intercept, coefficients with their feature labels, and the
// model fit scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	fws := make([]FeatureWeight, 0, len(f.coef))
	for i, c := range f.coef {
		fws = append(fws, NewFeatureWeight(f.labels[i], c))
	}
	m := Model{
		TrainStartYear: f.trainStartYear,
		TrainEndYear:   f.trainEndYear,
		Options:        f.opt,
		Weights: Weights{
			Intercept: f.intercept,
			Coef:      fws,
		},
		Scores: f.scores,
		Sigma:  f.sigma,
	}
	return m, nil
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}

	eq := "y ~ "

	coef, err := f.Coefficients()
	if err != nil {
		return "", err
	}

	eq += fmt.Sprintf("%.2f", f.Intercept())
	for _, label := range f.labels {
		w := coef[label.String()]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("+%.2f*%s", w, label)
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil {
		return Scores{}
	}
	if f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}
