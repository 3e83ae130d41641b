// Package arima fits autoregressive integrated moving average models by conditional sum of
// squares and produces multi-step forecasts with uncertainty intervals.
package arima

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-warming/linearmodel"
	"github.com/aouyang1/go-warming/mat"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInsufficientData = errors.New("not enough observations for the requested order")
	ErrNonFinite        = errors.New("series contains NaN or infinite values")
	ErrUntrained        = errors.New("arima model has not been fit")
	ErrInvalidSteps     = errors.New("forecast steps must be positive")
	ErrInvalidWidth     = errors.New("interval width must be in (0, 1)")
)

const (
	DefaultMaxEvaluations = 5000
	DefaultIntervalWidth  = 0.8
)

// Options configures the ARIMA fit
type Options struct {
	Order Order `json:"order"`

	// MaxEvaluations caps the number of objective evaluations of the CSS refinement
	MaxEvaluations int `json:"max_evaluations"`

	// IncludeMean estimates a constant mean for undifferenced models. Differenced models never
	// carry one.
	IncludeMean bool `json:"include_mean"`
}

// NewDefaultOptions returns ARIMA(2,1,2) options
func NewDefaultOptions() *Options {
	return &Options{
		Order:          DefaultOrder,
		MaxEvaluations: DefaultMaxEvaluations,
		IncludeMean:    true,
	}
}

// Validate fills in defaults and checks the order
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if err := o.Order.Validate(); err != nil {
		return nil, err
	}
	if o.MaxEvaluations <= 0 {
		o.MaxEvaluations = DefaultMaxEvaluations
	}
	return o, nil
}

// Params are the fitted coefficients of the model
type Params struct {
	AR     []float64 `json:"ar"`
	MA     []float64 `json:"ma"`
	Mean   float64   `json:"mean"`
	Sigma2 float64   `json:"sigma2"`
}

// Model is an ARIMA(p,d,q) model. The differenced series w follows
// w_t - mean = sum(ar_i * (w_{t-i} - mean)) + e_t + sum(ma_j * e_{t-j}).
type Model struct {
	opt *Options

	levels [][]float64 // levels[k] is the series differenced k times
	w      []float64   // fully differenced series minus the mean
	resid  []float64

	ar     []float64
	ma     []float64
	mean   float64
	sigma2 float64
	css    float64
	nEff   int

	trained bool
}

// New creates an unfit model with the given options. Defaults are used when nil.
func New(opt *Options) (*Model, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Model{opt: opt}, nil
}

// Order returns the model order
func (m *Model) Order() Order {
	return m.opt.Order
}

// Fit estimates the model from the observed series
func (m *Model) Fit(y []float64) error {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value at %d, %w", i, ErrNonFinite)
		}
	}
	order := m.opt.Order
	minObs := order.D + order.P + order.Q + 2
	if len(y) < minObs {
		return fmt.Errorf("got %d observations but need at least %d for order %s, %w", len(y), minObs, order, ErrInsufficientData)
	}

	m.levels = make([][]float64, 0, order.D+1)
	cur := append([]float64(nil), y...)
	m.levels = append(m.levels, cur)
	for k := 0; k < order.D; k++ {
		cur = difference(cur)
		m.levels = append(m.levels, cur)
	}

	w := append([]float64(nil), cur...)
	m.mean = 0.0
	if order.D == 0 && m.opt.IncludeMean {
		m.mean = stat.Mean(w, nil)
		floats.AddConst(-m.mean, w)
	}
	m.w = w

	ar, ma := m.initialParams()

	if order.P+order.Q > 0 {
		x0 := append(unconstrain(ar), unconstrain(negate(ma))...)
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				arC, maC := m.unpack(x)
				css, _ := cssResiduals(m.w, arC, maC)
				return css
			},
		}
		res, err := optimize.Minimize(problem, x0, &optimize.Settings{
			FuncEvaluations: m.opt.MaxEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Relative:   1e-10,
				Iterations: 200,
			},
		}, &optimize.NelderMead{})
		if err != nil {
			slog.Warn("css refinement failed, keeping initial estimates", "order", order.String(), "error", err)
			ar, ma = m.unpack(x0)
		} else {
			ar, ma = m.unpack(res.X)
		}
	}

	m.ar = ar
	m.ma = ma
	m.css, m.resid = cssResiduals(m.w, m.ar, m.ma)
	m.nEff = len(m.w) - order.P
	m.sigma2 = m.css / float64(m.nEff)
	m.trained = true
	return nil
}

func (m *Model) unpack(x []float64) ([]float64, []float64) {
	p := m.opt.Order.P
	return constrain(x[:p]), negate(constrain(x[p:]))
}

// initialParams computes Hannan-Rissanen estimates: a long autoregression supplies innovation
// estimates, then the series is regressed on its own lags and the lagged innovations.
func (m *Model) initialParams() ([]float64, []float64) {
	p, q := m.opt.Order.P, m.opt.Order.Q
	ar := make([]float64, p)
	ma := make([]float64, q)
	n := len(m.w)
	if p+q == 0 {
		return ar, ma
	}

	innovations := make([]float64, n)
	start := p
	if q > 0 {
		k := max(p+q, int(math.Ceil(math.Log(float64(n))*2)))
		if n-k < 2*(p+q)+2 {
			return ar, ma
		}
		coef, err := lagRegression(m.w, k, nil, 0, k)
		if err != nil {
			return ar, ma
		}
		for t := k; t < n; t++ {
			pred := 0.0
			for i := 0; i < k; i++ {
				pred += coef[i] * m.w[t-i-1]
			}
			innovations[t] = m.w[t] - pred
		}
		start = k + q
	}

	if n-start < p+q+1 {
		return ar, ma
	}
	coef, err := lagRegression(m.w, p, innovations, q, start)
	if err != nil {
		return ar, ma
	}
	copy(ar, coef[:p])
	copy(ma, coef[p:])
	return ar, ma
}

// lagRegression regresses w_t on p lags of w and q lags of e for every t >= s, without an
// intercept
func lagRegression(w []float64, p int, e []float64, q int, s int) ([]float64, error) {
	n := len(w)
	rows := n - s
	if rows <= 0 {
		return nil, ErrInsufficientData
	}

	cols := make([][]float64, 0, p+q)
	for i := 1; i <= p; i++ {
		col := make([]float64, rows)
		for t := s; t < n; t++ {
			col[t-s] = w[t-i]
		}
		cols = append(cols, col)
	}
	for j := 1; j <= q; j++ {
		col := make([]float64, rows)
		for t := s; t < n; t++ {
			col[t-s] = e[t-j]
		}
		cols = append(cols, col)
	}

	x, err := mat.NewDenseFromColumns(cols...)
	if err != nil {
		return nil, err
	}
	y, err := mat.NewColumn(w[s:])
	if err != nil {
		return nil, err
	}

	opt := linearmodel.NewDefaultOLSOptions()
	opt.FitIntercept = false
	model, err := linearmodel.NewOLSRegression(opt)
	if err != nil {
		return nil, err
	}
	if err := model.Fit(x, y); err != nil {
		return nil, err
	}
	return model.Coef(), nil
}

// cssResiduals computes the conditional residuals e_t for t >= p with earlier innovations set to
// zero and returns their sum of squares
func cssResiduals(w, ar, ma []float64) (float64, []float64) {
	p, q := len(ar), len(ma)
	resid := make([]float64, len(w))
	var css float64
	for t := p; t < len(w); t++ {
		e := w[t]
		for i := 0; i < p; i++ {
			e -= ar[i] * w[t-i-1]
		}
		for j := 0; j < q; j++ {
			if t-j-1 >= p {
				e -= ma[j] * resid[t-j-1]
			}
		}
		resid[t] = e
		css += e * e
	}
	return css, resid
}

func difference(y []float64) []float64 {
	if len(y) < 2 {
		return nil
	}
	res := make([]float64, len(y)-1)
	for i := 1; i < len(y); i++ {
		res[i-1] = y[i] - y[i-1]
	}
	return res
}

func negate(x []float64) []float64 {
	res := make([]float64, len(x))
	for i, v := range x {
		res[i] = -v
	}
	return res
}

// Params returns a copy of the fitted coefficients
func (m *Model) Params() Params {
	return Params{
		AR:     append([]float64(nil), m.ar...),
		MA:     append([]float64(nil), m.ma...),
		Mean:   m.mean,
		Sigma2: m.sigma2,
	}
}

// Sigma2 returns the innovation variance estimate
func (m *Model) Sigma2() float64 {
	return m.sigma2
}

// AIC returns the Akaike information criterion of the conditional gaussian likelihood
func (m *Model) AIC() float64 {
	if !m.trained || m.nEff == 0 {
		return math.NaN()
	}
	k := m.opt.Order.P + m.opt.Order.Q + 1
	if m.opt.Order.D == 0 && m.opt.IncludeMean {
		k++
	}
	n := float64(m.nEff)
	loglik := -n / 2.0 * (math.Log(2*math.Pi*m.sigma2) + 1)
	return -2*loglik + 2*float64(k)
}

// Residuals returns the conditional residuals of the differenced series
func (m *Model) Residuals() []float64 {
	return append([]float64(nil), m.resid...)
}

// Prediction is a multi-step forecast of the original series
type Prediction struct {
	Mean  []float64 `json:"mean"`
	Upper []float64 `json:"upper"`
	Lower []float64 `json:"lower"`
}

// Forecast predicts the next steps values of the original series
func (m *Model) Forecast(steps int) ([]float64, error) {
	res, err := m.ForecastInterval(steps, DefaultIntervalWidth)
	if err != nil {
		return nil, err
	}
	return res.Mean, nil
}

// ForecastInterval predicts the next steps values along with a symmetric interval covering
// width of the predictive distribution
func (m *Model) ForecastInterval(steps int, width float64) (*Prediction, error) {
	if !m.trained {
		return nil, ErrUntrained
	}
	if steps <= 0 {
		return nil, ErrInvalidSteps
	}
	if width <= 0 || width >= 1 {
		return nil, ErrInvalidWidth
	}
	p, q := len(m.ar), len(m.ma)

	// extend the differenced series and residuals with future values, future innovations are zero
	n := len(m.w)
	w := append(append([]float64(nil), m.w...), make([]float64, steps)...)
	e := append(append([]float64(nil), m.resid...), make([]float64, steps)...)
	for t := n; t < n+steps; t++ {
		v := 0.0
		for i := 0; i < p; i++ {
			if t-i-1 >= 0 {
				v += m.ar[i] * w[t-i-1]
			}
		}
		for j := 0; j < q; j++ {
			if t-j-1 >= 0 {
				v += m.ma[j] * e[t-j-1]
			}
		}
		w[t] = v
	}

	fc := make([]float64, steps)
	for i := range fc {
		fc[i] = w[n+i] + m.mean
	}
	// integrate back through each differencing level
	for k := len(m.levels) - 2; k >= 0; k-- {
		level := m.levels[k]
		last := level[len(level)-1]
		for i := range fc {
			last += fc[i]
			fc[i] = last
		}
	}

	psi := m.psiWeights(steps)
	z := distuv.UnitNormal.Quantile(0.5 + width/2.0)
	res := &Prediction{
		Mean:  fc,
		Upper: make([]float64, steps),
		Lower: make([]float64, steps),
	}
	var cum float64
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		band := z * math.Sqrt(m.sigma2*cum)
		res.Upper[h] = fc[h] + band
		res.Lower[h] = fc[h] - band
	}
	return res, nil
}

// psiWeights returns the first n coefficients of the infinite moving average representation of
// the integrated process
func (m *Model) psiWeights(n int) []float64 {
	// expand ar(B) * (1-B)^d into a single autoregressive polynomial
	poly := make([]float64, len(m.ar)+1)
	poly[0] = 1
	for i, a := range m.ar {
		poly[i+1] = -a
	}
	for k := 0; k < m.opt.Order.D; k++ {
		next := make([]float64, len(poly)+1)
		for i, c := range poly {
			next[i] += c
			next[i+1] -= c
		}
		poly = next
	}

	psi := make([]float64, n)
	psi[0] = 1
	for j := 1; j < n; j++ {
		v := 0.0
		if j-1 < len(m.ma) {
			v = m.ma[j-1]
		}
		for i := 1; i < len(poly) && i <= j; i++ {
			v -= poly[i] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}
