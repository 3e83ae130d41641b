package arima

import "math"

// maxPartialCorr bounds the partial autocorrelations recovered from initial estimates so the
// inverse transform stays finite
const maxPartialCorr = 0.99

// constrain maps unconstrained values onto the coefficients of a stationary AR polynomial by
// treating tanh(u) as partial autocorrelations and running the Durbin-Levinson recursion.
func constrain(u []float64) []float64 {
	n := len(u)
	phi := make([]float64, n)
	prev := make([]float64, n)
	for k := 0; k < n; k++ {
		r := math.Tanh(u[k])
		copy(prev, phi)
		phi[k] = r
		for j := 0; j < k; j++ {
			phi[j] = prev[j] - r*prev[k-j-1]
		}
	}
	return phi
}

// unconstrain is the inverse of constrain. Coefficients outside the stationary region are pulled
// back inside by clipping their partial autocorrelations.
func unconstrain(phi []float64) []float64 {
	n := len(phi)
	u := make([]float64, n)
	cur := make([]float64, n)
	copy(cur, phi)
	for k := n - 1; k >= 0; k-- {
		r := cur[k]
		if math.IsNaN(r) {
			r = 0
		}
		r = math.Max(-maxPartialCorr, math.Min(maxPartialCorr, r))
		u[k] = math.Atanh(r)

		denom := 1 - r*r
		next := make([]float64, k)
		for j := 0; j < k; j++ {
			next[j] = (cur[j] + r*cur[k-j-1]) / denom
		}
		copy(cur, next)
	}
	return u
}
