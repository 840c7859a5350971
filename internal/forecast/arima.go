package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Order is an ARIMA (p,d,q) model order.
type Order struct {
	P, D, Q int
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// ErrModelFit marks any failure to fit or project a model: degenerate data,
// a singular regression, or a numerically unstable projection. Callers
// recover with a mean fallback.
var ErrModelFit = errors.New("model fit failed")

const minVariance = 1e-8

// ridgeScale sizes the regularization term used when a regression design
// matrix is collinear, relative to the magnitude of the normal equations.
const ridgeScale = 1e-6

// fitARIMAForecast fits an ARIMA model of the given order to the series and
// projects horizon steps ahead.
//
// The ARMA coefficients are estimated with the Hannan-Rissanen two-stage
// procedure on the differenced series: a long autoregression estimates the
// innovation sequence, then the AR and MA coefficients are obtained by a
// single least-squares regression on lagged values and lagged innovations.
// Forecasts iterate the fitted recursion with future innovations at zero and
// are integrated back through the differencing.
func fitARIMAForecast(series []float64, order Order, horizon int) ([]float64, error) {
	if order.P < 0 || order.D < 0 || order.Q < 0 {
		return nil, fmt.Errorf("%w: invalid order %s", ErrModelFit, order)
	}
	if len(series) <= order.D+1 {
		return nil, fmt.Errorf("%w: series too short to difference %d times", ErrModelFit, order.D)
	}

	// Difference d times, keeping the tail of each level for integration.
	seeds := make([]float64, order.D)
	w := append([]float64(nil), series...)
	for i := 0; i < order.D; i++ {
		seeds[i] = w[len(w)-1]
		next := make([]float64, len(w)-1)
		for j := 1; j < len(w); j++ {
			next[j-1] = w[j] - w[j-1]
		}
		w = next
	}

	if variance(w) < minVariance {
		return nil, fmt.Errorf("%w: insufficient variance in differenced series", ErrModelFit)
	}

	phi, theta, intercept, resid, err := fitARMA(w, order.P, order.Q)
	if err != nil {
		return nil, err
	}

	// Iterate the recursion forward with future innovations at zero.
	wExt := append([]float64(nil), w...)
	eExt := append([]float64(nil), resid...)
	projected := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		v := intercept
		for i := 0; i < order.P; i++ {
			v += phi[i] * wExt[len(wExt)-1-i]
		}
		for j := 0; j < order.Q; j++ {
			v += theta[j] * eExt[len(eExt)-1-j]
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: unstable projection", ErrModelFit)
		}
		wExt = append(wExt, v)
		eExt = append(eExt, 0)
		projected[h] = v
	}

	// Undo the differencing, innermost level first.
	for i := order.D - 1; i >= 0; i-- {
		prev := seeds[i]
		for j, v := range projected {
			prev += v
			projected[j] = prev
		}
	}

	return projected, nil
}

// fitARMA estimates ARMA(p,q) coefficients on a stationary series.
// Returns the AR coefficients, MA coefficients, intercept, and the residual
// sequence aligned to the end of the series (one residual per usable row,
// with zeros for the burn-in prefix).
func fitARMA(w []float64, p, q int) (phi, theta []float64, intercept float64, resid []float64, err error) {
	n := len(w)

	// Stage 1: long autoregression to estimate the innovations.
	m := p + q + 2
	if m < 4 {
		m = 4
	}
	if n-m < p+q+4 {
		return nil, nil, 0, nil, fmt.Errorf("%w: %d observations is too few for ARMA(%d,%d)", ErrModelFit, n, p, q)
	}

	arCoef, err := olsAR(w, m)
	if err != nil {
		return nil, nil, 0, nil, err
	}

	// Innovations from the long AR; zero over the burn-in prefix.
	eHat := make([]float64, n)
	for t := m; t < n; t++ {
		pred := arCoef[0]
		for i := 0; i < m; i++ {
			pred += arCoef[i+1] * w[t-1-i]
		}
		eHat[t] = w[t] - pred
	}

	// Stage 2: regress w_t on lagged values and lagged innovations.
	start := m + q
	rows := n - start
	cols := 1 + p + q
	if rows <= cols {
		return nil, nil, 0, nil, fmt.Errorf("%w: not enough rows for second-stage regression", ErrModelFit)
	}

	X := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		t := start + r
		X.Set(r, 0, 1)
		for i := 0; i < p; i++ {
			X.Set(r, 1+i, w[t-1-i])
		}
		for j := 0; j < q; j++ {
			X.Set(r, 1+p+j, eHat[t-1-j])
		}
		y.SetVec(r, w[t])
	}

	coef, err := solveLeastSquares(X, y)
	if err != nil {
		return nil, nil, 0, nil, fmt.Errorf("%w: second-stage regression: %v", ErrModelFit, err)
	}

	intercept = coef.AtVec(0)
	phi = make([]float64, p)
	for i := 0; i < p; i++ {
		phi[i] = coef.AtVec(1 + i)
	}
	theta = make([]float64, q)
	for j := 0; j < q; j++ {
		theta[j] = coef.AtVec(1 + p + j)
	}

	// Residuals from the fitted ARMA, for the forecast recursion's MA terms.
	resid = make([]float64, n)
	for t := start; t < n; t++ {
		pred := intercept
		for i := 0; i < p; i++ {
			pred += phi[i] * w[t-1-i]
		}
		for j := 0; j < q; j++ {
			pred += theta[j] * eHat[t-1-j]
		}
		resid[t] = w[t] - pred
	}

	return phi, theta, intercept, resid, nil
}

// olsAR fits an AR(m) model with intercept by least squares and returns
// [intercept, phi_1..phi_m].
func olsAR(w []float64, m int) ([]float64, error) {
	n := len(w)
	rows := n - m
	cols := 1 + m
	if rows <= cols {
		return nil, fmt.Errorf("%w: not enough rows for AR(%d)", ErrModelFit, m)
	}

	X := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		t := m + r
		X.Set(r, 0, 1)
		for i := 0; i < m; i++ {
			X.Set(r, 1+i, w[t-1-i])
		}
		y.SetVec(r, w[t])
	}

	coef, err := solveLeastSquares(X, y)
	if err != nil {
		return nil, fmt.Errorf("%w: long autoregression: %v", ErrModelFit, err)
	}

	out := make([]float64, cols)
	for i := range out {
		out[i] = coef.AtVec(i)
	}
	return out, nil
}

// solveLeastSquares solves X b = y in the least-squares sense. A collinear
// design matrix (an exactly periodic series satisfies a low-order linear
// recurrence, making the longer lag columns linearly dependent) makes the
// plain QR solve report near-singularity; those systems are re-solved through
// ridge-regularized normal equations, which picks a small-norm solution
// instead of failing the fit.
func solveLeastSquares(X *mat.Dense, y *mat.VecDense) (*mat.VecDense, error) {
	var coef mat.VecDense
	err := coef.SolveVec(X, y)
	if err == nil {
		return &coef, nil
	}
	var cond mat.Condition
	if !errors.As(err, &cond) {
		return nil, err
	}

	_, cols := X.Dims()
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	ridge := ridgeScale * (1 + mat.Trace(&xtx)/float64(cols))
	for i := 0; i < cols; i++ {
		xtx.Set(i, i, xtx.At(i, i)+ridge)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var out mat.VecDense
	if err := out.SolveVec(&xtx, &xty); err != nil && !errors.As(err, &cond) {
		return nil, err
	}
	return &out, nil
}

func variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(x))
}
