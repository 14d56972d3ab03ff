package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fit is a single-feature linear model y = Intercept + Slope*x.
type Fit struct {
	Slope     float64
	Intercept float64
	// R is the Pearson correlation of x and y, 0 when either side is constant.
	R float64
	// PValue is the two-sided significance of the slope under a Student t
	// distribution with n-2 degrees of freedom.
	PValue float64
	// ResidualStd is the population standard deviation of the residuals.
	ResidualStd float64
	N           int
}

// RSquared returns R*R.
func (f Fit) RSquared() float64 { return f.R * f.R }

// Predict evaluates the model at x.
func (f Fit) Predict(x float64) float64 { return f.Intercept + f.Slope*x }

// LinearFit runs ordinary least squares of y on x. Fewer than two points
// yields a flat fit through the mean with PValue 1.
func LinearFit(x, y []float64) Fit {
	n := len(y)
	if len(x) != n || n < 2 {
		return Fit{Intercept: Mean(y), PValue: 1, N: n}
	}
	if variance(x) == 0 {
		return Fit{Intercept: Mean(y), PValue: 1, N: n}
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	f := Fit{Slope: beta, Intercept: alpha, N: n}
	if r, ok := Pearson(x, y); ok {
		f.R = r
	}
	f.PValue = slopePValue(f.R, n, y)
	f.ResidualStd = residualStd(f, x, y)
	return f
}

func slopePValue(r float64, n int, y []float64) float64 {
	if n == 2 {
		if y[0] == y[1] {
			return 1
		}
		return 0
	}
	r2 := r * r
	if r2 >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r2))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

func residualStd(f Fit, x, y []float64) float64 {
	res := make([]float64, len(y))
	for i := range y {
		res[i] = y[i] - f.Predict(x[i])
	}
	return PopStdDev(res)
}

// RidgeFit fits y = Intercept + Slope*x with an L2 penalty alpha on the
// slope only; the intercept is recovered from the centred data.
func RidgeFit(x, y []float64, alpha float64) Fit {
	n := len(y)
	if len(x) != n || n == 0 {
		return Fit{PValue: 1, N: n}
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx float64
	for i := range x {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}
	f := Fit{PValue: 1, N: n}
	if sxx+alpha != 0 {
		f.Slope = sxy / (sxx + alpha)
	}
	f.Intercept = my - f.Slope*mx
	if r, ok := Pearson(x, y); ok {
		f.R = r
	}
	f.ResidualStd = residualStd(f, x, y)
	return f
}
