// Package regression fits ordinary least-squares linear models and reports
// coefficient inference alongside the estimates.
package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Term is one fitted coefficient with its inference statistics. PValue is
// the two-sided p-value of the t-test against zero.
type Term struct {
	Name        string
	Coefficient float64
	StdErr      float64
	TValue      float64
	PValue      float64
}

// Model is a fitted OLS model. Fitting is fully deterministic: the same
// inputs produce bit-identical estimates, standard errors, and p-values.
type Model struct {
	Terms          []Term
	N              int
	DF             int
	RSquared       float64
	ResidualStdErr float64
}

// Fit regresses y on the given predictors plus an implicit intercept.
// names labels the predictors, in order. Rows where y or any predictor is
// NaN are dropped before fitting. Returns an error when fewer usable rows
// remain than coefficients, or when the design matrix is singular.
func Fit(y []float64, predictors [][]float64, names []string) (*Model, error) {
	if len(predictors) != len(names) {
		return nil, fmt.Errorf("regression: %d predictors but %d names", len(predictors), len(names))
	}
	for i, p := range predictors {
		if len(p) != len(y) {
			return nil, fmt.Errorf("regression: predictor %q has %d rows, response has %d", names[i], len(p), len(y))
		}
	}

	yc, xc := dropMissing(y, predictors)
	n := len(yc)
	p := len(predictors) + 1
	if n <= p {
		return nil, fmt.Errorf("regression: %d usable rows for %d coefficients", n, p)
	}

	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, pred := range xc {
			X.Set(i, j+1, pred[i])
		}
	}
	Y := mat.NewDense(n, 1, yc)

	var qr mat.QR
	qr.Factorize(X)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, Y); err != nil {
		return nil, fmt.Errorf("regression: singular design matrix: %w", err)
	}

	// Residual variance.
	var fittedM mat.Dense
	fittedM.Mul(X, &beta)
	rss := 0.0
	meanY := 0.0
	for i := 0; i < n; i++ {
		meanY += yc[i]
	}
	meanY /= float64(n)
	tss := 0.0
	for i := 0; i < n; i++ {
		r := yc[i] - fittedM.At(i, 0)
		rss += r * r
		d := yc[i] - meanY
		tss += d * d
	}
	df := n - p
	sigma2 := rss / float64(df)

	// Coefficient covariance: sigma^2 * (X'X)^-1.
	var xtx, cov mat.Dense
	xtx.Mul(X.T(), X)
	if err := cov.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("regression: design matrix not invertible: %w", err)
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	termNames := append([]string{"(Intercept)"}, names...)
	terms := make([]Term, p)
	for j := 0; j < p; j++ {
		coef := beta.At(j, 0)
		se := math.Sqrt(sigma2 * cov.At(j, j))
		tval := coef / se
		terms[j] = Term{
			Name:        termNames[j],
			Coefficient: coef,
			StdErr:      se,
			TValue:      tval,
			PValue:      2 * tDist.CDF(-math.Abs(tval)),
		}
	}

	rsquared := 1.0
	if tss > 0 {
		rsquared = 1 - rss/tss
	}

	return &Model{
		Terms:          terms,
		N:              n,
		DF:             df,
		RSquared:       rsquared,
		ResidualStdErr: math.Sqrt(sigma2),
	}, nil
}

// dropMissing removes rows where the response or any predictor is NaN.
func dropMissing(y []float64, predictors [][]float64) ([]float64, [][]float64) {
	keep := make([]bool, len(y))
	n := 0
	for i := range y {
		ok := !math.IsNaN(y[i])
		for _, p := range predictors {
			if math.IsNaN(p[i]) {
				ok = false
				break
			}
		}
		keep[i] = ok
		if ok {
			n++
		}
	}

	yc := make([]float64, 0, n)
	xc := make([][]float64, len(predictors))
	for j := range xc {
		xc[j] = make([]float64, 0, n)
	}
	for i := range y {
		if !keep[i] {
			continue
		}
		yc = append(yc, y[i])
		for j, p := range predictors {
			xc[j] = append(xc[j], p[i])
		}
	}
	return yc, xc
}
