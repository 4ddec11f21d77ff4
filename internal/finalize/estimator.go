// Package finalize binds winning hyperparameters into a model
// template, refits on the full training set, and scores the held-out
// test set exactly once.
package finalize

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
)

// RidgeParams are the open tuning placeholders of the ridge template.
// They are bound from a configuration's hyperparameter map when the
// model is finalized.
type RidgeParams struct {
	// Penalty is the L2 regularization strength applied to every
	// coefficient except the intercept.
	Penalty float64 `mapstructure:"penalty"`
	// Degree expands each feature into polynomial terms up to this
	// power. 1 means plain linear regression.
	Degree int `mapstructure:"degree"`
}

// BindParams decodes a hyperparameter map into RidgeParams. Unknown
// keys are rejected so a typo'd hyperparameter cannot silently fall
// back to a default.
func BindParams(hyperparameters map[string]any) (RidgeParams, error) {
	params := RidgeParams{Degree: 1}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &params,
		ErrorUnused: true,
	})
	if err != nil {
		return RidgeParams{}, err
	}
	if err := decoder.Decode(hyperparameters); err != nil {
		return RidgeParams{}, fmt.Errorf("finalize: binding hyperparameters: %w", err)
	}

	if params.Penalty < 0 {
		return RidgeParams{}, fmt.Errorf("finalize: penalty must be >= 0, got %f", params.Penalty)
	}
	if params.Degree < 1 {
		return RidgeParams{}, fmt.Errorf("finalize: degree must be >= 1, got %d", params.Degree)
	}
	return params, nil
}

// RidgeEstimator is a polynomial ridge regression fit by the normal
// equations. Coefficients are laid out as intercept first, then the
// polynomial expansion of each feature in column order.
type RidgeEstimator struct {
	Params RidgeParams
	Coef   []float64
}

// Fit solves (XᵀX + λI)β = Xᵀy over the polynomial expansion of the
// features. The intercept is not penalized.
func Fit(features [][]float64, y []float64, params RidgeParams) (*RidgeEstimator, error) {
	if len(features) == 0 || len(features) != len(y) {
		return nil, fmt.Errorf("finalize: need matching non-empty features and targets, got %d and %d", len(features), len(y))
	}

	x := expand(features, params.Degree)
	p := len(x[0])

	// Normal equations
	xtx := make([][]float64, p)
	xty := make([]float64, p)
	for i := 0; i < p; i++ {
		xtx[i] = make([]float64, p)
	}
	for r := range x {
		for i := 0; i < p; i++ {
			xty[i] += x[r][i] * y[r]
			for j := i; j < p; j++ {
				xtx[i][j] += x[r][i] * x[r][j]
			}
		}
	}
	for i := 0; i < p; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	// Ridge penalty, skipping the intercept column
	for i := 1; i < p; i++ {
		xtx[i][i] += params.Penalty
	}

	coef, err := solve(xtx, xty)
	if err != nil {
		return nil, err
	}
	return &RidgeEstimator{Params: params, Coef: coef}, nil
}

// Predict scores a feature matrix with the fitted coefficients.
func (e *RidgeEstimator) Predict(features [][]float64) []float64 {
	x := expand(features, e.Params.Degree)
	out := make([]float64, len(x))
	for r := range x {
		sum := 0.0
		for i, v := range x[r] {
			sum += v * e.Coef[i]
		}
		out[r] = sum
	}
	return out
}

// expand builds the design matrix: intercept column followed by each
// feature raised to powers 1..degree.
func expand(features [][]float64, degree int) [][]float64 {
	nFeat := 0
	if len(features) > 0 {
		nFeat = len(features[0])
	}
	p := 1 + nFeat*degree

	x := make([][]float64, len(features))
	for r, row := range features {
		x[r] = make([]float64, 0, p)
		x[r] = append(x[r], 1)
		for _, v := range row {
			pow := 1.0
			for d := 0; d < degree; d++ {
				pow *= v
				x[r] = append(x[r], pow)
			}
		}
	}
	return x
}

// solve performs Gaussian elimination with partial pivoting.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("finalize: singular design matrix; add a ridge penalty or drop collinear features")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	coef := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= a[i][j] * coef[j]
		}
		coef[i] = sum / a[i][i]
	}
	return coef, nil
}
