package finalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindParams(t *testing.T) {
	params, err := BindParams(map[string]any{"penalty": 0.5, "degree": 2})
	require.NoError(t, err)
	assert.Equal(t, 0.5, params.Penalty)
	assert.Equal(t, 2, params.Degree)
}

func TestBindParams_Defaults(t *testing.T) {
	params, err := BindParams(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, params.Penalty)
	assert.Equal(t, 1, params.Degree)
}

func TestBindParams_UnknownKeyRejected(t *testing.T) {
	_, err := BindParams(map[string]any{"penalti": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "penalti")
}

func TestBindParams_InvalidValues(t *testing.T) {
	_, err := BindParams(map[string]any{"penalty": -1.0})
	assert.Error(t, err)

	_, err = BindParams(map[string]any{"degree": 0})
	assert.Error(t, err)
}

func TestFit_RecoversLinearRelationship(t *testing.T) {
	// y = 3 + 2*x1 - x2, no noise
	features := [][]float64{
		{1, 0}, {0, 1}, {2, 1}, {3, 2}, {1, 4}, {5, 0},
	}
	y := make([]float64, len(features))
	for i, f := range features {
		y[i] = 3 + 2*f[0] - f[1]
	}

	est, err := Fit(features, y, RidgeParams{Degree: 1})
	require.NoError(t, err)
	require.Len(t, est.Coef, 3)
	assert.InDelta(t, 3, est.Coef[0], 1e-8)
	assert.InDelta(t, 2, est.Coef[1], 1e-8)
	assert.InDelta(t, -1, est.Coef[2], 1e-8)

	preds := est.Predict([][]float64{{4, 4}})
	assert.InDelta(t, 3+8-4, preds[0], 1e-8)
}

func TestFit_PolynomialExpansion(t *testing.T) {
	// y = 1 + x^2
	features := [][]float64{{-2}, {-1}, {0}, {1}, {2}, {3}}
	y := make([]float64, len(features))
	for i, f := range features {
		y[i] = 1 + f[0]*f[0]
	}

	est, err := Fit(features, y, RidgeParams{Degree: 2})
	require.NoError(t, err)

	preds := est.Predict([][]float64{{5}})
	assert.InDelta(t, 26, preds[0], 1e-6)
}

func TestFit_PenaltyShrinksCoefficients(t *testing.T) {
	features := [][]float64{{1, 0}, {0, 1}, {2, 1}, {3, 2}, {1, 4}}
	y := []float64{5, 2, 9, 12, 7}

	plain, err := Fit(features, y, RidgeParams{Degree: 1})
	require.NoError(t, err)
	shrunk, err := Fit(features, y, RidgeParams{Penalty: 100, Degree: 1})
	require.NoError(t, err)

	for i := 1; i < len(plain.Coef); i++ {
		assert.Less(t, abs(shrunk.Coef[i]), abs(plain.Coef[i])+1e-9,
			"penalized coefficient %d should not grow", i)
	}
}

func TestFit_SingularWithoutPenalty(t *testing.T) {
	// Second feature is a copy of the first: collinear design.
	features := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}}
	y := []float64{2, 4, 6, 8}

	_, err := Fit(features, y, RidgeParams{Degree: 1})
	assert.Error(t, err)

	// A ridge penalty makes it solvable.
	_, err = Fit(features, y, RidgeParams{Penalty: 0.1, Degree: 1})
	assert.NoError(t, err)
}

func TestFit_BadInput(t *testing.T) {
	_, err := Fit(nil, nil, RidgeParams{Degree: 1})
	assert.Error(t, err)

	_, err = Fit([][]float64{{1}}, []float64{1, 2}, RidgeParams{Degree: 1})
	assert.Error(t, err)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
