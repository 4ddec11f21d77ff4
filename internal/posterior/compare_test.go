package posterior

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/models"
)

func mustPosterior(t *testing.T, metric string, draws map[string][]float64) *Posterior {
	t.Helper()
	p, err := FromDraws(metric, draws)
	require.NoError(t, err)
	return p
}

func TestContrast_PairSumsToOne(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{
		"a": {0.50, 0.52, 0.48, 0.50, 0.51},
		"b": {0.50, 0.49, 0.55, 0.50, 0.47},
	})

	ab, err := p.Contrast("a", "b")
	require.NoError(t, err)
	ba, err := p.Contrast("b", "a")
	require.NoError(t, err)

	// Ties count half on both sides, so the pair always sums to 1.
	assert.InDelta(t, 1.0, ab+ba, 1e-12)
}

func TestContrast_LowerIsBetter(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{
		"good": {0.40, 0.41, 0.39, 0.40},
		"bad":  {0.60, 0.61, 0.59, 0.60},
	})

	win, err := p.Contrast("good", "bad")
	require.NoError(t, err)
	assert.Equal(t, 1.0, win)
}

func TestContrast_HigherIsBetterMetric(t *testing.T) {
	p := mustPosterior(t, "rsq", map[string][]float64{
		"good": {0.95, 0.94, 0.96},
		"bad":  {0.80, 0.81, 0.79},
	})

	win, err := p.Contrast("good", "bad")
	require.NoError(t, err)
	assert.Equal(t, 1.0, win, "higher rsq draws should win every pair")
}

func TestContrast_UnknownModel(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{"a": {1}, "b": {2}})

	_, err := p.Contrast("a", "zzz")
	assert.Error(t, err)
	_, err = p.Contrast("zzz", "a")
	assert.Error(t, err)
}

func TestEquivalenceProbability_BestAgainstItself(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{
		"a": {0.50, 0.52, 0.48},
		"b": {0.70, 0.72, 0.68},
	})

	probs, err := p.EquivalenceProbability(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, probs[p.Best()], "best model is always equivalent to itself")
}

func TestEquivalenceProbability_MonotoneInEffectSize(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{
		"a": {0.50, 0.52, 0.48, 0.51, 0.49},
		"c": {0.53, 0.50, 0.56, 0.52, 0.58},
	})

	narrow, err := p.EquivalenceProbability(0.01)
	require.NoError(t, err)
	wide, err := p.EquivalenceProbability(0.10)
	require.NoError(t, err)

	for _, id := range p.ModelIDs {
		assert.GreaterOrEqual(t, wide[id], narrow[id],
			"widening the equivalence region must not lower the probability for %s", id)
	}
}

func TestEquivalenceProbability_NegativeEffectSize(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{"a": {1}})
	_, err := p.EquivalenceProbability(-0.1)
	assert.Error(t, err)
}

func TestFromDraws_MismatchedLengths(t *testing.T) {
	_, err := FromDraws("rmse", map[string][]float64{
		"a": {1, 2, 3},
		"b": {1, 2},
	})
	assert.Error(t, err)

	_, err = FromDraws("rmse", nil)
	assert.Error(t, err)
}

func TestPosterior_Best(t *testing.T) {
	p := mustPosterior(t, "rmse", map[string][]float64{
		"a": {0.5, 0.5},
		"b": {0.7, 0.7},
		"c": {0.6, 0.6},
	})
	assert.Equal(t, "a", p.Best())

	p = mustPosterior(t, "rsq", map[string][]float64{
		"a": {0.5, 0.5},
		"b": {0.7, 0.7},
	})
	assert.Equal(t, "b", p.Best())
}

func compareCollection(t *testing.T) *collection.ResultCollection {
	t.Helper()
	mk := func(id string, values ...float64) *models.ModelResult {
		cfg := models.ConfigResult{Label: "best"}
		for i, v := range values {
			cfg.Observations = append(cfg.Observations, models.ResampleObservation{
				FoldID: foldID(i),
				Metric: "rmse",
				Value:  v,
			})
		}
		return &models.ModelResult{ModelID: id, Configs: []models.ConfigResult{cfg}}
	}
	coll, err := collection.New([]*models.ModelResult{
		mk("lm", 0.50, 0.52, 0.48, 0.51),
		mk("rf", 0.40, 0.42, 0.38, 0.41),
	})
	require.NoError(t, err)
	return coll
}

func TestCompare_PassesBestConfigObservations(t *testing.T) {
	ctrl := gomock.NewController(t)
	sampler := NewMockSampler(ctrl)

	coll := compareCollection(t)

	draws := &ChainDraws{
		ModelIDs: []string{"lm", "rf"},
		Chains: map[string][][]float64{
			"lm": {{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}},
			"rf": {{0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4}},
		},
	}

	sampler.EXPECT().
		Sample(gomock.Any(), gomock.Len(8), gomock.Any()).
		Return(draws, nil)

	p, err := Compare(context.Background(), coll, "rmse", sampler, MCMCConfig{Seed: 1})

	// Constant chains are degenerate: R-hat passes but ESS cannot, so
	// the posterior comes back alongside a ConvergenceError.
	require.NotNil(t, p)
	var convErr *ConvergenceError
	require.True(t, errors.As(err, &convErr))

	assert.Equal(t, []string{"lm", "rf"}, p.ModelIDs)
	assert.InDelta(t, 0.5, p.Mean("lm"), 1e-12)
	assert.Equal(t, "rf", p.Best())
}

func TestCompare_SamplerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sampler := NewMockSampler(ctrl)

	sampler.EXPECT().
		Sample(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom"))

	_, err := Compare(context.Background(), compareCollection(t), "rmse", sampler, MCMCConfig{Seed: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling failed")
}

func TestCompare_UnknownMetric(t *testing.T) {
	ctrl := gomock.NewController(t)
	sampler := NewMockSampler(ctrl)

	_, err := Compare(context.Background(), compareCollection(t), "mape", sampler, MCMCConfig{Seed: 1})
	assert.Error(t, err)
}

func foldID(i int) string {
	return string(rune('A' + i))
}
