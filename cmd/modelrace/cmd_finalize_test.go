package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/models"
)

func winnerCollection(t *testing.T) *collection.ResultCollection {
	t.Helper()
	mk := func(label string, values ...float64) models.ConfigResult {
		cfg := models.ConfigResult{Label: label}
		for i, v := range values {
			cfg.Observations = append(cfg.Observations, models.ResampleObservation{
				FoldID: string(rune('A' + i)),
				Metric: "rmse",
				Value:  v,
			})
		}
		return cfg
	}

	coll, err := collection.New([]*models.ModelResult{
		{ModelID: "lm", Configs: []models.ConfigResult{
			mk("default", 0.50, 0.52),
		}},
		{ModelID: "rf", Configs: []models.ConfigResult{
			mk("trees-100", 0.45, 0.47),
			mk("trees-500", 0.40, 0.42),
		}},
	})
	require.NoError(t, err)
	return coll
}

func TestSelectWinner_RankingLeader(t *testing.T) {
	spec := &models.StudySpec{Metric: "rmse"}

	modelID, config, err := selectWinner(spec, winnerCollection(t))
	require.NoError(t, err)
	assert.Equal(t, "rf", modelID)
	assert.Equal(t, "trees-500", config.Label)
}

func TestSelectWinner_PinnedModel(t *testing.T) {
	spec := &models.StudySpec{Metric: "rmse"}
	spec.Finalize.Model = "lm"

	modelID, config, err := selectWinner(spec, winnerCollection(t))
	require.NoError(t, err)
	assert.Equal(t, "lm", modelID)
	assert.Equal(t, "default", config.Label, "pinned model without config falls back to its best config")
}

func TestSelectWinner_PinnedModelAndConfig(t *testing.T) {
	spec := &models.StudySpec{Metric: "rmse"}
	spec.Finalize.Model = "rf"
	spec.Finalize.Config = "trees-100"

	modelID, config, err := selectWinner(spec, winnerCollection(t))
	require.NoError(t, err)
	assert.Equal(t, "rf", modelID)
	assert.Equal(t, "trees-100", config.Label)
}

func TestSelectWinner_UnknownPins(t *testing.T) {
	spec := &models.StudySpec{Metric: "rmse"}
	spec.Finalize.Model = "xgb"
	_, _, err := selectWinner(spec, winnerCollection(t))
	assert.Error(t, err)

	spec.Finalize.Model = "rf"
	spec.Finalize.Config = "trees-9000"
	_, _, err = selectWinner(spec, winnerCollection(t))
	assert.Error(t, err)
}
