// Package ranking orders a result collection by a chosen metric,
// optionally collapsing each model to its single best configuration.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/statistics"
)

// Epsilon is the tolerance below which two mean metric values are
// considered tied. Ties are broken by standard error, then by model id
// and configuration label so the ordering is fully deterministic.
const Epsilon = 1e-9

// ciLevel is the bootstrap confidence level attached to every ranked
// entry. The seed is fixed so repeated rankings of the same artifacts
// produce identical intervals.
const (
	ciLevel = 0.95
	ciSeed  = 0
)

// UnknownMetricError reports a metric absent from a model's observations.
type UnknownMetricError struct {
	Metric  string
	ModelID string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("ranking: metric %q not found in results for model %q", e.Metric, e.ModelID)
}

// Rank computes the mean, standard error, and bootstrap confidence
// interval of the metric for every configuration in the collection and
// returns the entries ordered best first. With selectBest set, only the
// best configuration per model is kept, so the result has exactly one
// entry per model id. Every entry below the leader is additionally
// flagged when the bootstrap CI of its paired fold-level differences
// against the leader excludes zero.
func Rank(coll *collection.ResultCollection, metric string, selectBest bool) ([]models.RankedEntry, error) {
	dir := models.MetricDirection(metric)

	var entries []models.RankedEntry
	valuesByEntry := make(map[string][]float64)
	for _, id := range coll.ModelIDs() {
		result := coll.Get(id)

		var perModel []models.RankedEntry
		for _, cfg := range result.Configs {
			values, ok := cfg.MetricValues(metric)
			if !ok {
				return nil, &UnknownMetricError{Metric: metric, ModelID: id}
			}
			ci := statistics.BootstrapCIWithSeed(values, ciLevel, ciSeed)
			valuesByEntry[entryKey(id, cfg.Label)] = values
			perModel = append(perModel, models.RankedEntry{
				ModelID:     id,
				ConfigLabel: cfg.Label,
				Mean:        ci.Mean,
				StdErr:      statistics.StdErr(values),
				CILower:     ci.Lower,
				CIUpper:     ci.Upper,
				N:           len(values),
			})
		}

		if selectBest {
			sortEntries(perModel, dir)
			perModel = perModel[:1]
		}
		entries = append(entries, perModel...)
	}

	sortEntries(entries, dir)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	markSignificance(entries, valuesByEntry)
	return entries, nil
}

// markSignificance flags entries whose paired fold-level differences
// against the leader have a bootstrap CI excluding zero. Values are
// paired by fold order (MetricValues sorts by fold id); entries with a
// different resample count than the leader are left unflagged.
func markSignificance(entries []models.RankedEntry, valuesByEntry map[string][]float64) {
	if len(entries) < 2 {
		return
	}
	leader := valuesByEntry[entryKey(entries[0].ModelID, entries[0].ConfigLabel)]
	for i := 1; i < len(entries); i++ {
		values := valuesByEntry[entryKey(entries[i].ModelID, entries[i].ConfigLabel)]
		if len(values) != len(leader) {
			continue
		}
		diffs := make([]float64, len(values))
		for j := range values {
			diffs[j] = values[j] - leader[j]
		}
		ci := statistics.BootstrapCIWithSeed(diffs, ciLevel, ciSeed)
		entries[i].Significant = statistics.IsSignificant(ci)
	}
}

func entryKey(modelID, configLabel string) string {
	return modelID + "\x00" + configLabel
}

// BestConfig returns the best-scoring configuration of a single model
// for the given metric.
func BestConfig(result *models.ModelResult, metric string) (*models.ConfigResult, error) {
	dir := models.MetricDirection(metric)

	var best *models.ConfigResult
	var bestEntry models.RankedEntry
	for i := range result.Configs {
		cfg := &result.Configs[i]
		values, ok := cfg.MetricValues(metric)
		if !ok {
			return nil, &UnknownMetricError{Metric: metric, ModelID: result.ModelID}
		}
		entry := models.RankedEntry{
			ModelID:     result.ModelID,
			ConfigLabel: cfg.Label,
			Mean:        statistics.Mean(values),
			StdErr:      statistics.StdErr(values),
		}
		if best == nil || entryLess(entry, bestEntry, dir) {
			best = cfg
			bestEntry = entry
		}
	}
	if best == nil {
		return nil, &UnknownMetricError{Metric: metric, ModelID: result.ModelID}
	}
	return best, nil
}

func sortEntries(entries []models.RankedEntry, dir models.Direction) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j], dir)
	})
}

// entryLess orders a before b when a scores strictly better. Means
// within Epsilon count as tied and fall through to standard error, then
// to model id and configuration label.
func entryLess(a, b models.RankedEntry, dir models.Direction) bool {
	if diff := a.Mean - b.Mean; math.Abs(diff) > Epsilon {
		if dir == models.HigherIsBetter {
			return diff > 0
		}
		return diff < 0
	}
	if diff := a.StdErr - b.StdErr; math.Abs(diff) > Epsilon {
		return diff < 0
	}
	if a.ModelID != b.ModelID {
		return a.ModelID < b.ModelID
	}
	return a.ConfigLabel < b.ConfigLabel
}
