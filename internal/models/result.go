package models

import (
	"sort"
	"time"
)

// MetricRMSE is the error metric used for ranking throughout the default
// study configuration. Lower is better.
const MetricRMSE = "rmse"

// Direction indicates whether larger or smaller metric values are better.
type Direction int

const (
	// LowerIsBetter applies to error metrics such as RMSE and MAE.
	LowerIsBetter Direction = iota
	// HigherIsBetter applies to goodness-of-fit metrics such as R².
	HigherIsBetter
)

// metricDirections maps well-known metric names to their direction.
// Unknown metrics are treated as error metrics (lower is better).
var metricDirections = map[string]Direction{
	"rmse": LowerIsBetter,
	"mae":  LowerIsBetter,
	"mape": LowerIsBetter,
	"rsq":  HigherIsBetter,
	"r2":   HigherIsBetter,
}

// MetricDirection returns the ranking direction for a metric name.
func MetricDirection(metric string) Direction {
	if d, ok := metricDirections[metric]; ok {
		return d
	}
	return LowerIsBetter
}

// ResampleObservation is one metric value measured on a single
// cross-validation fold during tuning.
type ResampleObservation struct {
	FoldID string  `json:"fold_id"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// ConfigResult holds the resampled performance of one hyperparameter
// configuration of a tuned model.
type ConfigResult struct {
	Label           string                `json:"label"`
	Hyperparameters map[string]any        `json:"hyperparameters,omitempty"`
	Observations    []ResampleObservation `json:"resample_metrics"`
}

// MetricValues returns the observation values for the given metric, in
// fold-id order so that repeated calls are stable. The second return is
// false when the metric never appears in this configuration.
func (c *ConfigResult) MetricValues(metric string) ([]float64, bool) {
	type obs struct {
		fold  string
		value float64
	}
	var matched []obs
	for _, o := range c.Observations {
		if o.Metric == metric {
			matched = append(matched, obs{fold: o.FoldID, value: o.Value})
		}
	}
	if len(matched) == 0 {
		return nil, false
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].fold < matched[j].fold })
	values := make([]float64, len(matched))
	for i, m := range matched {
		values[i] = m.value
	}
	return values, true
}

// FoldIDs returns the sorted set of distinct fold identifiers seen in
// this configuration's observations.
func (c *ConfigResult) FoldIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, o := range c.Observations {
		if !seen[o.FoldID] {
			seen[o.FoldID] = true
			ids = append(ids, o.FoldID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ModelResult is the tuning artifact for one model family: every
// hyperparameter configuration that was tried, with its resampled
// metrics. Produced upstream; never mutated here.
type ModelResult struct {
	ModelID   string         `json:"model_id"`
	Configs   []ConfigResult `json:"configs"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// FoldIDs returns the union of fold identifiers across all
// configurations, sorted.
func (m *ModelResult) FoldIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range m.Configs {
		for _, id := range c.FoldIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// RankedEntry is one row of a ranking table: a model configuration with
// its mean metric, standard error, and bootstrap confidence interval
// across resamples. Significant reports whether the bootstrap CI of the
// paired fold-level differences against the ranking leader excludes
// zero; it is always false for the leader itself.
type RankedEntry struct {
	Rank        int     `json:"rank"`
	ModelID     string  `json:"model_id"`
	ConfigLabel string  `json:"config_label"`
	Mean        float64 `json:"mean"`
	StdErr      float64 `json:"std_err"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	Significant bool    `json:"significant_vs_leader"`
	N           int     `json:"n_resamples"`
}
