package posterior

import (
	"context"
	"fmt"
	"sort"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/ranking"
	"github.com/modelrace/modelrace/internal/statistics"
)

// Posterior holds aligned posterior draws of each model's true mean
// metric, plus the convergence diagnostics of the fit that produced
// them. Draw i of every model comes from the same joint posterior
// sample, so paired comparisons are valid.
type Posterior struct {
	ModelIDs    []string
	Metric      string
	Draws       map[string][]float64
	Diagnostics Diagnostics

	direction models.Direction
}

// Compare restricts every model in the collection to its best
// configuration for the metric, fits the hierarchical model through
// the sampler, and returns the posterior.
//
// When MCMC diagnostics fail the posterior is still returned together
// with a *ConvergenceError; callers detect it with errors.As and decide
// whether the comparison is usable.
func Compare(ctx context.Context, coll *collection.ResultCollection, metric string, sampler Sampler, cfg MCMCConfig) (*Posterior, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var observations []Observation
	for _, id := range coll.ModelIDs() {
		best, err := ranking.BestConfig(coll.Get(id), metric)
		if err != nil {
			return nil, err
		}
		for _, o := range best.Observations {
			if o.Metric != metric {
				continue
			}
			observations = append(observations, Observation{
				ModelID: id,
				FoldID:  o.FoldID,
				Value:   o.Value,
			})
		}
	}

	chainDraws, err := sampler.Sample(ctx, observations, cfg)
	if err != nil {
		return nil, fmt.Errorf("posterior: sampling failed: %w", err)
	}

	p := &Posterior{
		ModelIDs:    coll.ModelIDs(),
		Metric:      metric,
		Draws:       make(map[string][]float64, len(chainDraws.ModelIDs)),
		Diagnostics: computeDiagnostics(chainDraws, cfg),
		direction:   models.MetricDirection(metric),
	}
	for _, id := range chainDraws.ModelIDs {
		p.Draws[id] = chainDraws.Flatten(id)
	}

	if !p.Diagnostics.Converged() {
		return p, &ConvergenceError{Diagnostics: p.Diagnostics}
	}
	return p, nil
}

// FromDraws builds a Posterior directly from aligned draw vectors.
// Used by callers that already have posterior samples, and by tests.
func FromDraws(metric string, draws map[string][]float64) (*Posterior, error) {
	if len(draws) == 0 {
		return nil, fmt.Errorf("posterior: no draws")
	}
	p := &Posterior{
		Metric:    metric,
		Draws:     make(map[string][]float64, len(draws)),
		direction: models.MetricDirection(metric),
	}
	n := -1
	for id, d := range draws {
		if n == -1 {
			n = len(d)
		} else if len(d) != n {
			return nil, fmt.Errorf("posterior: draw vectors have differing lengths")
		}
		p.ModelIDs = append(p.ModelIDs, id)
		p.Draws[id] = d
	}
	sort.Strings(p.ModelIDs)
	return p, nil
}

// Mean returns the posterior mean of a model's true metric.
func (p *Posterior) Mean(modelID string) float64 {
	return statistics.Mean(p.Draws[modelID])
}

// Best returns the model id with the best posterior mean for the
// posterior's metric direction.
func (p *Posterior) Best() string {
	best := ""
	var bestMean float64
	for _, id := range p.ModelIDs {
		m := p.Mean(id)
		if best == "" || better(m, bestMean, p.direction) {
			best = id
			bestMean = m
		}
	}
	return best
}

// Contrast returns the probability that model a's true metric beats
// model b's, computed as the fraction of paired draws where a wins.
// Exact ties count half, so Contrast(a, b) + Contrast(b, a) == 1.
func (p *Posterior) Contrast(a, b string) (float64, error) {
	da, ok := p.Draws[a]
	if !ok {
		return 0, fmt.Errorf("posterior: unknown model %q", a)
	}
	db, ok := p.Draws[b]
	if !ok {
		return 0, fmt.Errorf("posterior: unknown model %q", b)
	}

	wins := 0.0
	for i := range da {
		switch {
		case da[i] == db[i]:
			wins += 0.5
		case better(da[i], db[i], p.direction):
			wins++
		}
	}
	return wins / float64(len(da)), nil
}

// EquivalenceProbability returns, per model, the probability that the
// model is practically equivalent to the best model: the fraction of
// paired draws whose absolute difference to the best model's draw is
// within effectSize (the region of practical equivalence).
func (p *Posterior) EquivalenceProbability(effectSize float64) (map[string]float64, error) {
	if effectSize < 0 {
		return nil, fmt.Errorf("posterior: effect size must be >= 0, got %f", effectSize)
	}

	best := p.Best()
	bestDraws := p.Draws[best]

	out := make(map[string]float64, len(p.ModelIDs))
	for _, id := range p.ModelIDs {
		draws := p.Draws[id]
		within := 0
		for i := range draws {
			d := draws[i] - bestDraws[i]
			if d < 0 {
				d = -d
			}
			if d <= effectSize {
				within++
			}
		}
		out[id] = float64(within) / float64(len(draws))
	}
	return out, nil
}

// better reports whether x beats y for the given metric direction.
func better(x, y float64, dir models.Direction) bool {
	if dir == models.HigherIsBetter {
		return x > y
	}
	return x < y
}
