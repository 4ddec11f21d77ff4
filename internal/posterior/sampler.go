// Package posterior fits a hierarchical Bayesian model over resampled
// metric observations and exposes probabilistic comparisons between
// models: pairwise win probabilities and practical-equivalence (ROPE)
// probabilities against the best model.
//
// The fit itself is behind the Sampler interface so the comparison
// logic can be exercised with synthetic draws in tests.
package posterior

import (
	"context"
	"fmt"
	"strings"
)

// Observation is one fold-level metric value for one model, restricted
// to that model's best configuration.
type Observation struct {
	ModelID string
	FoldID  string
	Value   float64
}

// Prior holds the hierarchical model priors. Model means get a
// Normal(MeanLoc, MeanScale²) prior; the residual and fold-effect
// variances get InverseGamma(VarShape, VarRate) priors.
type Prior struct {
	MeanLoc   float64
	MeanScale float64
	VarShape  float64
	VarRate   float64
}

// DefaultPrior returns weakly-informative priors that work for metrics
// on roughly unit scale (RMSE of standardized targets, R², MAE).
func DefaultPrior() Prior {
	return Prior{
		MeanLoc:   0,
		MeanScale: 10,
		VarShape:  1,
		VarRate:   1,
	}
}

// MCMCConfig controls chain count, length, and convergence thresholds.
// Given the same config and seed, sampling is fully deterministic.
type MCMCConfig struct {
	Chains     int
	Iterations int
	BurnIn     int
	Seed       int64

	// MaxRHat and MinESS are convergence thresholds checked after
	// sampling. Zero values select the defaults.
	MaxRHat float64
	MinESS  float64
}

// DefaultMCMCConfig returns the default sampler configuration.
func DefaultMCMCConfig(seed int64) MCMCConfig {
	return MCMCConfig{
		Chains:     4,
		Iterations: 4000,
		BurnIn:     1000,
		Seed:       seed,
	}
}

func (c MCMCConfig) withDefaults() MCMCConfig {
	if c.Chains == 0 {
		c.Chains = 4
	}
	if c.Iterations == 0 {
		c.Iterations = 4000
	}
	if c.BurnIn == 0 {
		c.BurnIn = c.Iterations / 4
	}
	if c.MaxRHat == 0 {
		c.MaxRHat = 1.05
	}
	if c.MinESS == 0 {
		c.MinESS = 400
	}
	return c
}

func (c MCMCConfig) validate() error {
	if c.Chains < 1 {
		return fmt.Errorf("posterior: chains must be >= 1, got %d", c.Chains)
	}
	if c.BurnIn >= c.Iterations {
		return fmt.Errorf("posterior: burn-in (%d) must be < iterations (%d)", c.BurnIn, c.Iterations)
	}
	return nil
}

// ChainDraws holds the kept posterior draws of each model's true mean
// metric, separated by chain so convergence diagnostics can compare
// chains against each other.
type ChainDraws struct {
	// ModelIDs lists the models in a stable order.
	ModelIDs []string
	// Chains maps model id to per-chain draw sequences; every chain
	// has the same length and every model the same chain count.
	Chains map[string][][]float64
}

// Flatten concatenates a model's chains in chain order.
func (d *ChainDraws) Flatten(modelID string) []float64 {
	chains := d.Chains[modelID]
	var total int
	for _, c := range chains {
		total += len(c)
	}
	out := make([]float64, 0, total)
	for _, c := range chains {
		out = append(out, c...)
	}
	return out
}

// Sampler produces posterior draws of each model's true mean metric
// from fold-level observations.
type Sampler interface {
	Sample(ctx context.Context, observations []Observation, cfg MCMCConfig) (*ChainDraws, error)
}

// ModelDiagnostics holds convergence diagnostics for one model's
// posterior draws.
type ModelDiagnostics struct {
	ModelID string  `json:"model_id"`
	RHat    float64 `json:"r_hat"`
	ESS     float64 `json:"ess"`
	OK      bool    `json:"ok"`
}

// Diagnostics aggregates per-model convergence diagnostics.
type Diagnostics struct {
	Models  []ModelDiagnostics `json:"models"`
	MaxRHat float64            `json:"max_r_hat_threshold"`
	MinESS  float64            `json:"min_ess_threshold"`
}

// Converged reports whether every model passed both thresholds.
func (d Diagnostics) Converged() bool {
	for _, m := range d.Models {
		if !m.OK {
			return false
		}
	}
	return true
}

// ConvergenceError reports failed MCMC diagnostics. The posterior it
// accompanies is still returned to the caller; comparisons drawn from
// it should be treated as unreliable.
type ConvergenceError struct {
	Diagnostics Diagnostics
}

func (e *ConvergenceError) Error() string {
	var failed []string
	for _, m := range e.Diagnostics.Models {
		if !m.OK {
			failed = append(failed, fmt.Sprintf("%s (r_hat=%.3f ess=%.0f)", m.ModelID, m.RHat, m.ESS))
		}
	}
	return fmt.Sprintf("posterior: MCMC did not converge for %s (thresholds: r_hat <= %.2f, ess >= %.0f); rerun with more iterations or a different seed",
		strings.Join(failed, ", "), e.Diagnostics.MaxRHat, e.Diagnostics.MinESS)
}
