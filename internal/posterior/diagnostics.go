package posterior

import (
	"math"

	"github.com/modelrace/modelrace/internal/statistics"
)

// splitRHat computes the split-chain potential scale reduction factor
// (Gelman-Rubin R-hat). Each chain is halved so within-chain trends
// show up as apparent between-chain disagreement. Values near 1
// indicate the chains are sampling the same distribution.
func splitRHat(chains [][]float64) float64 {
	var halves [][]float64
	for _, c := range chains {
		if len(c) < 4 {
			return math.Inf(1)
		}
		mid := len(c) / 2
		halves = append(halves, c[:mid], c[mid:mid*2])
	}

	n := float64(len(halves[0]))

	chainMeans := make([]float64, len(halves))
	chainVars := make([]float64, len(halves))
	for i, h := range halves {
		chainMeans[i] = statistics.Mean(h)
		chainVars[i] = statistics.Variance(h)
	}

	w := statistics.Mean(chainVars)
	b := n * statistics.Variance(chainMeans)

	if w <= 0 {
		// Degenerate chains (all draws identical) count as converged.
		if b <= 0 {
			return 1
		}
		return math.Inf(1)
	}

	varPlus := (n-1)/n*w + b/n
	return math.Sqrt(varPlus / w)
}

// effectiveSampleSize estimates the total effective sample size across
// chains using per-chain autocorrelations, truncated at the first
// negligible lag.
func effectiveSampleSize(chains [][]float64) float64 {
	total := 0.0
	for _, c := range chains {
		total += chainESS(c)
	}
	return total
}

func chainESS(draws []float64) float64 {
	n := len(draws)
	if n < 4 {
		return float64(n)
	}

	m := statistics.Mean(draws)
	c0 := 0.0
	for _, v := range draws {
		d := v - m
		c0 += d * d
	}
	c0 /= float64(n)
	if c0 == 0 {
		return float64(n)
	}

	sumRho := 0.0
	for lag := 1; lag < n/2; lag++ {
		ct := 0.0
		for i := 0; i+lag < n; i++ {
			ct += (draws[i] - m) * (draws[i+lag] - m)
		}
		rho := ct / float64(n) / c0
		if rho < 0.05 {
			break
		}
		sumRho += rho
	}

	return float64(n) / (1 + 2*sumRho)
}

// computeDiagnostics evaluates R-hat and ESS for every model's chains
// against the configured thresholds.
func computeDiagnostics(draws *ChainDraws, cfg MCMCConfig) Diagnostics {
	d := Diagnostics{
		MaxRHat: cfg.MaxRHat,
		MinESS:  cfg.MinESS,
	}
	for _, id := range draws.ModelIDs {
		chains := draws.Chains[id]
		rhat := splitRHat(chains)
		ess := effectiveSampleSize(chains)
		d.Models = append(d.Models, ModelDiagnostics{
			ModelID: id,
			RHat:    rhat,
			ESS:     ess,
			OK:      rhat <= cfg.MaxRHat && ess >= cfg.MinESS,
		})
	}
	return d
}
