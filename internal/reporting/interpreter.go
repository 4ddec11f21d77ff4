package reporting

import (
	"fmt"

	"github.com/modelrace/modelrace/internal/posterior"
)

// InterpretContrast returns a plain-language label for a pairwise win
// probability.
func InterpretContrast(prob float64) string {
	pct := prob * 100
	switch {
	case pct >= 99:
		return "Decisive (>=99%)"
	case pct >= 90:
		return "Strong (90-99%)"
	case pct >= 70:
		return "Leaning (70-90%)"
	case pct > 30:
		return "Toss-up (30-70%)"
	default:
		return "Unlikely (<=30%)"
	}
}

// InterpretEquivalence explains a ROPE probability for one model
// relative to the best model.
func InterpretEquivalence(modelID string, prob, effectSize float64) string {
	pct := prob * 100
	switch {
	case pct >= 90:
		return fmt.Sprintf("%s is practically equivalent to the best model (%.0f%% of draws within %.3g)", modelID, pct, effectSize)
	case pct >= 50:
		return fmt.Sprintf("%s is plausibly equivalent to the best model (%.0f%% of draws within %.3g)", modelID, pct, effectSize)
	default:
		return fmt.Sprintf("%s is meaningfully worse than the best model (only %.0f%% of draws within %.3g)", modelID, pct, effectSize)
	}
}

// InterpretDiagnostics explains the convergence state of a fit.
func InterpretDiagnostics(d posterior.Diagnostics) string {
	if d.Converged() {
		return "Chains mixed well; posterior comparisons are reliable."
	}
	failed := 0
	for _, m := range d.Models {
		if !m.OK {
			failed++
		}
	}
	return fmt.Sprintf("MCMC diagnostics failed for %d model(s); treat posterior comparisons as unreliable. Rerun with more iterations or a different seed.", failed)
}
