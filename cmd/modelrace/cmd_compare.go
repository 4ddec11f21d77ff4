package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelrace/modelrace/internal/posterior"
)

var (
	compareStudyPath    string
	compareOutputFormat string
	compareMatrix       bool
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare models with a hierarchical Bayesian fit",
		Long: `Restrict every model to its best configuration, fit a hierarchical
Bayesian model over the fold-level metric values (fold as random
effect), and report posterior win probabilities and practical
equivalence to the best model.

The fit is deterministic for a given seed. If MCMC diagnostics fail,
results are still printed but the command exits with code 1.`,
		Args: cobra.NoArgs,
		RunE: compareCommandE,
	}

	cmd.Flags().StringVarP(&compareStudyPath, "study", "s", "study.yaml", "Path to the study spec")
	cmd.Flags().StringVarP(&compareOutputFormat, "format", "f", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&compareMatrix, "matrix", false, "Also print the full pairwise contrast matrix")

	return cmd
}

func compareCommandE(cmd *cobra.Command, _ []string) error {
	if compareOutputFormat != "table" && compareOutputFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", compareOutputFormat)
	}

	spec, coll, err := loadStudy(compareStudyPath)
	if err != nil {
		return err
	}

	sampler := posterior.NewGibbsSampler(posterior.Prior{
		MeanLoc:   spec.Prior.MeanLoc,
		MeanScale: spec.Prior.MeanScale,
		VarShape:  spec.Prior.VarShape,
		VarRate:   spec.Prior.VarRate,
	})
	cfg := posterior.MCMCConfig{
		Chains:     spec.MCMC.Chains,
		Iterations: spec.MCMC.Iterations,
		BurnIn:     spec.MCMC.BurnIn,
		Seed:       spec.MCMC.Seed,
	}

	post, err := posterior.Compare(cmd.Context(), coll, spec.Metric, sampler, cfg)

	var convErr *posterior.ConvergenceError
	if err != nil && !errors.As(err, &convErr) {
		return err
	}

	if compareOutputFormat == "json" {
		if jsonErr := printPosteriorJSON(post); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	printPosteriorSummary(os.Stdout, post, spec.Rope)
	if compareMatrix {
		printContrastMatrix(os.Stdout, post)
	}
	return err
}

// posteriorJSON is the machine-readable comparison output.
type posteriorJSON struct {
	Metric      string                 `json:"metric"`
	Best        string                 `json:"best"`
	Means       map[string]float64     `json:"posterior_means"`
	BeatsBest   map[string]float64     `json:"p_beats_best"`
	Diagnostics posterior.Diagnostics  `json:"diagnostics"`
	Converged   bool                   `json:"converged"`
}

func printPosteriorJSON(p *posterior.Posterior) error {
	out := posteriorJSON{
		Metric:      p.Metric,
		Best:        p.Best(),
		Means:       make(map[string]float64, len(p.ModelIDs)),
		BeatsBest:   make(map[string]float64, len(p.ModelIDs)),
		Diagnostics: p.Diagnostics,
		Converged:   p.Diagnostics.Converged(),
	}
	for _, id := range p.ModelIDs {
		out.Means[id] = p.Mean(id)
		if prob, err := p.Contrast(id, out.Best); err == nil {
			out.BeatsBest[id] = prob
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
