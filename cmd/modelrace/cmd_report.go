package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelrace/modelrace/internal/posterior"
	"github.com/modelrace/modelrace/internal/ranking"
	"github.com/modelrace/modelrace/internal/reporting"
)

var (
	reportStudyPath string
	reportOutPath   string
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a full study report (ranking + posterior comparison)",
		Long: `Run ranking and the Bayesian comparison, then write the study report
as markdown, or HTML when the output path ends in .html.`,
		Args: cobra.NoArgs,
		RunE: reportCommandE,
	}

	cmd.Flags().StringVarP(&reportStudyPath, "study", "s", "study.yaml", "Path to the study spec")
	cmd.Flags().StringVarP(&reportOutPath, "out", "o", "report.md", "Output file (.md or .html)")

	return cmd
}

func reportCommandE(cmd *cobra.Command, _ []string) error {
	spec, coll, err := loadStudy(reportStudyPath)
	if err != nil {
		return err
	}

	ranked, err := ranking.Rank(coll, spec.Metric, true)
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

	report := &reporting.StudyReport{
		StudyName: spec.Name,
		Metric:    spec.Metric,
		Ranked:    ranked,
		Posterior: post,
		Rope:      spec.Rope,
	}

	content := []byte(report.Markdown())
	if strings.HasSuffix(reportOutPath, ".html") {
		html, htmlErr := report.HTML()
		if htmlErr != nil {
			return htmlErr
		}
		content = html
	}
	if writeErr := os.WriteFile(reportOutPath, content, 0o644); writeErr != nil {
		return fmt.Errorf("writing report: %w", writeErr)
	}

	fmt.Printf("Report written to %s\n", reportOutPath)
	return err
}
