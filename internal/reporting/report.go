// Package reporting renders ranking tables, posterior comparisons, and
// the final study report as markdown and HTML.
package reporting

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/posterior"
)

// StudyReport collects everything known at the end of a study for
// rendering. Any section may be nil/empty; only populated sections are
// rendered.
type StudyReport struct {
	StudyName string
	Metric    string
	Ranked    []models.RankedEntry
	Posterior *posterior.Posterior
	Rope      float64
	Final     *models.FinalReport
}

// Markdown renders the study report as a markdown document.
func (r *StudyReport) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Model comparison: %s\n\n", r.StudyName)
	fmt.Fprintf(&b, "Generated %s. Ranking metric: `%s`.\n\n", time.Now().UTC().Format(time.RFC3339), r.Metric)

	if len(r.Ranked) > 0 {
		b.WriteString("## Ranking\n\n")
		b.WriteString("| Rank | Model | Config | Mean | Std Err | 95% CI | Resamples | Sig |\n")
		b.WriteString("|-----:|-------|--------|-----:|--------:|--------|----------:|:---:|\n")
		for _, e := range r.Ranked {
			sig := ""
			if e.Significant {
				sig = "*"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %.4f | %.4f | [%.4f, %.4f] | %d | %s |\n",
				e.Rank, e.ModelID, e.ConfigLabel, e.Mean, e.StdErr, e.CILower, e.CIUpper, e.N, sig)
		}
		b.WriteString("\nSig: paired bootstrap CI against the leader excludes zero.\n")
		b.WriteString("\n")
	}

	if r.Posterior != nil {
		r.writePosteriorSections(&b)
	}

	if r.Final != nil {
		b.WriteString("## Final test-set evaluation\n\n")
		fmt.Fprintf(&b, "Selected **%s** (config `%s`), refit on %d training rows, scored once on %d held-out rows.\n\n",
			r.Final.ModelID, r.Final.ConfigLabel, r.Final.TrainRows, r.Final.TestRows)
		b.WriteString("| Metric | Value |\n|--------|------:|\n")
		for _, name := range sortedMetricNames(r.Final.TestMetrics) {
			fmt.Fprintf(&b, "| %s | %.4f |\n", name, r.Final.TestMetrics[name])
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (r *StudyReport) writePosteriorSections(b *strings.Builder) {
	p := r.Posterior
	best := p.Best()

	b.WriteString("## Posterior comparison\n\n")
	fmt.Fprintf(b, "Best model by posterior mean: **%s**. %s\n\n", best, InterpretDiagnostics(p.Diagnostics))

	b.WriteString("| Model | Posterior mean | P(beats best) | Evidence | R-hat | ESS |\n")
	b.WriteString("|-------|---------------:|--------------:|----------|------:|----:|\n")
	diag := make(map[string]posterior.ModelDiagnostics)
	for _, m := range p.Diagnostics.Models {
		diag[m.ModelID] = m
	}
	for _, id := range p.ModelIDs {
		beats, err := p.Contrast(id, best)
		if err != nil {
			continue
		}
		evidence := "-"
		if id != best {
			evidence = InterpretContrast(beats)
		}
		d := diag[id]
		fmt.Fprintf(b, "| %s | %.4f | %.3f | %s | %.3f | %.0f |\n", id, p.Mean(id), beats, evidence, d.RHat, d.ESS)
	}
	b.WriteString("\n")

	if r.Rope > 0 {
		if rope, err := p.EquivalenceProbability(r.Rope); err == nil {
			fmt.Fprintf(b, "### Practical equivalence (ROPE = %.3g)\n\n", r.Rope)
			for _, id := range p.ModelIDs {
				fmt.Fprintf(b, "- %s\n", InterpretEquivalence(id, rope[id], r.Rope))
			}
			b.WriteString("\n")
		}
	}
}

// HTML renders the markdown report to a standalone HTML fragment.
func (r *StudyReport) HTML() ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("reporting: rendering HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedMetricNames(metrics map[string]float64) []string {
	names := make([]string, 0, len(metrics))
	for n := range metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
