package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/posterior"
	"github.com/modelrace/modelrace/internal/reporting"
)

const fallbackTermWidth = 100

// termWidth returns the terminal width, or a fallback when stdout is
// not a terminal (pipes, CI).
func termWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return fallbackTermWidth
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

func printRankTable(w io.Writer, metric string, entries []models.RankedEntry) {
	nameWidth := 12
	for _, e := range entries {
		if l := runewidth.StringWidth(e.ModelID); l > nameWidth {
			nameWidth = l
		}
		if l := runewidth.StringWidth(e.ConfigLabel); l > nameWidth {
			nameWidth = l
		}
	}
	if limit := termWidth()/3 - 2; nameWidth > limit {
		nameWidth = limit
	}

	fmt.Fprintln(w, strings.Repeat("=", 70))                      //nolint:errcheck
	fmt.Fprintf(w, " RANKING (metric: %s)\n", metric)             //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("=", 70))                      //nolint:errcheck
	fmt.Fprintln(w)                                               //nolint:errcheck
	fmt.Fprintf(w, "  %4s  %s  %s  %10s  %10s  %4s\n", "Rank",    //nolint:errcheck
		padRight("Model", nameWidth), padRight("Config", nameWidth), "Mean", "StdErr", "N")

	hasSignificant := false
	for _, e := range entries {
		marker := ""
		if e.Significant {
			marker = "  *"
			hasSignificant = true
		}
		fmt.Fprintf(w, "  %4d  %s  %s  %10.4f  %10.4f  %4d%s\n", //nolint:errcheck
			e.Rank,
			padRight(truncateName(e.ModelID, nameWidth), nameWidth),
			padRight(truncateName(e.ConfigLabel, nameWidth), nameWidth),
			e.Mean, e.StdErr, e.N, marker)
	}
	if hasSignificant {
		fmt.Fprintln(w, "\n  * paired bootstrap CI vs the leader excludes zero") //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck
}

func printPosteriorSummary(w io.Writer, p *posterior.Posterior, rope float64) {
	best := p.Best()

	fmt.Fprintln(w, strings.Repeat("=", 70))              //nolint:errcheck
	fmt.Fprintf(w, " POSTERIOR COMPARISON (metric: %s)\n", p.Metric) //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("=", 70))              //nolint:errcheck
	fmt.Fprintln(w)                                       //nolint:errcheck

	nameWidth := 12
	for _, id := range p.ModelIDs {
		if l := runewidth.StringWidth(id); l > nameWidth {
			nameWidth = l
		}
	}

	diag := make(map[string]posterior.ModelDiagnostics)
	for _, m := range p.Diagnostics.Models {
		diag[m.ModelID] = m
	}

	fmt.Fprintf(w, "  %s  %12s  %14s  %8s  %8s\n", //nolint:errcheck
		padRight("Model", nameWidth), "Post. mean", "P(beats best)", "R-hat", "ESS")
	for _, id := range p.ModelIDs {
		beats, err := p.Contrast(id, best)
		if err != nil {
			continue
		}
		d := diag[id]
		marker := ""
		if id == best {
			marker = "  *best"
		}
		fmt.Fprintf(w, "  %s  %12.4f  %14.3f  %8.3f  %8.0f%s\n", //nolint:errcheck
			padRight(truncateName(id, nameWidth), nameWidth), p.Mean(id), beats, d.RHat, d.ESS, marker)
	}
	fmt.Fprintln(w) //nolint:errcheck

	if rope > 0 {
		ropeProbs, err := p.EquivalenceProbability(rope)
		if err == nil {
			fmt.Fprintf(w, " Practical equivalence to %s (ROPE = %.3g):\n", best, rope) //nolint:errcheck
			for _, id := range p.ModelIDs {
				fmt.Fprintf(w, "  %s  %6.3f  %s\n", //nolint:errcheck
					padRight(truncateName(id, nameWidth), nameWidth), ropeProbs[id],
					reporting.InterpretEquivalence(id, ropeProbs[id], rope))
			}
			fmt.Fprintln(w) //nolint:errcheck
		}
	}

	fmt.Fprintf(w, " %s\n\n", reporting.InterpretDiagnostics(p.Diagnostics)) //nolint:errcheck
}

func printContrastMatrix(w io.Writer, p *posterior.Posterior) {
	nameWidth := 8
	for _, id := range p.ModelIDs {
		if l := runewidth.StringWidth(id); l > nameWidth {
			nameWidth = l
		}
	}

	fmt.Fprintln(w, " Pairwise P(row beats column):")              //nolint:errcheck
	fmt.Fprintf(w, "  %s", padRight("", nameWidth))                //nolint:errcheck
	for _, id := range p.ModelIDs {
		fmt.Fprintf(w, "  %s", padRight(truncateName(id, nameWidth), nameWidth)) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck

	for _, row := range p.ModelIDs {
		fmt.Fprintf(w, "  %s", padRight(truncateName(row, nameWidth), nameWidth)) //nolint:errcheck
		for _, col := range p.ModelIDs {
			if row == col {
				fmt.Fprintf(w, "  %s", padRight("-", nameWidth)) //nolint:errcheck
				continue
			}
			prob, err := p.Contrast(row, col)
			if err != nil {
				fmt.Fprintf(w, "  %s", padRight("n/a", nameWidth)) //nolint:errcheck
				continue
			}
			fmt.Fprintf(w, "  %s", padRight(fmt.Sprintf("%.3f", prob), nameWidth)) //nolint:errcheck
		}
		fmt.Fprintln(w) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck
}
