// Package wizard collects study settings interactively and renders a
// starter study.yaml.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// StudyDraft holds all fields collected during the interactive wizard.
type StudyDraft struct {
	Name      string
	Metric    string
	Artifacts []string
	Rope      float64
	Seed      int64
}

const studyYAMLTemplate = `name: {{ .Name }}
metric: {{ .Metric }}
artifacts:
{{- range .Artifacts }}
  - "{{ . }}"
{{- end }}
rope: {{ .Rope }}
mcmc:
  chains: 4
  iterations: 4000
  burn_in: 1000
  seed: {{ .Seed }}
`

// RunStudyWizard runs an interactive huh form to collect study
// settings. If initialName is non-empty, it pre-populates the name.
func RunStudyWizard(in io.Reader, out io.Writer, initialName string) (*StudyDraft, error) {
	var (
		name         = initialName
		metric       = "rmse"
		artifactsRaw = "results/*.json"
		ropeRaw      = "0.05"
		seedRaw      = "1234"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Study name").
				Description("A short name for this comparison study").
				Placeholder("my-study").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Ranking metric").
				Options(
					huh.NewOption("rmse", "rmse"),
					huh.NewOption("mae", "mae"),
					huh.NewOption("rsq", "rsq"),
				).
				Value(&metric),
			huh.NewInput().
				Title("Artifact globs").
				Description("Comma-separated paths or globs of tuning result files").
				Placeholder("results/*.json").
				Value(&artifactsRaw),
			huh.NewInput().
				Title("Region of practical equivalence").
				Description("Metric difference small enough to call two models equivalent").
				Value(&ropeRaw).
				Validate(validateNonNegativeFloat),
			huh.NewInput().
				Title("MCMC seed").
				Description("Seed for the posterior sampler (reproducibility)").
				Value(&seedRaw).
				Validate(validateInt),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	rope, _ := strconv.ParseFloat(strings.TrimSpace(ropeRaw), 64)
	seed, _ := strconv.ParseInt(strings.TrimSpace(seedRaw), 10, 64)

	return &StudyDraft{
		Name:      strings.TrimSpace(name),
		Metric:    metric,
		Artifacts: splitAndTrim(artifactsRaw),
		Rope:      rope,
		Seed:      seed,
	}, nil
}

// GenerateStudyYAML renders a study.yaml from the draft.
func GenerateStudyYAML(draft *StudyDraft) (string, error) {
	tmpl, err := template.New("study").Parse(studyYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, draft); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateNonNegativeFloat(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if v < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

func validateInt(s string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
