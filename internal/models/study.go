package models

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// StudySpec is the YAML configuration for one comparison study: which
// artifacts to load, which metric to rank on, and how the Bayesian
// comparison should be run.
type StudySpec struct {
	Name      string       `yaml:"name"`
	Metric    string       `yaml:"metric"`
	Artifacts []string     `yaml:"artifacts"`
	Rope      float64      `yaml:"rope,omitempty"`
	MCMC      MCMCSpec     `yaml:"mcmc"`
	Prior     PriorSpec    `yaml:"prior,omitempty"`
	Data      DataSpec     `yaml:"data,omitempty"`
	Finalize  FinalizeSpec `yaml:"finalize,omitempty"`
}

// MCMCSpec controls the posterior sampler.
type MCMCSpec struct {
	Chains     int   `yaml:"chains"`
	Iterations int   `yaml:"iterations"`
	BurnIn     int   `yaml:"burn_in"`
	Seed       int64 `yaml:"seed"`
}

// PriorSpec holds the hierarchical model priors. Zero values select the
// weakly-informative defaults.
type PriorSpec struct {
	MeanLoc   float64 `yaml:"mean_loc,omitempty"`
	MeanScale float64 `yaml:"mean_scale,omitempty"`
	VarShape  float64 `yaml:"var_shape,omitempty"`
	VarRate   float64 `yaml:"var_rate,omitempty"`
}

// DataSpec points at the training data used by the finalize step.
type DataSpec struct {
	Path         string  `yaml:"path"`
	Target       string  `yaml:"target"`
	TestFraction float64 `yaml:"test_fraction"`
	SplitSeed    int64   `yaml:"split_seed"`
}

// FinalizeSpec optionally pins the model/config to finalize. When empty
// the ranking winner is used.
type FinalizeSpec struct {
	Model  string `yaml:"model,omitempty"`
	Config string `yaml:"config,omitempty"`
}

// envOverrides are environment-variable overrides applied after the
// YAML file is read (MODELRACE_METRIC, MODELRACE_SEED, MODELRACE_ROPE).
type envOverrides struct {
	Metric string  `envconfig:"METRIC"`
	Seed   int64   `envconfig:"SEED"`
	Rope   float64 `envconfig:"ROPE"`
}

// LoadStudySpec reads and validates a study spec from a YAML file,
// applying MODELRACE_* environment overrides on top.
func LoadStudySpec(path string) (*StudySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading study spec: %w", err)
	}

	var spec StudySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing study spec %s: %w", path, err)
	}
	spec.applyDefaults()

	var env envOverrides
	if err := envconfig.Process("MODELRACE", &env); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}
	if env.Metric != "" {
		spec.Metric = env.Metric
	}
	if env.Seed != 0 {
		spec.MCMC.Seed = env.Seed
	}
	if env.Rope != 0 {
		spec.Rope = env.Rope
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid study spec %s: %w", path, err)
	}
	return &spec, nil
}

func (s *StudySpec) applyDefaults() {
	if s.Metric == "" {
		s.Metric = MetricRMSE
	}
	if s.MCMC.Chains == 0 {
		s.MCMC.Chains = 4
	}
	if s.MCMC.Iterations == 0 {
		s.MCMC.Iterations = 4000
	}
	if s.MCMC.BurnIn == 0 {
		s.MCMC.BurnIn = s.MCMC.Iterations / 4
	}
	if s.Rope == 0 {
		s.Rope = 0.05
	}
}

// Validate checks the spec for fields that would make a run impossible.
func (s *StudySpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Artifacts) == 0 {
		return fmt.Errorf("at least one artifact path or glob is required")
	}
	if s.MCMC.Chains < 1 {
		return fmt.Errorf("mcmc.chains must be >= 1, got %d", s.MCMC.Chains)
	}
	if s.MCMC.BurnIn >= s.MCMC.Iterations {
		return fmt.Errorf("mcmc.burn_in (%d) must be < mcmc.iterations (%d)", s.MCMC.BurnIn, s.MCMC.Iterations)
	}
	if s.Rope < 0 {
		return fmt.Errorf("rope must be >= 0, got %f", s.Rope)
	}
	if s.Data.TestFraction < 0 || s.Data.TestFraction >= 1 {
		return fmt.Errorf("data.test_fraction must be in [0, 1), got %f", s.Data.TestFraction)
	}
	return nil
}

// ResolveArtifacts expands the spec's artifact globs relative to the
// given base directory. The result is de-duplicated, in pattern order.
func (s *StudySpec) ResolveArtifacts(baseDir string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range s.Artifacts {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, pattern)
		}
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("bad artifact pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no artifacts matched patterns %v", s.Artifacts)
	}
	return paths, nil
}
