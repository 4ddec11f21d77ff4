package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStudy(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadStudySpec_Defaults(t *testing.T) {
	path := writeStudy(t, `
name: ames
artifacts:
  - "results/*.json"
`)

	spec, err := LoadStudySpec(path)
	require.NoError(t, err)

	assert.Equal(t, "ames", spec.Name)
	assert.Equal(t, MetricRMSE, spec.Metric)
	assert.Equal(t, 4, spec.MCMC.Chains)
	assert.Equal(t, 4000, spec.MCMC.Iterations)
	assert.Equal(t, 1000, spec.MCMC.BurnIn)
	assert.Equal(t, 0.05, spec.Rope)
}

func TestLoadStudySpec_EnvOverrides(t *testing.T) {
	t.Setenv("MODELRACE_METRIC", "mae")
	t.Setenv("MODELRACE_SEED", "777")
	t.Setenv("MODELRACE_ROPE", "0.2")

	path := writeStudy(t, `
name: ames
metric: rmse
artifacts: ["a.json"]
mcmc:
  seed: 1
`)

	spec, err := LoadStudySpec(path)
	require.NoError(t, err)

	assert.Equal(t, "mae", spec.Metric)
	assert.Equal(t, int64(777), spec.MCMC.Seed)
	assert.Equal(t, 0.2, spec.Rope)
}

func TestLoadStudySpec_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"missing name", "artifacts: [\"a.json\"]\n", "name is required"},
		{"no artifacts", "name: x\n", "at least one artifact"},
		{"burn-in too large", "name: x\nartifacts: [\"a.json\"]\nmcmc:\n  iterations: 100\n  burn_in: 100\n", "burn_in"},
		{"bad test fraction", "name: x\nartifacts: [\"a.json\"]\ndata:\n  test_fraction: 1.5\n", "test_fraction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStudy(t, tt.content)
			_, err := LoadStudySpec(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestResolveArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lm.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rf.json"), []byte("{}"), 0o644))

	spec := &StudySpec{Artifacts: []string{"*.json"}}
	paths, err := spec.ResolveArtifacts(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	spec = &StudySpec{Artifacts: []string{"missing-*.json"}}
	_, err = spec.ResolveArtifacts(dir)
	assert.Error(t, err, "no matches should be an error")
}
