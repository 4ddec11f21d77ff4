package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lmTestArtifact = `{
  "model_id": "lm",
  "configs": [
    {
      "label": "default",
      "resample_metrics": [
        {"fold_id": "Fold01", "metric": "rmse", "value": 0.52},
        {"fold_id": "Fold02", "metric": "rmse", "value": 0.48}
      ]
    }
  ]
}`

const rfTestArtifact = `{
  "model_id": "rf",
  "configs": [
    {
      "label": "trees-500",
      "resample_metrics": [
        {"fold_id": "Fold01", "metric": "rmse", "value": 0.44},
        {"fold_id": "Fold02", "metric": "rmse", "value": 0.46}
      ]
    }
  ]
}`

func writeStudyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lm.json"), []byte(lmTestArtifact), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rf.json"), []byte(rfTestArtifact), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "study.yaml"), []byte(`
name: test-study
metric: rmse
artifacts:
  - "*.json"
`), 0o644))
	return dir
}

func TestLoadStudy(t *testing.T) {
	dir := writeStudyDir(t)

	spec, coll, err := loadStudy(filepath.Join(dir, "study.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test-study", spec.Name)
	assert.Equal(t, 2, coll.Len())
	assert.Equal(t, []string{"lm", "rf"}, coll.ModelIDs())
}

func TestLoadStudy_MissingSpec(t *testing.T) {
	_, _, err := loadStudy(filepath.Join(t.TempDir(), "study.yaml"))
	assert.Error(t, err)
}

func TestLoadStudy_NoMatchingArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "study.yaml"), []byte(`
name: test-study
artifacts:
  - "missing/*.json"
`), 0o644))

	_, _, err := loadStudy(filepath.Join(dir, "study.yaml"))
	assert.Error(t, err)
}
