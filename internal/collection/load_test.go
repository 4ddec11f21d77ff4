package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lmArtifact = `{
  "model_id": "lm",
  "configs": [
    {
      "label": "default",
      "hyperparameters": {"penalty": 0.1},
      "resample_metrics": [
        {"fold_id": "Fold01", "metric": "rmse", "value": 0.52},
        {"fold_id": "Fold02", "metric": "rmse", "value": 0.48}
      ]
    }
  ]
}`

const rfArtifact = `{
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

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzipArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestLoadArtifact(t *testing.T) {
	dir := t.TempDir()
	path := writeArtifact(t, dir, "lm.json", lmArtifact)

	result, err := LoadArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, "lm", result.ModelID)
	require.Len(t, result.Configs, 1)
	assert.Equal(t, "default", result.Configs[0].Label)

	values, ok := result.Configs[0].MetricValues("rmse")
	require.True(t, ok)
	assert.Equal(t, []float64{0.52, 0.48}, values)
}

func TestLoadArtifact_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := writeGzipArtifact(t, dir, "lm.json.gz", lmArtifact)

	result, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "lm", result.ModelID)
}

func TestLoadArtifact_SchemaFailure(t *testing.T) {
	dir := t.TempDir()
	// Valid JSON, but configs is required by the schema.
	path := writeArtifact(t, dir, "bad.json", `{"model_id": "lm"}`)

	_, err := LoadArtifact(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestLoadArtifact_MissingFile(t *testing.T) {
	_, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadArtifacts(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeArtifact(t, dir, "lm.json", lmArtifact),
		writeArtifact(t, dir, "rf.json", rfArtifact),
	}

	coll, err := LoadArtifacts(paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"lm", "rf"}, coll.ModelIDs())
	assert.Equal(t, []string{"Fold01", "Fold02"}, coll.FoldIDs())
}
