package collection

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/validation"
)

// LoadArtifact reads a single tuning result artifact from a JSON file.
// Files ending in .gz are transparently decompressed. The document is
// validated against the artifact schema before decoding.
func LoadArtifact(path string) (*models.ModelResult, error) {
	data, err := readMaybeGzip(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}

	if errs := validation.ValidateArtifactBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("artifact %s failed schema validation: %s", path, strings.Join(errs, "; "))
	}

	var result models.ModelResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding artifact %s: %w", path, err)
	}

	slog.Debug("loaded tuning artifact",
		"path", path,
		"model", result.ModelID,
		"configs", len(result.Configs))

	return &result, nil
}

// LoadArtifacts loads every artifact path and aggregates the results
// into a ResultCollection, preserving path order.
func LoadArtifacts(paths []string) (*ResultCollection, error) {
	results := make([]*models.ModelResult, 0, len(paths))
	for _, p := range paths {
		r, err := LoadArtifact(p)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return New(results)
}

// ReadArtifactBytes returns the raw JSON bytes of an artifact file,
// decompressing .gz files transparently.
func ReadArtifactBytes(path string) ([]byte, error) {
	return readMaybeGzip(path)
}

func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	}

	return io.ReadAll(r)
}
