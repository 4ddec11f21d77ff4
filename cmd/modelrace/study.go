package main

import (
	"path/filepath"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/models"
)

// loadStudy reads the study spec and aggregates every artifact it
// references into a result collection.
func loadStudy(studyPath string) (*models.StudySpec, *collection.ResultCollection, error) {
	spec, err := models.LoadStudySpec(studyPath)
	if err != nil {
		return nil, nil, err
	}

	paths, err := spec.ResolveArtifacts(filepath.Dir(studyPath))
	if err != nil {
		return nil, nil, err
	}

	coll, err := collection.LoadArtifacts(paths)
	if err != nil {
		return nil, nil, err
	}
	return spec, coll, nil
}
