package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/dataset"
	"github.com/modelrace/modelrace/internal/finalize"
	"github.com/modelrace/modelrace/internal/models"
	"github.com/modelrace/modelrace/internal/ranking"
)

var (
	finalizeStudyPath string
	finalizeOutPath   string
)

func newFinalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Refit the selected model and score the held-out test set",
		Long: `Bind the winning hyperparameters into the model template, refit on
the full training partition, and score the held-out test partition
exactly once. The winner is the ranking leader unless the study spec
pins a model and configuration.`,
		Args: cobra.NoArgs,
		RunE: finalizeCommandE,
	}

	cmd.Flags().StringVarP(&finalizeStudyPath, "study", "s", "study.yaml", "Path to the study spec")
	cmd.Flags().StringVarP(&finalizeOutPath, "out", "o", "", "Write the final report JSON to this file")

	return cmd
}

func finalizeCommandE(_ *cobra.Command, _ []string) error {
	spec, coll, err := loadStudy(finalizeStudyPath)
	if err != nil {
		return err
	}
	if spec.Data.Path == "" || spec.Data.Target == "" {
		return fmt.Errorf("study spec must set data.path and data.target to finalize")
	}

	modelID, config, err := selectWinner(spec, coll)
	if err != nil {
		return err
	}

	dataPath := spec.Data.Path
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(filepath.Dir(finalizeStudyPath), dataPath)
	}
	frame, err := dataset.LoadCSV(dataPath)
	if err != nil {
		return err
	}
	split, err := dataset.NewTrainTestSplit(frame, spec.Data.TestFraction, spec.Data.SplitSeed)
	if err != nil {
		return err
	}

	fin, err := finalize.NewFinalizer(modelID, config)
	if err != nil {
		return err
	}
	if err := fin.Finalize(split.Train, spec.Data.Target); err != nil {
		return err
	}
	report, err := fin.Evaluate(split.Test, spec.Data.Target)
	if err != nil {
		return err
	}
	report.StudyName = spec.Name

	fmt.Printf("Finalized %s (config %s): refit on %d rows, evaluated once on %d rows\n",
		report.ModelID, report.ConfigLabel, report.TrainRows, report.TestRows)
	for _, name := range []string{"rmse", "mae", "rsq"} {
		if v, ok := report.TestMetrics[name]; ok {
			fmt.Printf("  %-5s %.4f\n", name, v)
		}
	}

	if finalizeOutPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal final report: %w", err)
		}
		if err := os.WriteFile(finalizeOutPath, data, 0o644); err != nil {
			return fmt.Errorf("writing final report: %w", err)
		}
		fmt.Printf("Report written to %s\n", finalizeOutPath)
	}

	return nil
}

// selectWinner resolves the model/config to finalize: the spec's
// pinned choice when present, otherwise the ranking leader.
func selectWinner(spec *models.StudySpec, coll *collection.ResultCollection) (string, *models.ConfigResult, error) {
	if spec.Finalize.Model != "" {
		result := coll.Get(spec.Finalize.Model)
		if result == nil {
			return "", nil, fmt.Errorf("finalize.model %q not found in loaded artifacts", spec.Finalize.Model)
		}
		if spec.Finalize.Config != "" {
			for i := range result.Configs {
				if result.Configs[i].Label == spec.Finalize.Config {
					return result.ModelID, &result.Configs[i], nil
				}
			}
			return "", nil, fmt.Errorf("finalize.config %q not found for model %q", spec.Finalize.Config, spec.Finalize.Model)
		}
		best, err := ranking.BestConfig(result, spec.Metric)
		if err != nil {
			return "", nil, err
		}
		return result.ModelID, best, nil
	}

	entries, err := ranking.Rank(coll, spec.Metric, true)
	if err != nil {
		return "", nil, err
	}
	winner := entries[0]
	result := coll.Get(winner.ModelID)
	for i := range result.Configs {
		if result.Configs[i].Label == winner.ConfigLabel {
			return winner.ModelID, &result.Configs[i], nil
		}
	}
	return "", nil, fmt.Errorf("winning config %q disappeared from model %q", winner.ConfigLabel, winner.ModelID)
}
