package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelrace/modelrace/internal/ranking"
)

var (
	rankStudyPath    string
	rankAllConfigs   bool
	rankOutputFormat string
)

func newRankCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank tuned models by resampled performance",
		Long: `Load every tuning artifact referenced by the study spec and rank the
models by the study metric. By default each model is collapsed to its
single best configuration; use --all to list every configuration.`,
		Args: cobra.NoArgs,
		RunE: rankCommandE,
	}

	cmd.Flags().StringVarP(&rankStudyPath, "study", "s", "study.yaml", "Path to the study spec")
	cmd.Flags().BoolVar(&rankAllConfigs, "all", false, "List every configuration instead of the best per model")
	cmd.Flags().StringVarP(&rankOutputFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

func rankCommandE(_ *cobra.Command, _ []string) error {
	if rankOutputFormat != "table" && rankOutputFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", rankOutputFormat)
	}

	spec, coll, err := loadStudy(rankStudyPath)
	if err != nil {
		return err
	}

	entries, err := ranking.Rank(coll, spec.Metric, !rankAllConfigs)
	if err != nil {
		return err
	}

	if rankOutputFormat == "json" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal ranking: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printRankTable(os.Stdout, spec.Metric, entries)
	return nil
}
