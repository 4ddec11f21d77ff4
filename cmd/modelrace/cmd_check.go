package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modelrace/modelrace/internal/collection"
	"github.com/modelrace/modelrace/internal/validation"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <artifact.json> [artifact2.json ...]",
		Short: "Validate tuning result artifacts against the schema",
		Long: `Validate one or more tuning result files against the artifact schema
without loading them into a collection. Exits non-zero when any file
fails validation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: checkCommandE,
	}
	return cmd
}

func checkCommandE(_ *cobra.Command, args []string) error {
	failures := 0
	for _, path := range args {
		data, err := collection.ReadArtifactBytes(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		errs := validation.ValidateArtifactBytes(data)
		if len(errs) == 0 {
			fmt.Printf("✓ %s\n", path)
			continue
		}
		failures++
		fmt.Printf("✗ %s\n", path)
		for _, e := range errs {
			fmt.Printf("    %s\n", e)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d artifact(s) failed validation", failures, len(args))
	}
	fmt.Printf("\nAll %d artifact(s) valid\n", len(args))
	return nil
}
