package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modelrace/modelrace/internal/wizard"
)

var initForce bool

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Interactively scaffold a study.yaml",
		Long: `Walk through the study settings interactively and write a starter
study.yaml in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}

	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing study.yaml")

	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	initialName := ""
	if len(args) == 1 {
		initialName = args[0]
	}

	outPath := "study.yaml"
	if _, err := os.Stat(outPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
	}

	draft, err := wizard.RunStudyWizard(cmd.InOrStdin(), cmd.OutOrStdout(), initialName)
	if err != nil {
		return err
	}

	content, err := wizard.GenerateStudyYAML(draft)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	abs, err := filepath.Abs(outPath)
	if err != nil {
		abs = outPath
	}
	fmt.Printf("Study spec written to %s\n", abs)
	return nil
}
