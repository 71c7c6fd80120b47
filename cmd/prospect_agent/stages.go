package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/config"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Print the built-in stage set as JSON",
	Long:  `Prints the default analysis stages with their enrichment policies. Save the output, edit it, and pass it back with --stages to customize a run.`,
	RunE:  runStages,
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}

func runStages(_ *cobra.Command, _ []string) error {
	stages := config.DefaultStageSet()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(stages); err != nil {
		return fmt.Errorf("failed to encode stages: %w", err)
	}
	return nil
}
