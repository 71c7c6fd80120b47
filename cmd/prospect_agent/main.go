// Package main provides the entry point for the prospect research agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prospect_agent",
	Short: "AI prospect research agent",
	Long:  "Runs a staged AI research pipeline over a sales prospect: web-enriched analysis stages, a consolidated sales plan, and follow-up Q&A via CLI or REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
