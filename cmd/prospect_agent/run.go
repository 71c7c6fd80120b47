package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/config"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/observability"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/pipeline"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full prospect research pipeline end-to-end",
	Long: `Executes every enabled analysis stage in order, enriching each with web
search per its policy, then synthesizes all outputs into a sales plan.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values; environment variables fill anything
still unset.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runFirstName     string
	runLastName      string
	runCompany       string
	runTitle         string
	runEmail         string
	runStagesPath    string
	runAPIKey        string
	runProvider      string
	runSearchBackend string
	runQueriesPerSec float64
	runDeepSynthesis int
	runVerbose       bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVar(&runFirstName, "first-name", "", "Prospect first name (required)")
	runCommand.Flags().StringVar(&runLastName, "last-name", "", "Prospect last name (required)")
	runCommand.Flags().StringVarP(&runCompany, "company", "c", "", "Prospect company (required)")
	runCommand.Flags().StringVarP(&runTitle, "title", "t", "", "Prospect job title")
	runCommand.Flags().StringVar(&runEmail, "email", "", "Prospect email")
	runCommand.Flags().StringVar(&runStagesPath, "stages", "", "Path to a stage-set JSON file (defaults to the built-in stages)")
	runCommand.Flags().StringVar(&runProvider, "provider", "", "Generation provider: openai or gemini")
	runCommand.Flags().StringVar(&runSearchBackend, "search-backend", "", "Search backend: tavily, google, or disabled")
	runCommand.Flags().Float64Var(&runQueriesPerSec, "queries-per-second", 0, "Sustained web search query rate")
	runCommand.Flags().IntVar(&runDeepSynthesis, "deep-synthesis-position", 0, "1-based slot that receives full prior context")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress information")

	// API key can be passed as a flag, or read from env var OPENAI_API_KEY / GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Generation API key (optional, defaults to OPENAI_API_KEY or GEMINI_API_KEY)")

	rootCmd.AddCommand(runCommand)
}

// resolveRunConfig layers flags over the config file over the environment.
func resolveRunConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
	}

	// CLI overrides, only when the flag was explicitly set.
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = runProvider
	}
	if cmd.Flags().Changed("search-backend") {
		cfg.SearchBackend = runSearchBackend
	}
	if cmd.Flags().Changed("stages") {
		cfg.Stages = runStagesPath
	}
	if cmd.Flags().Changed("queries-per-second") {
		cfg.QueriesPerSecond = runQueriesPerSec
	}
	if cmd.Flags().Changed("deep-synthesis-position") {
		cfg.DeepSynthesisPosition = runDeepSynthesis
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Environment fills anything still unset.
	cfg = cfg.MergeWithDefaults(config.FromEnv())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("an API key is required: set --api-key, OPENAI_API_KEY, or GEMINI_API_KEY")
	}
	return cfg, nil
}

// loadStages returns the configured stage set, or the built-in default.
func loadStages(cfg config.Config) ([]types.StageConfig, error) {
	if cfg.Stages != "" {
		return config.LoadStageSet(cfg.Stages)
	}
	return config.DefaultStageSet(), nil
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}

	prospect := types.Prospect{
		FirstName: runFirstName,
		LastName:  runLastName,
		Company:   runCompany,
		Title:     runTitle,
		Email:     runEmail,
	}
	if err := prospect.Validate(); err != nil {
		return fmt.Errorf("invalid prospect: %w", err)
	}

	stages, err := loadStages(cfg)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintProspect(&prospect)
		printer.PrintStageSet(stages)
	}

	opts := pipeline.RunOptions{
		Prospect:         prospect,
		Stages:           stages,
		GenerationAPIKey: cfg.APIKey,
		LLMConfig:        cfg.LLMConfig(),
		SearchConfig:     cfg.SearchConfig(),
		Tunables:         pipeline.Tunables{DeepSynthesisPosition: cfg.DeepSynthesisPosition},
		OnProgress: func(event pipeline.ProgressEvent) {
			log.Printf("[%s] %s", event.Stage, event.Message)
		},
	}

	run, err := pipeline.RunPipeline(ctx, opts)
	if run != nil && cfg.Verbose {
		for _, artifact := range run.ArtifactsInOrder() {
			printer.PrintStageResult(&artifact)
		}
		printer.PrintRunSummary(run)
	}
	if err != nil {
		return err
	}

	fmt.Println(run.Synthesis.Text)
	return nil
}
