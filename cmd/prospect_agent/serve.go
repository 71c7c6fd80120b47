package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/config"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/pipeline"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/server"
)

var (
	serveListen     string
	serveConfigPath string
	serveStagesPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running research, streaming progress, and follow-up chat.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveStagesPath, "stages", "", "Path to a stage-set JSON file (defaults to the built-in stages)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}
	if cmd.Flags().Changed("listen") {
		cfg.Listen = serveListen
	}
	if cmd.Flags().Changed("stages") {
		cfg.Stages = serveStagesPath
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())

	if cfg.APIKey == "" {
		return fmt.Errorf("an API key is required: set config api_key, OPENAI_API_KEY, or GEMINI_API_KEY")
	}

	stages, err := loadStages(cfg)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Listen:        cfg.Listen,
		APIKey:        cfg.APIKey,
		LLMConfig:     cfg.LLMConfig(),
		SearchConfig:  cfg.SearchConfig(),
		Tunables:      pipeline.Tunables{DeepSynthesisPosition: cfg.DeepSynthesisPosition},
		DefaultStages: stages,
	})

	return srv.Start()
}
