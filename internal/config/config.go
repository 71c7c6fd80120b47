// Package config provides configuration loading and validation for the CLI
// and server. Values merge in precedence order: CLI flags, then the JSON
// config file, then environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/search"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags or environment.
type Config struct {
	// Generation
	APIKey   string `json:"api_key,omitempty"`  // Generation API key
	Provider string `json:"provider,omitempty"` // "openai" or "gemini"

	// Search
	SearchBackend    string  `json:"search_backend,omitempty"` // "tavily", "google", or "disabled"
	TavilyAPIKey     string  `json:"tavily_api_key,omitempty"`
	GoogleAPIKey     string  `json:"google_api_key,omitempty"`
	GoogleCX         string  `json:"google_cx,omitempty"` // Programmable Search engine id
	QueriesPerSecond float64 `json:"queries_per_second,omitempty"`

	// Pipeline
	Stages                string `json:"stages,omitempty"` // Path to a stage-set JSON file
	DeepSynthesisPosition int    `json:"deep_synthesis_position,omitempty"`

	// Server
	Listen string `json:"listen,omitempty"` // Listen address, e.g. ":8080"

	Verbose bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Call after
// godotenv has loaded any .env file.
func FromEnv() Config {
	cfg := Config{
		TavilyAPIKey: os.Getenv("TAVILY_API_KEY"),
		GoogleAPIKey: os.Getenv("GOOGLE_SEARCH_API_KEY"),
		GoogleCX:     os.Getenv("GOOGLE_SEARCH_CX"),
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
		cfg.Provider = string(llm.ProviderOpenAI)
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
		cfg.Provider = string(llm.ProviderGemini)
	}
	return cfg
}

// Validate checks that the configuration has valid values. Required fields
// are enforced later, after flag merging.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", string(llm.ProviderOpenAI), string(llm.ProviderGemini):
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}

	switch search.Backend(c.SearchBackend) {
	case "", search.BackendTavily, search.BackendGoogle, search.BackendDisabled:
	default:
		return fmt.Errorf("config error: unknown search_backend %q", c.SearchBackend)
	}

	if c.QueriesPerSecond < 0 {
		return fmt.Errorf("config error: 'queries_per_second' must be non-negative")
	}
	if c.DeepSynthesisPosition < 0 {
		return fmt.Errorf("config error: 'deep_synthesis_position' must be non-negative")
	}

	if c.Stages != "" {
		if _, err := os.Stat(c.Stages); os.IsNotExist(err) {
			return fmt.Errorf("config error: stages file not found: %s", c.Stages)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Used to layer file values under flag values and env values under
// file values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.SearchBackend == "" {
		result.SearchBackend = defaults.SearchBackend
	}
	if result.TavilyAPIKey == "" {
		result.TavilyAPIKey = defaults.TavilyAPIKey
	}
	if result.GoogleAPIKey == "" {
		result.GoogleAPIKey = defaults.GoogleAPIKey
	}
	if result.GoogleCX == "" {
		result.GoogleCX = defaults.GoogleCX
	}
	if result.Stages == "" {
		result.Stages = defaults.Stages
	}
	if result.Listen == "" {
		result.Listen = defaults.Listen
	}

	if result.QueriesPerSecond == 0 {
		result.QueriesPerSecond = defaults.QueriesPerSecond
	}
	if result.DeepSynthesisPosition == 0 {
		result.DeepSynthesisPosition = defaults.DeepSynthesisPosition
	}

	// Bool fields: cannot distinguish unset from false, so flags always win.

	return result
}

// LLMConfig builds the generation client config for the configured provider.
func (c *Config) LLMConfig() *llm.Config {
	if c.Provider == string(llm.ProviderGemini) {
		return llm.DefaultGeminiConfig()
	}
	return llm.DefaultOpenAIConfig()
}

// SearchConfig builds the search client config. An unset backend picks
// Tavily when its key is present, Google when its pair is present, and
// disabled otherwise.
func (c *Config) SearchConfig() search.Config {
	cfg := search.DefaultConfig()
	cfg.TavilyAPIKey = c.TavilyAPIKey
	cfg.GoogleAPIKey = c.GoogleAPIKey
	cfg.GoogleCX = c.GoogleCX
	if c.QueriesPerSecond > 0 {
		cfg.QueriesPerSecond = c.QueriesPerSecond
	}

	cfg.Backend = search.Backend(c.SearchBackend)
	if cfg.Backend == "" {
		switch {
		case c.TavilyAPIKey != "":
			cfg.Backend = search.BackendTavily
		case c.GoogleAPIKey != "" && c.GoogleCX != "":
			cfg.Backend = search.BackendGoogle
		default:
			cfg.Backend = search.BackendDisabled
		}
	}
	return cfg
}
