package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/config"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

func TestResolveRunConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "tvly-env")

	require.NoError(t, runCommand.Flags().Set("api-key", "sk-flag"))
	defer func() {
		_ = runCommand.Flags().Set("api-key", "")
		runCommand.Flags().Lookup("api-key").Changed = false
	}()

	cfg, err := resolveRunConfig(runCommand)
	require.NoError(t, err)

	assert.Equal(t, "sk-flag", cfg.APIKey)
	assert.Equal(t, "tvly-env", cfg.TavilyAPIKey)
}

func TestResolveRunConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := resolveRunConfig(runCommand)
	assert.Error(t, err)
}

func TestResolveRunConfigFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key": "sk-file", "provider": "openai", "search_backend": "disabled"}`), 0644))

	runConfigPath = path
	defer func() { runConfigPath = "" }()

	cfg, err := resolveRunConfig(runCommand)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.APIKey)
	assert.Equal(t, "disabled", cfg.SearchBackend)
}

func TestLoadStagesDefault(t *testing.T) {
	stages, err := loadStages(config.Config{})
	require.NoError(t, err)
	assert.Len(t, stages, 4)
	require.NoError(t, types.ValidateStageSet(stages))
}

func TestLoadStagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.json")
	content := `[{"id": "only", "display_name": "Only Stage", "instructions": "Analyze.", "enabled": true, "position": 1}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	stages, err := loadStages(config.Config{Stages: path})
	require.NoError(t, err)
	require.Len(t, stages, 1)
	assert.Equal(t, "only", stages[0].ID)
}
