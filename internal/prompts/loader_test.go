package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPrompts(t *testing.T) {
	tests := []struct {
		filename string
		key      string
		contains string
	}{
		{StagesFile, "prospect_research", "REQUIRED OUTPUT STRUCTURE"},
		{StagesFile, "tech_stack", "tech stack researcher"},
		{StagesFile, "account_mapping", "organizational charts"},
		{StagesFile, "strategy", "strategic sales consultant"},
		{DirectivesFile, "stage_task", "CRITICAL INSTRUCTIONS"},
		{DirectivesFile, "deep_research_task", "PROSPECT RESEARCH"},
		{DirectivesFile, "synthesis_system", "executive sales strategist"},
		{DirectivesFile, "synthesis_task", "RESEARCH DATA TO INTEGRATE"},
		{DirectivesFile, "chat_system", "RESEARCH CONTEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.key, func(t *testing.T) {
			prompt, err := Get(tt.filename, tt.key)
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.contains)
		})
	}
}

func TestGetMissing(t *testing.T) {
	_, err := Get(StagesFile, "nonexistent")
	assert.Error(t, err)

	_, err = Get("missing.json", "key")
	assert.Error(t, err)
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() { MustGet(StagesFile, "nonexistent") })
	assert.NotPanics(t, func() { MustGet(StagesFile, "strategy") })
}

func TestFormat(t *testing.T) {
	template := "Analyze {{.FullName}} at {{.Company}}. Remember {{.FullName}}."
	result := Format(template, map[string]string{
		"FullName": "Jane Doe",
		"Company":  "Acme Corp",
	})

	assert.Equal(t, "Analyze Jane Doe at Acme Corp. Remember Jane Doe.", result)
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	result := Format("Hello {{.Missing}}", map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Missing}}", result)
}

func TestKeys(t *testing.T) {
	keys, err := Keys(StagesFile)
	require.NoError(t, err)
	assert.Contains(t, keys, "prospect_research")
	assert.Contains(t, keys, "strategy")
}
