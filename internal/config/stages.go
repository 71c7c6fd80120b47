package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/prompts"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/schemas"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

//go:embed stage_set.schema.json
var stageSetSchema string

// Default stage ids. Custom stage sets may reuse these ids to inherit the
// default enrichment policies.
const (
	StageProspectResearch = "prospect_research"
	StageTechStack        = "tech_stack"
	StageAccountMapping   = "account_mapping"
	StageStrategy         = "strategy"
)

// defaultPolicies maps default stage ids to their enrichment policies.
var defaultPolicies = map[string]types.EnrichmentPolicy{
	StageProspectResearch: {
		Mode:       types.EnrichmentDeep,
		QuerySet:   types.QuerySetDeepSubject,
		QueryCount: 15,
		ResultCap:  8,
	},
	StageTechStack: {
		Mode:       types.EnrichmentDeep,
		QuerySet:   types.QuerySetTechnology,
		QueryCount: 6,
		ResultCap:  6,
	},
	StageAccountMapping: {
		Mode:       types.EnrichmentDeep,
		QuerySet:   types.QuerySetOrganizational,
		QueryCount: 10,
		ResultCap:  7,
	},
}

// DefaultStageSet returns the built-in four-stage research sequence with its
// default enrichment policies applied.
func DefaultStageSet() []types.StageConfig {
	stages := []types.StageConfig{
		{
			ID:           StageProspectResearch,
			DisplayName:  "Prospect Research",
			Instructions: prompts.MustGet(prompts.StagesFile, "prospect_research"),
			Enabled:      true,
			Position:     1,
		},
		{
			ID:           StageTechStack,
			DisplayName:  "Tech Stack Research",
			Instructions: prompts.MustGet(prompts.StagesFile, "tech_stack"),
			Enabled:      true,
			Position:     2,
		},
		{
			ID:           StageAccountMapping,
			DisplayName:  "Account Mapping",
			Instructions: prompts.MustGet(prompts.StagesFile, "account_mapping"),
			Enabled:      true,
			Position:     3,
		},
		{
			ID:           StageStrategy,
			DisplayName:  "Strategy GPT",
			Instructions: prompts.MustGet(prompts.StagesFile, "strategy"),
			Enabled:      true,
			Position:     4,
		},
	}
	return ApplyDefaultPolicies(stages)
}

// ApplyDefaultPolicies fills in the default enrichment policy for any stage
// whose id matches a default stage and that declares no policy of its own.
// The input slice is not modified.
func ApplyDefaultPolicies(stages []types.StageConfig) []types.StageConfig {
	out := make([]types.StageConfig, len(stages))
	copy(out, stages)
	for i := range out {
		if out[i].Enrichment != nil {
			continue
		}
		if policy, ok := defaultPolicies[out[i].ID]; ok {
			p := policy
			out[i].Enrichment = &p
		}
	}
	return out
}

// LoadStageSet reads a stage-set JSON file, validates it against the
// embedded schema, and applies default policies for known stage ids.
func LoadStageSet(path string) ([]types.StageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stages file %s: %w", path, err)
	}

	if err := schemas.ValidateJSONString(stageSetSchema, string(data)); err != nil {
		return nil, fmt.Errorf("stages file %s: %w", path, err)
	}

	var stages []types.StageConfig
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, fmt.Errorf("failed to parse stages file %s: %w", path, err)
	}

	stages = ApplyDefaultPolicies(stages)
	if err := types.ValidateStageSet(stages); err != nil {
		return nil, fmt.Errorf("stages file %s: %w", path, err)
	}
	return stages, nil
}
