package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stage(id string, position int, enabled bool) StageConfig {
	return StageConfig{
		ID:           id,
		DisplayName:  "Stage " + id,
		Instructions: "You analyze things.",
		Enabled:      enabled,
		Position:     position,
	}
}

func TestEnabledStagesOrdering(t *testing.T) {
	stages := []StageConfig{
		stage("c", 2, true),
		stage("a", 0, true),
		stage("b", 1, false),
		stage("d", 3, true),
	}

	enabled := EnabledStages(stages)

	require.Len(t, enabled, 3)
	assert.Equal(t, "a", enabled[0].ID)
	assert.Equal(t, "c", enabled[1].ID)
	assert.Equal(t, "d", enabled[2].ID)
}

func TestEnabledStagesDisablingKeepsRelativeOrder(t *testing.T) {
	stages := []StageConfig{
		stage("a", 0, true),
		stage("b", 1, true),
		stage("c", 2, true),
	}

	before := EnabledStages(stages)
	require.Equal(t, []string{"a", "b", "c"}, stageIDs(before))

	// Disabling b must not shift a and c relative to each other.
	stages[1].Enabled = false
	after := EnabledStages(stages)
	assert.Equal(t, []string{"a", "c"}, stageIDs(after))
	assert.Equal(t, 0, after[0].Position)
	assert.Equal(t, 2, after[1].Position)
}

func TestEnabledStagesDoesNotMutateInput(t *testing.T) {
	stages := []StageConfig{
		stage("b", 1, true),
		stage("a", 0, true),
	}

	_ = EnabledStages(stages)

	assert.Equal(t, "b", stages[0].ID)
	assert.Equal(t, "a", stages[1].ID)
}

func TestValidateStageSet(t *testing.T) {
	tests := []struct {
		name    string
		stages  []StageConfig
		wantErr string
	}{
		{
			name:   "valid set",
			stages: []StageConfig{stage("a", 0, true), stage("b", 1, false)},
		},
		{
			name:    "duplicate id",
			stages:  []StageConfig{stage("a", 0, true), stage("a", 1, true)},
			wantErr: "duplicate stage id",
		},
		{
			name:    "duplicate position",
			stages:  []StageConfig{stage("a", 0, true), stage("b", 0, true)},
			wantErr: "duplicate stage position",
		},
		{
			name:    "missing instructions",
			stages:  []StageConfig{{ID: "a", DisplayName: "A", Enabled: true}},
			wantErr: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStageSet(tt.stages)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func stageIDs(stages []StageConfig) []string {
	ids := make([]string, len(stages))
	for i, s := range stages {
		ids[i] = s.ID
	}
	return ids
}
