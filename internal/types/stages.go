package types

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// EnrichmentMode selects how much external search context a stage receives.
type EnrichmentMode string

// Enrichment modes, from none to the designated full-context stage.
const (
	// EnrichmentNone disables search enrichment for the stage.
	EnrichmentNone EnrichmentMode = "none"
	// EnrichmentGeneral reuses the run's shared general search context.
	EnrichmentGeneral EnrichmentMode = "general"
	// EnrichmentDeep issues the stage's own query set with a per-query result cap.
	EnrichmentDeep EnrichmentMode = "deep"
	// EnrichmentFullContext marks the designated deep-synthesis stage: it
	// receives the full untruncated output of every prior stage instead of
	// the rolling narrative, alongside the shared general context.
	EnrichmentFullContext EnrichmentMode = "full_context"
)

// QuerySet names one of the query generator variants.
type QuerySet string

// Query set variants matching the generators in internal/queries.
const (
	QuerySetGeneral        QuerySet = "general"
	QuerySetDeepSubject    QuerySet = "deep_subject"
	QuerySetTechnology     QuerySet = "technology"
	QuerySetOrganizational QuerySet = "organizational"
)

// EnrichmentPolicy describes a stage's search enrichment as configuration
// rather than keying behavior off stage identity.
type EnrichmentPolicy struct {
	Mode       EnrichmentMode `json:"mode" validate:"required,oneof=none general deep full_context"`
	QuerySet   QuerySet       `json:"query_set,omitempty" validate:"omitempty,oneof=general deep_subject technology organizational"`
	QueryCount int            `json:"query_count,omitempty" validate:"gte=0"`
	ResultCap  int            `json:"result_cap,omitempty" validate:"gte=0"`
}

// StageConfig is one configured analysis stage. Position defines total
// execution order; disabled stages keep their slot but are skipped.
type StageConfig struct {
	ID           string            `json:"id" validate:"required,min=1"`
	DisplayName  string            `json:"display_name" validate:"required,min=1"`
	Instructions string            `json:"instructions" validate:"required,min=1"`
	Enabled      bool              `json:"enabled"`
	Position     int               `json:"position" validate:"gte=0"`
	Enrichment   *EnrichmentPolicy `json:"enrichment,omitempty"`
}

// Validate validates the StageConfig using the validator.
func (s *StageConfig) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// ValidateStageSet checks id and position uniqueness across a stage set.
func ValidateStageSet(stages []StageConfig) error {
	ids := make(map[string]bool, len(stages))
	positions := make(map[int]bool, len(stages))
	for i := range stages {
		if err := stages[i].Validate(); err != nil {
			return fmt.Errorf("stage %q invalid: %w", stages[i].ID, err)
		}
		if ids[stages[i].ID] {
			return fmt.Errorf("duplicate stage id %q", stages[i].ID)
		}
		ids[stages[i].ID] = true
		if positions[stages[i].Position] {
			return fmt.Errorf("duplicate stage position %d (stage %q)", stages[i].Position, stages[i].ID)
		}
		positions[stages[i].Position] = true
	}
	return nil
}

// EnabledStages returns the enabled stages sorted by ascending position.
// The input slice is not modified.
func EnabledStages(stages []StageConfig) []StageConfig {
	enabled := make([]StageConfig, 0, len(stages))
	for _, s := range stages {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Position < enabled[j].Position
	})
	return enabled
}
