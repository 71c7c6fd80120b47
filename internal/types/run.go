package types

import (
	"time"

	"github.com/google/uuid"
)

// RunState tracks the pipeline orchestrator's state machine.
type RunState string

// Run states. A run moves Idle -> Running -> Completed or Failed.
const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// StageArtifact is the output of one stage execution. Artifacts live only in
// the run's in-memory result map; nothing in this system persists them.
type StageArtifact struct {
	StageID    string    `json:"stage_id"`
	StageName  string    `json:"stage_name"`
	Text       string    `json:"text"`
	ProducedAt time.Time `json:"produced_at"`
}

// PipelineRun aggregates everything produced by one pipeline invocation.
// Artifacts holds exactly the enabled stages that completed; on a failed run
// it carries the artifacts produced before the failure so callers can still
// show partial results.
type PipelineRun struct {
	ID               uuid.UUID                `json:"id"`
	Prospect         Prospect                 `json:"prospect"`
	Stages           []StageConfig            `json:"stages"`
	Artifacts        map[string]StageArtifact `json:"artifacts"`
	Synthesis        *StageArtifact           `json:"synthesis,omitempty"`
	RollingNarrative string                   `json:"rolling_narrative"`
	State            RunState                 `json:"state"`
	StartedAt        time.Time                `json:"started_at"`
	FinishedAt       time.Time                `json:"finished_at"`
}

// ArtifactsInOrder returns the run's stage artifacts in stage execution order.
func (r *PipelineRun) ArtifactsInOrder() []StageArtifact {
	ordered := make([]StageArtifact, 0, len(r.Artifacts))
	for _, stage := range r.Stages {
		if artifact, ok := r.Artifacts[stage.ID]; ok {
			ordered = append(ordered, artifact)
		}
	}
	return ordered
}
