package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoStagesEnabled is returned when a run is requested with no enabled
// stages. No partial run is attempted.
var ErrNoStagesEnabled = errors.New("no stages enabled for processing")

// ErrMissingAPIKey is returned when the caller supplies no generation
// credentials. Credentials are per-call; nothing is read from ambient state.
var ErrMissingAPIKey = errors.New("generation API key is required")

// StageError reports a fatal generation failure in one stage. Remaining
// stages and synthesis do not execute; the run's artifact map still holds
// everything produced before the failure.
type StageError struct {
	StageID  string
	Position int
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q (position %d) failed: %v", e.StageID, e.Position, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// SynthesisError reports a fatal failure of the final synthesis step. All
// stage artifacts remain attached to the run so callers can show partial
// results.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
