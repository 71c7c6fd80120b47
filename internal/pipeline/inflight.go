package pipeline

import (
	"errors"
	"sync"
)

// ErrRunInFlight is returned when a second run is requested for a session
// that already has one running.
var ErrRunInFlight = errors.New("a pipeline run is already in flight for this session")

// Inflight enforces at-most-one-concurrent-run-per-session. Each run owns
// its own state; this guard only prevents a caller from starting a second
// run under the same session key while the first is still running.
type Inflight struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewInflight creates an empty in-flight registry.
func NewInflight() *Inflight {
	return &Inflight{active: make(map[string]bool)}
}

// TryAcquire marks the session as running. It returns ErrRunInFlight if a
// run is already active for the key.
func (i *Inflight) TryAcquire(key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.active[key] {
		return ErrRunInFlight
	}
	i.active[key] = true
	return nil
}

// Release clears the session's running mark. Safe to call for keys that
// were never acquired.
func (i *Inflight) Release(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.active, key)
}
