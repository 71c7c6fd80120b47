package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/pipeline"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// eventStream pushes pipeline progress to the client as Server-Sent Events.
// Only one goroutine may write to a stream.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newEventStream prepares the response for SSE delivery.
func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &eventStream{w: w, flusher: flusher}, nil
}

// Progress emits one per-stage progress event.
func (s *eventStream) Progress(event pipeline.ProgressEvent) error {
	return s.send("stage", event)
}

// Result emits the final run payload, complete or partial.
func (s *eventStream) Result(resp ResearchResponse) error {
	return s.send("result", resp)
}

// Fail emits a terminal error event.
func (s *eventStream) Fail(message string) {
	s.send("error", map[string]string{"error": message}) //nolint:errcheck
}

// Done emits the completion marker with the run's final state.
func (s *eventStream) Done(run *types.PipelineRun) {
	s.send("complete", map[string]string{ //nolint:errcheck
		"run_id": run.ID.String(),
		"status": string(run.State),
	})
}

func (s *eventStream) send(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
