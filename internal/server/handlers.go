package server

import (
	"encoding/json"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/pipeline"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// ResearchRequest represents the request body for /research
type ResearchRequest struct {
	Prospect types.Prospect `json:"prospect"`
	// Stages overrides the default stage set when present.
	Stages []types.StageConfig `json:"stages,omitempty"`
	// SessionID scopes the one-run-at-a-time guard; defaults to the client IP.
	SessionID string `json:"session_id,omitempty"`
	// APIKey overrides the server's generation key for this request.
	APIKey string `json:"api_key,omitempty"`
}

// ResearchResponse represents the response for /research
type ResearchResponse struct {
	Run   *types.PipelineRun `json:"run"`
	Error string             `json:"error,omitempty"`
}

// ChatRequest represents the request body for /chat. The service is
// stateless: the client resubmits the artifacts and conversation each turn.
type ChatRequest struct {
	Prospect  *types.Prospect          `json:"prospect,omitempty"`
	Artifacts []types.StageArtifact    `json:"artifacts,omitempty"`
	Synthesis *types.StageArtifact     `json:"synthesis,omitempty"`
	History   []types.ConversationTurn `json:"history,omitempty"`
	Message   string                   `json:"message"`
	APIKey    string                   `json:"api_key,omitempty"`
}

// ChatResponse represents the response for /chat
type ChatResponse struct {
	Reply string `json:"reply"`
}

// decodeResearchRequest parses and normalizes a research request body.
func (s *Server) decodeResearchRequest(w http.ResponseWriter, r *http.Request) (*ResearchRequest, bool) {
	var req ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}

	if err := req.Prospect.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid prospect: "+err.Error())
		return nil, false
	}

	if len(req.Stages) == 0 {
		req.Stages = s.cfg.DefaultStages
	}
	if req.APIKey == "" {
		req.APIKey = s.cfg.APIKey
	}
	if req.SessionID == "" {
		req.SessionID = extractClientID(r)
	}
	return &req, true
}

// handleResearch runs the full pipeline synchronously and returns the run.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResearchRequest(w, r)
	if !ok {
		return
	}

	if err := s.inflight.TryAcquire(req.SessionID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer s.inflight.Release(req.SessionID)

	run, err := s.runPipeline(r.Context(), pipeline.RunOptions{
		Prospect:         req.Prospect,
		Stages:           req.Stages,
		GenerationAPIKey: req.APIKey,
		LLMConfig:        s.cfg.LLMConfig,
		SearchConfig:     s.cfg.SearchConfig,
		Tunables:         s.cfg.Tunables,
	})
	if err != nil {
		log.Printf("Research run failed: %v", err)
		// A failed run still carries its partial artifacts.
		s.jsonResponse(w, HTTPStatus(err), ResearchResponse{Run: run, Error: err.Error()})
		return
	}

	s.jsonResponse(w, http.StatusOK, ResearchResponse{Run: run})
}

// handleResearchStream runs the pipeline and streams progress via SSE.
func (s *Server) handleResearchStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResearchRequest(w, r)
	if !ok {
		return
	}

	if err := s.inflight.TryAcquire(req.SessionID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer s.inflight.Release(req.SessionID)

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Progress events flow through a channel so only one goroutine touches
	// the response writer.
	events := make(chan pipeline.ProgressEvent, 16)

	var run *types.PipelineRun
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		defer close(events)
		var runErr error
		run, runErr = s.runPipeline(ctx, pipeline.RunOptions{
			Prospect:         req.Prospect,
			Stages:           req.Stages,
			GenerationAPIKey: req.APIKey,
			LLMConfig:        s.cfg.LLMConfig,
			SearchConfig:     s.cfg.SearchConfig,
			Tunables:         s.cfg.Tunables,
			OnProgress: func(event pipeline.ProgressEvent) {
				select {
				case events <- event:
				case <-ctx.Done():
				}
			},
		})
		return runErr
	})
	g.Go(func() error {
		for event := range events {
			if err := stream.Progress(event); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Streaming research run failed: %v", err)
		stream.Fail(err.Error())
		if run != nil {
			stream.Result(ResearchResponse{Run: run, Error: err.Error()}) //nolint:errcheck
		}
		return
	}

	stream.Result(ResearchResponse{Run: run}) //nolint:errcheck
	stream.Done(run)
}

// handleChat answers a follow-up question about completed research.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Message == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Artifacts) == 0 && req.Synthesis == nil {
		s.errorResponse(w, http.StatusBadRequest, "artifacts or synthesis are required")
		return
	}
	if req.APIKey == "" {
		req.APIKey = s.cfg.APIKey
	}

	reply, err := s.respond(r.Context(), req.APIKey, req.Prospect, req.Artifacts, req.Synthesis, req.History, req.Message)
	if err != nil {
		log.Printf("Chat request failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, ChatResponse{Reply: reply})
}

// handleDefaultStages returns the built-in stage set.
func (s *Server) handleDefaultStages(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"stages": s.cfg.DefaultStages})
}
