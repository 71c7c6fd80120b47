// Package server provides the HTTP REST API for prospect research.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/chat"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/pipeline"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/ratelimit"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/search"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// Config holds server configuration.
type Config struct {
	Listen        string
	APIKey        string
	LLMConfig     *llm.Config
	SearchConfig  search.Config
	Tunables      pipeline.Tunables
	DefaultStages []types.StageConfig
	// RequestsPerSecond rate-limits each client IP; Burst allows short spikes.
	RequestsPerSecond float64
	Burst             int
}

// runFunc executes one pipeline run. Swapped out by tests.
type runFunc func(ctx context.Context, opts pipeline.RunOptions) (*types.PipelineRun, error)

// chatFunc answers one follow-up message. Swapped out by tests.
type chatFunc func(ctx context.Context, apiKey string, prospect *types.Prospect, artifacts []types.StageArtifact, synthesis *types.StageArtifact, history []types.ConversationTurn, message string) (string, error)

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	cfg           Config
	inflight      *pipeline.Inflight
	clientLimiter *clientLimiter
	runPipeline   runFunc
	respond       chatFunc
}

// New creates a new server instance
func New(cfg Config) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	s := &Server{
		cfg:           cfg,
		inflight:      pipeline.NewInflight(),
		clientLimiter: newClientLimiter(cfg.Burst, cfg.RequestsPerSecond),
		runPipeline:   pipeline.RunPipeline,
	}
	s.respond = s.respondWithNewClient

	mux := http.NewServeMux()
	mux.HandleFunc("POST /research", s.handleResearch)
	mux.HandleFunc("POST /research/stream", s.handleResearchStream)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /stages/defaults", s.handleDefaultStages)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second, // Long timeout for full research runs
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// respondWithNewClient builds a generation client for the request's key and
// answers the follow-up message.
func (s *Server) respondWithNewClient(ctx context.Context, apiKey string, prospect *types.Prospect, artifacts []types.StageArtifact, synthesis *types.StageArtifact, history []types.ConversationTurn, message string) (string, error) {
	client, err := llm.NewClient(ctx, s.cfg.LLMConfig, apiKey)
	if err != nil {
		return "", fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	svc := chat.NewService(client, chat.Options{Tier: s.cfg.Tunables.ChatTier})
	return svc.Respond(ctx, prospect, artifacts, synthesis, history, message)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed the per-IP request rate.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.clientLimiter.allow(extractClientID(r)) {
			w.Header().Set("Retry-After", "1")
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For now this uses the IP address from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// clientLimiter keeps one token bucket per client IP.
type clientLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ratelimit.TokenBucket
	burst   int
	rate    float64
}

func newClientLimiter(burst int, rate float64) *clientLimiter {
	return &clientLimiter{
		buckets: make(map[string]*ratelimit.TokenBucket),
		burst:   burst,
		rate:    rate,
	}
}

func (c *clientLimiter) allow(clientID string) bool {
	c.mu.Lock()
	bucket, ok := c.buckets[clientID]
	if !ok {
		bucket = ratelimit.NewTokenBucket(c.burst, c.rate)
		c.buckets[clientID] = bucket
	}
	c.mu.Unlock()

	return bucket.Allow()
}
