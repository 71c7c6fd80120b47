// Package search provides fail-soft web search enrichment. A Searcher never
// returns an error: missing configuration, transport failures, and non-success
// responses all degrade to an empty artifact so the pipeline can proceed with
// reduced enrichment.
package search

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Backend identifies a search provider.
type Backend string

// Supported search backends.
const (
	// BackendTavily is the Tavily search API.
	BackendTavily Backend = "tavily"
	// BackendGoogle is Google Programmable Search.
	BackendGoogle Backend = "google"
	// BackendDisabled performs no searches and always returns empty artifacts.
	BackendDisabled Backend = "disabled"
)

// Searcher issues one web search and formats the outcome as an artifact.
type Searcher interface {
	// Search runs the query and returns at most resultCap ranked snippets.
	// It never returns an error; absence of data is a valid outcome.
	Search(ctx context.Context, query string, resultCap int) *Artifact
}

// Config holds search client configuration.
type Config struct {
	Backend      Backend
	TavilyAPIKey string
	GoogleAPIKey string
	GoogleCX     string
	// QueriesPerSecond bounds the sustained query rate; Burst bounds how many
	// queries may be issued back to back before pacing kicks in.
	QueriesPerSecond float64
	Burst            int
	Timeout          time.Duration
}

// DefaultConfig returns the default pacing and timeout settings. The rate
// matches the source system's fixed 200ms inter-query delay.
func DefaultConfig() Config {
	return Config{
		QueriesPerSecond: 5,
		Burst:            1,
		Timeout:          15 * time.Second,
	}
}

// NewSearcher creates a searcher for the configured backend. Backends with
// missing credentials degrade to the disabled searcher rather than failing.
func NewSearcher(ctx context.Context, cfg Config) Searcher {
	if cfg.QueriesPerSecond <= 0 {
		cfg.QueriesPerSecond = DefaultConfig().QueriesPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultConfig().Burst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	switch cfg.Backend {
	case BackendTavily:
		if cfg.TavilyAPIKey == "" {
			log.Printf("search: Tavily API key not configured, web search disabled")
			return NewDisabled()
		}
		return NewTavilyClient(cfg)
	case BackendGoogle:
		if cfg.GoogleAPIKey == "" || cfg.GoogleCX == "" {
			log.Printf("search: Google Search API key or CX not configured, web search disabled")
			return NewDisabled()
		}
		client, err := NewGoogleClient(ctx, cfg)
		if err != nil {
			log.Printf("search: failed to initialize Google Search client: %v", err)
			return NewDisabled()
		}
		return client
	case BackendDisabled, "":
		return NewDisabled()
	default:
		log.Printf("search: unknown backend %q, web search disabled", cfg.Backend)
		return NewDisabled()
	}
}

// Disabled is a searcher that performs no external calls.
type Disabled struct{}

// NewDisabled returns a searcher that always yields empty artifacts.
func NewDisabled() *Disabled {
	return &Disabled{}
}

// Search returns an empty artifact without performing any network call.
func (d *Disabled) Search(_ context.Context, query string, _ int) *Artifact {
	return &Artifact{Query: query}
}

// CollectContext runs each query through the searcher in order, pausing per
// the searcher's own pacing, and concatenates the non-empty formatted blocks.
// maxQueries bounds how many of the queries are issued.
func CollectContext(ctx context.Context, s Searcher, queryList []string, maxQueries, resultCap int) string {
	if maxQueries > 0 && len(queryList) > maxQueries {
		queryList = queryList[:maxQueries]
	}

	var combined string
	for _, query := range queryList {
		if ctx.Err() != nil {
			return combined
		}
		artifact := s.Search(ctx, query, resultCap)
		if artifact.Empty() {
			continue
		}
		combined += artifact.Format() + "\n"
	}
	return combined
}

// describeStatus renders an HTTP status for log lines.
func describeStatus(code int) string {
	return fmt.Sprintf("HTTP status %d", code)
}
