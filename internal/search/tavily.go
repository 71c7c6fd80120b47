package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/ratelimit"
)

// tavilyEndpoint is the Tavily search API endpoint.
const tavilyEndpoint = "https://api.tavily.com/search"

// TavilyClient queries the Tavily search API. All failures are absorbed and
// logged; callers always receive an artifact.
type TavilyClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	limiter    *ratelimit.TokenBucket
}

// NewTavilyClient creates a Tavily-backed searcher.
func NewTavilyClient(cfg Config) *TavilyClient {
	return &TavilyClient{
		apiKey:     cfg.TavilyAPIKey,
		endpoint:   tavilyEndpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.NewTokenBucket(cfg.Burst, cfg.QueriesPerSecond),
	}
}

// tavilyRequest is the wire format of a Tavily search request.
type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeImages bool   `json:"include_images"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

// tavilyResponse is the wire format of a Tavily search response.
type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
	Answer string `json:"answer"`
}

// Search issues one Tavily query, pacing against the client's token bucket.
func (c *TavilyClient) Search(ctx context.Context, query string, resultCap int) *Artifact {
	empty := &Artifact{Query: query}

	if err := c.limiter.Wait(ctx); err != nil {
		log.Printf("search: canceled while waiting for rate limiter: %v", err)
		return empty
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    resultCap,
	})
	if err != nil {
		log.Printf("search: failed to encode Tavily request: %v", err)
		return empty
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("search: failed to create Tavily request: %v", err)
		return empty
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("search: Tavily request failed for %q: %v", query, err)
		return empty
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Printf("search: Tavily API error for %q: %s", query, describeStatus(resp.StatusCode))
		return empty
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("search: failed to read Tavily response: %v", err)
		return empty
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		log.Printf("search: failed to parse Tavily response: %v", err)
		return empty
	}

	artifact := &Artifact{Query: query, Answer: parsed.Answer}
	for _, r := range parsed.Results {
		artifact.Results = append(artifact.Results, Result{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Content,
			RelevanceScore: r.Score,
		})
	}
	return artifact
}
