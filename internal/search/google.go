package search

import (
	"context"
	"log"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/ratelimit"
)

// GoogleClient queries Google Programmable Search. Like every Searcher it
// fails soft: errors are logged and an empty artifact is returned.
type GoogleClient struct {
	svc     *customsearch.Service
	cx      string
	limiter *ratelimit.TokenBucket
}

// NewGoogleClient creates a Google Programmable Search backed searcher.
func NewGoogleClient(ctx context.Context, cfg Config) (*GoogleClient, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, err
	}
	return &GoogleClient{
		svc:     svc,
		cx:      cfg.GoogleCX,
		limiter: ratelimit.NewTokenBucket(cfg.Burst, cfg.QueriesPerSecond),
	}, nil
}

// Search issues one Programmable Search query. Google CSE returns no
// synthesized answer and no relevance score; rank order stands in for both.
func (c *GoogleClient) Search(ctx context.Context, query string, resultCap int) *Artifact {
	empty := &Artifact{Query: query}

	if err := c.limiter.Wait(ctx); err != nil {
		log.Printf("search: canceled while waiting for rate limiter: %v", err)
		return empty
	}

	call := c.svc.Cse.List().Cx(c.cx).Q(query).Context(ctx)
	if resultCap > 0 {
		if resultCap > 10 {
			resultCap = 10 // CSE hard limit per request
		}
		call = call.Num(int64(resultCap))
	}

	resp, err := call.Do()
	if err != nil {
		log.Printf("search: Google Search failed for %q: %v", query, err)
		return empty
	}

	artifact := &Artifact{Query: query}
	for _, item := range resp.Items {
		artifact.Results = append(artifact.Results, Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return artifact
}
