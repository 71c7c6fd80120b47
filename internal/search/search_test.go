package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTavilyClient(endpoint string) *TavilyClient {
	cfg := DefaultConfig()
	cfg.TavilyAPIKey = "test-key"
	cfg.QueriesPerSecond = 1000 // no pacing in tests
	cfg.Burst = 1000
	c := NewTavilyClient(cfg)
	c.endpoint = endpoint
	return c
}

func TestTavilySearchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "Acme Corp news", req.Query)
		assert.Equal(t, "basic", req.SearchDepth)
		assert.True(t, req.IncludeAnswer)
		assert.Equal(t, 3, req.MaxResults)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Acme raises series C", "url": "https://news.example/acme", "content": "Acme Corp announced...", "score": 0.92},
			},
			"answer": "Acme recently raised funding.",
		})
	}))
	defer srv.Close()

	c := newTestTavilyClient(srv.URL)
	artifact := c.Search(context.Background(), "Acme Corp news", 3)

	require.False(t, artifact.Empty())
	require.Len(t, artifact.Results, 1)
	assert.Equal(t, "Acme raises series C", artifact.Results[0].Title)
	assert.Equal(t, "https://news.example/acme", artifact.Results[0].URL)
	assert.InDelta(t, 0.92, artifact.Results[0].RelevanceScore, 0.001)
	assert.Equal(t, "Acme recently raised funding.", artifact.Answer)
}

func TestTavilySearchFailsSoft(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "no results",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"results": []}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := newTestTavilyClient(srv.URL)
			artifact := c.Search(context.Background(), "anything", 5)

			assert.True(t, artifact.Empty(), "failure must yield an empty artifact, not an error")
		})
	}
}

func TestTavilySearchUnreachableFailsSoft(t *testing.T) {
	c := newTestTavilyClient("http://127.0.0.1:1") // nothing listens here

	artifact := c.Search(context.Background(), "anything", 5)
	assert.True(t, artifact.Empty())
}

func TestNewSearcherDegradesWithoutCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"tavily without key", Config{Backend: BackendTavily}},
		{"google without key", Config{Backend: BackendGoogle}},
		{"explicitly disabled", Config{Backend: BackendDisabled}},
		{"empty backend", Config{}},
		{"unknown backend", Config{Backend: "bing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSearcher(context.Background(), tt.cfg)
			artifact := s.Search(context.Background(), "q", 3)
			assert.True(t, artifact.Empty())
		})
	}
}

func TestArtifactFormat(t *testing.T) {
	longSnippet := strings.Repeat("x", 400)
	artifact := &Artifact{
		Query: "Acme Corp",
		Results: []Result{
			{Title: "First", URL: "https://a.example", Snippet: "short snippet"},
			{Title: "Second", URL: "https://b.example", Snippet: longSnippet},
		},
		Answer: "Acme is a company.",
	}

	formatted := artifact.Format()

	assert.Contains(t, formatted, `Current web search results for "Acme Corp":`)
	assert.Contains(t, formatted, "1. First")
	assert.Contains(t, formatted, "https://a.example")
	assert.Contains(t, formatted, "short snippet")
	assert.Contains(t, formatted, "Key insights: Acme is a company.")

	// Snippets are capped at 300 characters plus an ellipsis.
	assert.NotContains(t, formatted, longSnippet)
	assert.Contains(t, formatted, strings.Repeat("x", 300)+"...")
}

func TestArtifactFormatEmpty(t *testing.T) {
	assert.Equal(t, "", (&Artifact{Query: "q"}).Format())
	var nilArtifact *Artifact
	assert.True(t, nilArtifact.Empty())
}

func TestArtifactFormatKeepsSnippetsValidUTF8(t *testing.T) {
	// The odd leading byte puts the 300-byte cap inside a 2-byte rune.
	artifact := &Artifact{
		Query:   "Acme Corp",
		Results: []Result{{Title: "T", URL: "https://a.example", Snippet: "x" + strings.Repeat("é", 200)}},
	}

	formatted := artifact.Format()

	assert.True(t, utf8.ValidString(formatted))
	assert.Contains(t, formatted, "é...")
}

// recordingSearcher counts calls and returns canned artifacts.
type recordingSearcher struct {
	calls     []string
	artifacts map[string]*Artifact
}

func (r *recordingSearcher) Search(_ context.Context, query string, _ int) *Artifact {
	r.calls = append(r.calls, query)
	if a, ok := r.artifacts[query]; ok {
		return a
	}
	return &Artifact{Query: query}
}

func TestCollectContext(t *testing.T) {
	s := &recordingSearcher{
		artifacts: map[string]*Artifact{
			"q1": {Query: "q1", Results: []Result{{Title: "T1", URL: "u1", Snippet: "s1"}}},
			"q3": {Query: "q3", Answer: "answer three"},
		},
	}

	combined := CollectContext(context.Background(), s, []string{"q1", "q2", "q3", "q4"}, 3, 5)

	assert.Equal(t, []string{"q1", "q2", "q3"}, s.calls, "maxQueries must bound issued queries")
	assert.Contains(t, combined, "T1")
	assert.Contains(t, combined, "answer three")
	assert.NotContains(t, combined, `"q2"`, "empty artifacts contribute nothing")
}

func TestCollectContextStopsOnCanceledContext(t *testing.T) {
	s := &recordingSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	combined := CollectContext(ctx, s, []string{"q1", "q2"}, 0, 5)

	assert.Empty(t, combined)
	assert.Empty(t, s.calls)
}
