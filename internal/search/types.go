package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// snippetCap bounds each result snippet so downstream context stays bounded.
const snippetCap = 300

// Result is one ranked search hit.
type Result struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Artifact is the outcome of one search call. An empty artifact (no results,
// no answer) is the expected shape for failed or unconfigured searches.
type Artifact struct {
	Query   string   `json:"query"`
	Results []Result `json:"results,omitempty"`
	Answer  string   `json:"answer,omitempty"`
}

// Empty reports whether the artifact carries no usable search data.
func (a *Artifact) Empty() bool {
	return a == nil || (len(a.Results) == 0 && a.Answer == "")
}

// Format renders the artifact as a bounded descriptive block for inclusion in
// a generation prompt. Snippets are truncated to snippetCap characters.
func (a *Artifact) Format() string {
	if a.Empty() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current web search results for %q:\n\n", a.Query)
	for i, r := range a.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   %s\n", r.URL)
		fmt.Fprintf(&b, "   %s\n\n", truncateSnippet(r.Snippet))
	}
	if a.Answer != "" {
		fmt.Fprintf(&b, "Key insights: %s\n", a.Answer)
	}
	return b.String()
}

// truncateSnippet caps snippet text, marking the cut with an ellipsis. The
// cap counts bytes, so the cut backs up to the nearest rune boundary.
func truncateSnippet(s string) string {
	if len(s) <= snippetCap {
		return s
	}
	cut := snippetCap
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
