package briefing

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

func TestFactsRestatesProspectVerbatim(t *testing.T) {
	b := NewBuilder(Budgets{})
	p := &types.Prospect{FirstName: "Jane", LastName: "Doe", Company: "Acme Corp", Title: "CISO"}

	facts := b.Facts(p)

	assert.Contains(t, facts, "PROSPECT INFORMATION:")
	assert.Contains(t, facts, "- Name: Jane Doe")
	assert.Contains(t, facts, "- Company: Acme Corp")
	assert.Contains(t, facts, "- Title: CISO")
	assert.Contains(t, facts, "- Email: Not specified")
}

func TestRollingAppliesBudget(t *testing.T) {
	b := NewBuilder(Budgets{Narrative: 100, Enrichment: 100})

	short := b.Rolling("brief analysis")
	assert.Contains(t, short, "PREVIOUS ANALYSIS FROM OTHER STAGES:")
	assert.Contains(t, short, "brief analysis")
	assert.NotContains(t, short, truncationMarker)

	old := strings.Repeat("old ", 50)
	recent := "line one\nthe newest analysis"
	long := b.Rolling(old + recent)
	assert.Contains(t, long, truncationMarker)
	assert.Contains(t, long, "the newest analysis", "newest text must survive truncation")
	assert.NotContains(t, long, "old old old old old old old old old old old old old old")
}

func TestRollingEmptyNarrative(t *testing.T) {
	b := NewBuilder(Budgets{})
	assert.Equal(t, "", b.Rolling(""))
}

func TestFullContextIsNeverTruncated(t *testing.T) {
	b := NewBuilder(Budgets{Narrative: 50, Enrichment: 50})
	bigText := strings.Repeat("detail ", 200) // far over any budget

	artifacts := []types.StageArtifact{
		{StageID: "1", StageName: "Prospect Research", Text: bigText},
		{StageID: "2", StageName: "Tech Stack Research", Text: "short"},
	}

	full := b.FullContext(artifacts)

	assert.Contains(t, full, "COMPLETE ANALYSIS FROM PREVIOUS STAGES:")
	assert.Contains(t, full, "--- Prospect Research Complete Analysis ---")
	assert.Contains(t, full, "--- Tech Stack Research Complete Analysis ---")
	assert.Contains(t, full, bigText, "full-context section must carry prior text verbatim")
	assert.NotContains(t, full, truncationMarker)
}

func TestEnrichmentAppliesBudget(t *testing.T) {
	b := NewBuilder(Budgets{Narrative: 1000, Enrichment: 40})

	block := b.Enrichment("RESEARCH DATA:", strings.Repeat("z", 100))

	assert.Contains(t, block, "RESEARCH DATA:")
	assert.Contains(t, block, truncationMarker)
	assert.Contains(t, block, strings.Repeat("z", 40))
	assert.NotContains(t, block, strings.Repeat("z", 41))
}

func TestTruncationRespectsRuneBoundaries(t *testing.T) {
	// Odd budgets land the byte cut inside the 2-byte runes.
	b := NewBuilder(Budgets{Narrative: 51, Enrichment: 51})
	multibyte := strings.Repeat("é", 100)

	rolling := b.Rolling(multibyte)
	assert.True(t, utf8.ValidString(rolling))
	assert.Contains(t, rolling, truncationMarker)

	enrichment := b.Enrichment("RESEARCH DATA:", multibyte)
	assert.True(t, utf8.ValidString(enrichment))
	assert.Contains(t, enrichment, truncationMarker)
}

func TestEnrichmentEmptyBlock(t *testing.T) {
	b := NewBuilder(Budgets{})
	assert.Equal(t, "", b.Enrichment("HEADER:", ""))
}

func TestAppendNarrativeLabelsByExecutionStep(t *testing.T) {
	narrative := AppendNarrative("", "Prospect Research", 1, "first output")
	narrative = AppendNarrative(narrative, "Strategy", 2, "second output")

	require.Contains(t, narrative, "--- Prospect Research (Step 1) Analysis ---\nfirst output")
	require.Contains(t, narrative, "--- Strategy (Step 2) Analysis ---\nsecond output")

	// Ascending execution order is preserved in the narrative text.
	first := strings.Index(narrative, "Prospect Research")
	second := strings.Index(narrative, "Strategy")
	assert.Less(t, first, second)
}

func TestZeroBudgetsFallBackToDefaults(t *testing.T) {
	b := NewBuilder(Budgets{})
	assert.Equal(t, DefaultBudgets().Narrative, b.budgets.Narrative)
	assert.Equal(t, DefaultBudgets().Enrichment, b.budgets.Enrichment)
}
