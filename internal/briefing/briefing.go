// Package briefing assembles the input context for generation calls. Each
// stage's briefing layers prospect facts, the rolling narrative of prior
// stage outputs, and the stage's search enrichment block under explicit
// section headers, with independent soft character budgets per section.
package briefing

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// Section headers let the generation model distinguish the context layers.
const (
	rollingHeader     = "PREVIOUS ANALYSIS FROM OTHER STAGES:"
	fullContextHeader = "COMPLETE ANALYSIS FROM PREVIOUS STAGES:"
	truncationMarker  = "[earlier analysis truncated]"
)

// Budgets holds the soft character budgets for the truncatable sections.
// Exceeding a budget triggers truncation, never an error.
type Budgets struct {
	// Narrative caps the rolling prior-stage narrative.
	Narrative int
	// Enrichment caps a stage's search enrichment block.
	Enrichment int
}

// DefaultBudgets returns the default section budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		Narrative:  24000,
		Enrichment: 16000,
	}
}

// Builder assembles per-stage briefing sections under the configured budgets.
type Builder struct {
	budgets Budgets
}

// NewBuilder creates a Builder. Zero budget fields fall back to defaults.
func NewBuilder(budgets Budgets) *Builder {
	defaults := DefaultBudgets()
	if budgets.Narrative <= 0 {
		budgets.Narrative = defaults.Narrative
	}
	if budgets.Enrichment <= 0 {
		budgets.Enrichment = defaults.Enrichment
	}
	return &Builder{budgets: budgets}
}

// Facts restates the prospect's identity facts verbatim.
func (b *Builder) Facts(p *types.Prospect) string {
	return fmt.Sprintf(`PROSPECT INFORMATION:
- Name: %s
- Company: %s
- Title: %s
- Email: %s`, p.FullName(), p.Company, p.TitleOrDefault(), p.EmailOrDefault())
}

// Rolling renders the rolling-narrative section, truncating the oldest text
// first when the narrative exceeds its budget.
func (b *Builder) Rolling(narrative string) string {
	if narrative == "" {
		return ""
	}
	return rollingHeader + "\n" + truncateHead(narrative, b.budgets.Narrative) + "\n\n"
}

// FullContext renders every prior artifact full-text and individually
// labeled. No budget applies: the designated deep-synthesis stage must see
// prior output verbatim because the rolling narrative lossy-compresses
// older stages.
func (b *Builder) FullContext(artifacts []types.StageArtifact) string {
	if len(artifacts) == 0 {
		return ""
	}
	labeled := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		labeled = append(labeled, LabelArtifact(a))
	}
	return fullContextHeader + "\n\n" + strings.Join(labeled, "\n\n") + "\n\n"
}

// Enrichment renders a stage's search context block under the given header,
// capped at the enrichment budget.
func (b *Builder) Enrichment(header, block string) string {
	if block == "" {
		return ""
	}
	return "\n\n" + header + "\n" + truncateTail(block, b.budgets.Enrichment)
}

// LabelArtifact renders one artifact with its stage label.
func LabelArtifact(a types.StageArtifact) string {
	return fmt.Sprintf("--- %s Complete Analysis ---\n%s", a.StageName, a.Text)
}

// AppendNarrative extends the rolling narrative with a labeled stage output.
// The step number is 1-based execution order, not the configured position.
func AppendNarrative(narrative, stageName string, step int, text string) string {
	return narrative + fmt.Sprintf("\n\n--- %s (Step %d) Analysis ---\n%s", stageName, step, text)
}

// truncateHead keeps the newest (trailing) text within the budget, marking
// the cut so the model knows older analysis was dropped.
func truncateHead(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	kept := s[len(s)-budget:]
	// Budgets count bytes; skip ahead if the cut landed inside a rune.
	for len(kept) > 0 && !utf8.RuneStart(kept[0]) {
		kept = kept[1:]
	}
	// Resume at the next line break so the section starts cleanly.
	if idx := strings.IndexByte(kept, '\n'); idx >= 0 && idx < len(kept)-1 {
		kept = kept[idx+1:]
	}
	return truncationMarker + "\n" + kept
}

// truncateTail keeps the leading text within the budget. Enrichment blocks
// are ordered by query priority, so the front is the most valuable.
func truncateTail(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n" + truncationMarker
}
