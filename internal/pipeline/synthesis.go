package pipeline

import (
	"context"
	"strings"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/prompts"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// synthesize consolidates every stage artifact into one sales plan. It runs
// on the advanced tier with every artifact passed full-text; synthesis is
// the one consumer that must see the complete output set.
func (r *Runner) synthesize(ctx context.Context, run *types.PipelineRun, generalContext string) (string, error) {
	var all strings.Builder
	for _, a := range run.ArtifactsInOrder() {
		all.WriteString(a.StageName)
		all.WriteString(":\n")
		all.WriteString(a.Text)
		all.WriteString("\n\n")
	}

	system := prompts.MustGet(prompts.DirectivesFile, "synthesis_system")
	if generalContext != "" {
		system += "\n\nCURRENT WEB INTELLIGENCE:\n" + generalContext
	}

	task := prompts.Format(prompts.MustGet(prompts.DirectivesFile, "synthesis_task"), map[string]string{
		"FullName":   run.Prospect.FullName(),
		"FirstName":  run.Prospect.FirstName,
		"Title":      run.Prospect.TitleOrDefault(),
		"Company":    run.Prospect.Company,
		"AllOutputs": strings.TrimSuffix(all.String(), "\n"),
	})

	genCtx, cancel := context.WithTimeout(ctx, r.tun.GenerationTimeout)
	defer cancel()

	return r.llm.GenerateChat(genCtx, llm.Request{
		Tier: llm.TierAdvanced,
		Messages: []llm.Message{
			llm.SystemMessage(system),
			llm.UserMessage(task),
		},
		MaxTokens:   r.tun.SynthesisMaxTokens,
		Temperature: r.tun.SynthesisTemperature,
	})
}
