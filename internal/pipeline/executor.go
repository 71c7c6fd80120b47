package pipeline

import (
	"context"
	"strings"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/prompts"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/queries"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/search"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// executeStage runs a single stage: gather its enrichment context per the
// resolved policy, assemble the briefing, and generate the stage analysis.
// Enrichment failures degrade silently; only generation errors are fatal.
func (r *Runner) executeStage(ctx context.Context, p *types.Prospect, stage types.StageConfig, policy types.EnrichmentPolicy, run *types.PipelineRun, generalContext string) (string, error) {
	enrichment := r.gatherEnrichment(ctx, p, policy, generalContext)

	system := stage.Instructions + enrichment

	var user strings.Builder
	user.WriteString(r.builder.Facts(p))
	user.WriteString("\n\n")

	if policy.Mode == types.EnrichmentFullContext {
		user.WriteString(r.builder.FullContext(run.ArtifactsInOrder()))
	} else {
		user.WriteString(r.builder.Rolling(run.RollingNarrative))
	}
	user.WriteString(r.stageDirective(p, policy))

	genCtx, cancel := context.WithTimeout(ctx, r.tun.GenerationTimeout)
	defer cancel()

	return r.llm.GenerateChat(genCtx, llm.Request{
		Tier: llm.TierStandard,
		Messages: []llm.Message{
			llm.SystemMessage(system),
			llm.UserMessage(user.String()),
		},
		MaxTokens:   r.tun.StageMaxTokens,
		Temperature: r.tun.StageTemperature,
	})
}

// gatherEnrichment produces the stage's enrichment block per its policy.
// Deep policies run their dedicated query set; an empty deep result falls
// back to the run's shared general context rather than dropping enrichment
// entirely.
func (r *Runner) gatherEnrichment(ctx context.Context, p *types.Prospect, policy types.EnrichmentPolicy, generalContext string) string {
	switch policy.Mode {
	case types.EnrichmentNone:
		return ""
	case types.EnrichmentDeep:
		enrichCtx, cancel := context.WithTimeout(ctx, r.tun.EnrichmentTimeout)
		defer cancel()

		block := search.CollectContext(enrichCtx, r.search, r.queriesFor(p, policy.QuerySet), policy.QueryCount, policy.ResultCap)
		if block == "" {
			return r.builder.Enrichment(prompts.MustGet(prompts.DirectivesFile, "enrichment_general"), generalContext)
		}
		return r.builder.Enrichment(r.enrichmentHeader(policy.QuerySet), block)
	default:
		// general and full_context stages share the run's general pass.
		return r.builder.Enrichment(prompts.MustGet(prompts.DirectivesFile, "enrichment_general"), generalContext)
	}
}

// queriesFor selects the query generator for a deep policy's query set.
func (r *Runner) queriesFor(p *types.Prospect, set types.QuerySet) []string {
	switch set {
	case types.QuerySetDeepSubject:
		return queries.DeepSubject(p.FullName(), p.Company, p.Title)
	case types.QuerySetTechnology:
		return queries.Technology(p.Company)
	case types.QuerySetOrganizational:
		return queries.Organizational(p.Company, p.Title)
	default:
		return queries.General(p.FullName(), p.Company, p.Title)
	}
}

// enrichmentHeader maps a query set to its briefing section header.
func (r *Runner) enrichmentHeader(set types.QuerySet) string {
	switch set {
	case types.QuerySetDeepSubject:
		return prompts.MustGet(prompts.DirectivesFile, "enrichment_deep_subject")
	case types.QuerySetTechnology:
		return prompts.MustGet(prompts.DirectivesFile, "enrichment_technology")
	case types.QuerySetOrganizational:
		return prompts.MustGet(prompts.DirectivesFile, "enrichment_organizational")
	default:
		return prompts.MustGet(prompts.DirectivesFile, "enrichment_general")
	}
}

// stageDirective returns the closing task instructions for the user message.
// Deep-subject research stages get the structured-report directive; every
// other stage gets the generic differentiation directive.
func (r *Runner) stageDirective(p *types.Prospect, policy types.EnrichmentPolicy) string {
	key := "stage_task"
	if policy.Mode == types.EnrichmentDeep && policy.QuerySet == types.QuerySetDeepSubject {
		key = "deep_research_task"
	}
	return prompts.Format(prompts.MustGet(prompts.DirectivesFile, key), map[string]string{
		"FullName": p.FullName(),
		"Company":  p.Company,
	})
}
