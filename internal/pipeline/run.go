// Package pipeline provides the high-level orchestration for prospect
// research: an ordered sequence of analysis stages threading context forward,
// followed by a synthesis step over the complete artifact set.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/briefing"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/queries"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/search"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Stage    string `json:"stage"`
	Position int    `json:"position"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Tunables holds the orchestration knobs. Defaults reproduce the shipped
// behavior; callers override individual fields as needed.
type Tunables struct {
	Budgets briefing.Budgets
	// GenerationTimeout bounds each text-generation call.
	GenerationTimeout time.Duration
	// EnrichmentTimeout bounds one stage's cumulative enrichment phase.
	EnrichmentTimeout time.Duration
	// DeepSynthesisPosition is the 1-based slot in the enabled sequence that
	// receives full untruncated prior context when no stage declares the
	// full_context policy explicitly. It only applies when at least that
	// many stages are enabled.
	DeepSynthesisPosition int
	// GeneralQueryLimit and GeneralResultCap shape the run's initial shared
	// search pass.
	GeneralQueryLimit int
	GeneralResultCap  int

	StageMaxTokens       int
	StageTemperature     float32
	SynthesisMaxTokens   int
	SynthesisTemperature float32
	ChatTier             llm.ModelTier
}

// DefaultTunables returns the default orchestration settings.
func DefaultTunables() Tunables {
	return Tunables{
		Budgets:               briefing.DefaultBudgets(),
		GenerationTimeout:     2 * time.Minute,
		EnrichmentTimeout:     3 * time.Minute,
		DeepSynthesisPosition: 5,
		GeneralQueryLimit:     2,
		GeneralResultCap:      3,
		StageMaxTokens:        2500,
		StageTemperature:      0.5,
		SynthesisMaxTokens:    2000,
		SynthesisTemperature:  0.7,
	}
}

// normalize fills zero fields with defaults.
func (t Tunables) normalize() Tunables {
	defaults := DefaultTunables()
	if t.GenerationTimeout <= 0 {
		t.GenerationTimeout = defaults.GenerationTimeout
	}
	if t.EnrichmentTimeout <= 0 {
		t.EnrichmentTimeout = defaults.EnrichmentTimeout
	}
	if t.DeepSynthesisPosition <= 0 {
		t.DeepSynthesisPosition = defaults.DeepSynthesisPosition
	}
	if t.GeneralQueryLimit <= 0 {
		t.GeneralQueryLimit = defaults.GeneralQueryLimit
	}
	if t.GeneralResultCap <= 0 {
		t.GeneralResultCap = defaults.GeneralResultCap
	}
	if t.StageMaxTokens <= 0 {
		t.StageMaxTokens = defaults.StageMaxTokens
	}
	if t.StageTemperature <= 0 {
		t.StageTemperature = defaults.StageTemperature
	}
	if t.SynthesisMaxTokens <= 0 {
		t.SynthesisMaxTokens = defaults.SynthesisMaxTokens
	}
	if t.SynthesisTemperature <= 0 {
		t.SynthesisTemperature = defaults.SynthesisTemperature
	}
	return t
}

// Runner executes pipeline runs against injected generation and search
// clients. A Runner is safe for concurrent runs: each run owns its own
// artifact map and rolling narrative.
type Runner struct {
	llm        llm.Client
	search     search.Searcher
	tun        Tunables
	builder    *briefing.Builder
	onProgress ProgressCallback
}

// NewRunner creates a Runner.
func NewRunner(client llm.Client, searcher search.Searcher, tun Tunables, onProgress ProgressCallback) *Runner {
	tun = tun.normalize()
	return &Runner{
		llm:        client,
		search:     searcher,
		tun:        tun,
		builder:    briefing.NewBuilder(tun.Budgets),
		onProgress: onProgress,
	}
}

// emitProgress calls the progress callback if configured
func (r *Runner) emitProgress(runID uuid.UUID, stage string, position int, message string, content any) {
	if r.onProgress != nil {
		r.onProgress(ProgressEvent{
			Stage:    stage,
			Position: position,
			Message:  message,
			RunID:    runID.String(),
			Content:  content,
		})
	}
}

// Run executes the configured stages in ascending position order, threading
// the rolling narrative forward, then synthesizes all artifacts into one
// consolidated report. The first generation failure fails the run; the
// returned PipelineRun still carries everything produced before the failure.
func (r *Runner) Run(ctx context.Context, prospect types.Prospect, stages []types.StageConfig) (*types.PipelineRun, error) {
	if err := prospect.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prospect: %w", err)
	}
	if err := types.ValidateStageSet(stages); err != nil {
		return nil, fmt.Errorf("invalid stage set: %w", err)
	}

	enabled := types.EnabledStages(stages)
	if len(enabled) == 0 {
		return nil, ErrNoStagesEnabled
	}

	run := &types.PipelineRun{
		ID:        uuid.New(),
		Prospect:  prospect,
		Stages:    enabled,
		Artifacts: make(map[string]types.StageArtifact, len(enabled)),
		State:     types.RunRunning,
		StartedAt: time.Now(),
	}

	// Initial shared search pass: a couple of broad identity/news queries
	// reused by general-policy stages and by synthesis.
	generalContext := r.gatherGeneralContext(ctx, &prospect)
	r.emitProgress(run.ID, "enrichment", 0, "Gathered general web intelligence", nil)

	for step, stage := range enabled {
		// Cooperative cancellation between stages; stages can be long.
		if err := ctx.Err(); err != nil {
			return r.fail(run, &StageError{StageID: stage.ID, Position: stage.Position, Err: err})
		}

		policy := r.resolvePolicy(stage, step, len(enabled))
		text, err := r.executeStage(ctx, &prospect, stage, policy, run, generalContext)
		if err != nil {
			return r.fail(run, &StageError{StageID: stage.ID, Position: stage.Position, Err: err})
		}

		artifact := types.StageArtifact{
			StageID:    stage.ID,
			StageName:  stage.DisplayName,
			Text:       text,
			ProducedAt: time.Now(),
		}
		run.Artifacts[stage.ID] = artifact
		run.RollingNarrative = briefing.AppendNarrative(run.RollingNarrative, stage.DisplayName, step+1, text)
		r.emitProgress(run.ID, stage.ID, stage.Position, fmt.Sprintf("Completed %s", stage.DisplayName), nil)
	}

	synthesisText, err := r.synthesize(ctx, run, generalContext)
	if err != nil {
		return r.fail(run, &SynthesisError{Err: err})
	}
	run.Synthesis = &types.StageArtifact{
		StageID:    "synthesis",
		StageName:  "Sales Plan",
		Text:       synthesisText,
		ProducedAt: time.Now(),
	}
	r.emitProgress(run.ID, "synthesis", len(enabled), "Completed synthesis", nil)

	run.State = types.RunCompleted
	run.FinishedAt = time.Now()
	return run, nil
}

// fail marks the run failed and returns it alongside the error so callers
// can still display the partial narrative.
func (r *Runner) fail(run *types.PipelineRun, err error) (*types.PipelineRun, error) {
	run.State = types.RunFailed
	run.FinishedAt = time.Now()
	return run, err
}

// gatherGeneralContext runs the shared general search pass. Failures
// degrade to an empty block.
func (r *Runner) gatherGeneralContext(ctx context.Context, p *types.Prospect) string {
	enrichCtx, cancel := context.WithTimeout(ctx, r.tun.EnrichmentTimeout)
	defer cancel()

	general := queries.General(p.FullName(), p.Company, p.Title)
	return search.CollectContext(enrichCtx, r.search, general, r.tun.GeneralQueryLimit, r.tun.GeneralResultCap)
}

// resolvePolicy returns the stage's enrichment policy, falling back to
// general enrichment and the designated deep-synthesis slot for stage sets
// that declare no policies.
func (r *Runner) resolvePolicy(stage types.StageConfig, step, enabledCount int) types.EnrichmentPolicy {
	if stage.Enrichment != nil {
		return *stage.Enrichment
	}
	if enabledCount >= r.tun.DeepSynthesisPosition && step == r.tun.DeepSynthesisPosition-1 {
		return types.EnrichmentPolicy{Mode: types.EnrichmentFullContext}
	}
	return types.EnrichmentPolicy{Mode: types.EnrichmentGeneral}
}

// RunOptions holds everything needed for a credentialed, self-contained run.
type RunOptions struct {
	Prospect types.Prospect
	Stages   []types.StageConfig
	// GenerationAPIKey is required and supplied per call; it is never stored.
	GenerationAPIKey string
	LLMConfig        *llm.Config
	SearchConfig     search.Config
	Tunables         Tunables
	OnProgress       ProgressCallback
}

// RunPipeline builds clients from the supplied credentials and executes one
// run. Use Runner directly to reuse clients across runs.
func RunPipeline(ctx context.Context, opts RunOptions) (*types.PipelineRun, error) {
	if opts.GenerationAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := llm.NewClient(ctx, opts.LLMConfig, opts.GenerationAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	searcher := search.NewSearcher(ctx, opts.SearchConfig)
	runner := NewRunner(client, searcher, opts.Tunables, opts.OnProgress)
	return runner.Run(ctx, opts.Prospect, opts.Stages)
}
