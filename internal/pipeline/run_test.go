package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/briefing"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/search"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// fakeLLM scripts GenerateChat responses and records every request.
type fakeLLM struct {
	mu      sync.Mutex
	calls   []llm.Request
	respond func(call int, req llm.Request) (string, error)
}

func (f *fakeLLM) GenerateChat(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	if f.respond != nil {
		return f.respond(call, req)
	}
	return fmt.Sprintf("analysis %d", call), nil
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSearcher records queries and returns a canned snippet per query.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	caps    []int
	snippet string
}

func (f *fakeSearcher) Search(_ context.Context, query string, resultCap int) *search.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.caps = append(f.caps, resultCap)
	if f.snippet == "" {
		return &search.Artifact{Query: query}
	}
	return &search.Artifact{
		Query:   query,
		Results: []search.Result{{Title: "result", URL: "https://example.com", Snippet: f.snippet}},
	}
}

func testProspect() types.Prospect {
	return types.Prospect{
		FirstName: "Jane",
		LastName:  "Doe",
		Company:   "Acme Corp",
		Title:     "CISO",
	}
}

func testStages(n int) []types.StageConfig {
	stages := make([]types.StageConfig, 0, n)
	for i := 0; i < n; i++ {
		stages = append(stages, types.StageConfig{
			ID:           fmt.Sprintf("stage-%d", i+1),
			DisplayName:  fmt.Sprintf("Stage %d", i+1),
			Instructions: fmt.Sprintf("You are analyst %d.", i+1),
			Enabled:      true,
			Position:     i + 1,
		})
	}
	return stages
}

func TestRunCompletesAllStagesAndSynthesis(t *testing.T) {
	client := &fakeLLM{}
	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)

	run, err := runner.Run(context.Background(), testProspect(), testStages(4))
	require.NoError(t, err)

	assert.Equal(t, types.RunCompleted, run.State)
	assert.Len(t, run.Artifacts, 4)
	require.NotNil(t, run.Synthesis)
	assert.False(t, run.FinishedAt.IsZero())

	// 4 stage calls plus 1 synthesis call.
	require.Equal(t, 5, client.callCount())
	for i := 0; i < 4; i++ {
		assert.Equal(t, llm.TierStandard, client.calls[i].Tier)
		assert.Equal(t, 2500, client.calls[i].MaxTokens)
	}
	assert.Equal(t, llm.TierAdvanced, client.calls[4].Tier)
	assert.Equal(t, 2000, client.calls[4].MaxTokens)
}

func TestRunThreadsNarrativeForward(t *testing.T) {
	client := &fakeLLM{}
	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)

	run, err := runner.Run(context.Background(), testProspect(), testStages(3))
	require.NoError(t, err)

	// Stage 3's user message should carry stage 1 and 2 labeled by step.
	user := client.calls[2].Messages[1].Content
	assert.Contains(t, user, "--- Stage 1 (Step 1) Analysis ---")
	assert.Contains(t, user, "--- Stage 2 (Step 2) Analysis ---")
	assert.NotContains(t, user, "Stage 3 (Step 3)")

	// Stage 1 sees no prior analysis.
	assert.NotContains(t, client.calls[0].Messages[1].Content, "PREVIOUS ANALYSIS")

	assert.Contains(t, run.RollingNarrative, "--- Stage 3 (Step 3) Analysis ---")
}

func TestRunFailsFatallyOnStageError(t *testing.T) {
	boom := errors.New("model unavailable")
	client := &fakeLLM{
		respond: func(call int, _ llm.Request) (string, error) {
			if call == 1 {
				return "", boom
			}
			return fmt.Sprintf("analysis %d", call), nil
		},
	}
	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)

	run, err := runner.Run(context.Background(), testProspect(), testStages(4))
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "stage-2", stageErr.StageID)
	assert.Equal(t, 2, stageErr.Position)
	assert.ErrorIs(t, err, boom)

	// Partial results survive, nothing past the failing stage ran.
	assert.Equal(t, types.RunFailed, run.State)
	assert.Len(t, run.Artifacts, 1)
	assert.Nil(t, run.Synthesis)
	assert.Equal(t, 2, client.callCount())
}

func TestRunFailsOnSynthesisError(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := &fakeLLM{
		respond: func(call int, req llm.Request) (string, error) {
			if req.Tier == llm.TierAdvanced {
				return "", boom
			}
			return fmt.Sprintf("analysis %d", call), nil
		},
	}
	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)

	run, err := runner.Run(context.Background(), testProspect(), testStages(2))
	require.Error(t, err)

	var synthErr *SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, types.RunFailed, run.State)
	assert.Len(t, run.Artifacts, 2)
	assert.Nil(t, run.Synthesis)
}

func TestRunRejectsEmptyStageSet(t *testing.T) {
	runner := NewRunner(&fakeLLM{}, search.NewDisabled(), Tunables{}, nil)

	stages := testStages(2)
	stages[0].Enabled = false
	stages[1].Enabled = false

	_, err := runner.Run(context.Background(), testProspect(), stages)
	assert.ErrorIs(t, err, ErrNoStagesEnabled)
}

func TestRunCancellationBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeLLM{
		respond: func(call int, _ llm.Request) (string, error) {
			if call == 0 {
				// Cancel after the first stage returns; the second must not run.
				cancel()
			}
			return fmt.Sprintf("analysis %d", call), nil
		},
	}
	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)

	run, err := runner.Run(ctx, testProspect(), testStages(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "stage-2", stageErr.StageID)

	assert.Equal(t, types.RunFailed, run.State)
	assert.Len(t, run.Artifacts, 1)
	assert.Equal(t, 1, client.callCount())
}

func TestDeepPolicyIssuesConfiguredQuerySet(t *testing.T) {
	client := &fakeLLM{}
	searcher := &fakeSearcher{snippet: "Acme runs Kubernetes in production."}

	stages := testStages(1)
	stages[0].Enrichment = &types.EnrichmentPolicy{
		Mode:       types.EnrichmentDeep,
		QuerySet:   types.QuerySetTechnology,
		QueryCount: 3,
		ResultCap:  2,
	}

	runner := NewRunner(client, searcher, Tunables{}, nil)
	_, err := runner.Run(context.Background(), testProspect(), stages)
	require.NoError(t, err)

	// 2 shared general queries plus the 3 capped technology queries.
	require.Len(t, searcher.queries, 5)
	for _, q := range searcher.queries[2:] {
		assert.Contains(t, q, "Acme Corp")
	}
	assert.Equal(t, []int{3, 3, 2, 2, 2}, searcher.caps)

	// The enrichment block lands in the system message under its header.
	system := client.calls[0].Messages[0].Content
	assert.Contains(t, system, "TECHNOLOGY STACK RESEARCH DATA:")
	assert.Contains(t, system, "Acme runs Kubernetes in production.")
}

func TestEmptySearchDegradesToUnenrichedRun(t *testing.T) {
	client := &fakeLLM{}
	searcher := &fakeSearcher{} // every query yields an empty artifact

	stages := testStages(2)
	stages[0].Enrichment = &types.EnrichmentPolicy{
		Mode:       types.EnrichmentDeep,
		QuerySet:   types.QuerySetOrganizational,
		QueryCount: 4,
		ResultCap:  3,
	}

	runner := NewRunner(client, searcher, Tunables{}, nil)
	run, err := runner.Run(context.Background(), testProspect(), stages)
	require.NoError(t, err)
	assert.Equal(t, types.RunCompleted, run.State)

	for _, call := range client.calls {
		assert.NotContains(t, call.Messages[0].Content, "ORGANIZATIONAL RESEARCH DATA:")
	}
}

func TestFullContextStageSeesUntruncatedArtifacts(t *testing.T) {
	longOutput := strings.Repeat("stage one finding. ", 40)
	client := &fakeLLM{
		respond: func(call int, _ llm.Request) (string, error) {
			if call == 0 {
				return longOutput, nil
			}
			return fmt.Sprintf("analysis %d", call), nil
		},
	}

	// A tiny narrative budget forces the rolling view to drop stage 1 while
	// the full-context stage still receives it verbatim.
	tun := Tunables{Budgets: briefing.Budgets{Narrative: 200}, DeepSynthesisPosition: 5}
	runner := NewRunner(client, search.NewDisabled(), tun, nil)

	run, err := runner.Run(context.Background(), testProspect(), testStages(5))
	require.NoError(t, err)
	assert.Equal(t, types.RunCompleted, run.State)

	// Stage 4 uses the capped rolling narrative.
	rollingUser := client.calls[3].Messages[1].Content
	assert.Contains(t, rollingUser, "[earlier analysis truncated]")
	assert.NotContains(t, rollingUser, longOutput)

	// Stage 5, the designated deep-synthesis slot, sees everything.
	fullUser := client.calls[4].Messages[1].Content
	assert.Contains(t, fullUser, "COMPLETE ANALYSIS FROM PREVIOUS STAGES:")
	assert.Contains(t, fullUser, "--- Stage 1 Complete Analysis ---")
	assert.Contains(t, fullUser, longOutput)
	assert.NotContains(t, fullUser, "[earlier analysis truncated]")
}

func TestExplicitFullContextPolicyOverridesSlot(t *testing.T) {
	client := &fakeLLM{}

	stages := testStages(3)
	stages[1].Enrichment = &types.EnrichmentPolicy{Mode: types.EnrichmentFullContext}

	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)
	_, err := runner.Run(context.Background(), testProspect(), stages)
	require.NoError(t, err)

	assert.Contains(t, client.calls[1].Messages[1].Content, "COMPLETE ANALYSIS FROM PREVIOUS STAGES:")
	// Only 3 stages enabled, so no implicit full-context slot elsewhere.
	assert.NotContains(t, client.calls[2].Messages[1].Content, "COMPLETE ANALYSIS FROM PREVIOUS STAGES:")
}

func TestSynthesisReceivesAllArtifacts(t *testing.T) {
	client := &fakeLLM{}
	runner := NewRunner(client, search.NewDisabled(), Tunables{}, nil)

	_, err := runner.Run(context.Background(), testProspect(), testStages(3))
	require.NoError(t, err)

	task := client.calls[3].Messages[1].Content
	assert.Contains(t, task, "Jane Doe")
	assert.Contains(t, task, "Acme Corp")
	for i := 0; i < 3; i++ {
		assert.Contains(t, task, fmt.Sprintf("analysis %d", i))
	}
}

func TestRunEmitsProgressEvents(t *testing.T) {
	var events []ProgressEvent
	runner := NewRunner(&fakeLLM{}, search.NewDisabled(), Tunables{}, func(e ProgressEvent) {
		events = append(events, e)
	})

	run, err := runner.Run(context.Background(), testProspect(), testStages(2))
	require.NoError(t, err)

	require.Len(t, events, 4) // enrichment, 2 stages, synthesis
	assert.Equal(t, "enrichment", events[0].Stage)
	assert.Equal(t, "stage-1", events[1].Stage)
	assert.Equal(t, "stage-2", events[2].Stage)
	assert.Equal(t, "synthesis", events[3].Stage)
	for _, e := range events {
		assert.Equal(t, run.ID.String(), e.RunID)
	}
}

func TestRunPipelineRequiresAPIKey(t *testing.T) {
	_, err := RunPipeline(context.Background(), RunOptions{
		Prospect: testProspect(),
		Stages:   testStages(1),
	})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestInflightGuard(t *testing.T) {
	guard := NewInflight()

	require.NoError(t, guard.TryAcquire("session-1"))
	assert.ErrorIs(t, guard.TryAcquire("session-1"), ErrRunInFlight)
	require.NoError(t, guard.TryAcquire("session-2"))

	guard.Release("session-1")
	assert.NoError(t, guard.TryAcquire("session-1"))

	// Releasing an unknown key is a no-op.
	guard.Release("never-acquired")
}
