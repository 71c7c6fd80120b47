// Package chat answers follow-up questions about a completed research run.
// The service is stateless: each call receives the run's artifacts and the
// full conversation history and replays them verbatim to the model.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/briefing"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/prompts"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

// Options tunes the follow-up generation call. Zero fields use defaults.
type Options struct {
	Tier        llm.ModelTier
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// DefaultOptions returns the default follow-up settings.
func DefaultOptions() Options {
	return Options{
		Tier:        llm.TierStandard,
		MaxTokens:   1500,
		Temperature: 0.7,
		Timeout:     2 * time.Minute,
	}
}

// Service answers follow-up questions grounded in a run's research output.
type Service struct {
	llm     llm.Client
	opts    Options
	builder *briefing.Builder
}

// NewService creates a follow-up service over the given generation client.
func NewService(client llm.Client, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.Tier == "" {
		opts.Tier = defaults.Tier
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaults.Temperature
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	return &Service{llm: client, opts: opts, builder: briefing.NewBuilder(briefing.Budgets{})}
}

// RespondToRun answers a follow-up message grounded in a completed run.
func (s *Service) RespondToRun(ctx context.Context, run *types.PipelineRun, history []types.ConversationTurn, message string) (string, error) {
	if run == nil {
		return "", fmt.Errorf("a completed run is required")
	}
	return s.Respond(ctx, &run.Prospect, run.ArtifactsInOrder(), run.Synthesis, history, message)
}

// Respond answers one follow-up message. History is replayed verbatim and in
// order ahead of the new message; nothing is stored between calls.
func (s *Service) Respond(ctx context.Context, prospect *types.Prospect, artifacts []types.StageArtifact, synthesis *types.StageArtifact, history []types.ConversationTurn, message string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("message is required")
	}
	if len(artifacts) == 0 && synthesis == nil {
		return "", fmt.Errorf("research context is required")
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.SystemMessage(s.systemPrompt(prospect, artifacts, synthesis)))
	for _, turn := range history {
		switch turn.Role {
		case types.TurnAssistant:
			messages = append(messages, llm.AssistantMessage(turn.Text))
		default:
			messages = append(messages, llm.UserMessage(turn.Text))
		}
	}
	messages = append(messages, llm.UserMessage(message))

	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	return s.llm.GenerateChat(genCtx, llm.Request{
		Tier:        s.opts.Tier,
		Messages:    messages,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
}

// systemPrompt renders the grounding context: the prospect's facts, then
// every stage artifact labeled, plus the synthesis when present.
func (s *Service) systemPrompt(prospect *types.Prospect, artifacts []types.StageArtifact, synthesis *types.StageArtifact) string {
	var context strings.Builder
	if prospect != nil {
		context.WriteString(s.builder.Facts(prospect))
		context.WriteString("\n\n")
	}
	for _, a := range artifacts {
		context.WriteString(briefing.LabelArtifact(a))
		context.WriteString("\n\n")
	}
	if synthesis != nil {
		context.WriteString(briefing.LabelArtifact(*synthesis))
		context.WriteString("\n\n")
	}

	return prompts.Format(prompts.MustGet(prompts.DirectivesFile, "chat_system"), map[string]string{
		"Context": strings.TrimSuffix(context.String(), "\n\n"),
	})
}
