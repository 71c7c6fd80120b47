package llm

import (
	"context"
	"fmt"
)

// Role tags a chat message with its author.
type Role string

// Chat message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in a chat request.
type Message struct {
	Role    Role
	Content string
}

// Request describes one text-generation call.
type Request struct {
	Tier        ModelTier
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateChat generates text from an ordered role-tagged message list
	GenerateChat(ctx context.Context, req Request) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewOpenAIClient(config, apiKey)
	}
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// validateRequest checks the request shape common to all providers.
func validateRequest(req Request) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	return nil
}
