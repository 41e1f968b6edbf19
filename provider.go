package canary

import "context"

// Provider is a strategy pattern interface for LLM providers. Given the
// full conversation history and the current tool catalog, Chat produces
// the assistant's next message, which may request tool calls.
type Provider interface {
	Chat(ctx context.Context, req Request) (AssistantMessage, error)
}

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	Tools        []Tool
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
