// Package agent orchestrates the conversation loop between a Provider and a
// ToolExecutor.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/jlisowski/canary"
)

// defaultMaxToolCalls bounds tool invocations per Run so a model stuck in a
// call-result cycle cannot loop forever.
const defaultMaxToolCalls = 50

// Loop orchestrates the conversation between a Provider and a ToolExecutor.
type Loop struct {
	provider canary.Provider
	executor canary.ToolExecutor
}

// New creates a new Loop with the given provider and tool executor.
func New(provider canary.Provider, executor canary.ToolExecutor) *Loop {
	return &Loop{provider: provider, executor: executor}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent      func(canary.Event)
	model        string
	maxToolCalls int
}

// WithEventHandler sets a callback that receives each progress event during
// the run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(canary.Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// WithModel sets the model ID for provider requests during this run.
// Empty string means the provider uses its default model.
func WithModel(model string) RunOption {
	return func(c *runConfig) {
		c.model = model
	}
}

// WithMaxToolCalls overrides the per-run tool invocation budget.
func WithMaxToolCalls(n int) RunOption {
	return func(c *runConfig) {
		c.maxToolCalls = n
	}
}

// Run executes one user turn. It sends the session's history and the tool
// catalog to the provider, executes any requested tool calls sequentially
// in request order, appends the results, and repeats until the assistant
// produces a message with no tool calls. All messages are appended to
// session.Messages; a message is only appended once it is complete, so a
// cancelled run never leaves a partial entry behind.
func (l *Loop) Run(ctx context.Context, session *canary.Session, tools []canary.Tool, opts ...RunOption) error {
	cfg := runConfig{maxToolCalls: defaultMaxToolCalls}
	for _, opt := range opts {
		opt(&cfg)
	}
	calls := 0
	for {
		cont, err := l.turn(ctx, session, tools, &cfg, &calls)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// turn executes a single model turn. It returns true if the loop should
// continue (tool calls were made), false if it should stop.
func (l *Loop) turn(ctx context.Context, session *canary.Session, tools []canary.Tool, cfg *runConfig, calls *int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req := canary.Request{
		Model:        cfg.model,
		SystemPrompt: session.SystemPrompt,
		Messages:     session.Messages,
		Tools:        tools,
	}

	msg, err := l.provider.Chat(ctx, req)
	if err != nil {
		return false, err
	}

	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = time.Now()
	if cfg.onEvent != nil {
		cfg.onEvent(canary.EventAssistantMessage{Message: msg})
	}

	toolCalls := msg.ToolCalls()
	if len(toolCalls) == 0 {
		return false, nil
	}

	*calls += len(toolCalls)
	if cfg.maxToolCalls > 0 && *calls > cfg.maxToolCalls {
		return false, fmt.Errorf("tool call budget exceeded (%d)", cfg.maxToolCalls)
	}

	// Execute each tool call in request order and append results to the
	// session. Ordering of side effects on the same external system
	// matters, so calls never run concurrently.
	for _, tc := range toolCalls {
		if cfg.onEvent != nil {
			cfg.onEvent(canary.EventToolCall{Call: tc})
		}

		result := l.executor.Execute(ctx, tc.Name, tc.Arguments)
		if result.Kind == canary.FailureCancelled && ctx.Err() != nil {
			// The run was cancelled mid-execution. Return without
			// appending so history reads as if the call never began.
			return false, ctx.Err()
		}

		trm := canary.ToolResultMessage{
			ToolCallID: tc.ID,
			ToolName:   tc.Name,
			Result:     result,
			Timestamp:  time.Now(),
		}
		session.Messages = append(session.Messages, trm)

		if cfg.onEvent != nil {
			cfg.onEvent(canary.EventToolResult{
				ID:       tc.ID,
				ToolName: tc.Name,
				Result:   result,
			})
		}
	}
	session.UpdatedAt = time.Now()

	return true, nil
}
