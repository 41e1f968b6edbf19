package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jlisowski/canary"
	"github.com/jlisowski/canary/agent"
	"github.com/jlisowski/canary/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textMessage(text string) canary.AssistantMessage {
	return canary.AssistantMessage{
		Content:    []canary.ContentBlock{canary.TextBlock{Text: text}},
		StopReason: canary.StopEndTurn,
	}
}

func toolCallMessage(id, name, args string) canary.AssistantMessage {
	return canary.AssistantMessage{
		Content: []canary.ContentBlock{
			canary.ToolCallBlock{ID: id, Name: name, Arguments: json.RawMessage(args)},
		},
		StopReason: canary.StopToolUse,
	}
}

func TestLoop_Run(t *testing.T) {
	t.Parallel()

	t.Run("text response ends turn", func(t *testing.T) {
		t.Parallel()

		provider := mock.ScriptedProvider(textMessage("hello"))
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _ string, _ json.RawMessage) canary.InvocationResult {
				t.Fatal("executor should not be called")
				return canary.InvocationResult{}
			},
		}

		session := &canary.Session{SystemPrompt: "you are helpful"}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil)
		require.NoError(t, err)

		require.Len(t, session.Messages, 1)
		msg, ok := session.Messages[0].(canary.AssistantMessage)
		require.True(t, ok)
		assert.Equal(t, "hello", msg.Text())
	})

	t.Run("tool call executes and loop continues", func(t *testing.T) {
		t.Parallel()

		provider := mock.ScriptedProvider(
			toolCallMessage("tc_1", "query_test_results", `{"project":"P"}`),
			textMessage("the test passed"),
		)

		var gotName string
		var gotArgs json.RawMessage
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, name string, args json.RawMessage) canary.InvocationResult {
				gotName = name
				gotArgs = args
				return canary.Success(json.RawMessage(`{"success":true}`))
			},
		}

		session := &canary.Session{
			Messages: []canary.Message{
				canary.UserMessage{Content: []canary.ContentBlock{canary.TextBlock{Text: "did it pass?"}}},
			},
		}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil)
		require.NoError(t, err)

		assert.Equal(t, "query_test_results", gotName)
		assert.JSONEq(t, `{"project":"P"}`, string(gotArgs))

		// user, assistant (tool call), tool result, assistant (text)
		require.Len(t, session.Messages, 4)
		assert.Equal(t, canary.RoleUser, session.Messages[0].Role())
		assert.Equal(t, canary.RoleAssistant, session.Messages[1].Role())
		assert.Equal(t, canary.RoleToolResult, session.Messages[2].Role())
		assert.Equal(t, canary.RoleAssistant, session.Messages[3].Role())

		trm, ok := session.Messages[2].(canary.ToolResultMessage)
		require.True(t, ok)
		assert.Equal(t, "tc_1", trm.ToolCallID)
		assert.Equal(t, "query_test_results", trm.ToolName)
		assert.False(t, trm.Result.Failed())
	})

	t.Run("failed tool result is appended and loop continues", func(t *testing.T) {
		t.Parallel()

		provider := mock.ScriptedProvider(
			toolCallMessage("tc_1", "query_test_results", `{}`),
			textMessage("I need a project name"),
		)
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _ string, _ json.RawMessage) canary.InvocationResult {
				return canary.Failure(canary.FailureValidation, "project is required")
			},
		}

		session := &canary.Session{}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil)
		require.NoError(t, err)

		require.Len(t, session.Messages, 3)
		trm, ok := session.Messages[1].(canary.ToolResultMessage)
		require.True(t, ok)
		assert.True(t, trm.Result.Failed())
		assert.Equal(t, canary.FailureValidation, trm.Result.Kind)
	})

	t.Run("multiple tool calls run sequentially in order", func(t *testing.T) {
		t.Parallel()

		multi := canary.AssistantMessage{
			Content: []canary.ContentBlock{
				canary.ToolCallBlock{ID: "tc_1", Name: "query_test_results", Arguments: json.RawMessage(`{"n":1}`)},
				canary.ToolCallBlock{ID: "tc_2", Name: "query_test_results", Arguments: json.RawMessage(`{"n":2}`)},
			},
			StopReason: canary.StopToolUse,
		}
		provider := mock.ScriptedProvider(multi, textMessage("done"))

		var order []string
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _ string, args json.RawMessage) canary.InvocationResult {
				order = append(order, string(args))
				return canary.Success(json.RawMessage(`{}`))
			},
		}

		session := &canary.Session{}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, order)

		// assistant, result, result, assistant
		require.Len(t, session.Messages, 4)
		first := session.Messages[1].(canary.ToolResultMessage)
		second := session.Messages[2].(canary.ToolResultMessage)
		assert.Equal(t, "tc_1", first.ToolCallID)
		assert.Equal(t, "tc_2", second.ToolCallID)
	})

	t.Run("provider error is returned without appending", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("rate limited")
		provider := &mock.Provider{
			ChatFn: func(_ context.Context, _ canary.Request) (canary.AssistantMessage, error) {
				return canary.AssistantMessage{}, wantErr
			},
		}
		executor := &mock.ToolExecutor{}

		session := &canary.Session{}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil)
		assert.ErrorIs(t, err, wantErr)
		assert.Empty(t, session.Messages)
	})

	t.Run("cancellation during tool call leaves history without the result", func(t *testing.T) {
		t.Parallel()

		provider := mock.ScriptedProvider(
			toolCallMessage("tc_1", "query_test_results", `{"project":"P"}`),
		)

		ctx, cancel := context.WithCancel(context.Background())
		executor := &mock.ToolExecutor{
			ExecuteFn: func(ctx context.Context, _ string, _ json.RawMessage) canary.InvocationResult {
				cancel()
				return canary.Failure(canary.FailureCancelled, ctx.Err().Error())
			},
		}

		session := &canary.Session{}
		loop := agent.New(provider, executor)

		lenBefore := len(session.Messages)
		err := loop.Run(ctx, session, nil)
		require.ErrorIs(t, err, context.Canceled)

		// Only the assistant message that requested the call was appended;
		// no partial tool result exists.
		assert.Len(t, session.Messages, lenBefore+1)
		_, ok := session.Messages[len(session.Messages)-1].(canary.AssistantMessage)
		assert.True(t, ok)
	})

	t.Run("tool call budget stops runaway loops", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			ChatFn: func(_ context.Context, _ canary.Request) (canary.AssistantMessage, error) {
				return toolCallMessage("tc_x", "query_test_results", `{}`), nil
			},
		}
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _ string, _ json.RawMessage) canary.InvocationResult {
				return canary.Success(json.RawMessage(`{}`))
			},
		}

		session := &canary.Session{}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil, agent.WithMaxToolCalls(3))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "budget")
	})

	t.Run("request carries history, catalog, and model", func(t *testing.T) {
		t.Parallel()

		var got canary.Request
		provider := &mock.Provider{
			ChatFn: func(_ context.Context, req canary.Request) (canary.AssistantMessage, error) {
				got = req
				return textMessage("ok"), nil
			},
		}
		executor := &mock.ToolExecutor{}

		tools := []canary.Tool{{Name: "query_test_results"}}
		session := &canary.Session{
			SystemPrompt: "be brief",
			Messages: []canary.Message{
				canary.UserMessage{Content: []canary.ContentBlock{canary.TextBlock{Text: "hi"}}},
			},
		}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, tools, agent.WithModel("test-model"))
		require.NoError(t, err)

		assert.Equal(t, "test-model", got.Model)
		assert.Equal(t, "be brief", got.SystemPrompt)
		assert.Len(t, got.Messages, 1)
		assert.Equal(t, tools, got.Tools)
	})

	t.Run("events fire in order", func(t *testing.T) {
		t.Parallel()

		provider := mock.ScriptedProvider(
			toolCallMessage("tc_1", "query_test_results", `{}`),
			textMessage("done"),
		)
		executor := &mock.ToolExecutor{
			ExecuteFn: func(_ context.Context, _ string, _ json.RawMessage) canary.InvocationResult {
				return canary.Success(json.RawMessage(`{}`))
			},
		}

		var kinds []string
		onEvent := func(e canary.Event) {
			switch e.(type) {
			case canary.EventAssistantMessage:
				kinds = append(kinds, "assistant")
			case canary.EventToolCall:
				kinds = append(kinds, "tool_call")
			case canary.EventToolResult:
				kinds = append(kinds, "tool_result")
			}
		}

		session := &canary.Session{}
		loop := agent.New(provider, executor)

		err := loop.Run(context.Background(), session, nil, agent.WithEventHandler(onEvent))
		require.NoError(t, err)

		assert.Equal(t, []string{"assistant", "tool_call", "tool_result", "assistant"}, kinds)
	})
}
