package canary_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jlisowski/canary"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage_ImplementsMessage(t *testing.T) {
	t.Parallel()
	var msg canary.Message = canary.UserMessage{
		Content:   []canary.ContentBlock{canary.TextBlock{Text: "hello"}},
		Timestamp: time.Now(),
	}
	assert.Equal(t, canary.RoleUser, msg.Role())
}

func TestAssistantMessage_ImplementsMessage(t *testing.T) {
	t.Parallel()
	var msg canary.Message = canary.AssistantMessage{
		Content:       []canary.ContentBlock{canary.TextBlock{Text: "hi"}},
		StopReason:    canary.StopEndTurn,
		RawStopReason: "end_turn",
		Usage:         canary.Usage{InputTokens: 10, OutputTokens: 5},
		Timestamp:     time.Now(),
	}
	assert.Equal(t, canary.RoleAssistant, msg.Role())
}

func TestToolResultMessage_ImplementsMessage(t *testing.T) {
	t.Parallel()
	var msg canary.Message = canary.ToolResultMessage{
		ToolCallID: "tc_1",
		ToolName:   "query_test_results",
		Result:     canary.Success(json.RawMessage(`{}`)),
		Timestamp:  time.Now(),
	}
	assert.Equal(t, canary.RoleToolResult, msg.Role())
}

func TestAssistantMessage_ToolCalls(t *testing.T) {
	t.Parallel()

	msg := canary.AssistantMessage{
		Content: []canary.ContentBlock{
			canary.TextBlock{Text: "let me check"},
			canary.ToolCallBlock{ID: "tc_1", Name: "query_test_results", Arguments: json.RawMessage(`{"project":"P"}`)},
			canary.ToolCallBlock{ID: "tc_2", Name: "query_test_results", Arguments: json.RawMessage(`{"project":"Q"}`)},
		},
	}

	calls := msg.ToolCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "tc_1", calls[0].ID)
	assert.Equal(t, "tc_2", calls[1].ID)
}

func TestAssistantMessage_ToolCalls_None(t *testing.T) {
	t.Parallel()

	msg := canary.AssistantMessage{
		Content: []canary.ContentBlock{canary.TextBlock{Text: "all done"}},
	}
	assert.Empty(t, msg.ToolCalls())
}

func TestAssistantMessage_Text(t *testing.T) {
	t.Parallel()

	msg := canary.AssistantMessage{
		Content: []canary.ContentBlock{
			canary.TextBlock{Text: "first"},
			canary.ToolCallBlock{ID: "tc_1", Name: "query_test_results"},
			canary.TextBlock{Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", msg.Text())
}

func TestUsage_Add(t *testing.T) {
	t.Parallel()

	u := canary.Usage{InputTokens: 10, OutputTokens: 5}
	sum := u.Add(canary.Usage{InputTokens: 3, OutputTokens: 7})
	assert.Equal(t, canary.Usage{InputTokens: 13, OutputTokens: 12}, sum)
}
