package canary_test

import (
	"testing"

	"github.com/jlisowski/canary"
	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     canary.Request
		wantErr bool
	}{
		{name: "zero request is valid", req: canary.Request{}},
		{name: "temperature in range", req: canary.Request{Temperature: floatPtr(1.0)}},
		{name: "temperature at lower bound", req: canary.Request{Temperature: floatPtr(0)}},
		{name: "temperature at upper bound", req: canary.Request{Temperature: floatPtr(2)}},
		{name: "temperature too low", req: canary.Request{Temperature: floatPtr(-0.1)}, wantErr: true},
		{name: "temperature too high", req: canary.Request{Temperature: floatPtr(2.1)}, wantErr: true},
		{name: "negative max tokens", req: canary.Request{MaxTokens: -1}, wantErr: true},
		{name: "positive max tokens", req: canary.Request{MaxTokens: 4096}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, canary.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	t.Run("user message with text is valid", func(t *testing.T) {
		t.Parallel()
		msg := canary.UserMessage{Content: []canary.ContentBlock{canary.TextBlock{Text: "hi"}}}
		assert.NoError(t, canary.ValidateMessage(msg))
	})

	t.Run("user message with tool call is invalid", func(t *testing.T) {
		t.Parallel()
		msg := canary.UserMessage{Content: []canary.ContentBlock{canary.ToolCallBlock{ID: "tc_1"}}}
		assert.ErrorIs(t, canary.ValidateMessage(msg), canary.ErrValidation)
	})

	t.Run("assistant message with text and tool call is valid", func(t *testing.T) {
		t.Parallel()
		msg := canary.AssistantMessage{Content: []canary.ContentBlock{
			canary.TextBlock{Text: "checking"},
			canary.ToolCallBlock{ID: "tc_1", Name: "query_test_results"},
		}}
		assert.NoError(t, canary.ValidateMessage(msg))
	})

	t.Run("tool result without correlation id is invalid", func(t *testing.T) {
		t.Parallel()
		msg := canary.ToolResultMessage{ToolName: "query_test_results"}
		assert.ErrorIs(t, canary.ValidateMessage(msg), canary.ErrValidation)
	})

	t.Run("tool result with correlation id is valid", func(t *testing.T) {
		t.Parallel()
		msg := canary.ToolResultMessage{ToolCallID: "tc_1"}
		assert.NoError(t, canary.ValidateMessage(msg))
	})
}
