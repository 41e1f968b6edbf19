// Package anthropic implements [canary.Provider] for the Anthropic Messages
// API using the official SDK.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jlisowski/canary"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 8192
)

// Interface compliance check.
var _ canary.Provider = (*Client)(nil)

// Client implements [canary.Provider] for the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	model  string
}

// Option configures a [Client].
type Option func(*config)

type config struct {
	model       string
	requestOpts []option.RequestOption
}

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.requestOpts = append(c.requestOpts, option.WithBaseURL(url))
	}
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := config{model: defaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	requestOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, cfg.requestOpts...)
	return &Client{
		client: anthropic.NewClient(requestOpts...),
		model:  cfg.model,
	}
}

// Chat sends the conversation to the Messages API and returns the
// assistant's next message.
func (c *Client) Chat(ctx context.Context, req canary.Request) (canary.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return canary.AssistantMessage{}, fmt.Errorf("anthropic: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  convertMessages(req.Messages),
		MaxTokens: int64(maxTokens),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if tools := convertTools(req.Tools); len(tools) > 0 {
		params.Tools = tools
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return canary.AssistantMessage{}, fmt.Errorf("anthropic: %w", err)
	}
	return convertResponse(resp), nil
}

func convertMessages(msgs []canary.Message) []anthropic.MessageParam {
	var result []anthropic.MessageParam
	for _, msg := range msgs {
		switch m := msg.(type) {
		case canary.UserMessage:
			var blocks []anthropic.ContentBlockParamUnion
			for _, b := range m.Content {
				if tb, ok := b.(canary.TextBlock); ok {
					blocks = append(blocks, anthropic.NewTextBlock(tb.Text))
				}
			}
			result = append(result, anthropic.NewUserMessage(blocks...))
		case canary.AssistantMessage:
			var blocks []anthropic.ContentBlockParamUnion
			for _, b := range m.Content {
				switch bl := b.(type) {
				case canary.TextBlock:
					blocks = append(blocks, anthropic.NewTextBlock(bl.Text))
				case canary.ToolCallBlock:
					// Arguments is json.RawMessage — always valid JSON from domain types.
					var input map[string]any
					_ = json.Unmarshal(bl.Arguments, &input)
					blocks = append(blocks, anthropic.NewToolUseBlock(bl.ID, input, bl.Name))
				}
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))
		case canary.ToolResultMessage:
			result = append(result, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Result.Render(), m.Result.Failed()),
			))
		}
	}
	return result
}

func convertTools(tools []canary.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		if t.Parameters != nil {
			_ = json.Unmarshal(t.Parameters, &schema)
		}
		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: schema,
			},
		}
	}
	return result
}

func convertResponse(resp *anthropic.Message) canary.AssistantMessage {
	msg := canary.AssistantMessage{
		StopReason:    convertStopReason(string(resp.StopReason)),
		RawStopReason: string(resp.StopReason),
		Usage: canary.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			msg.Content = append(msg.Content, canary.TextBlock{Text: b.Text})
		case anthropic.ToolUseBlock:
			args, _ := json.Marshal(b.Input)
			msg.Content = append(msg.Content, canary.ToolCallBlock{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}
	return msg
}

func convertStopReason(raw string) canary.StopReason {
	switch raw {
	case "end_turn", "stop_sequence":
		return canary.StopEndTurn
	case "max_tokens":
		return canary.StopLength
	case "tool_use":
		return canary.StopToolUse
	default:
		return canary.StopUnknown
	}
}
