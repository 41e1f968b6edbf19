// Package gemini implements [canary.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between canary's
// domain types and the Gemini API types. Gemini function calls carry no
// correlation id, so one is generated per call.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jlisowski/canary"
	"google.golang.org/genai"
)

const (
	defaultModel     = "gemini-3.1-pro-preview"
	defaultMaxTokens = 65536
)

// Interface compliance check.
var _ canary.Provider = (*Client)(nil)

// Client implements [canary.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Chat sends the conversation to the Gemini API and returns the assistant's
// next message.
func (c *Client) Chat(ctx context.Context, req canary.Request) (canary.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return canary.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, ConvertMessages(req.Messages), buildConfig(req))
	if err != nil {
		return canary.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	return convertResponse(resp)
}

func buildConfig(req canary.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts canary Messages to genai Contents.
// Exported for testing.
func ConvertMessages(msgs []canary.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case canary.UserMessage:
			result = append(result, &genai.Content{
				Role:  "user",
				Parts: convertParts(m.Content),
			})
		case canary.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  "model",
				Parts: convertParts(m.Content),
			})
		case canary.ToolResultMessage:
			var responseMap map[string]any
			if m.Result.Failed() {
				responseMap = map[string]any{"error": m.Result.Render()}
			} else {
				responseMap = map[string]any{"output": m.Result.Render()}
			}
			result = append(result, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: responseMap,
					},
				}},
			})
		}
	}
	return result
}

func convertParts(blocks []canary.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case canary.TextBlock:
			parts = append(parts, &genai.Part{Text: bl.Text})
		case canary.ToolCallBlock:
			// Arguments is json.RawMessage — always valid JSON from domain types.
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
			})
		}
	}
	return parts
}

// ConvertTools converts canary Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []canary.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		// Parameters is json.RawMessage — always valid JSON from domain types.
		var schema map[string]any
		_ = json.Unmarshal(t.Parameters, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func convertResponse(resp *genai.GenerateContentResponse) (canary.AssistantMessage, error) {
	if len(resp.Candidates) == 0 {
		return canary.AssistantMessage{}, fmt.Errorf("gemini: response has no candidates")
	}
	cand := resp.Candidates[0]

	msg := canary.AssistantMessage{
		StopReason:    convertFinishReason(cand.FinishReason),
		RawStopReason: string(cand.FinishReason),
	}
	if resp.UsageMetadata != nil {
		msg.Usage = canary.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	if cand.Content == nil {
		return msg, nil
	}
	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			args, _ := json.Marshal(part.FunctionCall.Args)
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			msg.Content = append(msg.Content, canary.ToolCallBlock{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: args,
			})
			msg.StopReason = canary.StopToolUse
		case part.Text != "":
			msg.Content = append(msg.Content, canary.TextBlock{Text: part.Text})
		}
	}
	return msg, nil
}

func convertFinishReason(reason genai.FinishReason) canary.StopReason {
	switch reason {
	case genai.FinishReasonStop:
		return canary.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return canary.StopLength
	default:
		return canary.StopUnknown
	}
}
