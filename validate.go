package canary

import "fmt"

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	return nil
}

// ValidateMessage checks that a message's content blocks are valid for its role.
func ValidateMessage(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		for _, b := range m.Content {
			if _, ok := b.(TextBlock); !ok {
				return fmt.Errorf("%T not allowed in %s message: %w", b, m.Role(), ErrValidation)
			}
		}
		return nil
	case AssistantMessage:
		for _, b := range m.Content {
			switch b.(type) {
			case TextBlock, ToolCallBlock:
			default:
				return fmt.Errorf("%T not allowed in %s message: %w", b, m.Role(), ErrValidation)
			}
		}
		return nil
	case ToolResultMessage:
		if m.ToolCallID == "" {
			return fmt.Errorf("tool result has no correlation id: %w", ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %T: %w", msg, ErrValidation)
	}
}
