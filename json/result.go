package json

import (
	"encoding/json"
	"fmt"

	"github.com/jlisowski/canary"
)

// resultDTO is the JSON representation of an InvocationResult. Exactly one
// of payload (success) or kind+message (failure) is populated.
type resultDTO struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
}

// MarshalResult encodes an InvocationResult as JSON. Decoding the output
// with UnmarshalResult yields an equivalent result.
func MarshalResult(r canary.InvocationResult) ([]byte, error) {
	dto := marshalResult(r)
	data, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

// UnmarshalResult decodes an InvocationResult produced by MarshalResult.
func UnmarshalResult(data []byte) (canary.InvocationResult, error) {
	var dto resultDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return canary.InvocationResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return unmarshalResult(dto), nil
}

func marshalResult(r canary.InvocationResult) resultDTO {
	return resultDTO{
		Payload: r.Payload,
		Kind:    string(r.Kind),
		Message: r.Message,
	}
}

func unmarshalResult(dto resultDTO) canary.InvocationResult {
	return canary.InvocationResult{
		Payload: dto.Payload,
		Kind:    canary.FailureKind(dto.Kind),
		Message: dto.Message,
	}
}
