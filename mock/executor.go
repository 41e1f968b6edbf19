package mock

import (
	"context"
	"encoding/json"

	"github.com/jlisowski/canary"
)

// Interface compliance check.
var _ canary.ToolExecutor = (*ToolExecutor)(nil)

// ToolExecutor is a test double for canary.ToolExecutor.
// Set ExecuteFn before calling Execute.
type ToolExecutor struct {
	ExecuteFn func(ctx context.Context, name string, args json.RawMessage) canary.InvocationResult
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) canary.InvocationResult {
	return e.ExecuteFn(ctx, name, args)
}
