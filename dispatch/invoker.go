// Package dispatch implements the tool-invocation boundary: argument
// binding, handler execution, and outcome normalization.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jlisowski/canary"
)

// Compile-time interface check.
var _ canary.ToolExecutor = (*Invoker)(nil)

// Invoker executes tools from a registry. It is stateless per call and
// safe for concurrent use across sessions.
type Invoker struct {
	registry *canary.Registry
}

// New creates an Invoker over the given registry.
func New(registry *canary.Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Execute looks up the named tool, binds the raw arguments against its
// parameter contract, and runs the handler. Every outcome is returned as an
// InvocationResult; nothing raised by a handler escapes this boundary. A
// model may hallucinate tool names, so unknown names are a failure value,
// not a crash.
func (i *Invoker) Execute(ctx context.Context, name string, args json.RawMessage) canary.InvocationResult {
	desc, err := i.registry.Lookup(name)
	if err != nil {
		return canary.Failure(canary.FailureUnknownTool, err.Error())
	}

	bound, result := bindArgs(desc.Params, args)
	if result != nil {
		return *result
	}

	if err := ctx.Err(); err != nil {
		return canary.Failure(canary.FailureCancelled, err.Error())
	}

	payload, err := runHandler(ctx, desc.Handler, bound)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return canary.Failure(canary.FailureCancelled, err.Error())
		}
		return canary.Failure(canary.FailureInternal, fmt.Sprintf("%T: %s", err, err))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return canary.Failure(canary.FailureInternal, fmt.Sprintf("encode payload: %s", err))
	}
	return canary.Success(data)
}

// runHandler executes the handler, converting panics into errors so a
// faulty tool cannot take down the orchestrator.
func runHandler(ctx context.Context, h canary.Handler, args canary.Args) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h(ctx, args)
}

// bindArgs coerces raw JSON arguments against the declared parameters.
// It returns the bound arguments, or a validation failure describing the
// first problem found. The failure message is phrased so the conversational
// layer can ask the user for the missing value.
func bindArgs(params []canary.Param, raw json.RawMessage) (canary.Args, *canary.InvocationResult) {
	values := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &values); err != nil {
			f := canary.Failure(canary.FailureValidation, fmt.Sprintf("arguments are not a JSON object: %s", err))
			return nil, &f
		}
	}

	bound := make(canary.Args, len(params))
	for _, p := range params {
		v, present := values[p.Name]
		if !present || v == nil {
			if p.Required {
				f := canary.Failure(canary.FailureValidation, fmt.Sprintf("%s is required", p.Name))
				return nil, &f
			}
			if p.Default != nil {
				bound[p.Name] = p.Default
			}
			continue
		}
		coerced, err := coerce(p, v)
		if err != nil {
			f := canary.Failure(canary.FailureValidation, err.Error())
			return nil, &f
		}
		bound[p.Name] = coerced
	}
	// Arguments not declared by the tool are dropped silently; models
	// occasionally invent extra fields.
	return bound, nil
}

func coerce(p canary.Param, v any) (any, error) {
	switch p.Type {
	case canary.ParamString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case canary.ParamNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, nil
			}
		}
	case canary.ParamInteger:
		switch n := v.(type) {
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return i, nil
			}
		}
	case canary.ParamBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed, nil
			}
		}
	}
	return nil, fmt.Errorf("%s must be a %s, got %T", p.Name, p.Type, v)
}
