package canary

import "encoding/json"

// FailureKind classifies tool-invocation failures.
type FailureKind string

const (
	// FailureNone marks a successful invocation.
	FailureNone FailureKind = ""

	// FailureUnknownTool: the requested tool name is not registered.
	FailureUnknownTool FailureKind = "unknown_tool"

	// FailureValidation: the arguments fail the tool's declared contract.
	FailureValidation FailureKind = "validation"

	// FailureNotFound: the requested resource does not exist.
	FailureNotFound FailureKind = "not_found"

	// FailureConfiguration: required environment-level settings are absent.
	FailureConfiguration FailureKind = "configuration"

	// FailureInternal: an unexpected fault from a handler or its client.
	FailureInternal FailureKind = "internal"

	// FailureCancelled: the invocation was cancelled in flight.
	FailureCancelled FailureKind = "cancelled"
)

// InvocationResult is the discriminated outcome of a tool invocation.
// A success carries a JSON payload; a failure carries a kind and message.
// Results are immutable values owned by the caller that requested the
// invocation.
type InvocationResult struct {
	Payload json.RawMessage
	Kind    FailureKind
	Message string
}

// Success creates a successful result carrying the given payload.
func Success(payload json.RawMessage) InvocationResult {
	return InvocationResult{Payload: payload}
}

// Failure creates a failed result with the given kind and message.
func Failure(kind FailureKind, message string) InvocationResult {
	return InvocationResult{Kind: kind, Message: message}
}

// Failed reports whether the result is a failure.
func (r InvocationResult) Failed() bool {
	return r.Kind != FailureNone
}

// Render returns the result as text suitable for a model or a human:
// the payload JSON on success, "<kind>: <message>" on failure.
func (r InvocationResult) Render() string {
	if r.Failed() {
		return string(r.Kind) + ": " + r.Message
	}
	return string(r.Payload)
}
