package canary

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateTool indicates a registration under an already-taken name.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrUnknownTool indicates the requested tool does not exist.
	ErrUnknownTool = errors.New("unknown tool")
)
