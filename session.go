package canary

import "time"

// Session represents a conversation session. Messages is an append-only
// history owned by the orchestrator; it is never rewritten in place.
type Session struct {
	ID           string
	Messages     []Message
	SystemPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
