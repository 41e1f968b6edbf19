package canary

// Event is a sealed interface representing turn progress emitted by the
// conversation loop. Transport errors come from the loop's error return,
// not from events. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventAssistantMessage signals that an assistant message was appended to
// the session.
type EventAssistantMessage struct {
	Message AssistantMessage
}

func (EventAssistantMessage) event() {}

// EventToolCall signals that a tool invocation is starting.
type EventToolCall struct {
	Call ToolCallBlock
}

func (EventToolCall) event() {}

// EventToolResult signals that a tool invocation finished and its result
// message was appended to the session.
type EventToolResult struct {
	ID       string
	ToolName string
	Result   InvocationResult
}

func (EventToolResult) event() {}

// Interface compliance checks.
var (
	_ Event = EventAssistantMessage{}
	_ Event = EventToolCall{}
	_ Event = EventToolResult{}
)
