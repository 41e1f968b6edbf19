package canary

import (
	"context"
	"encoding/json"
	"fmt"
)

// ParamType is the semantic type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
)

// Param declares a single tool parameter. Default is applied when an
// optional parameter is absent from the raw arguments; it is ignored for
// required parameters.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
}

// Args holds arguments bound and coerced against a descriptor's parameter
// list. Accessors assume the invoker has already validated types.
type Args map[string]any

// String returns the named argument as a string, or "" if absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Number returns the named argument as a float64, or 0 if absent.
func (a Args) Number(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// Int returns the named argument as an int, or 0 if absent.
func (a Args) Int(name string) int {
	i, _ := a[name].(int)
	return i
}

// Bool returns the named argument as a bool, or false if absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Handler executes a tool with bound arguments. The returned value is
// JSON-encoded into the success payload. A returned error is normalized to
// an internal failure by the invoker; handlers report domain failures
// through their payload instead.
type Handler func(ctx context.Context, args Args) (any, error)

// ToolDescriptor declares an invocable operation: its name, parameter
// contract, and handler. Descriptors are immutable once registered.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

// Tool is the catalog entry advertised to the model capability.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Catalog renders the descriptor as a catalog entry with a JSON Schema
// parameter object.
func (d ToolDescriptor) Catalog() Tool {
	return Tool{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  d.Schema(),
	}
}

// Schema renders the parameter list as a JSON Schema object.
func (d ToolDescriptor) Schema() json.RawMessage {
	type property struct {
		Type        string `json:"type"`
		Description string `json:"description,omitempty"`
		Default     any    `json:"default,omitempty"`
	}
	schema := struct {
		Type       string              `json:"type"`
		Properties map[string]property `json:"properties"`
		Required   []string            `json:"required,omitempty"`
	}{
		Type:       "object",
		Properties: make(map[string]property, len(d.Params)),
	}
	for _, p := range d.Params {
		schema.Properties[p.Name] = property{
			Type:        string(p.Type),
			Description: p.Description,
			Default:     p.Default,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	// Param fields marshal without error; the schema struct is closed.
	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal tool schema: %v", err))
	}
	return data
}

// ToolExecutor runs tools at the invocation boundary. Execute never panics
// and never returns an error: every outcome, including unknown tool names
// and handler faults, is normalized into the InvocationResult.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) InvocationResult
}
