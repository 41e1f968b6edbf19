package canary

import "fmt"

// Registry holds the catalog of invocable tools. Registration happens
// single-threaded during initialization; after that the registry is
// read-only and safe to share across sessions.
type Registry struct {
	byName map[string]ToolDescriptor
	order  []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]ToolDescriptor)}
}

// Register adds a descriptor to the registry. Registering a name twice
// fails with ErrDuplicateTool and leaves the first registration intact.
func (r *Registry) Register(d ToolDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("descriptor has no name: %w", ErrValidation)
	}
	if d.Handler == nil {
		return fmt.Errorf("descriptor %q has no handler: %w", d.Name, ErrValidation)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("tool %q: %w", d.Name, ErrDuplicateTool)
	}
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Lookup returns the descriptor registered under name, or ErrUnknownTool.
func (r *Registry) Lookup(name string) (ToolDescriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return ToolDescriptor{}, fmt.Errorf("tool %q: %w", name, ErrUnknownTool)
	}
	return d, nil
}

// List returns the registered descriptors in registration order.
func (r *Registry) List() []ToolDescriptor {
	result := make([]ToolDescriptor, len(r.order))
	for i, name := range r.order {
		result[i] = r.byName[name]
	}
	return result
}

// Catalog returns the tool catalog advertised to the model capability, in
// registration order.
func (r *Registry) Catalog() []Tool {
	result := make([]Tool, len(r.order))
	for i, name := range r.order {
		result[i] = r.byName[name].Catalog()
	}
	return result
}
