// Package tools defines the tool contract exposed to the model: parameter
// schemas sent to providers, invocation/output types, and a registry that
// dispatches calls to handlers.
package tools

import "context"

// ToolKind distinguishes function tools from provider-builtin tools.
type ToolKind string

const (
	ToolKindFunction ToolKind = "function"
)

// ToolParameter describes a single parameter in a tool's input schema.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	// Items describes array element schemas as a raw JSON Schema fragment.
	Items map[string]any `json:"items,omitempty"`
}

// ToolSpec is the provider-facing description of a tool.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// InputSchema renders the spec's parameters as a JSON Schema object, the
// shape both provider APIs accept.
func (s ToolSpec) InputSchema() map[string]any {
	properties := make(map[string]any, len(s.Parameters))
	var required []string
	for _, p := range s.Parameters {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Items != nil {
			prop["items"] = p.Items
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ToolInvocation is a single tool call requested by the model.
type ToolInvocation struct {
	CallID    string
	Name      string
	Arguments map[string]any
}

// ToolOutput is the result fed back to the model. Success is a tri-state:
// nil means the handler does not report success separately from content.
type ToolOutput struct {
	Content string
	Success *bool
}

// ValidationError marks malformed tool arguments. It is reported back to the
// model as a correctable failure, never escalated as a handler crash.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ToolHandler executes tool invocations.
type ToolHandler interface {
	Name() string
	Kind() ToolKind
	Spec() ToolSpec
	Handle(ctx context.Context, invocation *ToolInvocation) (*ToolOutput, error)
}

// Registry maps tool names to handlers, preserving registration order for
// provider tool lists.
type Registry struct {
	handlers map[string]ToolHandler
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]ToolHandler)}
}

// Register adds a handler. A handler registered under an existing name
// replaces the previous one without changing its position.
func (r *Registry) Register(handler ToolHandler) {
	name := handler.Name()
	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = handler
}

// Lookup returns the handler for name, or nil.
func (r *Registry) Lookup(name string) ToolHandler {
	return r.handlers[name]
}

// Specs returns the provider-facing specs in registration order.
func (r *Registry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.handlers[name].Spec())
	}
	return specs
}
