// Package handlers implements the diagram tool handlers dispatched by the
// tool registry. All three tools operate on a shared edit session.
package handlers

import (
	"context"
	"fmt"

	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
	"github.com/drawbridge-ai/drawbridge/internal/session"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

const displayDiagramDescription = `Display a diagram on the canvas. Pass ONLY the mxCell elements - wrapper tags and root cells are added automatically.

VALIDATION RULES (XML will be rejected if violated):
1. Generate ONLY mxCell elements - NO wrapper tags (<mxfile>, <mxGraphModel>, <root>)
2. Do NOT include root cells (id="0" or id="1") - they are added automatically
3. All mxCell elements must be siblings - never nested
4. Every mxCell needs a unique id (start from "2")
5. Every mxCell needs a valid parent attribute (use "1" for top-level)
6. Escape special chars in values: &lt; &gt; &amp; &quot;`

// DisplayDiagramTool replaces the whole document with a freshly generated
// cell fragment.
type DisplayDiagramTool struct {
	session *session.Session
}

// NewDisplayDiagramTool creates a display_diagram handler bound to a session.
func NewDisplayDiagramTool(s *session.Session) *DisplayDiagramTool {
	return &DisplayDiagramTool{session: s}
}

// Name returns the tool's name.
func (t *DisplayDiagramTool) Name() string {
	return "display_diagram"
}

// Kind returns ToolKindFunction.
func (t *DisplayDiagramTool) Kind() tools.ToolKind {
	return tools.ToolKindFunction
}

// Spec returns the provider-facing tool description.
func (t *DisplayDiagramTool) Spec() tools.ToolSpec {
	return tools.ToolSpec{
		Name:        t.Name(),
		Description: displayDiagramDescription,
		Parameters: []tools.ToolParameter{
			{Name: "xml", Type: "string", Description: "mxCell elements to display (no wrapper tags)", Required: true},
		},
	}
}

// Handle validates the payload and loads it as the new document. A payload
// that stops mid-generation is stashed and the model is told to continue
// with append_diagram instead.
func (t *DisplayDiagramTool) Handle(_ context.Context, invocation *tools.ToolInvocation) (*tools.ToolOutput, error) {
	xml, err := stringArgument(invocation, "xml")
	if err != nil {
		return nil, err
	}

	if mxgraph.IsTruncated(xml) {
		t.session.StashTruncated(xml)
		success := false
		return &tools.ToolOutput{
			Content: "Error: diagram XML appears truncated (unclosed mxCell markup). Call append_diagram with the continuation, starting exactly where your output stopped. Do not repeat already-sent content.",
			Success: &success,
		}, nil
	}

	if err := t.session.ReplaceDocument(xml); err != nil {
		success := false
		return &tools.ToolOutput{
			Content: fmt.Sprintf("Error: %v. Regenerate the diagram following the validation rules.", err),
			Success: &success,
		}, nil
	}

	success := true
	return &tools.ToolOutput{
		Content: "Diagram displayed successfully.",
		Success: &success,
	}, nil
}

// stringArgument extracts a required string argument from an invocation.
func stringArgument(invocation *tools.ToolInvocation, name string) (string, error) {
	raw, ok := invocation.Arguments[name]
	if !ok {
		return "", tools.NewValidationError("missing required argument: " + name)
	}
	value, ok := raw.(string)
	if !ok {
		return "", tools.NewValidationError(name + " must be a string")
	}
	return value, nil
}
