package handlers

import (
	"context"
	"fmt"

	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
	"github.com/drawbridge-ai/drawbridge/internal/session"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

const appendDiagramDescription = `Continue generating diagram XML when previous display_diagram output was truncated due to length limits.

WHEN TO USE: Only call this tool after display_diagram was truncated (you'll see an error message about truncation).

CRITICAL INSTRUCTIONS:
1. Do NOT include any wrapper tags - just continue the mxCell elements
2. Continue from EXACTLY where your previous output stopped
3. Complete the remaining mxCell elements
4. If still truncated, call append_diagram again with the next fragment`

// AppendDiagramTool concatenates continuation fragments onto a truncated
// display payload until the combined markup is complete.
type AppendDiagramTool struct {
	session *session.Session
}

// NewAppendDiagramTool creates an append_diagram handler bound to a session.
func NewAppendDiagramTool(s *session.Session) *AppendDiagramTool {
	return &AppendDiagramTool{session: s}
}

// Name returns the tool's name.
func (t *AppendDiagramTool) Name() string {
	return "append_diagram"
}

// Kind returns ToolKindFunction.
func (t *AppendDiagramTool) Kind() tools.ToolKind {
	return tools.ToolKindFunction
}

// Spec returns the provider-facing tool description.
func (t *AppendDiagramTool) Spec() tools.ToolSpec {
	return tools.ToolSpec{
		Name:        t.Name(),
		Description: appendDiagramDescription,
		Parameters: []tools.ToolParameter{
			{Name: "xml", Type: "string", Description: "Continuation XML fragment to append (NO wrapper tags)", Required: true},
		},
	}
}

// Handle appends the fragment to the pending payload. Once the combined
// markup is balanced it becomes the new document.
func (t *AppendDiagramTool) Handle(_ context.Context, invocation *tools.ToolInvocation) (*tools.ToolOutput, error) {
	xml, err := stringArgument(invocation, "xml")
	if err != nil {
		return nil, err
	}

	if t.session.PendingFragment() == "" {
		success := false
		return &tools.ToolOutput{
			Content: "Error: no truncated diagram to continue. Use display_diagram to generate a new diagram.",
			Success: &success,
		}, nil
	}

	combined := t.session.AppendFragment(xml)
	if mxgraph.IsTruncated(combined) {
		success := false
		return &tools.ToolOutput{
			Content: "Diagram XML is still incomplete. Call append_diagram again with the next fragment.",
			Success: &success,
		}, nil
	}

	if err := t.session.CommitPending(); err != nil {
		success := false
		return &tools.ToolOutput{
			Content: fmt.Sprintf("Error: %v. Regenerate the diagram with display_diagram.", err),
			Success: &success,
		}, nil
	}

	success := true
	return &tools.ToolOutput{
		Content: "Diagram displayed successfully.",
		Success: &success,
	}, nil
}
