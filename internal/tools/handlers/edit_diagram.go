package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/drawbridge-ai/drawbridge/internal/patch"
	"github.com/drawbridge-ai/drawbridge/internal/session"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

const editDiagramDescription = `Edit specific parts of the current diagram by replacing exact text matches. Use this tool to make targeted fixes without regenerating the entire XML.
CRITICAL: Copy-paste the EXACT search pattern from the "Current diagram XML" in system context. Do NOT reorder attributes or reformat - the attribute order in the XML varies and you MUST match it exactly.
IMPORTANT: Keep edits concise:
- COPY the exact mxCell line from the current XML (attribute order matters!)
- Only include the lines that are changing, plus 1-2 surrounding lines for context if needed
- Break large changes into multiple smaller edits
- Each search must contain complete lines (never truncate mid-line)
- First match only - be specific enough to target the right element`

// EditDiagramTool applies a transactional batch of search/replace edits to
// the current document.
type EditDiagramTool struct {
	session *session.Session
}

// NewEditDiagramTool creates an edit_diagram handler bound to a session.
func NewEditDiagramTool(s *session.Session) *EditDiagramTool {
	return &EditDiagramTool{session: s}
}

// Name returns the tool's name.
func (t *EditDiagramTool) Name() string {
	return "edit_diagram"
}

// Kind returns ToolKindFunction.
func (t *EditDiagramTool) Kind() tools.ToolKind {
	return tools.ToolKindFunction
}

// Spec returns the provider-facing tool description.
func (t *EditDiagramTool) Spec() tools.ToolSpec {
	return tools.ToolSpec{
		Name:        t.Name(),
		Description: editDiagramDescription,
		Parameters: []tools.ToolParameter{
			{
				Name:        "edits",
				Type:        "array",
				Description: "Array of search/replace pairs to apply sequentially",
				Required:    true,
				Items: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"search":  map[string]any{"type": "string", "description": "EXACT lines copied from current XML (preserve attribute order!)"},
						"replace": map[string]any{"type": "string", "description": "Replacement lines"},
					},
					"required": []string{"search", "replace"},
				},
			},
		},
	}
}

// Handle applies the batch. An unmatched search pattern aborts the whole
// batch and reports the failing operation back to the model so it can retry
// with an adjusted pattern.
func (t *EditDiagramTool) Handle(_ context.Context, invocation *tools.ToolInvocation) (*tools.ToolOutput, error) {
	edits, err := parseEdits(invocation)
	if err != nil {
		return nil, err
	}

	if applyErr := t.session.ApplyEdits(edits); applyErr != nil {
		success := false
		var notFound *patch.NotFoundError
		if errors.As(applyErr, &notFound) {
			return &tools.ToolOutput{
				Content: fmt.Sprintf("Error: edit %d of %d failed, no exact match for search pattern:\n%s\nNo edits were applied. Copy the pattern exactly from the current diagram XML and try again.", notFound.Index+1, len(edits), notFound.Search),
				Success: &success,
			}, nil
		}
		return &tools.ToolOutput{
			Content: fmt.Sprintf("Error: %v. No edits were applied.", applyErr),
			Success: &success,
		}, nil
	}

	success := true
	return &tools.ToolOutput{
		Content: fmt.Sprintf("Applied %d edit(s) successfully.", len(edits)),
		Success: &success,
	}, nil
}

// parseEdits extracts the edits argument, tolerating the loosely typed
// JSON decoding of tool arguments.
func parseEdits(invocation *tools.ToolInvocation) ([]patch.Edit, error) {
	raw, ok := invocation.Arguments["edits"]
	if !ok {
		return nil, tools.NewValidationError("missing required argument: edits")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, tools.NewValidationError("edits must be an array of {search, replace} objects")
	}
	if len(list) == 0 {
		return nil, tools.NewValidationError("edits cannot be empty")
	}

	edits := make([]patch.Edit, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, tools.NewValidationError(fmt.Sprintf("edit %d must be an object with search and replace", i+1))
		}
		search, ok := entry["search"].(string)
		if !ok {
			return nil, tools.NewValidationError(fmt.Sprintf("edit %d: search must be a string", i+1))
		}
		replace, ok := entry["replace"].(string)
		if !ok {
			return nil, tools.NewValidationError(fmt.Sprintf("edit %d: replace must be a string", i+1))
		}
		edits = append(edits, patch.Edit{Search: search, Replace: replace})
	}
	return edits, nil
}
