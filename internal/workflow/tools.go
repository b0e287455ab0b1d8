package workflow

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
	"github.com/drawbridge-ai/drawbridge/internal/patch"
)

// executeDiagramTool intercepts a diagram tool call in-workflow. All three
// tools are pure text transforms on session state, so they run
// deterministically without activities. Failures become per-call results fed
// back to the model, never workflow errors.
func (s *SessionState) executeDiagramTool(ctx workflow.Context, call models.ConversationItem) models.ConversationItem {
	logger := workflow.GetLogger(ctx)

	var output models.ConversationItem
	switch call.Name {
	case "display_diagram":
		xml, err := stringToolArgument(call, "xml")
		if err != nil {
			output = toolFailure(call.CallID, err.Error())
			break
		}
		output = s.applyDisplayDiagram(call.CallID, xml)
	case "append_diagram":
		xml, err := stringToolArgument(call, "xml")
		if err != nil {
			output = toolFailure(call.CallID, err.Error())
			break
		}
		output = s.applyAppendDiagram(call.CallID, xml)
	case "edit_diagram":
		output = s.applyEditDiagram(call)
	default:
		output = toolFailure(call.CallID, fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	logger.Info("Diagram tool executed",
		"tool", call.Name,
		"call_id", call.CallID,
		"success", output.Output != nil && output.Output.Success != nil && *output.Output.Success)
	return output
}

// applyDisplayDiagram replaces the document with a freshly generated cell
// fragment. A payload that stops mid-generation is stashed and the model is
// told to continue with append_diagram.
func (s *SessionState) applyDisplayDiagram(callID, xml string) models.ConversationItem {
	if mxgraph.IsTruncated(xml) {
		s.PendingFragment = xml
		return toolFailure(callID,
			"Error: diagram XML appears truncated (unclosed mxCell markup). Call append_diagram with the continuation, starting exactly where your output stopped. Do not repeat already-sent content.")
	}

	s.PendingFragment = ""
	return s.replaceDocument(callID, xml)
}

// applyAppendDiagram concatenates a continuation fragment onto the pending
// truncated payload. Once the combined markup is balanced it becomes the
// new document.
func (s *SessionState) applyAppendDiagram(callID, xml string) models.ConversationItem {
	if s.PendingFragment == "" {
		return toolFailure(callID,
			"Error: no truncated diagram to continue. Use display_diagram to generate a new diagram.")
	}

	s.PendingFragment += xml
	if mxgraph.IsTruncated(s.PendingFragment) {
		return toolFailure(callID,
			"Diagram XML is still incomplete. Call append_diagram again with the next fragment.")
	}

	combined := s.PendingFragment
	s.PendingFragment = ""
	return s.replaceDocument(callID, combined)
}

// replaceDocument validates, auto-wraps, and installs new document text.
func (s *SessionState) replaceDocument(callID, xml string) models.ConversationItem {
	result := mxgraph.Validate(xml)
	if !result.Valid {
		return toolFailure(callID,
			fmt.Sprintf("Error: %s. Regenerate the diagram following the validation rules.", result.Err))
	}

	document := xml
	if result.Fixed != "" {
		document = result.Fixed
	}

	s.PreviousDocument = s.CurrentDocument
	s.CurrentDocument = document
	return toolSuccess(callID, "Diagram displayed successfully.")
}

// applyEditDiagram applies a transactional batch of search/replace edits to
// the current document.
func (s *SessionState) applyEditDiagram(call models.ConversationItem) models.ConversationItem {
	var args struct {
		Edits []patch.Edit `json:"edits"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return toolFailure(call.CallID,
			"Error: invalid edit_diagram arguments, expected {\"edits\": [{\"search\", \"replace\"}]}.")
	}
	if len(args.Edits) == 0 {
		return toolFailure(call.CallID, "Error: edits cannot be empty.")
	}

	edited, err := patch.Apply(s.CurrentDocument, args.Edits)
	if err != nil {
		var notFound *patch.NotFoundError
		if errors.As(err, &notFound) {
			return toolFailure(call.CallID,
				fmt.Sprintf("Error: edit %d of %d failed, no exact match for search pattern:\n%s\nNo edits were applied. Copy the pattern exactly from the current diagram XML and try again.",
					notFound.Index+1, len(args.Edits), notFound.Search))
		}
		return toolFailure(call.CallID, fmt.Sprintf("Error: %v. No edits were applied.", err))
	}

	s.PreviousDocument = s.CurrentDocument
	s.CurrentDocument = edited
	return toolSuccess(call.CallID, fmt.Sprintf("Applied %d edit(s) successfully.", len(args.Edits)))
}

// syncDocument installs document text pushed from the external editor. The
// pushed text is authoritative; a pending truncation buffer is abandoned
// because it predates the user's edit.
func (s *SessionState) syncDocument(xml string) SyncDocumentResponse {
	result := mxgraph.Validate(xml)
	if !result.Valid {
		return SyncDocumentResponse{Error: result.Err}
	}

	document := xml
	if result.Fixed != "" {
		document = result.Fixed
	}

	s.PreviousDocument = s.CurrentDocument
	s.CurrentDocument = document
	s.PendingFragment = ""
	return SyncDocumentResponse{Accepted: true}
}

// stringToolArgument extracts a required string argument from a function
// call's raw JSON arguments.
func stringToolArgument(call models.ConversationItem, name string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", fmt.Errorf("Error: invalid %s arguments: %v", call.Name, err)
	}
	raw, ok := args[name]
	if !ok {
		return "", fmt.Errorf("Error: missing required argument: %s", name)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("Error: %s must be a string", name)
	}
	return value, nil
}

func toolSuccess(callID, content string) models.ConversationItem {
	success := true
	return models.ConversationItem{
		Type:   models.ItemTypeFunctionCallOutput,
		CallID: callID,
		Output: &models.FunctionCallOutputPayload{Content: content, Success: &success},
	}
}

func toolFailure(callID, content string) models.ConversationItem {
	success := false
	return models.ConversationItem{
		Type:   models.ItemTypeFunctionCallOutput,
		CallID: callID,
		Output: &models.FunctionCallOutputPayload{Content: content, Success: &success},
	}
}
