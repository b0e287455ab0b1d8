package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-ai/drawbridge/internal/session"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

// headlessRenderer satisfies the session's renderer with no-ops; tool
// handling never needs a real canvas.
type headlessRenderer struct{}

func (headlessRenderer) Ready() bool                 { return false }
func (headlessRenderer) Load(string)                 {}
func (headlessRenderer) Export(session.ExportFormat) {}

func newTestSession() *session.Session {
	return session.New(headlessRenderer{}, nil)
}

func invocation(name string, args map[string]any) *tools.ToolInvocation {
	return &tools.ToolInvocation{CallID: "call-1", Name: name, Arguments: args}
}

// TestDisplayDiagram_Success verifies a complete fragment becomes the new
// document, auto-wrapped in the full envelope.
func TestDisplayDiagram_Success(t *testing.T) {
	s := newTestSession()
	tool := NewDisplayDiagramTool(s)

	output, err := tool.Handle(context.Background(), invocation("display_diagram", map[string]any{
		"xml": `<mxCell id="2" value="Start" style="rounded=1;" vertex="1" parent="1"/>`,
	}))

	require.NoError(t, err)
	require.NotNil(t, output.Success)
	assert.True(t, *output.Success)
	assert.Contains(t, s.Document(), `id="2"`)
	assert.Contains(t, s.Document(), "<mxfile>")
}

// TestDisplayDiagram_TruncatedStashesAndAsksForContinuation verifies a
// cut-off payload is stashed instead of loaded and the model is redirected
// to append_diagram.
func TestDisplayDiagram_TruncatedStashesAndAsksForContinuation(t *testing.T) {
	s := newTestSession()
	tool := NewDisplayDiagramTool(s)
	before := s.Document()

	output, err := tool.Handle(context.Background(), invocation("display_diagram", map[string]any{
		"xml": `<mxCell id="2" value="unfinis`,
	}))

	require.NoError(t, err)
	require.NotNil(t, output.Success)
	assert.False(t, *output.Success)
	assert.Contains(t, output.Content, "append_diagram")
	assert.Equal(t, before, s.Document(), "truncated payload must not be loaded")
	assert.NotEmpty(t, s.PendingFragment())
}

// TestDisplayDiagram_InvalidPayloadRejected verifies a payload with no cell
// markup fails without touching the document.
func TestDisplayDiagram_InvalidPayloadRejected(t *testing.T) {
	s := newTestSession()
	tool := NewDisplayDiagramTool(s)
	before := s.Document()

	output, err := tool.Handle(context.Background(), invocation("display_diagram", map[string]any{
		"xml": "this is not a diagram",
	}))

	require.NoError(t, err)
	require.NotNil(t, output.Success)
	assert.False(t, *output.Success)
	assert.Equal(t, before, s.Document())
}

// TestDisplayDiagram_MissingArgument verifies argument validation surfaces
// as a ValidationError.
func TestDisplayDiagram_MissingArgument(t *testing.T) {
	tool := NewDisplayDiagramTool(newTestSession())

	_, err := tool.Handle(context.Background(), invocation("display_diagram", map[string]any{}))

	var validationErr *tools.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

// TestAppendDiagram_CompletesTruncatedPayload verifies the full
// truncate-then-continue cycle across both tools.
func TestAppendDiagram_CompletesTruncatedPayload(t *testing.T) {
	s := newTestSession()
	display := NewDisplayDiagramTool(s)
	appendTool := NewAppendDiagramTool(s)

	first := "<mxCell id=\"2\" value=\"A\" vertex=\"1\" parent=\"1\">\n  <mxGeometry x=\"1\" as=\"geometry\"/>"
	output, err := display.Handle(context.Background(), invocation("display_diagram", map[string]any{"xml": first}))
	require.NoError(t, err)
	assert.False(t, *output.Success)

	output, err = appendTool.Handle(context.Background(), invocation("append_diagram", map[string]any{
		"xml": "\n</mxCell>",
	}))
	require.NoError(t, err)
	require.NotNil(t, output.Success)
	assert.True(t, *output.Success)
	assert.Contains(t, s.Document(), `id="2"`)
	assert.Empty(t, s.PendingFragment())
}

// TestAppendDiagram_StillTruncatedAsksForMore verifies an incomplete
// continuation keeps the payload pending.
func TestAppendDiagram_StillTruncatedAsksForMore(t *testing.T) {
	s := newTestSession()
	s.StashTruncated(`<mxCell id="2" vertex="1" parent="1">`)
	tool := NewAppendDiagramTool(s)

	output, err := tool.Handle(context.Background(), invocation("append_diagram", map[string]any{
		"xml": `<mxGeometry x="1"`,
	}))

	require.NoError(t, err)
	assert.False(t, *output.Success)
	assert.Contains(t, output.Content, "append_diagram")
	assert.NotEmpty(t, s.PendingFragment())
}

// TestAppendDiagram_NoPendingPayload verifies append without a prior
// truncation is rejected.
func TestAppendDiagram_NoPendingPayload(t *testing.T) {
	tool := NewAppendDiagramTool(newTestSession())

	output, err := tool.Handle(context.Background(), invocation("append_diagram", map[string]any{
		"xml": `<mxCell id="9"/>`,
	}))

	require.NoError(t, err)
	assert.False(t, *output.Success)
	assert.Contains(t, output.Content, "display_diagram")
}

// TestEditDiagram_AppliesBatch verifies a successful batch mutates the
// document sequentially.
func TestEditDiagram_AppliesBatch(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.ReplaceDocument(`<mxCell id="2" value="Old" vertex="1" parent="1"/>`))
	tool := NewEditDiagramTool(s)

	output, err := tool.Handle(context.Background(), invocation("edit_diagram", map[string]any{
		"edits": []any{
			map[string]any{"search": `value="Old"`, "replace": `value="Mid"`},
			map[string]any{"search": `value="Mid"`, "replace": `value="New"`},
		},
	}))

	require.NoError(t, err)
	require.NotNil(t, output.Success)
	assert.True(t, *output.Success)
	assert.Contains(t, output.Content, "2 edit(s)")
	assert.Contains(t, s.Document(), `value="New"`)
}

// TestEditDiagram_UnmatchedSearchAbortsBatch verifies the failure report
// names the failing operation and that nothing was applied.
func TestEditDiagram_UnmatchedSearchAbortsBatch(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.ReplaceDocument(`<mxCell id="2" value="Old" vertex="1" parent="1"/>`))
	before := s.Document()
	tool := NewEditDiagramTool(s)

	output, err := tool.Handle(context.Background(), invocation("edit_diagram", map[string]any{
		"edits": []any{
			map[string]any{"search": `value="Old"`, "replace": `value="New"`},
			map[string]any{"search": "not in the document", "replace": "x"},
		},
	}))

	require.NoError(t, err)
	require.NotNil(t, output.Success)
	assert.False(t, *output.Success)
	assert.Contains(t, output.Content, "edit 2 of 2")
	assert.Contains(t, output.Content, "No edits were applied")
	assert.Equal(t, before, s.Document())
}

// TestEditDiagram_ArgumentValidation verifies malformed edits arguments are
// rejected before touching the session.
func TestEditDiagram_ArgumentValidation(t *testing.T) {
	tool := NewEditDiagramTool(newTestSession())

	cases := []map[string]any{
		{},
		{"edits": "not an array"},
		{"edits": []any{}},
		{"edits": []any{map[string]any{"search": 1, "replace": "x"}}},
		{"edits": []any{map[string]any{"search": "x"}}},
	}
	for _, args := range cases {
		_, err := tool.Handle(context.Background(), invocation("edit_diagram", args))
		var validationErr *tools.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}
}
