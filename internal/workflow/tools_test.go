package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// TestSyncDocument_RejectsInvalidXML verifies garbage pushed from the editor
// is rejected without touching session state.
func TestSyncDocument_RejectsInvalidXML(t *testing.T) {
	s := &SessionState{CurrentDocument: "<mxfile>existing</mxfile>"}

	resp := s.syncDocument("just some prose")

	assert.False(t, resp.Accepted)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, "<mxfile>existing</mxfile>", s.CurrentDocument)
}

// TestSyncDocument_AbandonsPendingFragment verifies a user edit supersedes an
// in-flight truncation continuation.
func TestSyncDocument_AbandonsPendingFragment(t *testing.T) {
	s := &SessionState{
		CurrentDocument: "<mxfile>old</mxfile>",
		PendingFragment: `<mxCell id="2" sty`,
	}

	resp := s.syncDocument(`<mxCell id="9" value="X" vertex="1" parent="1"/>`)

	require.True(t, resp.Accepted)
	assert.Empty(t, s.PendingFragment)
	assert.Equal(t, "<mxfile>old</mxfile>", s.PreviousDocument)
	assert.Contains(t, s.CurrentDocument, `id="9"`)
}

// TestApplyEditDiagram_InvalidArguments verifies malformed arguments produce
// a failed tool output, not a crash.
func TestApplyEditDiagram_InvalidArguments(t *testing.T) {
	s := &SessionState{CurrentDocument: "<mxfile>doc</mxfile>"}

	out := s.applyEditDiagram(models.ConversationItem{
		Type:      models.ItemTypeFunctionCall,
		CallID:    "call_1",
		Name:      "edit_diagram",
		Arguments: `{"edits": "not an array"`,
	})

	require.NotNil(t, out.Output)
	require.NotNil(t, out.Output.Success)
	assert.False(t, *out.Output.Success)
	assert.Equal(t, "<mxfile>doc</mxfile>", s.CurrentDocument)
}

// TestApplyEditDiagram_EmptyBatch verifies an empty edits array is rejected.
func TestApplyEditDiagram_EmptyBatch(t *testing.T) {
	s := &SessionState{CurrentDocument: "<mxfile>doc</mxfile>"}

	out := s.applyEditDiagram(models.ConversationItem{
		CallID:    "call_1",
		Name:      "edit_diagram",
		Arguments: `{"edits": []}`,
	})

	assert.False(t, *out.Output.Success)
	assert.Contains(t, out.Output.Content, "empty")
}

// TestApplyAppendDiagram_NoPending verifies append without a stashed
// fragment redirects the model to display_diagram.
func TestApplyAppendDiagram_NoPending(t *testing.T) {
	s := &SessionState{}

	out := s.applyAppendDiagram("call_1", "<mxCell/>")

	assert.False(t, *out.Output.Success)
	assert.Contains(t, out.Output.Content, "display_diagram")
}
