package mxgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate_EmptyInputIsValid verifies that empty and whitespace-only
// input passes with no fix ("no diagram" is a legal state).
func TestValidate_EmptyInputIsValid(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		result := Validate(in)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Fixed)
		assert.Empty(t, result.Fixes)
	}
}

// TestValidate_NoMarkersRejected verifies the one hard-rejection path: text
// with neither a cell marker nor an envelope marker.
func TestValidate_NoMarkersRejected(t *testing.T) {
	result := Validate("hello world")

	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Err)
}

// TestValidate_BareCellAutoWrapped verifies that a bare cell fragment is
// wrapped in a graph model with exactly one pair of reserved roots, nested in
// the outer envelope, with the original cell unchanged.
func TestValidate_BareCellAutoWrapped(t *testing.T) {
	fragment := `<mxCell id="5" value="Hello" vertex="1" parent="1"/>`

	result := Validate(fragment)

	require.True(t, result.Valid)
	require.NotEmpty(t, result.Fixed)
	assert.Equal(t, []string{FixWrappedCells, FixWrappedModel}, result.Fixes)

	assert.Equal(t, 1, strings.Count(result.Fixed, "<mxGraphModel>"))
	assert.Equal(t, 1, strings.Count(result.Fixed, "<mxfile>"))
	assert.Equal(t, 1, strings.Count(result.Fixed, `<mxCell id="0"/>`))
	assert.Equal(t, 1, strings.Count(result.Fixed, `<mxCell id="1" parent="0"/>`))
	assert.Contains(t, result.Fixed, fragment)
}

// TestValidate_ModelWithoutEnvelope verifies that a graph model lacking the
// outer envelope gains one with the default page name and id.
func TestValidate_ModelWithoutEnvelope(t *testing.T) {
	xml := `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/></root></mxGraphModel>`

	result := Validate(xml)

	require.True(t, result.Valid)
	require.NotEmpty(t, result.Fixed)
	assert.Equal(t, []string{FixWrappedModel}, result.Fixes)
	assert.Contains(t, result.Fixed, `<diagram name="Page-1" id="page-1">`)
}

// TestValidate_FullDocumentIdempotent verifies that a complete envelope
// passes untouched: validating twice never changes content.
func TestValidate_FullDocumentIdempotent(t *testing.T) {
	result := Validate(EmptyDocument)

	require.True(t, result.Valid)
	assert.Empty(t, result.Fixed, "already-complete documents need no fix")

	// And the wrapped output of a fragment is itself stable.
	wrapped := Validate(`<mxCell id="5" vertex="1" parent="1"/>`).Fixed
	again := Validate(wrapped)
	assert.True(t, again.Valid)
	assert.Empty(t, again.Fixed)
}

// TestEnsureEnvelope verifies envelope wrapping on the save path.
func TestEnsureEnvelope(t *testing.T) {
	inner := `<mxGraphModel><root><mxCell id="0"/></root></mxGraphModel>`

	wrapped := EnsureEnvelope(inner)
	assert.Contains(t, wrapped, "<mxfile>")
	assert.Contains(t, wrapped, inner)

	assert.Equal(t, EmptyDocument, EnsureEnvelope(EmptyDocument), "already enveloped text is untouched")
}

// TestIsMinimal verifies detection of documents with no generated content.
func TestIsMinimal(t *testing.T) {
	assert.True(t, IsMinimal(""))
	assert.True(t, IsMinimal(EmptyDocument))

	withContent := Validate(`<mxCell id="2" value="x" vertex="1" parent="1"/>`).Fixed
	assert.False(t, IsMinimal(withContent))
}
