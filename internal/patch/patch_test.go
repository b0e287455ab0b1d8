package patch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApply_FirstMatchOnly verifies that only the first occurrence of a
// search pattern is replaced.
func TestApply_FirstMatchOnly(t *testing.T) {
	result, err := Apply("foo foo", []Edit{{Search: "foo", Replace: "bar"}})

	require.NoError(t, err)
	assert.Equal(t, "bar foo", result)
}

// TestApply_SequentialDependency verifies that each edit sees the output of
// the previous one, not the original text.
func TestApply_SequentialDependency(t *testing.T) {
	edits := []Edit{
		{Search: "A", Replace: "X"},
		{Search: "X B", Replace: "Y"},
	}

	result, err := Apply("A B C", edits)

	require.NoError(t, err)
	assert.Equal(t, "Y C", result)
}

// TestApply_NotFoundAbortsWholeBatch verifies transactional semantics: a
// failing edit mid-batch returns the pre-batch text untouched and names the
// failing operation.
func TestApply_NotFoundAbortsWholeBatch(t *testing.T) {
	edits := []Edit{
		{Search: "A", Replace: "X"}, // would succeed
		{Search: "missing", Replace: "Y"},
		{Search: "C", Replace: "Z"}, // never reached
	}

	result, err := Apply("A B C", edits)

	require.Error(t, err)
	assert.Equal(t, "A B C", result, "no partial application may be visible")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 1, nf.Index)
	assert.Equal(t, "missing", nf.Search)
}

// TestApply_EmptyBatch verifies a no-op batch returns the text unchanged.
func TestApply_EmptyBatch(t *testing.T) {
	result, err := Apply("unchanged", nil)

	require.NoError(t, err)
	assert.Equal(t, "unchanged", result)
}

// TestApply_MultilinePatterns verifies matching across line boundaries, the
// common case for mxCell + mxGeometry element pairs.
func TestApply_MultilinePatterns(t *testing.T) {
	doc := "<mxCell id=\"2\" value=\"Old\">\n  <mxGeometry x=\"10\"/>\n</mxCell>"
	edits := []Edit{{
		Search:  "value=\"Old\">\n  <mxGeometry x=\"10\"/>",
		Replace: "value=\"New\">\n  <mxGeometry x=\"40\"/>",
	}}

	result, err := Apply(doc, edits)

	require.NoError(t, err)
	assert.Contains(t, result, `value="New"`)
	assert.Contains(t, result, `x="40"`)
	assert.NotContains(t, result, "Old")
}

// TestNotFoundError_LongPatternExcerpted verifies that very long search
// patterns are shortened in the error message.
func TestNotFoundError_LongPatternExcerpted(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "abcdefgh"
	}

	_, err := Apply("short", []Edit{{Search: long, Replace: "x"}})

	require.Error(t, err)
	assert.Less(t, len(err.Error()), 200)
	assert.Contains(t, err.Error(), "...")
}
