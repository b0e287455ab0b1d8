package cached

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
)

// TestFind_ExactMatch verifies lookups are exact-match on prompt text and
// the image flag.
func TestFind_ExactMatch(t *testing.T) {
	hit := Find("Draw a cat for me", false)
	require.NotNil(t, hit)
	assert.NotEmpty(t, hit.XML)

	assert.Nil(t, Find("Draw a cat for me", true))
	assert.Nil(t, Find("draw a cat for me", false))
	assert.Nil(t, Find("Draw a dog for me", false))
}

// TestResponses_AreLoadableFragments verifies every canned payload passes
// validation as a bare cell fragment and is not flagged as truncated.
func TestResponses_AreLoadableFragments(t *testing.T) {
	for _, r := range responses {
		result := mxgraph.Validate(r.XML)
		assert.True(t, result.Valid, r.PromptText)
		assert.NotEmpty(t, result.Fixed, "canned payloads are bare fragments needing the auto-wrap")
		assert.False(t, mxgraph.IsTruncated(r.XML), r.PromptText)
	}
}
