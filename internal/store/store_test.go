package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "drawbridge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestStore_SetGetDelete verifies the basic round trip, overwrite, and
// missing-key semantics.
func TestStore_SetGetDelete(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("k", "v1"))
	value, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, s.Set("k", "v2"))
	value, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	require.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete("k"), "deleting a missing key is not an error")
}

// TestStore_DocumentSlotAndCredentialKeys verifies the store works with the
// well-known keys the rest of the system uses.
func TestStore_DocumentSlotAndCredentialKeys(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Set(session.DocumentKey, "<mxfile></mxfile>"))
	doc, err := s.Get(session.DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, "<mxfile></mxfile>", doc)

	key := models.CredentialKey("anthropic")
	require.NoError(t, s.Set(key, "sk-test"))
	secret, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", secret)
}

// TestStore_PersistsAcrossReopen verifies values survive a close/reopen
// cycle.
func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawbridge.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v"))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
