// Package patch applies ordered literal search/replace edits to document
// text. It is the mechanism behind the edit_diagram tool: the model copies
// exact lines from the current document as the search pattern and supplies
// replacement lines, avoiding a full regeneration for small changes.
package patch

import (
	"fmt"
	"strings"
)

// Edit is a single search/replace operation. Search is literal text, not a
// pattern language; only its first occurrence is replaced.
type Edit struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`
}

// NotFoundError reports an edit whose search pattern had no occurrence in the
// text it was applied to. Index identifies the failing operation within its
// batch.
type NotFoundError struct {
	Index  int
	Search string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("edit %d: search pattern not found: %q", e.Index+1, excerpt(e.Search))
}

// Apply runs edits against text strictly in order: each operation sees the
// output of the one before it, and only the first occurrence of a search
// pattern is replaced.
//
// The batch is transactional. If any search pattern is not found, the
// original text is returned unchanged together with a *NotFoundError naming
// the failing operation; no partial application is ever visible. Later
// edits often depend on earlier ones having landed cleanly, so abandoning
// the batch beats applying a prefix of it.
func Apply(text string, edits []Edit) (string, error) {
	result := text
	for i, edit := range edits {
		idx := strings.Index(result, edit.Search)
		if idx < 0 {
			return text, &NotFoundError{Index: i, Search: edit.Search}
		}
		result = result[:idx] + edit.Replace + result[idx+len(edit.Search):]
	}
	return result, nil
}

// excerpt shortens long search patterns for error messages.
func excerpt(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
