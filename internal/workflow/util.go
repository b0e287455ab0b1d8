package workflow

import (
	"fmt"

	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// nextTurnID increments the session turn counter and returns a unique turn ID.
// Using a counter rather than a side-effect keeps determinism without Temporal overhead.
func (s *SessionState) nextTurnID() string {
	s.TurnCounter++
	return fmt.Sprintf("turn-%d", s.TurnCounter)
}

// peekTurnID returns the ID the nth queued message will get when processed.
func (s *SessionState) peekTurnID(queued int) string {
	return fmt.Sprintf("turn-%d", s.TurnCounter+queued)
}

// appendItem assigns the next sequence number and appends the item to the
// transcript.
func (s *SessionState) appendItem(item models.ConversationItem) {
	s.NextSeq++
	item.Seq = s.NextSeq
	s.Items = append(s.Items, item)
}

// extractFunctionCalls filters items to return only FunctionCall items.
func extractFunctionCalls(items []models.ConversationItem) []models.ConversationItem {
	var calls []models.ConversationItem
	for _, item := range items {
		if item.Type == models.ItemTypeFunctionCall {
			calls = append(calls, item)
		}
	}
	return calls
}
