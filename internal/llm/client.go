// Package llm contains the provider clients that turn a conversation
// transcript into provider API calls and map responses back to
// conversation items.
package llm

import (
	"context"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

// LLMRequest carries everything needed for one model invocation.
type LLMRequest struct {
	ModelConfig models.ModelConfig

	// BaseInstructions is the system prompt. UserInstructions carry
	// user-level preferences; DeveloperInstructions carry per-turn context
	// such as the current diagram XML.
	BaseInstructions      string
	UserInstructions      string
	DeveloperInstructions string

	History   []models.ConversationItem
	ToolSpecs []tools.ToolSpec

	// PreviousResponseID enables server-side conversation state on
	// providers that support it.
	PreviousResponseID string
}

// LLMResponse is the provider-neutral result of one invocation.
type LLMResponse struct {
	Items        []models.ConversationItem
	FinishReason models.FinishReason
	TokenUsage   models.TokenUsage
	ResponseID   string
}

// LLMClient is implemented by each provider client and by the
// multi-provider dispatcher.
type LLMClient interface {
	Call(ctx context.Context, request LLMRequest) (LLMResponse, error)
}
