// Package activities contains the Temporal activities executed on behalf of
// the diagram session workflow: LLM calls and document persistence.
package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/drawbridge-ai/drawbridge/internal/llm"
	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// LLMActivities wraps an LLM client for activity registration.
type LLMActivities struct {
	client llm.LLMClient
}

// NewLLMActivities creates LLM activities backed by the given client.
// Production workers pass llm.NewMultiProviderClient().
func NewLLMActivities(client llm.LLMClient) *LLMActivities {
	return &LLMActivities{client: client}
}

// CallLLM performs one model invocation. Classified non-retryable errors
// are converted to non-retryable application errors so the workflow
// surfaces them immediately instead of burning retries.
func (a *LLMActivities) CallLLM(ctx context.Context, request llm.LLMRequest) (llm.LLMResponse, error) {
	response, err := a.client.Call(ctx, request)
	if err != nil {
		var actErr *models.ActivityError
		if errors.As(err, &actErr) && !actErr.Retryable {
			return llm.LLMResponse{}, temporal.NewNonRetryableApplicationError(
				actErr.Message, string(actErr.Type), err)
		}
		return llm.LLMResponse{}, err
	}
	return response, nil
}
