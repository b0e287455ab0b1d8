package workflow

import (
	"encoding/json"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/drawbridge-ai/drawbridge/internal/cached"
	"github.com/drawbridge-ai/drawbridge/internal/instructions"
	"github.com/drawbridge-ai/drawbridge/internal/llm"
	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/mxgraph"
	"github.com/drawbridge-ai/drawbridge/internal/tools/handlers"
)

// runTurn processes one user message: LLM call, tool interception, repeat
// until the model stops calling tools or the step budget runs out.
func (s *SessionState) runTurn(ctx workflow.Context, content string) error {
	logger := workflow.GetLogger(ctx)
	turnID := s.nextTurnID()
	s.LastError = ""

	s.appendItem(models.ConversationItem{
		Type:   models.ItemTypeTurnStarted,
		TurnID: turnID,
	})
	s.appendItem(models.ConversationItem{
		Type:    models.ItemTypeUserMessage,
		Content: content,
		TurnID:  turnID,
	})

	if s.serveCachedResponse(turnID, content) {
		logger.Info("Turn answered from response cache", "turn_id", turnID)
		s.appendItem(models.ConversationItem{
			Type:   models.ItemTypeTurnComplete,
			TurnID: turnID,
		})
		return nil
	}

	model := llm.ResolveModelConfig(s.Config.Model)

	for step := 0; step < s.Config.MaxTurnSteps; step++ {
		request := llm.LLMRequest{
			ModelConfig:           model,
			BaseInstructions:      instructions.GetBaseInstructions(model.Model, s.Config.BaseInstructionsOverride),
			UserInstructions:      s.Config.UserInstructions,
			DeveloperInstructions: instructions.DiagramContext(s.PreviousDocument, s.CurrentDocument),
			History:               s.Items,
			ToolSpecs:             handlers.Specs(),
		}

		actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 5 * time.Minute,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval:    time.Second,
				BackoffCoefficient: 2,
				MaximumInterval:    time.Minute,
				MaximumAttempts:    4,
			},
		})

		var response llm.LLMResponse
		if err := workflow.ExecuteActivity(actCtx, "CallLLM", request).Get(ctx, &response); err != nil {
			logger.Error("LLM call failed", "turn_id", turnID, "step", step, "error", err)
			s.LastError = err.Error()
			s.appendItem(models.ConversationItem{
				Type:    models.ItemTypeAssistantMessage,
				Content: "The model request failed: " + err.Error(),
				TurnID:  turnID,
			})
			break
		}

		s.TokenUsage.Add(response.TokenUsage)
		for _, item := range response.Items {
			item.TurnID = turnID
			s.appendItem(item)
		}

		calls := extractFunctionCalls(response.Items)
		if len(calls) == 0 {
			break
		}

		for _, call := range calls {
			output := s.executeDiagramTool(ctx, call)
			output.TurnID = turnID
			s.appendItem(output)
		}
	}

	s.appendItem(models.ConversationItem{
		Type:   models.ItemTypeTurnComplete,
		TurnID: turnID,
	})
	return nil
}

// serveCachedResponse answers well-known first prompts from the canned
// response set without an LLM round-trip. Only applies on the first turn of
// an empty session; anything later has context the cache cannot know.
func (s *SessionState) serveCachedResponse(turnID, content string) bool {
	if s.TurnCounter != 1 || !mxgraph.IsMinimal(s.CurrentDocument) {
		return false
	}
	response := cached.Find(content, false)
	if response == nil {
		return false
	}

	callID := "cached-" + turnID
	args, err := json.Marshal(map[string]string{"xml": response.XML})
	if err != nil {
		return false
	}

	s.appendItem(models.ConversationItem{
		Type:      models.ItemTypeFunctionCall,
		CallID:    callID,
		Name:      "display_diagram",
		Arguments: string(args),
		TurnID:    turnID,
	})

	output := s.applyDisplayDiagram(callID, response.XML)
	output.TurnID = turnID
	s.appendItem(output)

	s.appendItem(models.ConversationItem{
		Type:    models.ItemTypeAssistantMessage,
		Content: "Here is the diagram.",
		TurnID:  turnID,
	})
	return true
}
