package llm

import (
	"context"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

// OpenAIClient talks to the OpenAI Responses API. It also serves the
// OpenAI-compatible providers (OpenRouter, DeepSeek, SiliconFlow) by
// swapping the base URL per request.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a client using the ambient environment for
// credentials. Per-request overrides in ModelConfig take precedence.
func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient()}
}

// Call sends the conversation to the Responses API and maps the result back
// to conversation items.
func (c *OpenAIClient) Call(ctx context.Context, request LLMRequest) (LLMResponse, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(request.ModelConfig.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: c.buildInput(request.History),
		},
		Store: openai.Bool(true),
	}

	if instructions := c.buildInstructions(request); instructions != "" {
		params.Instructions = openai.String(instructions)
	}
	if request.ModelConfig.Temperature != 0 {
		params.Temperature = openai.Float(request.ModelConfig.Temperature)
	}
	if request.ModelConfig.MaxTokens != 0 {
		params.MaxOutputTokens = openai.Int(int64(request.ModelConfig.MaxTokens))
	}
	if request.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(request.PreviousResponseID)
	}
	if defs := c.buildToolDefinitions(request.ToolSpecs); len(defs) > 0 {
		params.Tools = defs
	}

	resp, err := c.client.Responses.New(ctx, params, c.requestOptions(request.ModelConfig)...)
	if err != nil {
		return LLMResponse{}, classifyError(err)
	}

	items, finishReason := c.parseOutput(resp)

	return LLMResponse{
		Items:        items,
		FinishReason: finishReason,
		ResponseID:   resp.ID,
		TokenUsage: models.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			CachedTokens:     int(resp.Usage.InputTokensDetails.CachedTokens),
		},
	}, nil
}

// requestOptions resolves per-request credential and endpoint overrides.
// OpenAI-compatible providers carry a fixed base URL in the registry.
func (c *OpenAIClient) requestOptions(config models.ModelConfig) []option.RequestOption {
	var opts []option.RequestOption
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = models.ProviderByID(config.Provider).BaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return opts
}

// buildInput converts the transcript to Responses API input items. Turn
// markers are workflow-internal and never sent.
func (c *OpenAIClient) buildInput(history []models.ConversationItem) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(history))
	for _, item := range history {
		switch item.Type {
		case models.ItemTypeUserMessage:
			items = append(items, responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role: responses.EasyInputMessageRoleUser,
					Content: responses.EasyInputMessageContentUnionParam{
						OfString: openai.String(item.Content),
					},
				},
			})
		case models.ItemTypeAssistantMessage:
			items = append(items, responses.ResponseInputItemUnionParam{
				OfOutputMessage: &responses.ResponseOutputMessageParam{
					Status: responses.ResponseOutputMessageStatusCompleted,
					Content: []responses.ResponseOutputMessageContentUnionParam{
						{OfOutputText: &responses.ResponseOutputTextParam{Text: item.Content}},
					},
				},
			})
		case models.ItemTypeFunctionCall:
			items = append(items, responses.ResponseInputItemUnionParam{
				OfFunctionCall: &responses.ResponseFunctionToolCallParam{
					CallID:    item.CallID,
					Name:      item.Name,
					Arguments: item.Arguments,
				},
			})
		case models.ItemTypeFunctionCallOutput:
			content := ""
			if item.Output != nil {
				content = item.Output.Content
			}
			items = append(items, responses.ResponseInputItemUnionParam{
				OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
					CallID: item.CallID,
					Output: responses.ResponseInputItemFunctionCallOutputOutputUnionParam{
						OfString: openai.String(content),
					},
				},
			})
		}
	}
	return items
}

// buildToolDefinitions converts tool specs to function tool definitions.
func (c *OpenAIClient) buildToolDefinitions(specs []tools.ToolSpec) []responses.ToolUnionParam {
	defs := make([]responses.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		defs = append(defs, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  spec.InputSchema(),
			},
		})
	}
	return defs
}

// buildInstructions concatenates the instruction layers for the Responses
// API instructions field.
func (c *OpenAIClient) buildInstructions(request LLMRequest) string {
	var parts []string
	for _, part := range []string{
		request.BaseInstructions,
		request.UserInstructions,
		request.DeveloperInstructions,
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

// parseOutput converts API output items back to conversation items. An
// empty output still yields one empty assistant message so every call
// produces a visible result.
func (c *OpenAIClient) parseOutput(resp *responses.Response) ([]models.ConversationItem, models.FinishReason) {
	var items []models.ConversationItem
	finishReason := models.FinishReasonStop

	for _, output := range resp.Output {
		switch output.Type {
		case "message":
			var text strings.Builder
			for _, content := range output.Content {
				if content.Type == "output_text" {
					text.WriteString(content.Text)
				}
			}
			items = append(items, models.ConversationItem{
				Type:    models.ItemTypeAssistantMessage,
				Content: text.String(),
			})
		case "function_call":
			items = append(items, models.ConversationItem{
				Type:      models.ItemTypeFunctionCall,
				CallID:    output.CallID,
				Name:      output.Name,
				Arguments: output.Arguments,
			})
			finishReason = models.FinishReasonToolCalls
		}
	}

	if len(items) == 0 {
		items = append(items, models.ConversationItem{Type: models.ItemTypeAssistantMessage})
	}
	return items, finishReason
}
