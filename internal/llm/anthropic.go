package llm

import (
	"context"
	"encoding/json"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/drawbridge-ai/drawbridge/internal/models"
	"github.com/drawbridge-ai/drawbridge/internal/tools"
)

// defaultAnthropicMaxTokens is used when the model config leaves MaxTokens
// unset; the Messages API requires a value.
const defaultAnthropicMaxTokens = 4096

// AnthropicClient talks to the Anthropic Messages API. Cache breakpoints
// are placed on the system blocks, the last tool definition, and the
// penultimate message so the stable prefix of each turn is served from
// cache.
type AnthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient creates a client using the ambient environment for
// credentials. Per-request overrides in ModelConfig take precedence.
func NewAnthropicClient() *AnthropicClient {
	return &AnthropicClient{client: anthropic.NewClient()}
}

// Call sends the conversation to the Messages API and maps the result back
// to conversation items.
func (c *AnthropicClient) Call(ctx context.Context, request LLMRequest) (LLMResponse, error) {
	enableCaching := models.SupportsPromptCaching(request.ModelConfig.Model)

	messages, err := c.buildMessages(request, enableCaching)
	if err != nil {
		return LLMResponse{}, err
	}

	maxTokens := request.ModelConfig.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.ModelConfig.Model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if blocks := c.buildSystemBlocks(request, enableCaching); len(blocks) > 0 {
		params.System = blocks
	}
	if defs := c.buildToolDefinitions(request.ToolSpecs, enableCaching); len(defs) > 0 {
		params.Tools = defs
	}
	if request.ModelConfig.Temperature != 0 {
		params.Temperature = anthropic.Float(request.ModelConfig.Temperature)
	}

	message, err := c.client.Messages.New(ctx, params, c.requestOptions(request.ModelConfig)...)
	if err != nil {
		return LLMResponse{}, classifyError(err)
	}

	items, finishReason := c.parseContent(message)

	return LLMResponse{
		Items:        items,
		FinishReason: finishReason,
		ResponseID:   message.ID,
		TokenUsage: models.TokenUsage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			CachedTokens:     int(message.Usage.CacheReadInputTokens),
		},
	}, nil
}

func (c *AnthropicClient) requestOptions(config models.ModelConfig) []option.RequestOption {
	var opts []option.RequestOption
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	return opts
}

// buildSystemBlocks converts the instruction layers into system blocks,
// each with its own cache breakpoint when the model honors them.
func (c *AnthropicClient) buildSystemBlocks(request LLMRequest, enableCaching bool) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, text := range []string{request.BaseInstructions, request.UserInstructions} {
		if text == "" {
			continue
		}
		block := anthropic.TextBlockParam{Text: text}
		if enableCaching {
			block.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// buildToolDefinitions converts tool specs to Messages API tool
// definitions, with a cache breakpoint on the last one.
func (c *AnthropicClient) buildToolDefinitions(specs []tools.ToolSpec, enableCaching bool) []anthropic.ToolUnionParam {
	defs := make([]anthropic.ToolUnionParam, 0, len(specs))
	for i, spec := range specs {
		schema := spec.InputSchema()
		tool := anthropic.ToolParam{
			Name:        spec.Name,
			Description: anthropic.String(spec.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
			},
		}
		if required, ok := schema["required"].([]string); ok {
			tool.InputSchema.Required = required
		}
		if enableCaching && i == len(specs)-1 {
			tool.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		defs = append(defs, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return defs
}

// buildMessages converts the transcript to Messages API messages.
// Developer instructions lead as a user message since the system slot is
// reserved for the cached instruction blocks. The penultimate message's
// last content block gets a cache breakpoint, covering everything up to
// the current user turn.
func (c *AnthropicClient) buildMessages(request LLMRequest, enableCaching bool) ([]anthropic.MessageParam, error) {
	var messages []anthropic.MessageParam

	if request.DeveloperInstructions != "" {
		messages = append(messages, anthropic.NewUserMessage(
			anthropic.NewTextBlock(request.DeveloperInstructions)))
	}

	for _, item := range request.History {
		switch item.Type {
		case models.ItemTypeUserMessage:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(item.Content)))
		case models.ItemTypeAssistantMessage:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(item.Content)))
		case models.ItemTypeFunctionCall:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewToolUseBlock(item.CallID, json.RawMessage(item.Arguments), item.Name)))
		case models.ItemTypeFunctionCallOutput:
			content := ""
			isError := false
			if item.Output != nil {
				content = item.Output.Content
				isError = item.Output.Success != nil && !*item.Output.Success
			}
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(item.CallID, content, isError)))
		}
	}

	if enableCaching && len(messages) >= 2 {
		penultimate := &messages[len(messages)-2]
		if len(penultimate.Content) > 0 {
			setCacheControl(&penultimate.Content[len(penultimate.Content)-1])
		}
	}
	return messages, nil
}

// setCacheControl marks a content block as a cache breakpoint, whichever
// variant it holds.
func setCacheControl(block *anthropic.ContentBlockParamUnion) {
	cc := anthropic.NewCacheControlEphemeralParam()
	switch {
	case block.OfText != nil:
		block.OfText.CacheControl = cc
	case block.OfToolUse != nil:
		block.OfToolUse.CacheControl = cc
	case block.OfToolResult != nil:
		block.OfToolResult.CacheControl = cc
	}
}

// parseContent converts response content blocks back to conversation items.
func (c *AnthropicClient) parseContent(message *anthropic.Message) ([]models.ConversationItem, models.FinishReason) {
	var items []models.ConversationItem
	finishReason := models.FinishReasonStop

	for _, block := range message.Content {
		switch block.Type {
		case "text":
			items = append(items, models.ConversationItem{
				Type:    models.ItemTypeAssistantMessage,
				Content: block.Text,
			})
		case "tool_use":
			items = append(items, models.ConversationItem{
				Type:      models.ItemTypeFunctionCall,
				CallID:    block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
			finishReason = models.FinishReasonToolCalls
		}
	}

	if len(items) == 0 {
		items = append(items, models.ConversationItem{Type: models.ItemTypeAssistantMessage})
	}
	return items, finishReason
}
