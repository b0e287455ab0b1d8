package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// MultiProviderClient implements LLMClient by dispatching to the appropriate
// provider based on the ModelConfig.Provider field.
//
// This allows a single activities instance to support every selectable
// provider without knowing which one will be used at registration time.
type MultiProviderClient struct {
	openai    *OpenAIClient
	anthropic *AnthropicClient
}

// NewMultiProviderClient creates a client that can dispatch to multiple providers.
func NewMultiProviderClient() *MultiProviderClient {
	return &MultiProviderClient{
		openai:    NewOpenAIClient(),
		anthropic: NewAnthropicClient(),
	}
}

// Call dispatches to the appropriate provider based on ModelConfig.Provider.
// The "default" provider infers the backend from the model name so a
// worker-side default model works without client configuration.
func (c *MultiProviderClient) Call(ctx context.Context, request LLMRequest) (LLMResponse, error) {
	provider := request.ModelConfig.Provider
	if provider == "" || provider == "default" {
		provider = detectProviderFromModel(request.ModelConfig.Model)
	}

	switch provider {
	case "anthropic":
		return c.anthropic.Call(ctx, request)
	case "openai", "openrouter", "deepseek", "siliconflow":
		// OpenAI-compatible providers share the OpenAI client; the base URL
		// comes from the provider registry or the per-request override.
		return c.openai.Call(ctx, request)
	default:
		return LLMResponse{}, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// detectProviderFromModel infers the provider from the model name.
func detectProviderFromModel(model string) string {
	if strings.HasPrefix(model, "claude") {
		return "anthropic"
	}
	return "openai"
}

// NewLLMClient creates the appropriate LLM client based on provider id.
// This is a convenience function for cases where the provider is known at
// init time; prefer NewMultiProviderClient otherwise.
func NewLLMClient(provider string) (LLMClient, error) {
	switch provider {
	case "anthropic":
		return NewAnthropicClient(), nil
	case "openai", "openrouter", "deepseek", "siliconflow", "default", "":
		return NewOpenAIClient(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// ResolveModelConfig fills in provider defaults for a partially specified
// model selection.
func ResolveModelConfig(config models.ModelConfig) models.ModelConfig {
	if config.Provider == "" {
		config.Provider = "default"
	}
	if config.Model == "" {
		if p := models.ProviderByID(config.Provider); p.DefaultModel != "" {
			config.Model = p.DefaultModel
		} else {
			config.Model = models.DefaultModelConfig().Model
		}
	}
	return config
}
