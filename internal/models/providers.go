package models

import "strings"

// ProviderConfig describes a selectable AI provider: its identifier, the
// models offered in the picker, and whether the user must supply an API key.
type ProviderConfig struct {
	ID             string
	Name           string
	DefaultModel   string
	Models         []string
	RequiresAPIKey bool

	// BaseURL is the fixed endpoint for OpenAI-compatible providers that
	// are served through the OpenAI client. Empty for native providers.
	BaseURL string
}

// Providers is the registry of selectable providers. "default" means the
// worker-side configuration decides; everything else requires client
// credentials.
var Providers = []ProviderConfig{
	{
		ID:   "default",
		Name: "Default",
	},
	{
		ID:             "openai",
		Name:           "OpenAI",
		DefaultModel:   "gpt-4o",
		Models:         []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "o1", "o1-mini", "o3-mini"},
		RequiresAPIKey: true,
	},
	{
		ID:           "anthropic",
		Name:         "Anthropic",
		DefaultModel: "claude-sonnet-4-20250514",
		Models: []string{
			"claude-sonnet-4-20250514",
			"claude-opus-4-20250514",
			"claude-3-7-sonnet-20250219",
			"claude-3-5-sonnet-20241022",
			"claude-3-5-haiku-20241022",
		},
		RequiresAPIKey: true,
	},
	{
		ID:           "openrouter",
		Name:         "OpenRouter",
		DefaultModel: "anthropic/claude-sonnet-4",
		Models: []string{
			"anthropic/claude-sonnet-4",
			"anthropic/claude-3.5-sonnet",
			"openai/gpt-4o",
			"deepseek/deepseek-chat-v3-0324",
		},
		RequiresAPIKey: true,
		BaseURL:        "https://openrouter.ai/api/v1",
	},
	{
		ID:             "deepseek",
		Name:           "DeepSeek",
		DefaultModel:   "deepseek-chat",
		Models:         []string{"deepseek-chat", "deepseek-reasoner"},
		RequiresAPIKey: true,
		BaseURL:        "https://api.deepseek.com/v1",
	},
	{
		ID:           "siliconflow",
		Name:         "SiliconFlow",
		DefaultModel: "deepseek-ai/DeepSeek-V3",
		Models: []string{
			"deepseek-ai/DeepSeek-V3",
			"Qwen/Qwen2.5-72B-Instruct",
			"meta-llama/Llama-3.3-70B-Instruct",
		},
		RequiresAPIKey: true,
		BaseURL:        "https://api.siliconflow.com/v1",
	},
}

// ProviderByID looks up a provider config, falling back to "default" for
// unknown ids.
func ProviderByID(id string) ProviderConfig {
	for _, p := range Providers {
		if p.ID == id {
			return p
		}
	}
	return Providers[0]
}

// SupportsPromptCaching reports whether a model benefits from cache_control
// breakpoints. Only Anthropic models honor them.
func SupportsPromptCaching(modelID string) bool {
	return strings.Contains(modelID, "claude") || strings.Contains(modelID, "anthropic")
}

// CredentialKey returns the namespaced store key for a provider's API key.
func CredentialKey(providerID string) string {
	return "drawbridge-apikey-" + providerID
}

// BaseURLKey returns the namespaced store key for a provider's base URL
// override.
func BaseURLKey(providerID string) string {
	return "drawbridge-baseurl-" + providerID
}
