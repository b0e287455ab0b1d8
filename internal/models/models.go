// Package models contains the shared domain types passed between the
// workflow, activities, LLM clients, and the CLI.
package models

// ItemType identifies the kind of a conversation item.
type ItemType string

const (
	ItemTypeUserMessage        ItemType = "user_message"
	ItemTypeAssistantMessage   ItemType = "assistant_message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
	ItemTypeTurnStarted        ItemType = "turn_started"
	ItemTypeTurnComplete       ItemType = "turn_complete"
)

// FunctionCallOutputPayload carries the result of a tool call back to the LLM.
// Success is a pointer so "unknown" (nil) is distinguishable from false.
type FunctionCallOutputPayload struct {
	Content string `json:"content"`
	Success *bool  `json:"success,omitempty"`
}

// ConversationItem is a single entry in the session transcript. Seq is a
// monotonically increasing sequence number assigned by the workflow, used by
// clients to render only items they have not seen yet.
type ConversationItem struct {
	Seq       int                        `json:"seq"`
	Type      ItemType                   `json:"type"`
	Content   string                     `json:"content,omitempty"`
	CallID    string                     `json:"call_id,omitempty"`
	Name      string                     `json:"name,omitempty"`
	Arguments string                     `json:"arguments,omitempty"`
	Output    *FunctionCallOutputPayload `json:"output,omitempty"`
	TurnID    string                     `json:"turn_id,omitempty"`
}

// ModelConfig selects the provider, model, and generation parameters for
// LLM calls made during a session.
type ModelConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// APIKey and BaseURL override the provider defaults when the user
	// supplies their own credentials instead of worker-side env config.
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// SessionConfiguration is the immutable per-session configuration passed to
// the workflow at start.
type SessionConfiguration struct {
	Model         ModelConfig `json:"model"`
	SessionSource string      `json:"session_source,omitempty"`

	// BaseInstructionsOverride replaces the built-in system prompt when set.
	BaseInstructionsOverride string `json:"base_instructions_override,omitempty"`

	// UserInstructions carry user-level preferences appended to every turn.
	UserInstructions string `json:"user_instructions,omitempty"`

	// MaxTurnSteps bounds the number of LLM round-trips within a single
	// user turn (tool call -> result -> next call). Zero means the default.
	MaxTurnSteps int `json:"max_turn_steps,omitempty"`
}

// TokenUsage accumulates token counts reported by the provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	CachedTokens     int `json:"cached_tokens,omitempty"`
}

// Add accumulates another usage report into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.CachedTokens += other.CachedTokens
}

// Total returns the combined prompt+completion token count.
func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}
