package models

// FinishReason reports why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonToolCalls FinishReason = "tool_calls"
)

// ErrorType classifies activity failures for retry policy decisions.
type ErrorType string

const (
	// ErrorTypeFatal means the request itself is wrong; retrying the same
	// request can never succeed.
	ErrorTypeFatal ErrorType = "fatal"
	// ErrorTypeTransient covers network and server-side failures worth
	// retrying.
	ErrorTypeTransient ErrorType = "transient"
	// ErrorTypeAPILimit is rate limiting; retryable with backoff.
	ErrorTypeAPILimit ErrorType = "api_limit"
	// ErrorTypeContextOverflow means the conversation no longer fits the
	// model's context window.
	ErrorTypeContextOverflow ErrorType = "context_overflow"
)

// ActivityError is a classified failure from an activity, carrying enough
// information for the workflow's retry policy.
type ActivityError struct {
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ActivityError) Error() string {
	return string(e.Type) + ": " + e.Message
}

// NewActivityError creates a classified activity error.
func NewActivityError(errType ErrorType, message string, retryable bool) *ActivityError {
	return &ActivityError{Type: errType, Message: message, Retryable: retryable}
}

// DefaultModelConfig returns the worker-side default model selection.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}
}
