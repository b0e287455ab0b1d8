package llm

import (
	"errors"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/openai/openai-go/v3"

	"github.com/drawbridge-ai/drawbridge/internal/models"
)

// classifyError maps provider SDK errors to classified activity errors so
// the workflow's retry policy can distinguish bad requests from transient
// failures.
func classifyError(err error) error {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return classifyByStatusCode(openaiErr.StatusCode, err)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return classifyByStatusCode(anthropicErr.StatusCode, err)
	}

	message := strings.ToLower(err.Error())
	if strings.Contains(message, "context length") ||
		strings.Contains(message, "context_length_exceeded") ||
		strings.Contains(message, "prompt is too long") {
		return models.NewActivityError(models.ErrorTypeContextOverflow, err.Error(), false)
	}

	// Network-level failures (DNS, dial, reset) have no status code.
	return models.NewActivityError(models.ErrorTypeTransient, err.Error(), true)
}

// classifyByStatusCode classifies an HTTP status into an activity error.
func classifyByStatusCode(statusCode int, err error) *models.ActivityError {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return models.NewActivityError(models.ErrorTypeAPILimit, err.Error(), true)
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusConflict:
		return models.NewActivityError(models.ErrorTypeTransient, err.Error(), true)
	case statusCode >= 500:
		return models.NewActivityError(models.ErrorTypeTransient, err.Error(), true)
	case statusCode >= 400:
		return models.NewActivityError(models.ErrorTypeFatal, err.Error(), false)
	default:
		return models.NewActivityError(models.ErrorTypeTransient, err.Error(), true)
	}
}
