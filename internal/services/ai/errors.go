// File: internal/services/ai/errors.go
package ai

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

type ErrorType string

const (
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeNetwork   ErrorType = "NETWORK"
	ErrTypeProvider  ErrorType = "PROVIDER"
	ErrTypeAuth      ErrorType = "AUTH"
	ErrTypeRateLimit ErrorType = "RATE_LIMIT"
	ErrTypeEmpty     ErrorType = "EMPTY_RESPONSE"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

// NewProviderError classifies a client error by the HTTP status the API returned.
func NewProviderError(operation, model string, cause error) *AIError {
	e := &AIError{
		Type:      ErrTypeNetwork,
		Operation: operation,
		Model:     model,
		Message:   "request to language model failed",
		Cause:     cause,
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(cause, &apiErr):
		e.Code = apiErr.HTTPStatusCode
	case errors.As(cause, &reqErr):
		e.Code = reqErr.HTTPStatusCode
	default:
		return e
	}

	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Type = ErrTypeAuth
		e.Message = "language model rejected the API key"
	case http.StatusTooManyRequests:
		e.Type = ErrTypeRateLimit
		e.Message = "language model quota or rate limit exceeded"
	default:
		e.Type = ErrTypeProvider
		e.Message = "language model returned an error"
	}
	return e
}
