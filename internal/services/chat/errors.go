// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConflict   ErrorType = "CONFLICT"
	ErrTypeInternal   ErrorType = "INTERNAL"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrAlreadyAccepted = errors.New("plan proposal already accepted")
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    uint
	UserID    uint
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

// Is lets callers match on the error category with the package sentinels.
func (e *ChatError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Type == ErrTypeValidation
	case ErrNotFound:
		return e.Type == ErrTypeNotFound
	}
	return false
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation string, userID, chatID uint, cause error) *ChatError {
	return &ChatError{
		Type:      ErrTypeNotFound,
		Operation: operation,
		Message:   "conversation or proposal not found",
		UserID:    userID,
		ChatID:    chatID,
		Cause:     cause,
	}
}

func NewInternalError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeInternal, Operation: operation, Message: msg, Cause: cause}
}
