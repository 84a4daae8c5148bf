// File: internal/services/planner/errors.go
package planner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorType string

const (
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeInvalidParameter ErrorType = "INVALID_PARAMETER"
	ErrTypeInternal         ErrorType = "INTERNAL"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrInvalidParameter = errors.New("invalid parameter")
)

type PlanError struct {
	Type      ErrorType
	Operation string
	Message   string
	UserID    uint
	Cause     error
}

func (e *PlanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Planner %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Planner %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *PlanError) Unwrap() error {
	return e.Cause
}

func (e *PlanError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Type == ErrTypeNotFound
	case ErrInvalidParameter:
		return e.Type == ErrTypeInvalidParameter
	case ErrValidation:
		return e.Type == ErrTypeValidation
	}
	return false
}

func NewNotFoundError(operation string, userID uint, cause error) *PlanError {
	return &PlanError{Type: ErrTypeNotFound, Operation: operation, Message: "plan or task not found", UserID: userID, Cause: cause}
}

func NewInvalidParameterError(operation, msg string) *PlanError {
	return &PlanError{Type: ErrTypeInvalidParameter, Operation: operation, Message: msg}
}

func NewInternalError(operation, msg string, cause error) *PlanError {
	return &PlanError{Type: ErrTypeInternal, Operation: operation, Message: msg, Cause: cause}
}

// ValidationError carries one message per rejected form field so forms can
// show them inline.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
