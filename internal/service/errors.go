package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrAnalysisNotFound indicates the requested analysis does not exist.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrNilRepository indicates a nil repository was provided.
	ErrNilRepository = errors.New("analysis repository cannot be nil")

	// ErrNilEventEmitter indicates a nil event emitter was provided.
	ErrNilEventEmitter = errors.New("event emitter cannot be nil")

	// ErrNilLogger indicates a nil logger was provided.
	ErrNilLogger = errors.New("logger cannot be nil")
)

// AnalysisServiceError wraps errors from the analysis service with
// operation context.
type AnalysisServiceError struct {
	// Operation is the service operation that failed
	Operation string

	// Message provides additional context about the failure
	Message string

	// Err is the underlying error
	Err error
}

// Error returns a formatted error message.
func (e *AnalysisServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("analysis service: %s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("analysis service: %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AnalysisServiceError) Unwrap() error {
	return e.Err
}

// NewAnalysisServiceError creates a new AnalysisServiceError.
func NewAnalysisServiceError(operation, message string, err error) *AnalysisServiceError {
	return &AnalysisServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
