package client

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the poll loop.
var (
	// ErrTaskNotFound indicates the server does not know the given task ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAnalysisFailed indicates the server reported the analysis as failed.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrPollTimeout indicates the configured polling timeout elapsed before
	// a terminal status was observed.
	ErrPollTimeout = errors.New("polling timed out")

	// ErrAttemptsExhausted indicates the configured maximum number of status
	// queries was reached before a terminal status was observed.
	ErrAttemptsExhausted = errors.New("polling attempts exhausted")

	// ErrEmptyTaskID indicates an empty task ID was supplied.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")
)

// SubmitError wraps failures of the task submission request.
type SubmitError struct {
	// StatusCode is the HTTP status code, or 0 for transport failures
	StatusCode int

	// Message describes what failed
	Message string

	// Err is the underlying error, if any
	Err error
}

func (e *SubmitError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submit failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("submit failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("submit failed: %s", e.Message)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// StatusError wraps failures of a status query request.
type StatusError struct {
	// TaskID is the task whose status query failed
	TaskID string

	// StatusCode is the HTTP status code, or 0 for transport failures
	StatusCode int

	// Message describes what failed
	Message string

	// Err is the underlying error, if any
	Err error
}

func (e *StatusError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status query for task %s failed (HTTP %d): %s", e.TaskID, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("status query for task %s failed: %s: %v", e.TaskID, e.Message, e.Err)
	}
	return fmt.Sprintf("status query for task %s failed: %s", e.TaskID, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }
