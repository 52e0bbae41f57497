package pipeline

import (
	"errors"
	"fmt"
)

// The pipeline error taxonomy. The worker routes deliveries on exactly two
// properties: the error's type name (surfaced in the job failure payload) and
// whether it is retryable (Nack and let the queue redeliver) or terminal
// (fail the job once, Ack, never retry).

// ContentError means the source document itself is unreadable, corrupt or in
// an unsupported format. Retrying cannot fix the document.
type ContentError struct {
	Stage   string
	Message string
	Err     error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *ContentError) Unwrap() error { return e.Err }

// ValidationError means a stage received structurally invalid intermediate
// data. Terminal: the same input will fail the same way.
type ValidationError struct {
	Stage   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// TransientProviderError means an external call (embedding provider, vector
// store) failed for reasons expected to clear: network, rate limits,
// availability. Retryable via queue redelivery.
type TransientProviderError struct {
	Stage    string
	Provider string
	Err      error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("%s: %s call failed: %v", e.Stage, e.Provider, e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// PersistenceError means a relational store write failed. Retryable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports whether redelivering the message can plausibly succeed.
// Unrecognized errors count as retryable so they exhaust the receive budget
// and surface in the DLQ instead of silently terminating.
func Retryable(err error) bool {
	var contentErr *ContentError
	var validationErr *ValidationError
	if errors.As(err, &contentErr) || errors.As(err, &validationErr) {
		return false
	}
	return true
}

// ErrorType names the taxonomy bucket for job failure payloads.
func ErrorType(err error) string {
	var contentErr *ContentError
	var validationErr *ValidationError
	var providerErr *TransientProviderError
	var persistenceErr *PersistenceError

	switch {
	case errors.As(err, &contentErr):
		return "ContentError"
	case errors.As(err, &validationErr):
		return "ValidationError"
	case errors.As(err, &providerErr):
		return "TransientProviderError"
	case errors.As(err, &persistenceErr):
		return "PersistenceError"
	default:
		return "UnknownError"
	}
}
