// Package errors classifies provider failures so callers can decide
// between backing off, failing fast, and shrinking the prompt.
package errors

import (
	"fmt"
	"time"
)

// Class buckets provider failures by how the caller should react.
type Class int

const (
	// Transient covers timeouts, connection resets, and server errors.
	// Retried on the backoff schedule.
	Transient Class = iota
	// RateLimited is retried after the backend-supplied delay when one
	// is present, otherwise on the backoff schedule.
	RateLimited
	// Authentication is fatal; retrying cannot fix a bad credential.
	Authentication
	// MalformedRequest is fatal; the backend rejected the request shape.
	MalformedRequest
	// ResponseValidation marks a reply failing the required shape, for
	// example empty text. Retried exactly once, then fatal.
	ResponseValidation
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case RateLimited:
		return "rate-limited"
	case Authentication:
		return "authentication"
	case MalformedRequest:
		return "malformed-request"
	case ResponseValidation:
		return "response-validation"
	}
	return "unknown"
}

// ProviderError is a classified backend failure.
type ProviderError struct {
	Provider   string
	Class      Class
	StatusCode int
	Message    string
	// RetryAfter carries the backend-supplied delay on rate limits,
	// zero when the backend sent none.
	RetryAfter time.Duration
	// Err is the underlying transport error, nil for HTTP-level
	// failures.
	Err error
}

func (e *ProviderError) Error() string {
	message := e.Message
	if message == "" && e.Err != nil {
		message = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s error (status %d): %s", e.Provider, e.Class, e.StatusCode, message)
	}
	return fmt.Sprintf("%s %s error: %s", e.Provider, e.Class, message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the backoff path applies to this failure.
func (e *ProviderError) Retryable() bool {
	return e.Class == Transient || e.Class == RateLimited
}

// ClassForStatus maps an HTTP status code to a failure class.
func ClassForStatus(statusCode int) Class {
	switch {
	case statusCode == 401 || statusCode == 403:
		return Authentication
	case statusCode == 429:
		return RateLimited
	case statusCode == 408 || statusCode >= 500:
		return Transient
	default:
		return MalformedRequest
	}
}
