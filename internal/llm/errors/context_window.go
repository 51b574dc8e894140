package errors

import (
	"fmt"
	"strings"
)

// ContextWindowError reports a prompt the backend refused as too large.
// It is never retried on the backoff path; the caller shrinks the
// budget and rebuilds the prompt instead.
type ContextWindowError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ContextWindowError) Error() string {
	return fmt.Sprintf("context window exceeded for %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// contextWindowIndicators are the phrases backends use to report an
// oversized prompt. Matched case-insensitively against the error body.
var contextWindowIndicators = []string{
	"context length",
	"context window",
	"maximum context",
	"maximum tokens",
	"token limit",
	"too many tokens",
	"input too large",
	"request too large",
	"prompt is too long",
	"prompt too long",
	"exceeds maximum",
}

// IsContextWindowError checks whether an HTTP error response indicates
// an oversized prompt rather than a genuinely bad request.
func IsContextWindowError(statusCode int, body []byte) bool {
	// Only these statuses are used by backends for payload size issues.
	if statusCode != 400 && statusCode != 413 && statusCode != 429 {
		return false
	}

	lowered := strings.ToLower(string(body))
	for _, indicator := range contextWindowIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}
