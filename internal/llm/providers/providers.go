// Package providers implements the generation backends. Every backend
// exposes the same capability: send a rendered prompt, return the
// generated text or a classified error. Transport, auth, and size-limit
// differences stay behind the Provider interface.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	llmerrors "gitscribe/internal/llm/errors"
)

// Request carries one generation call.
type Request struct {
	System      string
	User        string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Provider is implemented by every generation backend.
type Provider interface {
	// Complete sends the prompt and returns the generated text.
	// Failures are classified as *llmerrors.ProviderError or
	// *llmerrors.ContextWindowError.
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Settings configures a backend. Zero values select per-backend
// defaults.
type Settings struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	SkipSSLVerify bool
}

// Metadata describes a backend for configuration and display.
type Metadata struct {
	Name              string
	DefaultModel      string
	DefaultTokenLimit int
	RequiresAPIKey    bool
}

var registry = map[string]Metadata{
	"anthropic": {Name: "Anthropic", DefaultModel: "claude-3-5-sonnet-20240620", DefaultTokenLimit: 150000, RequiresAPIKey: true},
	"openai":    {Name: "OpenAI", DefaultModel: "gpt-4o", DefaultTokenLimit: 100000, RequiresAPIKey: true},
	"ollama":    {Name: "Ollama", DefaultModel: "llama3", DefaultTokenLimit: 100000, RequiresAPIKey: false},
	"test":      {Name: "Test", DefaultModel: "test-model", DefaultTokenLimit: 1000, RequiresAPIKey: false},
}

// MetadataFor returns the metadata for a backend identifier.
func MetadataFor(name string) (Metadata, bool) {
	meta, ok := registry[strings.ToLower(name)]
	return meta, ok
}

// Available lists the user-facing backend identifiers, sorted. The
// test backend resolves through MetadataFor and New but is not
// advertised.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		if name == "test" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the backend for the configured identifier.
func New(name string, settings Settings) (Provider, error) {
	switch strings.ToLower(name) {
	case "anthropic":
		return NewAnthropic(settings), nil

	case "openai":
		return NewOpenAI(settings), nil

	case "ollama":
		return NewOllama(settings), nil

	case "test":
		return NewTest(), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// classifyHTTP turns a non-200 response into a classified error,
// checking the oversized-prompt case before the generic status mapping.
func classifyHTTP(provider string, resp *http.Response, body []byte) error {
	if llmerrors.IsContextWindowError(resp.StatusCode, body) {
		return &llmerrors.ContextWindowError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	perr := &llmerrors.ProviderError{
		Provider:   provider,
		Class:      llmerrors.ClassForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
	if perr.Class == llmerrors.RateLimited {
		perr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return perr
}

// transportError wraps a failure that never produced a response.
// Connection resets and timeouts land here, so the class is transient.
func transportError(provider, action string, err error) error {
	return &llmerrors.ProviderError{
		Provider: provider,
		Class:    llmerrors.Transient,
		Message:  action,
		Err:      err,
	}
}

// parseRetryAfter reads the delay-seconds form of the Retry-After
// header. The HTTP-date form is rare on rate limits and is ignored.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
