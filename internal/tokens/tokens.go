// Package tokens measures text in provider token units. Budget packing
// and final rendering must agree on one Counter, otherwise a prompt can
// pack under budget and still render over it.
package tokens

import (
	"log/slog"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the cl100k_base encoding. It is exact for the
// OpenAI models and a close approximation for the other providers.
const DefaultEncoding = "cl100k_base"

// Counter measures and trims text in token units.
type Counter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
	// Truncate returns text cut to at most maxTokens tokens. When a cut
	// happens the result ends with an ellipsis so the loss is visible.
	Truncate(text string, maxTokens int) string
}

// NewCounter returns a Counter for the named encoding, or the default
// encoding when name is empty. If the encoding data cannot be loaded
// the counter degrades to a character-based approximation rather than
// failing the run.
func NewCounter(name string) Counter {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		slog.Warn("Tokenizer unavailable, falling back to approximate counting", "encoding", name, "error", err)
		return approxCounter{}
	}
	return &encodingCounter{enc: enc}
}

type encodingCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *encodingCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *encodingCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	toks := c.enc.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text
	}
	// The final token is spent on the ellipsis.
	return c.enc.Decode(toks[:maxTokens-1]) + "…"
}

// approxCounter estimates four characters per token, rounding up so the
// estimate errs toward smaller prompts and budgets stay honored.
type approxCounter struct{}

const approxCharsPerToken = 4

func (approxCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + approxCharsPerToken - 1) / approxCharsPerToken
}

func (a approxCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if a.Count(text) <= maxTokens {
		return text
	}
	keep := (maxTokens - 1) * approxCharsPerToken
	return string([]rune(text)[:keep]) + "…"
}
