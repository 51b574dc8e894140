package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GeneratedMessage is the JSON shape a provider must return for commit
// message generation.
type GeneratedMessage struct {
	Emoji   string `json:"emoji"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ParseGeneratedMessage decodes a model response. A surrounding markdown
// code fence is tolerated; a response without a title is rejected so the
// caller can retry it as a validation failure.
func ParseGeneratedMessage(raw string) (*GeneratedMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("response is empty")
	}

	var msg GeneratedMessage
	if err := json.Unmarshal([]byte(StripFences(raw)), &msg); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if strings.TrimSpace(msg.Title) == "" {
		return nil, errors.New("response has no title")
	}
	return &msg, nil
}

// StripFences removes a markdown code fence wrapped around raw, if any.
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Format renders the final commit message text: optional emoji, title,
// blank line, body wrapped at 78 columns.
func (m *GeneratedMessage) Format() string {
	var b strings.Builder
	if m.Emoji != "" {
		b.WriteString(m.Emoji)
		b.WriteString(" ")
	}
	b.WriteString(m.Title)
	b.WriteString("\n\n")
	for _, line := range wrapText(m.Message, 78) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// wrapText wraps s at width columns, preserving existing line breaks.
func wrapText(s string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range strings.Fields(paragraph) {
			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= width:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}
