package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	httputil "gitscribe/internal/http"
	llmerrors "gitscribe/internal/llm/errors"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NewAnthropic creates an Anthropic backend with the given settings.
func NewAnthropic(settings Settings) *AnthropicClient {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	return &AnthropicClient{
		apiKey:  settings.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: httputil.NewClient(httputil.Options{
			Timeout:       settings.Timeout,
			SkipSSLVerify: settings.SkipSSLVerify,
		}),
	}
}

func (c *AnthropicClient) Name() string { return "Anthropic" }

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:       req.Model,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	slog.Debug("Sending generation request", "provider", c.Name(), "model", req.Model)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", transportError(c.Name(), "http request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(c.Name(), "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTP(c.Name(), resp, body)
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	parts := make([]string, 0, len(response.Content))
	for _, content := range response.Content {
		if content.Text != "" {
			parts = append(parts, content.Text)
		}
	}
	if len(parts) == 0 {
		return "", &llmerrors.ProviderError{
			Provider: c.Name(),
			Class:    llmerrors.ResponseValidation,
			Message:  "no content in response",
		}
	}

	slog.Debug("Token usage",
		"provider", c.Name(),
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens)

	return strings.Join(parts, "\n"), nil
}
