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

const openAIDefaultBaseURL = "https://api.openai.com"

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewOpenAI creates an OpenAI backend with the given settings.
func NewOpenAI(settings Settings) *OpenAIClient {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return &OpenAIClient{
		apiKey:  settings.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: httputil.NewClient(httputil.Options{
			Timeout:       settings.Timeout,
			SkipSSLVerify: settings.SkipSSLVerify,
		}),
	}
}

func (c *OpenAIClient) Name() string { return "OpenAI" }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openAIMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", &llmerrors.ProviderError{
			Provider: c.Name(),
			Class:    llmerrors.ResponseValidation,
			Message:  "no choices in response",
		}
	}

	slog.Debug("Token usage",
		"provider", c.Name(),
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}
