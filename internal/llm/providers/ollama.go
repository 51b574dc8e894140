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

const ollamaDefaultBaseURL = "http://localhost:11434"

// OllamaClient talks to a local Ollama server. No credential is
// required.
type OllamaClient struct {
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllama creates an Ollama backend with the given settings.
func NewOllama(settings Settings) *OllamaClient {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: httputil.NewClient(httputil.Options{
			Timeout:       settings.Timeout,
			SkipSSLVerify: settings.SkipSSLVerify,
		}),
	}
}

func (c *OllamaClient) Name() string { return "Ollama" }

func (c *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	// The generate endpoint takes a single prompt, so the system text
	// is prepended to the user text.
	prompt := req.User
	if req.System != "" {
		prompt = req.System + "\n\n" + req.User
	}
	payload, err := json.Marshal(ollamaRequest{
		Model:  req.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var response ollamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if response.Response == "" {
		return "", &llmerrors.ProviderError{
			Provider: c.Name(),
			Class:    llmerrors.ResponseValidation,
			Message:  "no content in response",
		}
	}

	return response.Response, nil
}
