// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/answer-engine/internal/httputil"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// openaiAPIBase is the chat completions endpoint. Declared as a var so
// tests can substitute an httptest server.
var openaiAPIBase = "https://api.openai.com/v1/chat/completions"

// OpenAIBackend calls an OpenAI-compatible chat completions API.
type OpenAIBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// NewOpenAIBackend builds a backend from config.
func NewOpenAIBackend(cfg types.LLMConfig) *OpenAIBackend {
	return &OpenAIBackend{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatMessage is a single message in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Generate sends the system and user messages to the model and returns
// the generated text. HTTP 429 is retried with backoff; remaining
// transport, quota, and server failures wrap types.ErrUpstreamUnavailable.
func (b *OpenAIBackend) Generate(ctx context.Context, r Request) (string, error) {
	reqBody := chatRequest{
		Model:       b.Model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: r.System},
			{Role: "user", Content: r.User},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIBase, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("%w: calling chat completions: %v", types.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: chat completions returned %d: %s", types.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("%w: decoding chat response: %v", types.ErrUpstreamUnavailable, err)
	}

	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completions returned no choices", types.ErrUpstreamUnavailable)
	}

	return cResp.Choices[0].Message.Content, nil
}
