// internal/intake/provider/groq.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

var (
	ErrChainExhausted = errors.New("PROVIDER_FAILURE")
	ErrEmptyContent   = errors.New("EMPTY_COMPLETION")
)

// RateLimitError marks a 429 (or a non-200 whose body signals a rate/limit
// condition) from a single model. The chain treats it like any other failure
// but metrics and logs keep the distinction.
type RateLimitError struct {
	Model      string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit reached for model %s (status %d)", e.Model, e.StatusCode)
}

// GroqClient issues chat-completion requests against the Groq
// OpenAI-compatible endpoint.
type GroqClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
}

func NewGroqClient(cfg Config) *GroqClient {
	return &GroqClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
			},
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

// Attempt performs a single completion call against one model. Temperature is
// pinned to zero and the provider is forced to answer with a single JSON
// object.
func (c *GroqClient) Attempt(ctx context.Context, model, systemPrompt, userContext string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContext},
		},
		Temperature:    0.0,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model %s: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response from model %s: %w", model, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode != http.StatusOK && strings.Contains(string(respBody), "rate_limit")) {
		return "", &RateLimitError{Model: model, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model %s returned status %d: %s", model, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response from model %s: %w", model, err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: model %s", ErrEmptyContent, model)
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
