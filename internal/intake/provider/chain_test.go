// internal/intake/provider/chain_test.go
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intake/internal/common/logger"
)

func completionBody(content string) string {
	payload := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GroqClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewGroqClient(Config{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
		ConnectTimeout: 2 * time.Second,
	})
	return client, server
}

func TestAttemptSendsPinnedRequestShape(t *testing.T) {
	var captured chatRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionBody(`{"status":"IGNORE"}`)))
	})

	content, err := client.Attempt(context.Background(), "qwen/qwen3-32b", "system prompt", "User: oi")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"IGNORE"}`, content)

	assert.Equal(t, "qwen/qwen3-32b", captured.Model)
	assert.Equal(t, 0.0, captured.Temperature)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "system prompt", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "User: oi", captured.Messages[1].Content)
}

func TestAttemptClassifiesRateLimits(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantRateErr bool
	}{
		{"http 429", http.StatusTooManyRequests, `{"error":"slow down"}`, true},
		{"rate_limit in body", http.StatusBadRequest, `{"error":{"code":"rate_limit_exceeded"}}`, true},
		{"plain server error", http.StatusInternalServerError, `{"error":"boom"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Attempt(context.Background(), "m", "s", "u")
			require.Error(t, err)

			var rle *RateLimitError
			assert.Equal(t, tt.wantRateErr, errors.As(err, &rle))
			if tt.wantRateErr {
				assert.Equal(t, tt.status, rle.StatusCode)
			}
		})
	}
}

func TestAttemptRejectsEmptyCompletion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Attempt(context.Background(), "m", "s", "u")
	require.ErrorIs(t, err, ErrEmptyContent)
}

// fakeAttempter scripts per-model outcomes for chain tests.
type fakeAttempter struct {
	responses map[string]string
	errors    map[string]error
	calls     []string
}

func (f *fakeAttempter) Attempt(_ context.Context, model, _, _ string) (string, error) {
	f.calls = append(f.calls, model)
	if err, ok := f.errors[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	fake := &fakeAttempter{
		responses: map[string]string{"primary": "answer"},
	}
	chain := NewChain([]string{"primary", "secondary"}, fake, logger.NewNoOpLogger())

	text, err := chain.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Equal(t, []string{"primary"}, fake.calls)
}

func TestChainFallsThroughOnRateLimit(t *testing.T) {
	fake := &fakeAttempter{
		responses: map[string]string{"secondary": "fallback answer"},
		errors:    map[string]error{"primary": &RateLimitError{Model: "primary", StatusCode: 429}},
	}
	chain := NewChain([]string{"primary", "secondary"}, fake, logger.NewNoOpLogger())

	text, err := chain.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", text)
	assert.Equal(t, []string{"primary", "secondary"}, fake.calls)
}

func TestChainExhaustionIsOneTerminalError(t *testing.T) {
	fake := &fakeAttempter{
		errors: map[string]error{
			"primary":   &RateLimitError{Model: "primary", StatusCode: 429},
			"secondary": errors.New("connection refused"),
		},
	}
	chain := NewChain([]string{"primary", "secondary"}, fake, logger.NewNoOpLogger())

	_, err := chain.Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, ErrChainExhausted)
	// Each model gets exactly one attempt, no retries.
	assert.Equal(t, []string{"primary", "secondary"}, fake.calls)
}
