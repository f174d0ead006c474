package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sherifabdallah/easyapply/internal/config"
)

func groqConfig(endpoint string) config.AdvisorConfig {
	return config.AdvisorConfig{
		Provider:    config.ProviderGroq,
		Model:       "llama-3.1-70b-versatile",
		APIKey:      "test-key",
		Endpoint:    endpoint,
		Timeout:     2 * time.Second,
		Temperature: 0.3,
		MaxTokens:   500,
	}
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestNewGroqClientRequiresAPIKey(t *testing.T) {
	cfg := groqConfig("http://localhost")
	cfg.APIKey = ""
	_, err := NewGroqClient(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestGroqAskSendsChatPayload(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		require.NoError(t, json.NewEncoder(w).Encode(chatReply("  YES - good fit  ")))
	}))
	defer server.Close()

	client, err := NewGroqClient(groqConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	reply, err := client.Ask(context.Background(), "Is this a match?", "You are an advisor.")
	require.NoError(t, err)
	assert.Equal(t, "YES - good fit", reply, "reply is trimmed")

	assert.Equal(t, "llama-3.1-70b-versatile", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, 500, captured.MaxTokens)
}

func TestGroqAskRetriesTransientStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(chatReply("ok")))
	}))
	defer server.Close()

	client, err := NewGroqClient(groqConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	reply, err := client.Ask(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 2, calls)
}

func TestGroqAskDoesNotRetryAuthFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewGroqClient(groqConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "hello", "")
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "auth failures are permanent")
}

func TestGroqAskRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"choices": []any{}}))
	}))
	defer server.Close()

	client, err := NewGroqClient(groqConfig(server.URL), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "hello", "")
	assert.Error(t, err)
}

func TestLimitedDisablesWithNonPositiveRate(t *testing.T) {
	inner := advisorFunc(func(ctx context.Context, prompt, system string) (string, error) {
		return "fast", nil
	})
	limited := NewLimited(inner, 0, 0)

	for i := 0; i < 50; i++ {
		reply, err := limited.Ask(context.Background(), "p", "")
		require.NoError(t, err)
		assert.Equal(t, "fast", reply)
	}
}

// advisorFunc adapts a function to the Advisor interface.
type advisorFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)

func (f advisorFunc) Ask(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return f(ctx, prompt, systemPrompt)
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	cfg := groqConfig("")
	cfg.Provider = "oracle"
	_, err := NewClient(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
