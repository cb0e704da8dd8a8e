package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletionJSON(content string) map[string]any {
	return map[string]any{
		"id":     "gen-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestComplete(t *testing.T) {
	var requests atomic.Int64
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(chatCompletionJSON("| Nasi Goreng | 1 | 267 |")))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk-or-test", server.URL)

	reply, err := client.Complete(context.Background(), "openai/gpt-3.5-turbo", "2 telur")
	require.NoError(t, err)
	assert.Equal(t, "| Nasi Goreng | 1 | 267 |", reply)

	assert.Equal(t, int64(1), requests.Load())
	assert.Equal(t, "openai/gpt-3.5-turbo", gotBody["model"])
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "2 telur", msg["content"])
}

func TestCompleteVisionSendsInlineImage(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(chatCompletionJSON("- 2 telur")))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk-or-test", server.URL)

	reply, err := client.CompleteVision(context.Background(), "google/gemini-pro-vision", "list the foods", []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "- 2 telur", reply)

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)

	textPart := parts[0].(map[string]any)
	assert.Equal(t, "text", textPart["type"])
	assert.Equal(t, "list the foods", textPart["text"])

	imagePart := parts[1].(map[string]any)
	assert.Equal(t, "image_url", imagePart["type"])
	url := imagePart["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"), "expected data URI, got %q", url)
}

func TestCompleteRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk-or-test", server.URL)

	_, err := client.Complete(context.Background(), "openai/gpt-3.5-turbo", "2 telur")
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusTooManyRequests, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "rate limited")
}

func TestCompleteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClientWithBaseURL("sk-or-test", server.URL)

	_, err := client.Complete(context.Background(), "openai/gpt-3.5-turbo", "2 telur")
	assert.Error(t, err)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("sk-or-test", server.URL)

	_, err := client.Complete(context.Background(), "openai/gpt-3.5-turbo", "2 telur")
	assert.Error(t, err)
}
