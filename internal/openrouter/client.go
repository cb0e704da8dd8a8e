package openrouter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// RemoteError is returned when the chat endpoint answers with a non-success
// HTTP status. It carries the status and the upstream error message so the
// caller can surface both.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("openrouter returned status %d: %s", e.StatusCode, e.Body)
}

// Client sends chat completion requests to OpenRouter. Requests are
// stateless; no conversation history is kept between calls.
type Client struct {
	api *openai.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client pointing at a custom base URL
// (for testing).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	return &Client{api: openai.NewClientWithConfig(cfg)}
}

// Complete sends a single-turn text prompt and returns the model's reply.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	return c.send(ctx, model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// CompleteVision sends a single-turn prompt with an inline base64 image and
// returns the model's reply. The image travels as a data URI part next to
// the text part, per the OpenAI-compatible vision message format.
func (c *Client) CompleteVision(ctx context.Context, model, prompt string, image []byte, mimeType string) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	return c.send(ctx, model, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURI}},
			},
		},
	})
}

func (c *Client) send(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &RemoteError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &RemoteError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
		}
		return "", fmt.Errorf("calling openrouter: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
