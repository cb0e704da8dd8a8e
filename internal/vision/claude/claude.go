package claude

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/dprayogo/nutrisnap/internal/vision"
)

// maxTokens is well above the expected response for a typical meal photo
// (a dozen bullet lines at most), with headroom for verbose models.
const maxTokens = 1024

// Extractor detects foods in a photo via the Anthropic Messages API.
type Extractor struct {
	api   *anthropic.Client
	model string
}

func NewExtractor(apiKey, model string, opts ...anthropic.ClientOption) *Extractor {
	return &Extractor{
		api:   anthropic.NewClient(apiKey, opts...),
		model: model,
	}
}

func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	resp, err := e.api.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(e.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64,
						vision.NormalizeMIME(mimeType),
						image,
					)),
					anthropic.NewTextMessageContent(vision.ExtractionPrompt),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude vision: %w", err)
	}

	var listing string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText {
			listing = block.GetText()
			break
		}
	}
	if strings.TrimSpace(listing) == "" {
		return "", fmt.Errorf("claude returned an empty food listing")
	}
	return listing, nil
}
