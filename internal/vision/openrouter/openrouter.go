package openrouter

import (
	"context"
	"fmt"
	"strings"

	chat "github.com/dprayogo/nutrisnap/internal/openrouter"
	"github.com/dprayogo/nutrisnap/internal/vision"
)

// Extractor detects foods in a photo via an OpenRouter-hosted vision model.
type Extractor struct {
	client *chat.Client
	model  string
}

func NewExtractor(client *chat.Client, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	listing, err := e.client.CompleteVision(ctx, e.model, vision.ExtractionPrompt, image, vision.NormalizeMIME(mimeType))
	if err != nil {
		return "", fmt.Errorf("vision model: %w", err)
	}
	if strings.TrimSpace(listing) == "" {
		return "", fmt.Errorf("vision model returned an empty food listing")
	}
	return listing, nil
}
