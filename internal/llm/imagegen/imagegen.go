// Package imagegen requests an illustration from the Gemini image model and
// returns it as a base64 data URL.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ImageGenerator turns an image prompt and a visual style into inline image
// data. Implementations return the image as a data URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style string) (string, error)
}

type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New builds an image-generation client against the Gemini API.
func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: gc, model: model, logger: logger}, nil
}

// GenerateImage runs one image generation and returns the first inline image
// from the response as a data URL.
func (c *Client) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	full := strings.TrimSpace(prompt)
	if full == "" {
		return "", fmt.Errorf("prompt is required")
	}
	if style != "" {
		full = fmt.Sprintf("%s\n\nRender the illustration in the style of %s.", full, style)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(full), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			encoded := base64.StdEncoding.EncodeToString(part.InlineData.Data)
			return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
		}
	}
	return "", fmt.Errorf("response contained no image data")
}
