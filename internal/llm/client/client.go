// Package client wraps the chat-model providers behind a single structured
// item-generation call. The provider is chosen by configuration; every
// provider returns the same atomic JSON payload of item data, image prompt
// and item card.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"arcanum/internal/models"
)

// TextGenerator produces the structured content for one generation request.
type TextGenerator interface {
	GenerateItem(ctx context.Context, settings models.GenerationSettings) (*models.GeneratedContent, error)
}

// Config selects and authenticates the chat model.
type Config struct {
	// Provider is one of openai, claude, gemini.
	Provider string
	APIKey   string
	// Model overrides the provider's default model name.
	Model string
}

type Client struct {
	chatModel model.BaseChatModel
	logger    *zap.Logger
}

var defaultModels = map[string]string{
	"openai": "gpt-4o-mini",
	"claude": "claude-sonnet-4-0",
	"gemini": "gemini-2.0-flash",
}

// New builds a chat-model client for the configured provider.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModels[provider]
	}

	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey: cfg.APIKey,
			Model:  modelName,
		})
	case "claude", "anthropic":
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     modelName,
			MaxTokens: 4096,
		})
	case "gemini":
		var gc *genai.Client
		gc, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err == nil {
			chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
				Client: gc,
				Model:  modelName,
			})
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", provider, err)
	}

	return &Client{chatModel: chatModel, logger: logger}, nil
}

// GenerateItem runs one chat completion and parses the strict-JSON payload.
func (c *Client) GenerateItem(ctx context.Context, settings models.GenerationSettings) (*models.GeneratedContent, error) {
	messages := []*schema.Message{
		schema.SystemMessage(itemSystemPrompt()),
		schema.UserMessage(BuildUserPrompt(settings)),
	}

	msg, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("empty completion")
	}

	content, err := ParseGeneratedContent(msg.Content)
	if err != nil {
		c.logger.Warn("unparseable completion", zap.String("content", truncateForLog(msg.Content)))
		return nil, err
	}
	return content, nil
}

// BuildUserPrompt renders the settings as the user turn of the completion.
func BuildUserPrompt(settings models.GenerationSettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s %s.\n", settings.Rarity, settings.ItemType)
	fmt.Fprintf(&b, "Power band: %s.\n", settings.PowerBand)
	if settings.Theme != "" && settings.Theme != models.ThemeNone {
		fmt.Fprintf(&b, "Theme: %s.\n", settings.Theme)
	}
	fmt.Fprintf(&b, "Visual style for the illustration: %s.\n", settings.VisualStyle)
	if settings.IncludeCurse {
		b.WriteString("The item carries a hidden curse; fill curseText.\n")
	} else {
		b.WriteString("No curse; leave curseText empty.\n")
	}
	if settings.IncludePlotHook {
		b.WriteString("Include an adventure plot hook; fill plotHook.\n")
	} else {
		b.WriteString("No plot hook; leave plotHook empty.\n")
	}
	if settings.LoreSeed != "" {
		fmt.Fprintf(&b, "Incorporate this lore seed: %s\n", settings.LoreSeed)
	}
	return b.String()
}

// ParseGeneratedContent extracts the JSON document from a completion that may
// be wrapped in code fences or prose, and backfills optional item fields.
func ParseGeneratedContent(raw string) (*models.GeneratedContent, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("completion contains no JSON object")
	}

	var content models.GeneratedContent
	if err := json.Unmarshal([]byte(payload), &content); err != nil {
		return nil, fmt.Errorf("parse completion JSON: %w", err)
	}
	if strings.TrimSpace(content.Item.Name) == "" {
		return nil, fmt.Errorf("completion missing item name")
	}
	if strings.TrimSpace(content.ImagePrompt) == "" {
		return nil, fmt.Errorf("completion missing image prompt")
	}
	if strings.TrimSpace(content.ItemCard) == "" {
		return nil, fmt.Errorf("completion missing item card")
	}
	content.Item.Backfill()
	return &content, nil
}

// extractJSON returns the outermost JSON object in raw, tolerating markdown
// code fences around it.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func truncateForLog(content string) string {
	const max = 512
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
