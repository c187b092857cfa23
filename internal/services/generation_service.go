package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"arcanum/internal/config"
	"arcanum/internal/llm/client"
	"arcanum/internal/llm/imagegen"
	"arcanum/internal/models"
)

// ErrGenerationNotConfigured is returned when no text-generation credentials
// are set; generation is blocked with a user-visible message in that case.
var ErrGenerationNotConfigured = errors.New("generation is not configured")

// RateLimitError is the user-visible outcome of a denied rate-limit check.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %d seconds", e.RetryAfterSeconds)
}

// GenerationOutcome is the result of one completed generation attempt.
// Saved is nil when persistence was skipped or failed; the generated result
// is still usable.
type GenerationOutcome struct {
	Result models.MagicItemResult `json:"result"`
	Saved  *models.MagicItem      `json:"saved,omitempty"`
}

// GenerationService sequences one generation attempt: rate-limit check, text
// generation, image generation, persistence, cache reload. The text call
// strictly precedes the image call, which strictly precedes the persist call.
type GenerationService interface {
	// Generate runs one attempt. onTextReady, when non-nil, fires with the
	// partial image-less result as soon as the text step succeeds, before
	// the slower image step begins.
	Generate(ctx context.Context, settings models.GenerationSettings, clientID string, onTextReady func(models.MagicItemResult)) (*GenerationOutcome, error)
}

type generationService struct {
	limiter RateLimiterService
	text    client.TextGenerator
	images  imagegen.ImageGenerator
	store   ItemStoreService
	cfg     *config.Config
	logger  *zap.Logger
}

func NewGenerationService(
	limiter RateLimiterService,
	text client.TextGenerator,
	images imagegen.ImageGenerator,
	store ItemStoreService,
	cfg *config.Config,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		limiter: limiter,
		text:    text,
		images:  images,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *generationService) Generate(ctx context.Context, settings models.GenerationSettings, clientID string, onTextReady func(models.MagicItemResult)) (*GenerationOutcome, error) {
	if s.text == nil || !s.cfg.GenerationConfigured() {
		return nil, ErrGenerationNotConfigured
	}

	decision := s.limiter.Check(ctx, clientID)
	if !decision.Allowed {
		return nil, &RateLimitError{RetryAfterSeconds: decision.RetryAfterSeconds}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	textCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout())
	content, err := s.text.GenerateItem(textCtx, settings)
	cancel()
	if err != nil {
		// Text failure is terminal for the attempt.
		s.logger.Error("text generation failed", zap.Error(err))
		return nil, fmt.Errorf("text generation failed: %w", err)
	}

	result := models.MagicItemResult{GeneratedContent: *content}
	if onTextReady != nil {
		onTextReady(result)
	}

	if s.images != nil && s.cfg.ImageConfigured() {
		imageCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout())
		image, err := s.images.GenerateImage(imageCtx, content.ImagePrompt, settings.VisualStyle)
		cancel()
		if err != nil {
			// A textual item without art is still a usable result.
			s.logger.Warn("image generation failed, keeping text-only result", zap.Error(err))
		} else {
			result.Image = image
		}
	}

	outcome := &GenerationOutcome{Result: result}
	saved, err := s.store.Create(ctx, &result)
	if err != nil {
		if !errors.Is(err, ErrStoreNotConfigured) {
			s.logger.Error("failed to persist generated item", zap.Error(err))
		}
		return outcome, nil
	}
	outcome.Saved = saved

	// Warm the recent-items view; Create already invalidated the cache.
	go s.store.List(context.Background(), DefaultListLimit, 0)

	return outcome, nil
}
