package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"arcanum/internal/config"
	"arcanum/internal/kvstore"
	"arcanum/internal/llm/client"
	"arcanum/internal/llm/imagegen"
	"arcanum/internal/repositories"
)

// Services aggregates the domain services behind the HTTP surface.
type Services struct {
	RateLimiter RateLimiterService
	ListCache   ListCacheService
	Thumbnails  ThumbnailService
	Items       ItemStoreService
	Generation  GenerationService
}

// NewServices wires the service graph. db may be nil when the store is
// unconfigured; text and images may be nil when the respective provider
// credentials are unset. The services degrade per their contracts.
func NewServices(
	db *gorm.DB,
	kv kvstore.Store,
	text client.TextGenerator,
	images imagegen.ImageGenerator,
	cfg *config.Config,
	logger *zap.Logger,
) *Services {
	var repo repositories.MagicItemRepository
	if db != nil {
		repo = repositories.NewMagicItemRepository(db)
	}

	limiter := NewRateLimiterService(kv, logger)
	cache := NewListCacheService(kv, logger)
	thumbs := NewThumbnailService()
	items := NewItemStoreService(repo, cache, thumbs, cfg, logger)
	generation := NewGenerationService(limiter, text, images, items, cfg, logger)

	return &Services{
		RateLimiter: limiter,
		ListCache:   cache,
		Thumbnails:  thumbs,
		Items:       items,
		Generation:  generation,
	}
}
