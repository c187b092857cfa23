package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"arcanum/internal/config"
	"arcanum/internal/models"
	"arcanum/internal/repositories"
)

const (
	// listCacheWindow is how many recent items a cache populate fetches.
	listCacheWindow = 100
	// searchWindow bounds the recent records scanned by a cold search.
	searchWindow = 200

	// DefaultListLimit is the page size used when callers pass none.
	DefaultListLimit = 24
)

// ErrStoreNotConfigured marks write failures caused by missing store
// configuration, an expected condition in unconfigured deployments.
var ErrStoreNotConfigured = errors.New("item store is not configured")

// ItemStoreService is the typed façade over the persistent store. Read
// operations degrade to empty results on failure so listing views stay
// resilient; Create and Remove propagate errors because silently losing a
// user-authored record is unacceptable.
type ItemStoreService interface {
	List(ctx context.Context, limit, offset int) []models.MagicItemSummary
	Search(ctx context.Context, query string, limit, offset int) []models.MagicItemSummary
	GetByID(ctx context.Context, id string) *models.MagicItem
	Create(ctx context.Context, result *models.MagicItemResult) (*models.MagicItem, error)
	Remove(ctx context.Context, id string) error
}

type itemStoreService struct {
	repo   repositories.MagicItemRepository
	cache  ListCacheService
	thumbs ThumbnailService
	cfg    *config.Config
	logger *zap.Logger
}

func NewItemStoreService(
	repo repositories.MagicItemRepository,
	cache ListCacheService,
	thumbs ThumbnailService,
	cfg *config.Config,
	logger *zap.Logger,
) ItemStoreService {
	return &itemStoreService{repo: repo, cache: cache, thumbs: thumbs, cfg: cfg, logger: logger}
}

// available re-checks configuration on every call; config could change
// between calls in a long-lived session.
func (s *itemStoreService) available() bool {
	return s.repo != nil && s.cfg.StoreConfigured()
}

func (s *itemStoreService) List(ctx context.Context, limit, offset int) []models.MagicItemSummary {
	if !s.available() {
		return []models.MagicItemSummary{}
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	// The cache holds the head of the listing only; paged reads go straight
	// to the store.
	if offset > 0 {
		summaries, err := s.fetchSummaries(ctx, limit, offset)
		if err != nil {
			s.logger.Error("failed to list magic items", zap.Error(err))
			return []models.MagicItemSummary{}
		}
		return summaries
	}

	cached, token, ok := s.cache.Get(ctx)
	if ok {
		go s.refreshCache(token)
		if len(cached) > limit {
			cached = cached[:limit]
		}
		return cached
	}

	summaries, err := s.fetchSummaries(ctx, listCacheWindow, 0)
	if err != nil {
		s.logger.Error("failed to list magic items", zap.Error(err))
		return []models.MagicItemSummary{}
	}
	s.cache.Put(ctx, token, summaries)
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

func (s *itemStoreService) Search(ctx context.Context, query string, limit, offset int) []models.MagicItemSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, limit, offset)
	}
	if !s.available() {
		return []models.MagicItemSummary{}
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var pool []models.MagicItemSummary
	if cached, token, ok := s.cache.Get(ctx); ok {
		go s.refreshCache(token)
		pool = cached
	} else {
		summaries, err := s.fetchSummaries(ctx, searchWindow, 0)
		if err != nil {
			s.logger.Error("failed to search magic items", zap.Error(err))
			return []models.MagicItemSummary{}
		}
		pool = summaries
	}

	matched := make([]models.MagicItemSummary, 0, limit)
	needle := strings.ToLower(query)
	for _, summary := range pool {
		if matchesQuery(summary, needle) {
			matched = append(matched, summary)
		}
	}
	if offset >= len(matched) {
		return []models.MagicItemSummary{}
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (s *itemStoreService) GetByID(ctx context.Context, id string) *models.MagicItem {
	if !s.available() || id == "" {
		return nil
	}
	item, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to fetch magic item", zap.String("id", id), zap.Error(err))
		return nil
	}
	return item
}

func (s *itemStoreService) Create(ctx context.Context, result *models.MagicItemResult) (*models.MagicItem, error) {
	if result == nil {
		return nil, fmt.Errorf("result is required")
	}
	if !s.available() {
		return nil, ErrStoreNotConfigured
	}

	itemJSON, err := json.Marshal(result.Item)
	if err != nil {
		return nil, fmt.Errorf("serialize item data: %w", err)
	}

	record := &models.MagicItem{
		ItemJSON:    string(itemJSON),
		ImagePrompt: result.ImagePrompt,
		ItemCard:    result.ItemCard,
		Image:       result.Image,
	}

	if result.Image != "" {
		thumb, err := s.thumbs.Derive(result.Image, DefaultThumbMaxWidth, DefaultThumbMaxHeight, DefaultThumbQuality)
		if err != nil {
			// A missing thumbnail never blocks the save.
			s.logger.Warn("thumbnail derivation failed, saving without", zap.Error(err))
		} else {
			record.Thumbnail = thumb
		}
	}

	if err := s.repo.Create(record); err != nil {
		return nil, fmt.Errorf("save magic item: %w", err)
	}
	s.cache.Invalidate(ctx)
	return record, nil
}

func (s *itemStoreService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if !s.available() {
		return ErrStoreNotConfigured
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("delete magic item: %w", err)
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *itemStoreService) fetchSummaries(ctx context.Context, limit, offset int) ([]models.MagicItemSummary, error) {
	records, err := s.repo.ListSummaries(limit, offset)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.MagicItemSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].Summary())
	}
	return summaries, nil
}

// refreshCache re-fetches the listing head in the background. It runs
// detached from the request: a refresh that loses the race against a later
// Invalidate is discarded by the cache's generation token.
func (s *itemStoreService) refreshCache(token uint64) {
	ctx := context.Background()
	summaries, err := s.fetchSummaries(ctx, listCacheWindow, 0)
	if err != nil {
		s.logger.Warn("background list refresh failed", zap.Error(err))
		return
	}
	s.cache.Put(ctx, token, summaries)
}

func matchesQuery(summary models.MagicItemSummary, needle string) bool {
	haystacks := []string{
		summary.Item.Name,
		summary.Item.Type,
		string(summary.Item.Rarity),
		summary.Item.Theme,
		summary.Item.Description,
	}
	for _, hay := range haystacks {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}
