package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"arcanum/internal/kvstore"
	"arcanum/internal/models"
)

const (
	listCacheTTL           = 5 * time.Minute
	listCacheMaxBytes      = 4 << 20
	listCacheTruncateCount = 50
	listCacheThumbMaxBytes = 64 << 10
	listCacheItemsKey      = "arcanum:itemcache:items"
	listCacheStampKey      = "arcanum:itemcache:stamp"
)

// ListCacheService is a time-bounded cache of the most recent item listing.
// Reads are local; callers refresh it in the background while serving cached
// data. A monotonic generation token guards write-backs: an Invalidate always
// beats a refresh that started before it, so stale data is never resurrected.
type ListCacheService interface {
	// Get returns the cached summaries, the current generation token and
	// whether a fresh entry existed. The token must be passed back to Put.
	Get(ctx context.Context) ([]models.MagicItemSummary, uint64, bool)
	// Put replaces the cache entry unless the token is stale.
	Put(ctx context.Context, token uint64, items []models.MagicItemSummary)
	// Invalidate drops the entry and bumps the generation token. Never fails.
	Invalidate(ctx context.Context)
}

type listCacheService struct {
	kv     kvstore.Store
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	generation uint64
}

func NewListCacheService(kv kvstore.Store, logger *zap.Logger) ListCacheService {
	return &listCacheService{kv: kv, logger: logger, now: time.Now}
}

func (s *listCacheService) Get(ctx context.Context) ([]models.MagicItemSummary, uint64, bool) {
	s.mu.Lock()
	token := s.generation
	s.mu.Unlock()

	rawStamp, found, err := s.kv.Get(ctx, listCacheStampKey)
	if err != nil || !found {
		return nil, token, false
	}
	stampMs, err := strconv.ParseInt(rawStamp, 10, 64)
	if err != nil {
		return nil, token, false
	}
	if s.now().UnixMilli()-stampMs > listCacheTTL.Milliseconds() {
		return nil, token, false
	}

	rawItems, found, err := s.kv.Get(ctx, listCacheItemsKey)
	if err != nil || !found {
		return nil, token, false
	}
	var items []models.MagicItemSummary
	if err := json.Unmarshal([]byte(rawItems), &items); err != nil {
		// Corrupted entries behave as a miss.
		return nil, token, false
	}
	return items, token, true
}

func (s *listCacheService) Put(ctx context.Context, token uint64, items []models.MagicItemSummary) {
	s.mu.Lock()
	current := s.generation
	s.mu.Unlock()
	if token != current {
		s.logger.Debug("discarding stale cache write",
			zap.Uint64("token", token), zap.Uint64("generation", current))
		return
	}

	slim := slimSummaries(items, true)
	payload, err := json.Marshal(slim)
	if err != nil {
		s.logger.Warn("failed to serialize list cache entry", zap.Error(err))
		return
	}
	if len(payload) > listCacheMaxBytes {
		s.logger.Warn("list cache entry exceeds size bound, skipping write",
			zap.Int("bytes", len(payload)))
		return
	}

	if err := s.write(ctx, payload); err != nil {
		if !errors.Is(err, kvstore.ErrQuotaExceeded) {
			s.logger.Warn("failed to write list cache entry", zap.Error(err))
			return
		}
		// Over quota: clear and retry with a truncated, thumbnail-free list.
		s.logger.Warn("list cache write over quota, retrying truncated")
		s.clear(ctx)
		truncated := items
		if len(truncated) > listCacheTruncateCount {
			truncated = truncated[:listCacheTruncateCount]
		}
		payload, err = json.Marshal(slimSummaries(truncated, false))
		if err != nil {
			s.logger.Warn("failed to serialize truncated list cache entry, leaving cache empty", zap.Error(err))
			return
		}
		if err := s.write(ctx, payload); err != nil {
			s.logger.Warn("truncated list cache write failed, leaving cache empty", zap.Error(err))
			s.clear(ctx)
		}
	}
}

func (s *listCacheService) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
	s.clear(ctx)
}

func (s *listCacheService) write(ctx context.Context, payload []byte) error {
	if err := s.kv.Set(ctx, listCacheItemsKey, string(payload)); err != nil {
		return err
	}
	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	return s.kv.Set(ctx, listCacheStampKey, stamp)
}

func (s *listCacheService) clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, listCacheItemsKey); err != nil {
		s.logger.Warn("failed to clear cached items", zap.Error(err))
	}
	if err := s.kv.Delete(ctx, listCacheStampKey); err != nil {
		s.logger.Warn("failed to clear cache stamp", zap.Error(err))
	}
}

// slimSummaries copies the projection destined for the cache. Oversized
// thumbnails are dropped to respect the storage quota; when keepThumbs is
// false all thumbnails are stripped.
func slimSummaries(items []models.MagicItemSummary, keepThumbs bool) []models.MagicItemSummary {
	out := make([]models.MagicItemSummary, len(items))
	for i, item := range items {
		out[i] = item
		if !keepThumbs || len(item.Thumbnail) > listCacheThumbMaxBytes {
			out[i].Thumbnail = ""
		}
	}
	return out
}
