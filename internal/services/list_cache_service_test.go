package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"arcanum/internal/kvstore"
	"arcanum/internal/models"
)

func newTestListCache(kv kvstore.Store, now *time.Time) *listCacheService {
	return &listCacheService{
		kv:     kv,
		logger: zap.NewNop(),
		now:    func() time.Time { return *now },
	}
}

func makeSummaries(count, thumbBytes int) []models.MagicItemSummary {
	items := make([]models.MagicItemSummary, count)
	for i := range items {
		items[i] = models.MagicItemSummary{
			ID:   fmt.Sprintf("item-%03d", i),
			Item: models.ItemData{Name: fmt.Sprintf("Blade %d", i)},
		}
		if thumbBytes > 0 {
			items[i].Thumbnail = strings.Repeat("x", thumbBytes)
		}
	}
	return items
}

func TestListCache_PutThenGet(t *testing.T) {
	now := time.Now()
	cache := newTestListCache(kvstore.NewMemory(), &now)
	ctx := context.Background()

	_, token, ok := cache.Get(ctx)
	assert.False(t, ok)

	cache.Put(ctx, token, makeSummaries(3, 100))

	cached, _, ok := cache.Get(ctx)
	assert.True(t, ok)
	assert.Len(t, cached, 3)
	assert.Equal(t, "item-000", cached[0].ID)
	assert.Equal(t, strings.Repeat("x", 100), cached[0].Thumbnail)
}

func TestListCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	cache := newTestListCache(kvstore.NewMemory(), &now)
	ctx := context.Background()

	_, token, _ := cache.Get(ctx)
	cache.Put(ctx, token, makeSummaries(2, 0))

	now = now.Add(listCacheTTL - time.Second)
	_, _, ok := cache.Get(ctx)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, _, ok = cache.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_InvalidateBeatsInFlightRefresh(t *testing.T) {
	now := time.Now()
	cache := newTestListCache(kvstore.NewMemory(), &now)
	ctx := context.Background()

	_, staleToken, _ := cache.Get(ctx)
	cache.Invalidate(ctx)

	// A refresh that started before the invalidation must not resurrect data.
	cache.Put(ctx, staleToken, makeSummaries(3, 0))

	_, _, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_InvalidateClearsEntry(t *testing.T) {
	now := time.Now()
	cache := newTestListCache(kvstore.NewMemory(), &now)
	ctx := context.Background()

	_, token, _ := cache.Get(ctx)
	cache.Put(ctx, token, makeSummaries(2, 0))
	_, _, ok := cache.Get(ctx)
	assert.True(t, ok)

	cache.Invalidate(ctx)
	_, _, ok = cache.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_QuotaTriggersTruncatedRetry(t *testing.T) {
	now := time.Now()
	kv := kvstore.NewMemory()
	kv.Quota = 20_000
	cache := newTestListCache(kv, &now)
	ctx := context.Background()

	// 60 entries with 1KiB thumbnails overflow the quota; the retry keeps the
	// newest 50 and drops every thumbnail.
	_, token, _ := cache.Get(ctx)
	cache.Put(ctx, token, makeSummaries(60, 1024))

	cached, _, ok := cache.Get(ctx)
	assert.True(t, ok)
	assert.Len(t, cached, listCacheTruncateCount)
	for _, item := range cached {
		assert.Empty(t, item.Thumbnail)
	}
}

func TestListCache_OversizedEntryIsSkipped(t *testing.T) {
	now := time.Now()
	cache := newTestListCache(kvstore.NewMemory(), &now)
	ctx := context.Background()

	items := makeSummaries(1, 0)
	items[0].Item.Description = strings.Repeat("d", listCacheMaxBytes+1)

	_, token, _ := cache.Get(ctx)
	cache.Put(ctx, token, items)

	_, _, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestListCache_OversizedThumbnailsAreStripped(t *testing.T) {
	now := time.Now()
	cache := newTestListCache(kvstore.NewMemory(), &now)
	ctx := context.Background()

	items := makeSummaries(2, 100)
	items[1].Thumbnail = strings.Repeat("x", listCacheThumbMaxBytes+1)

	_, token, _ := cache.Get(ctx)
	cache.Put(ctx, token, items)

	cached, _, ok := cache.Get(ctx)
	assert.True(t, ok)
	assert.NotEmpty(t, cached[0].Thumbnail)
	assert.Empty(t, cached[1].Thumbnail)
}

func TestListCache_UnserializableEntryLeavesCacheEmpty(t *testing.T) {
	now := time.Now()
	kv := kvstore.NewMemory()
	cache := newTestListCache(kv, &now)
	ctx := context.Background()

	items := makeSummaries(1, 0)
	items[0].Item.PriceGold = math.NaN()

	_, token, _ := cache.Get(ctx)
	cache.Put(ctx, token, items)

	_, _, ok := cache.Get(ctx)
	assert.False(t, ok)
	_, found, _ := kv.Get(ctx, listCacheItemsKey)
	assert.False(t, found)
}

func TestListCache_CorruptedEntryIsAMiss(t *testing.T) {
	now := time.Now()
	kv := kvstore.NewMemory()
	cache := newTestListCache(kv, &now)
	ctx := context.Background()

	assert.NoError(t, kv.Set(ctx, listCacheItemsKey, "{garbage"))
	assert.NoError(t, kv.Set(ctx, listCacheStampKey, fmt.Sprint(now.UnixMilli())))

	_, _, ok := cache.Get(ctx)
	assert.False(t, ok)
}
