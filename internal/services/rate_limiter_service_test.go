package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"arcanum/internal/kvstore"
	"arcanum/internal/tests/mocks"
)

func newTestRateLimiter(kv kvstore.Store, now *time.Time) *rateLimiterService {
	return &rateLimiterService{
		kv:     kv,
		logger: zap.NewNop(),
		now:    func() time.Time { return *now },
	}
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	now := time.Now()
	limiter := newTestRateLimiter(kvstore.NewMemory(), &now)
	ctx := context.Background()

	for i := 0; i < rateLimitMax; i++ {
		decision := limiter.Check(ctx, "client-a")
		assert.True(t, decision.Allowed, "attempt %d should be allowed", i+1)
	}

	decision := limiter.Check(ctx, "client-a")
	assert.False(t, decision.Allowed)
	assert.GreaterOrEqual(t, decision.RetryAfterSeconds, 1)
	assert.LessOrEqual(t, decision.RetryAfterSeconds, 60)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	now := time.Now()
	limiter := newTestRateLimiter(kvstore.NewMemory(), &now)
	ctx := context.Background()

	for i := 0; i < rateLimitMax; i++ {
		assert.True(t, limiter.Check(ctx, "client-a").Allowed)
	}
	assert.False(t, limiter.Check(ctx, "client-a").Allowed)

	now = now.Add(rateLimitWindow + time.Second)
	assert.True(t, limiter.Check(ctx, "client-a").Allowed)
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	now := time.Now()
	limiter := newTestRateLimiter(kvstore.NewMemory(), &now)
	ctx := context.Background()

	for i := 0; i < rateLimitMax; i++ {
		assert.True(t, limiter.Check(ctx, "client-a").Allowed)
	}
	assert.False(t, limiter.Check(ctx, "client-a").Allowed)
	assert.True(t, limiter.Check(ctx, "client-b").Allowed)
}

func TestRateLimiter_CorruptedStateFailsOpenAndResets(t *testing.T) {
	now := time.Now()
	kv := kvstore.NewMemory()
	limiter := newTestRateLimiter(kv, &now)
	ctx := context.Background()

	key := rateLimitKeyPrefix + "client-a"
	assert.NoError(t, kv.Set(ctx, key, "{not json"))

	decision := limiter.Check(ctx, "client-a")
	assert.True(t, decision.Allowed)

	raw, found, err := kv.Get(ctx, key)
	assert.NoError(t, err)
	assert.True(t, found)
	var stamps []int64
	assert.NoError(t, json.Unmarshal([]byte(raw), &stamps))
	assert.Len(t, stamps, 1)
}

func TestRateLimiter_StoreErrorFailsOpen(t *testing.T) {
	now := time.Now()
	kv := &mocks.KVStoreMock{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			return "", false, errors.New("backend down")
		},
	}
	limiter := newTestRateLimiter(kv, &now)

	decision := limiter.Check(context.Background(), "client-a")
	assert.True(t, decision.Allowed)
}

func TestRateLimiter_PersistsOnlyRecentStamps(t *testing.T) {
	now := time.Now()
	kv := kvstore.NewMemory()
	limiter := newTestRateLimiter(kv, &now)
	ctx := context.Background()

	key := rateLimitKeyPrefix + "client-a"
	old := now.Add(-2 * rateLimitWindow).UnixMilli()
	recent := now.Add(-time.Second).UnixMilli()
	seed, _ := json.Marshal([]int64{old, old, recent})
	assert.NoError(t, kv.Set(ctx, key, string(seed)))

	assert.True(t, limiter.Check(ctx, "client-a").Allowed)

	raw, _, _ := kv.Get(ctx, key)
	var stamps []int64
	assert.NoError(t, json.Unmarshal([]byte(raw), &stamps))
	assert.Equal(t, []int64{recent, now.UnixMilli()}, stamps)
}
