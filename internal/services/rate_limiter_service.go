package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"

	"arcanum/internal/kvstore"
)

const (
	rateLimitWindow    = 60 * time.Second
	rateLimitMax       = 5
	rateLimitKeyPrefix = "arcanum:ratelimit:"
)

// RateLimitDecision is the outcome of one limiter check.
type RateLimitDecision struct {
	Allowed           bool `json:"allowed"`
	RetryAfterSeconds int  `json:"retryAfterSeconds,omitempty"`
}

// RateLimiterService bounds how often generation may be invoked per client
// using a persistent sliding 60-second window. The limiter is advisory: any
// failure of the backing store fails open, never blocking the user.
type RateLimiterService interface {
	Check(ctx context.Context, clientID string) RateLimitDecision
}

type rateLimiterService struct {
	kv     kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimiterService(kv kvstore.Store, logger *zap.Logger) RateLimiterService {
	return &rateLimiterService{kv: kv, logger: logger, now: time.Now}
}

func (s *rateLimiterService) Check(ctx context.Context, clientID string) RateLimitDecision {
	key := rateLimitKeyPrefix + clientID
	nowMs := s.now().UnixMilli()

	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("rate limit state unreadable, failing open", zap.Error(err))
		return RateLimitDecision{Allowed: true}
	}

	var stamps []int64
	if found {
		if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
			// Corrupted persisted state must never block the user. Reset it
			// so the next check starts from a clean window.
			s.logger.Warn("rate limit state corrupted, failing open", zap.Error(err))
			s.persist(ctx, key, []int64{nowMs})
			return RateLimitDecision{Allowed: true}
		}
	}

	windowMs := rateLimitWindow.Milliseconds()
	recent := stamps[:0]
	for _, ts := range stamps {
		if nowMs-ts < windowMs {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= rateLimitMax {
		oldest := recent[0]
		retry := int(math.Ceil(float64(windowMs-(nowMs-oldest)) / 1000.0))
		if retry < 1 {
			retry = 1
		}
		if retry > 60 {
			retry = 60
		}
		return RateLimitDecision{Allowed: false, RetryAfterSeconds: retry}
	}

	recent = append(recent, nowMs)
	s.persist(ctx, key, recent)
	return RateLimitDecision{Allowed: true}
}

// persist writes the filtered window back. Failures are logged only; the
// decision already made stands.
func (s *rateLimiterService) persist(ctx context.Context, key string, stamps []int64) {
	payload, err := json.Marshal(stamps)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, key, string(payload)); err != nil {
		s.logger.Warn("failed to persist rate limit window", zap.Error(err))
	}
}
