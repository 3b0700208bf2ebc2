package filter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	cacheport "go-agora/internal/infrastructure/cache/port"
	moderation "go-agora/internal/pkg/moderation/domain"
)

// RateLimiter is the pipeline's admission stage: a per-author sliding window
// over the cache port's atomic counters. When the counter store is
// unreachable it fails open, logging the degradation, so the transport never
// stalls on an infrastructure outage.
type RateLimiter struct {
	log    *zap.Logger
	cache  cacheport.Cache
	limit  int
	window time.Duration
	bucket string
}

// NewRateLimiter constructs a limiter allowing limit events per window for
// the named bucket. cache may be nil when no store is configured; the limiter
// then always admits.
func NewRateLimiter(log *zap.Logger, cache cacheport.Cache, bucket string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{log: log, cache: cache, limit: limit, window: window, bucket: bucket}
}

// Check admits or blocks the author. The sliding window is the standard
// two-bucket estimate: the previous window's count weighted by the remaining
// overlap plus the current window's count.
func (rl *RateLimiter) Check(ctx context.Context, authorID string) moderation.Result {
	if rl.cache == nil {
		return moderation.Allow("rate limit store not configured")
	}

	now := time.Now()
	windowMs := rl.window.Milliseconds()
	cur := now.UnixMilli() / windowMs
	curKey := rl.key(authorID, cur)
	prevKey := rl.key(authorID, cur-1)

	count, err := rl.cache.Incr(ctx, curKey, 2*rl.window)
	if err != nil {
		rl.log.Warn("rate limit store unreachable, failing open",
			zap.String("author_id", authorID), zap.Error(err))
		return moderation.Allow("rate limit degraded")
	}

	prev := int64(0)
	if v, err := rl.cache.Get(ctx, prevKey); err == nil {
		prev, _ = strconv.ParseInt(v, 10, 64)
	} else if !errors.Is(err, cacheport.ErrMiss) {
		rl.log.Warn("rate limit store unreachable, failing open",
			zap.String("author_id", authorID), zap.Error(err))
		return moderation.Allow("rate limit degraded")
	}

	elapsed := float64(now.UnixMilli()%windowMs) / float64(windowMs)
	estimate := float64(prev)*(1-elapsed) + float64(count)

	if estimate > float64(rl.limit) {
		return moderation.Result{
			Allowed:    false,
			Action:     moderation.ActionBlock,
			Severity:   moderation.SeverityMedium,
			Confidence: 0,
			Reason:     moderation.ReasonRateLimited,
		}
	}
	return moderation.Allow("within rate limit")
}

func (rl *RateLimiter) key(authorID string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", rl.bucket, authorID, window)
}
