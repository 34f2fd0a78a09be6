package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// RedisClient is the subset of *redis.Client used by CachedLookup.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedLookup fronts an AdviceLookup with Redis. Only hits are cached, so
// seeding a missing pair takes effect immediately. Redis failures are
// logged and fall through to the wrapped lookup.
type CachedLookup struct {
	next AdviceLookup
	rdb  RedisClient
	ttl  time.Duration
}

// NewCachedLookup wraps next. A zero ttl caches without expiry.
func NewCachedLookup(next AdviceLookup, rdb RedisClient, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, rdb: rdb, ttl: ttl}
}

// CacheKey is the Redis key for a lookup pair.
func CacheKey(questionID string, category model.AdviceCategory) string {
	return "advice:" + questionID + ":" + string(category)
}

func (c *CachedLookup) Lookup(ctx context.Context, questionID string, category model.AdviceCategory) (string, bool, error) {
	if !validKey(questionID, category) {
		return "", false, nil
	}

	key := CacheKey(questionID, category)
	text, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return text, true, nil
	case !errors.Is(err, redis.Nil):
		zap.L().Warn("advice cache get failed", zap.String("key", key), zap.Error(err))
	}

	text, found, err := c.next.Lookup(ctx, questionID, category)
	if err != nil || !found {
		return text, found, err
	}

	if err := c.rdb.Set(ctx, key, text, c.ttl).Err(); err != nil {
		zap.L().Warn("advice cache set failed", zap.String("key", key), zap.Error(err))
	}
	return text, true, nil
}
