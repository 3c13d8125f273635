package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
)

// Limiter answers whether a caller identified by key may proceed under the
// configured per-minute budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New picks the redis-backed limiter when a client is available, otherwise
// a pass-through.
func New(cfg config.Config, client *redis.Client, log *zap.Logger) Limiter {
	if client == nil {
		return noopLimiter{}
	}
	return &redisLimiter{
		client:    client,
		log:       log.Named("ratelimit"),
		perMinute: cfg.RateLimit.PerMinute,
	}
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// redisLimiter counts hits in fixed one-minute windows. INCR plus a first-hit
// EXPIRE keeps the counter self-cleaning.
type redisLimiter struct {
	client    *redis.Client
	log       *zap.Logger
	perMinute int
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.perMinute <= 0 {
		return true, nil
	}

	window := time.Now().UTC().Unix() / 60
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, window)

	count, err := l.client.Incr(ctx, bucket).Result()
	if err != nil {
		// Redis trouble should not take the API down.
		l.log.Warn("rate limit counter unavailable", zap.Error(err))
		return true, nil
	}
	if count == 1 {
		if err := l.client.Expire(ctx, bucket, 2*time.Minute).Err(); err != nil {
			l.log.Warn("failed to expire rate limit bucket", zap.Error(err))
		}
	}
	return count <= int64(l.perMinute), nil
}
