package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// RateLimiter 基于有序集合的滑动窗口限流
type RateLimiter struct {
	client *Client
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow 记录一次请求并判断窗口内是否超限
//
// 先写入再计数，超限的请求随即从窗口中撤回，不占用配额。
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.Allow")
	defer span.End()
	span.SetAttributes(
		attribute.String("ratelimit.key", key),
		attribute.Int("ratelimit.limit", limit),
	)

	now := time.Now()
	member := uuid.NewString()
	floor := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

	var card *redis.IntCmd
	_, err := l.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+floor)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
		card = pipe.ZCard(ctx, key)
		pipe.PExpire(ctx, key, window)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	allowed := card.Val() <= int64(limit)
	span.SetAttributes(
		attribute.Int64("ratelimit.count", card.Val()),
		attribute.Bool("ratelimit.allowed", allowed),
	)
	if !allowed {
		if err := l.client.rdb.ZRem(ctx, key, member).Err(); err != nil {
			span.RecordError(err)
		}
	}
	return allowed, nil
}
