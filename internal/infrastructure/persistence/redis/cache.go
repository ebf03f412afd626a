package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"podbook/pkg/logger"
	"podbook/pkg/metrics"
)

const feedKeyPrefix = "rss:episodes:"

// Cache JSON 读穿缓存
type Cache struct {
	client *Client
	group  singleflight.Group
}

// NewCache 创建缓存
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// GetOrLoad 命中时返回缓存的 JSON；未命中时调用 loader 并写回
//
// 同一个键的并发未命中合并为一次加载；读写缓存失败都不影响返回加载结果。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "cache.GetOrLoad",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_ms", ttl.Milliseconds()),
		))
	defer span.End()

	raw, err := c.client.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return raw, nil
	case !IsNil(err):
		// redis 不可用时直接走 loader，与限流中间件一样放行
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		logger.Warn(ctx, "cache read failed, loading directly", "key", key, "error", err.Error())
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err, shared := c.group.Do(key, func() (any, error) {
		data, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("cache: encode %s: %w", key, err)
		}
		if err := c.client.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
			span.RecordError(err)
		}
		return raw, nil
	})
	if shared {
		metrics.CacheLookupsTotal.WithLabelValues("shared").Inc()
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return v.([]byte), nil
}

// FeedKey 订阅源单集缓存键
func FeedKey(feedURL string) string {
	return feedKeyPrefix + feedURL
}
