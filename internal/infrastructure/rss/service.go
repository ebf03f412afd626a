package rss

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"podbook/internal/domain/entity"
	"podbook/internal/infrastructure/persistence/redis"
	"podbook/pkg/logger"
	"podbook/pkg/metrics"
)

// Cache 读穿缓存
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error)
}

// Service 带缓存的单集查询服务
type Service struct {
	fetcher *Fetcher
	cache   Cache
	ttl     time.Duration
}

// NewService 创建服务；cache 为 nil 时每次直接拉取
func NewService(fetcher *Fetcher, cache Cache, ttl time.Duration) *Service {
	return &Service{fetcher: fetcher, cache: cache, ttl: ttl}
}

// Episodes 查询订阅源单集
func (s *Service) Episodes(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	feedURL, err := ValidateFeedURL(feedURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	episodes, err := s.load(ctx, feedURL)
	metrics.RSSFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RSSFetchTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "rss lookup failed", "url", feedURL, "error", err)
		return nil, err
	}

	metrics.RSSFetchTotal.WithLabelValues("success").Inc()
	return episodes, nil
}

func (s *Service) load(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.fetcher.Fetch(ctx, feedURL)
	}

	raw, err := s.cache.GetOrLoad(ctx, redis.FeedKey(feedURL), s.ttl, func(ctx context.Context) (any, error) {
		return s.fetcher.Fetch(ctx, feedURL)
	})
	if err != nil {
		return nil, err
	}

	var episodes []entity.RSSEpisode
	if err := json.Unmarshal(raw, &episodes); err != nil {
		return nil, fmt.Errorf("rss: decode cached episodes: %w", err)
	}
	return episodes, nil
}

// FetchEpisodes 实现向导的 EpisodeSource，供进程内直连使用
func (s *Service) FetchEpisodes(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	return s.Episodes(ctx, feedURL)
}
