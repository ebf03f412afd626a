// Package rss 拉取并解析播客订阅源
package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"podbook/internal/config"
	"podbook/internal/domain/entity"
)

var tracer = otel.Tracer("rss")

const (
	defaultFetchTimeout = 15 * time.Second
	defaultMaxBodyBytes = 10 << 20
	defaultUserAgent    = "podbook-rss/1.0"
)

// ErrInvalidFeedURL 订阅源地址无效
var ErrInvalidFeedURL = errors.New("rss: invalid feed url")

// StatusError 订阅源返回非 2xx
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rss: fetch %s: HTTP %d", e.URL, e.StatusCode)
}

// Fetcher 订阅源拉取器
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxBody     int64
	maxEpisodes int
}

// NewFetcher 创建拉取器
func NewFetcher(cfg *config.RSSConfig) *Fetcher {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, burst),
		userAgent:   ua,
		maxBody:     maxBody,
		maxEpisodes: cfg.MaxEpisodes,
	}
}

// ValidateFeedURL 校验订阅源地址
func ValidateFeedURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidFeedURL
	}
	return u.String(), nil
}

// Fetch 拉取并解析订阅源
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]entity.RSSEpisode, error) {
	ctx, span := tracer.Start(ctx, "rss.Fetch",
		trace.WithAttributes(attribute.String("rss.url", feedURL)))
	defer span.End()

	feedURL, err := ValidateFeedURL(feedURL)
	if err != nil {
		return nil, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rss: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rss: build request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rss: fetch %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{URL: feedURL, StatusCode: resp.StatusCode}
	}

	episodes, err := Parse(io.LimitReader(resp.Body, f.maxBody), f.maxEpisodes)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rss.episode_count", len(episodes)))
	return episodes, nil
}
