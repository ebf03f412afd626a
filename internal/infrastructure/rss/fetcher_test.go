package rss

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbook/internal/config"
	"podbook/internal/domain/entity"
)

func newFeedServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "podbook-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRSSConfig() *config.RSSConfig {
	return &config.RSSConfig{
		FetchTimeout: time.Second,
		MaxEpisodes:  10,
		UserAgent:    "podbook-test",
	}
}

func TestFetch(t *testing.T) {
	srv := newFeedServer(t, http.StatusOK, sampleFeed, nil)

	episodes, err := NewFetcher(testRSSConfig()).Fetch(context.Background(), srv.URL+"/feed.xml")
	require.NoError(t, err)
	assert.Len(t, episodes, 3)
}

func TestFetchStatusError(t *testing.T) {
	srv := newFeedServer(t, http.StatusNotFound, "gone", nil)

	_, err := NewFetcher(testRSSConfig()).Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchInvalidURL(t *testing.T) {
	_, err := NewFetcher(testRSSConfig()).Fetch(context.Background(), "ftp://example.com/feed")
	assert.ErrorIs(t, err, ErrInvalidFeedURL)
}

type mapCache struct {
	data  map[string][]byte
	loads int
}

func (c *mapCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	c.loads++
	v, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	c.data[key] = raw
	return raw, nil
}

func TestServiceCachesEpisodes(t *testing.T) {
	var hits atomic.Int32
	srv := newFeedServer(t, http.StatusOK, sampleFeed, &hits)
	cache := &mapCache{data: map[string][]byte{}}
	svc := NewService(NewFetcher(testRSSConfig()), cache, time.Minute)

	var first, second []entity.RSSEpisode
	var err error
	first, err = svc.Episodes(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err = svc.FetchEpisodes(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.loads)
}

func TestServiceWithoutCache(t *testing.T) {
	var hits atomic.Int32
	srv := newFeedServer(t, http.StatusOK, sampleFeed, &hits)
	svc := NewService(NewFetcher(testRSSConfig()), nil, 0)

	for range 2 {
		_, err := svc.Episodes(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}
