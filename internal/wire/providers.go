// Package wire 提供依赖注入配置
package wire

import (
	"podbook/internal/application/project"
	"podbook/internal/config"
	"podbook/internal/infrastructure/messaging"
	"podbook/internal/infrastructure/persistence/postgres"
	"podbook/internal/infrastructure/persistence/redis"
	"podbook/internal/infrastructure/rss"
	"podbook/internal/interfaces/http/handler"
	"podbook/internal/interfaces/http/router"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	// PostgreSQL
	PgClient    *postgres.Client
	TxManager   *postgres.TxManager
	UserRepo    *postgres.UserRepository
	ProjectRepo *postgres.BookProjectRepository
	ContentRepo *postgres.ContentRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Messaging
	Producer *messaging.Producer
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient    *postgres.Client
	TxManager   *postgres.TxManager
	UserRepo    *postgres.UserRepository
	ProjectRepo *postgres.BookProjectRepository
	ContentRepo *postgres.ContentRepository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideRSSFetcher 提供订阅源抓取器
func ProvideRSSFetcher(cfg *config.Config) *rss.Fetcher {
	return rss.NewFetcher(&cfg.RSS)
}

// ProvideRSSService 提供带缓存的订阅源解析服务
func ProvideRSSService(fetcher *rss.Fetcher, cache rss.Cache, cfg *config.Config) *rss.Service {
	return rss.NewService(fetcher, cache, cfg.RSS.CacheTTL)
}

// ProvideJWTConfig 提供 JWT 配置
func ProvideJWTConfig(cfg *config.Config) *config.JWTConfig {
	return &cfg.Security.JWT
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rdb *redis.Client) *handler.HealthHandler {
	checks := make(map[string]handler.HealthChecker, 2)
	if pg != nil {
		checks["postgres"] = pg
	}
	if rdb != nil {
		checks["redis"] = rdb
	}
	return handler.NewHealthHandler(cfg.App.Version, checks)
}

// ProvideProjectService 提供项目服务
func ProvideProjectService(
	projects *postgres.BookProjectRepository,
	contents *postgres.ContentRepository,
	tx *postgres.TxManager,
	producer *messaging.Producer,
) *project.Service {
	return project.NewService(projects, contents, tx, producer)
}

// ProvideRouter 提供路由器
func ProvideRouter(cfg *config.Config, h *router.Handlers, limiter *redis.RateLimiter) *router.Router {
	return router.New(cfg, h, limiter)
}
