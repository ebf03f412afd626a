//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"podbook/internal/config"
	"podbook/internal/domain/repository"
	"podbook/internal/infrastructure/persistence/postgres"
	"podbook/internal/infrastructure/persistence/redis"
	"podbook/internal/infrastructure/rss"
	"podbook/internal/interfaces/http/handler"
	"podbook/internal/interfaces/http/middleware"
	"podbook/internal/interfaces/http/router"
)

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		FeedSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewBookProjectRepository,
	postgres.NewContentRepository,
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
	wire.Bind(new(rss.Cache), new(*redis.Cache)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// FeedSet 订阅源解析提供者集合
var FeedSet = wire.NewSet(
	ProvideRSSFetcher,
	ProvideRSSService,
	wire.Bind(new(handler.EpisodeLookup), new(*rss.Service)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideJWTConfig,
	ProvideProjectService,
	ProvideHealthHandler,
	handler.NewAuthHandler,
	handler.NewProjectHandler,
	handler.NewRSSHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.BookProjectRepository), new(*postgres.BookProjectRepository)),
	wire.Bind(new(repository.ContentRepository), new(*postgres.ContentRepository)),
)
