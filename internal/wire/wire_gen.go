//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"

	"podbook/internal/config"
	"podbook/internal/infrastructure/persistence/postgres"
	"podbook/internal/infrastructure/persistence/redis"
	"podbook/internal/interfaces/http/handler"
	"podbook/internal/interfaces/http/router"
)

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	txManager := postgres.NewTxManager(client)
	userRepository := postgres.NewUserRepository(client)
	bookProjectRepository := postgres.NewBookProjectRepository(client)
	contentRepository := postgres.NewContentRepository(client)
	redisClient, cleanup2, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cache := redis.NewCache(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)
	producer := ProvideMessagingProducer(redisClient, cfg)
	dataLayer := &DataLayer{
		PgClient:    client,
		TxManager:   txManager,
		UserRepo:    userRepository,
		ProjectRepo: bookProjectRepository,
		ContentRepo: contentRepository,
		RedisClient: redisClient,
		Cache:       cache,
		RateLimiter: rateLimiter,
		Producer:    producer,
	}
	return dataLayer, func() {
		cleanup2()
		cleanup()
	}, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	postgresOnlyDataLayer := &PostgresOnlyDataLayer{
		PgClient:    client,
		TxManager:   postgres.NewTxManager(client),
		UserRepo:    postgres.NewUserRepository(client),
		ProjectRepo: postgres.NewBookProjectRepository(client),
		ContentRepo: postgres.NewContentRepository(client),
	}
	return postgresOnlyDataLayer, func() {
		cleanup()
	}, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient, cleanup2, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	txManager := postgres.NewTxManager(client)
	userRepository := postgres.NewUserRepository(client)
	bookProjectRepository := postgres.NewBookProjectRepository(client)
	contentRepository := postgres.NewContentRepository(client)
	cache := redis.NewCache(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)
	producer := ProvideMessagingProducer(redisClient, cfg)
	fetcher := ProvideRSSFetcher(cfg)
	rssService := ProvideRSSService(fetcher, cache, cfg)
	jwtConfig := ProvideJWTConfig(cfg)
	service := ProvideProjectService(bookProjectRepository, contentRepository, txManager, producer)
	healthHandler := ProvideHealthHandler(cfg, client, redisClient)
	authHandler := handler.NewAuthHandler(jwtConfig, userRepository)
	projectHandler := handler.NewProjectHandler(service)
	rssHandler := handler.NewRSSHandler(rssService)
	handlers := &router.Handlers{
		Health:  healthHandler,
		Auth:    authHandler,
		Project: projectHandler,
		RSS:     rssHandler,
	}
	routerRouter := ProvideRouter(cfg, handlers, rateLimiter)
	return routerRouter, func() {
		cleanup2()
		cleanup()
	}, nil
}
