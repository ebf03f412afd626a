// Package main 初始化数据库：迁移表结构并创建首个管理员账号
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"podbook/internal/config"
	"podbook/internal/domain/entity"
	"podbook/internal/domain/repository"
	"podbook/internal/wire"
	"podbook/pkg/logger"
)

const (
	defaultAdminEmail    = "admin@podbook.local"
	defaultAdminPassword = "admin12345"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx := context.Background()
	if err := run(ctx, cfg); err != nil {
		logger.Fatal(ctx, "bootstrap failed", err)
	}
	logger.Info(ctx, "bootstrap completed")
}

func run(ctx context.Context, cfg *config.Config) error {
	data, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer cleanup()

	logger.Info(ctx, "migrating schema", "database", cfg.Database.Postgres.Database)
	if err := data.PgClient.AutoMigrate(ctx); err != nil {
		return err
	}

	email := envOr("BOOTSTRAP_ADMIN_EMAIL", defaultAdminEmail)
	password := envOr("BOOTSTRAP_ADMIN_PASSWORD", defaultAdminPassword)
	if password == defaultAdminPassword {
		logger.Warn(ctx, "using default admin password, set BOOTSTRAP_ADMIN_PASSWORD")
	}

	admin := entity.NewUser(email, "Podbook Admin")
	admin.Role = entity.UserRoleAdmin
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	switch err := data.UserRepo.Create(ctx, admin); {
	case errors.Is(err, repository.ErrEmailTaken):
		logger.Info(ctx, "admin account already exists", "email", admin.Email)
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	default:
		logger.Info(ctx, "admin account created", "email", admin.Email, "user_id", admin.ID)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
