package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"podbook/internal/domain/entity"
	"podbook/internal/domain/repository"
)

// UserRepository 账号表
type UserRepository struct {
	client *Client
}

// NewUserRepository 创建仓储
func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

// Create 以 ON CONFLICT DO NOTHING 插入，影响行数为 0 即邮箱已存在
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ctx, span := tracer.Start(ctx, "postgres.users.create")
	defer span.End()

	user.Email = entity.NormalizeEmail(user.Email)
	res := getDB(ctx, r.client.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user)
	if res.Error != nil {
		span.RecordError(res.Error)
		return fmt.Errorf("insert user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrEmailTaken
	}
	return nil
}

// FindByID 按主键查询
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.findOne(ctx, "postgres.users.find_by_id", "id = ?", id)
}

// FindByEmail 按规范化邮箱查询
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "postgres.users.find_by_email", "email = ?", entity.NormalizeEmail(email))
}

func (r *UserRepository) findOne(ctx context.Context, op, cond string, arg string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var user entity.User
	err := getDB(ctx, r.client.db).Where(cond, arg).Take(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		span.SetAttributes(attribute.Bool("db.found", false))
		return nil, nil
	case err != nil:
		span.RecordError(err)
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// RecordLogin 记录登录时间
func (r *UserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	ctx, span := tracer.Start(ctx, "postgres.users.record_login")
	defer span.End()

	err := getDB(ctx, r.client.db).
		Model(&entity.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
