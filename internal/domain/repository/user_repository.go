package repository

import (
	"context"
	"errors"
	"time"

	"podbook/internal/domain/entity"
)

// ErrEmailTaken 邮箱已被注册
var ErrEmailTaken = errors.New("repository: email already registered")

// UserRepository 账号存储
//
// 查询未命中时返回 (nil, nil)。
type UserRepository interface {
	// Create 插入账号，邮箱冲突时返回 ErrEmailTaken
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
