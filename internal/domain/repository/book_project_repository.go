package repository

import (
	"context"

	"podbook/internal/domain/entity"
)

// BookProjectFilter 项目过滤条件
type BookProjectFilter struct {
	OwnerID string
	Type    entity.BookType
	Status  entity.ProjectStatus
}

// BookProjectRepository 书籍项目仓储接口
type BookProjectRepository interface {
	// Create 创建项目，ID 为空时由数据库生成
	Create(ctx context.Context, project *entity.BookProject) error

	// GetByID 根据 ID 获取项目，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.BookProject, error)

	// Update 覆盖保存项目草稿
	Update(ctx context.Context, project *entity.BookProject) error

	// List 获取项目列表
	List(ctx context.Context, filter *BookProjectFilter, pagination Pagination) (*PagedResult[*entity.BookProject], error)

	// UpdateStatus 更新项目状态
	UpdateStatus(ctx context.Context, id string, status entity.ProjectStatus) error
}
