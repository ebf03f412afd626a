package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"podbook/internal/domain/entity"
	"podbook/internal/domain/repository"
)

// BookProjectRepository 书籍项目仓储实现
type BookProjectRepository struct {
	client *Client
}

// NewBookProjectRepository 创建书籍项目仓储
func NewBookProjectRepository(client *Client) *BookProjectRepository {
	return &BookProjectRepository{client: client}
}

// Create 创建项目
func (r *BookProjectRepository) Create(ctx context.Context, project *entity.BookProject) error {
	ctx, span := tracer.Start(ctx, "postgres.BookProjectRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(project).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *BookProjectRepository) GetByID(ctx context.Context, id string) (*entity.BookProject, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookProjectRepository.GetByID")
	defer span.End()

	if !isUUID(id) {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var project entity.BookProject
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// Update 覆盖保存项目草稿
func (r *BookProjectRepository) Update(ctx context.Context, project *entity.BookProject) error {
	ctx, span := tracer.Start(ctx, "postgres.BookProjectRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Model(project).
		Select("type", "details", "specs", "content", "step", "status", "updated_at").
		Updates(project).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// List 获取项目列表
func (r *BookProjectRepository) List(ctx context.Context, filter *repository.BookProjectFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.BookProject], error) {
	ctx, span := tracer.Start(ctx, "postgres.BookProjectRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.BookProject{})

	if filter != nil {
		if filter.OwnerID != "" {
			query = query.Where("owner_id = ?", filter.OwnerID)
		}
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []*entity.BookProject
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&projects).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}

// UpdateStatus 更新项目状态
func (r *BookProjectRepository) UpdateStatus(ctx context.Context, id string, status entity.ProjectStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.BookProjectRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.BookProject{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return nil
}
