package postgres

import (
	"context"
	"fmt"

	"podbook/internal/domain/entity"
)

// ContentRepository 项目内容登记仓储实现
type ContentRepository struct {
	client *Client
}

// NewContentRepository 创建内容登记仓储
func NewContentRepository(client *Client) *ContentRepository {
	return &ContentRepository{client: client}
}

// AddEpisodes 批量登记 RSS 单集
func (r *ContentRepository) AddEpisodes(ctx context.Context, episodes []*entity.ProjectEpisode) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.AddEpisodes")
	defer span.End()

	if len(episodes) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.CreateInBatches(episodes, 100).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add episodes: %w", err)
	}
	return nil
}

// AddFiles 批量登记上传文件
func (r *ContentRepository) AddFiles(ctx context.Context, files []*entity.ProjectFile) error {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.AddFiles")
	defer span.End()

	if len(files) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.CreateInBatches(files, 100).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// ListEpisodes 获取项目已登记的单集
func (r *ContentRepository) ListEpisodes(ctx context.Context, projectID string) ([]*entity.ProjectEpisode, error) {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.ListEpisodes")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var episodes []*entity.ProjectEpisode
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&episodes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return episodes, nil
}

// ListFiles 获取项目已登记的文件
func (r *ContentRepository) ListFiles(ctx context.Context, projectID string) ([]*entity.ProjectFile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ContentRepository.ListFiles")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var files []*entity.ProjectFile
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&files).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}
