package repository

import (
	"context"

	"podbook/internal/domain/entity"
)

// ContentRepository 项目内容登记仓储接口
type ContentRepository interface {
	// AddEpisodes 批量登记 RSS 单集
	AddEpisodes(ctx context.Context, episodes []*entity.ProjectEpisode) error

	// AddFiles 批量登记上传文件
	AddFiles(ctx context.Context, files []*entity.ProjectFile) error

	// ListEpisodes 获取项目已登记的单集
	ListEpisodes(ctx context.Context, projectID string) ([]*entity.ProjectEpisode, error)

	// ListFiles 获取项目已登记的文件
	ListFiles(ctx context.Context, projectID string) ([]*entity.ProjectFile, error)
}
