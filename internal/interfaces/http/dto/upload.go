package dto

import (
	"podbook/internal/application/wizard"
	"podbook/internal/domain/entity"
)

// RegisterEpisodesRequest 单集登记请求
type RegisterEpisodesRequest struct {
	ProjectID string              `json:"projectId" binding:"required"`
	Episodes  []entity.RSSEpisode `json:"episodes" binding:"required,min=1"`
}

// RegisterFilesRequest 文件登记请求
type RegisterFilesRequest struct {
	ProjectID string                    `json:"projectId" binding:"required"`
	Files     []wizard.FileRegistration `json:"files" binding:"required,min=1"`
}

// RegisterResponse 登记结果
type RegisterResponse struct {
	ProjectID  string `json:"projectId"`
	Registered int    `json:"registered"`
}

// EpisodesResponse 订阅源解析结果
type EpisodesResponse struct {
	Episodes []entity.RSSEpisode `json:"episodes"`
}
