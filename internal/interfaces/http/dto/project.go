package dto

import (
	"time"

	"podbook/internal/application/project"
	"podbook/internal/application/wizard"
	"podbook/internal/domain/entity"
)

// SaveProjectResponse 草稿保存响应，向导从 data.id 读取项目 ID
type SaveProjectResponse struct {
	ID        string               `json:"id"`
	Step      int                  `json:"step"`
	Status    entity.ProjectStatus `json:"status"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ToSaveProjectResponse 实体转换为保存响应
func ToSaveProjectResponse(p *entity.BookProject) *SaveProjectResponse {
	return &SaveProjectResponse{
		ID:        p.ID,
		Step:      p.Step,
		Status:    p.Status,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID        string               `json:"id"`
	Type      entity.BookType      `json:"type"`
	TypeLabel string               `json:"type_label,omitempty"`
	Details   entity.BookDetails   `json:"details"`
	Specs     entity.BookSpecs     `json:"specs"`
	Content   entity.ContentDraft  `json:"content"`
	Step      int                  `json:"step"`
	Status    entity.ProjectStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ToProjectResponse 实体转换为响应
func ToProjectResponse(p *entity.BookProject) *ProjectResponse {
	if p == nil {
		return nil
	}
	return &ProjectResponse{
		ID:        p.ID,
		Type:      p.Type,
		TypeLabel: wizard.BookTypeLabel(p.Type),
		Details:   p.Details,
		Specs:     p.Specs,
		Content:   p.Content,
		Step:      p.Step,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProjectDetailResponse 项目详情，包含已登记内容
type ProjectDetailResponse struct {
	*ProjectResponse
	Episodes []*entity.ProjectEpisode `json:"episodes"`
	Files    []*entity.ProjectFile    `json:"files"`
}

// ToProjectDetailResponse 详情转换为响应
func ToProjectDetailResponse(d *project.Detail) *ProjectDetailResponse {
	out := &ProjectDetailResponse{
		ProjectResponse: ToProjectResponse(d.Project),
		Episodes:        d.Episodes,
		Files:           d.Files,
	}
	if out.Episodes == nil {
		out.Episodes = []*entity.ProjectEpisode{}
	}
	if out.Files == nil {
		out.Files = []*entity.ProjectFile{}
	}
	return out
}
