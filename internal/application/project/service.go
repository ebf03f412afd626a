// Package project 实现项目持久化服务：草稿保存、内容登记与概览估价
package project

import (
	"context"
	"strings"

	"podbook/internal/application/wizard"
	"podbook/internal/domain/entity"
	"podbook/internal/domain/repository"
	"podbook/internal/infrastructure/messaging"
	apperrors "podbook/pkg/errors"
	"podbook/pkg/logger"
	"podbook/pkg/metrics"
)

// EventPublisher 内容登记事件发布
type EventPublisher interface {
	PublishContentRegistered(ctx context.Context, event *messaging.ContentRegisteredMessage) (string, error)
}

// SaveInput 草稿保存请求，与向导自动保存载荷一致
type SaveInput = wizard.SavePayload

// Detail 项目详情
type Detail struct {
	Project  *entity.BookProject
	Episodes []*entity.ProjectEpisode
	Files    []*entity.ProjectFile
}

// Service 项目服务
type Service struct {
	projects  repository.BookProjectRepository
	contents  repository.ContentRepository
	tx        repository.Transactor
	publisher EventPublisher
}

// NewService 创建项目服务；publisher 可为 nil
func NewService(projects repository.BookProjectRepository, contents repository.ContentRepository, tx repository.Transactor, publisher EventPublisher) *Service {
	return &Service{
		projects:  projects,
		contents:  contents,
		tx:        tx,
		publisher: publisher,
	}
}

// Save 新建或覆盖草稿；ID 为空时新建
func (s *Service) Save(ctx context.Context, ownerID string, in *SaveInput) (*entity.BookProject, error) {
	bookType, err := parseOptionalBookType(string(in.Type))
	if err != nil {
		return nil, err
	}

	var p *entity.BookProject
	op := "update"
	if strings.TrimSpace(in.ID) == "" {
		p = entity.NewBookProject(ownerID)
		op = "create"
	} else {
		p, err = s.ownedProject(ctx, ownerID, in.ID)
		if err != nil {
			return nil, err
		}
		if !p.IsEditable() {
			return nil, apperrors.ErrConflict.WithDetail("project is no longer editable")
		}
	}

	p.Type = bookType
	p.Details = in.Details
	p.Specs = normalizeSpecs(in.Specs)
	p.Content = normalizeContent(in.Content)
	p.Step = min(max(in.Step, 1), wizard.TotalSteps)

	if op == "create" {
		err = s.projects.Create(ctx, p)
	} else {
		err = s.projects.Update(ctx, p)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save project")
	}

	metrics.ProjectSaveTotal.WithLabelValues(op).Inc()
	logger.Debug(logger.WithContext(ctx, logger.ProjectIDKey, p.ID), "project saved", "op", op, "step", p.Step)
	return p, nil
}

// Get 获取项目及其已登记内容
func (s *Service) Get(ctx context.Context, ownerID, projectID string) (*Detail, error) {
	p, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}

	episodes, err := s.contents.ListEpisodes(ctx, p.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list episodes")
	}
	files, err := s.contents.ListFiles(ctx, p.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list files")
	}
	return &Detail{Project: p, Episodes: episodes, Files: files}, nil
}

// List 列出项目；ownerID 为空表示不限归属（管理员视图）
func (s *Service) List(ctx context.Context, ownerID string, filter repository.BookProjectFilter, page repository.Pagination) (*repository.PagedResult[*entity.BookProject], error) {
	filter.OwnerID = ownerID
	result, err := s.projects.List(ctx, &filter, page)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list projects")
	}
	return result, nil
}

// Estimate 基于已保存草稿与已登记文件计算概览估价
func (s *Service) Estimate(ctx context.Context, ownerID, projectID, policyName string) (wizard.Estimate, error) {
	policy, err := wizard.PolicyByName(policyName)
	if err != nil {
		return wizard.Estimate{}, apperrors.ErrInvalidParam.WithDetail(err.Error())
	}

	p, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return wizard.Estimate{}, err
	}
	files, err := s.contents.ListFiles(ctx, p.ID)
	if err != nil {
		return wizard.Estimate{}, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list files")
	}

	return wizard.ComputeEstimate(wizard.StateFromProject(p, files), policy), nil
}

// RegisterEpisodes 登记已选单集并将项目标记为已提交
func (s *Service) RegisterEpisodes(ctx context.Context, ownerID, projectID string, episodes []entity.RSSEpisode) (int, error) {
	if len(episodes) == 0 {
		return 0, apperrors.ErrInvalidParam.WithDetail("episodes must not be empty")
	}
	p, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return 0, err
	}

	rows := make([]*entity.ProjectEpisode, 0, len(episodes))
	ids := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		rows = append(rows, entity.NewProjectEpisode(p.ID, ep))
		ids = append(ids, ep.ID)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.contents.AddEpisodes(ctx, rows); err != nil {
			return err
		}
		return s.projects.UpdateStatus(ctx, p.ID, entity.ProjectStatusSubmitted)
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to register episodes")
	}

	metrics.ContentRegisteredTotal.WithLabelValues("episode").Add(float64(len(rows)))
	s.publish(ctx, &messaging.ContentRegisteredMessage{
		ProjectID: p.ID,
		OwnerID:   ownerID,
		Kind:      messaging.KindEpisodes,
		Count:     len(rows),
		ItemIDs:   ids,
	})
	return len(rows), nil
}

// RegisterFiles 登记已上传文件并将项目标记为已提交
func (s *Service) RegisterFiles(ctx context.Context, ownerID, projectID string, files []wizard.FileRegistration) (int, error) {
	if len(files) == 0 {
		return 0, apperrors.ErrInvalidParam.WithDetail("files must not be empty")
	}
	p, err := s.ownedProject(ctx, ownerID, projectID)
	if err != nil {
		return 0, err
	}

	rows := make([]*entity.ProjectFile, 0, len(files))
	ids := make([]string, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f.Filename) == "" {
			return 0, apperrors.ErrInvalidParam.WithDetail("filename is required")
		}
		rows = append(rows, &entity.ProjectFile{
			ProjectID:       p.ID,
			Filename:        f.Filename,
			URL:             f.URL,
			ContentType:     f.ContentType,
			DurationSeconds: max(f.Duration, 0),
		})
		ids = append(ids, f.URL)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.contents.AddFiles(ctx, rows); err != nil {
			return err
		}
		return s.projects.UpdateStatus(ctx, p.ID, entity.ProjectStatusSubmitted)
	})
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to register files")
	}

	metrics.ContentRegisteredTotal.WithLabelValues("file").Add(float64(len(rows)))
	s.publish(ctx, &messaging.ContentRegisteredMessage{
		ProjectID: p.ID,
		OwnerID:   ownerID,
		Kind:      messaging.KindFiles,
		Count:     len(rows),
		ItemIDs:   ids,
	})
	return len(rows), nil
}

// publish 事件发布失败只记录日志，不影响登记结果
func (s *Service) publish(ctx context.Context, event *messaging.ContentRegisteredMessage) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.PublishContentRegistered(ctx, event); err != nil {
		logger.Error(ctx, "failed to publish content registered event", err,
			"project_id", event.ProjectID, "kind", event.Kind)
	}
}

// ownedProject 不存在与不属于当前用户同样返回 404
func (s *Service) ownedProject(ctx context.Context, ownerID, projectID string) (*entity.BookProject, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if p == nil || !p.OwnedBy(ownerID) {
		return nil, apperrors.ErrProjectNotFound
	}
	return p, nil
}

func parseOptionalBookType(raw string) (entity.BookType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	t, ok := entity.ParseBookType(raw)
	if !ok {
		return "", apperrors.ErrInvalidParam.WithDetail("unknown book type: " + raw)
	}
	return t, nil
}

func normalizeSpecs(in entity.BookSpecs) entity.BookSpecs {
	out := entity.DefaultBookSpecs()
	if in.TargetPages != 0 {
		out.TargetPages = min(max(in.TargetPages, entity.MinTargetPages), entity.MaxTargetPages)
	}
	if in.TargetChapters != 0 {
		out.TargetChapters = min(max(in.TargetChapters, entity.MinTargetChapters), entity.MaxTargetChapters)
	}
	if f, ok := entity.ParseBookFormat(string(in.Format)); ok {
		out.Format = f
	}
	return out
}

func normalizeContent(in entity.ContentDraft) entity.ContentDraft {
	out := in
	out.RSSFeed = strings.TrimSpace(in.RSSFeed)
	if out.UploadedFiles == nil {
		out.UploadedFiles = []entity.DraftFile{}
	}
	if out.URLs == nil {
		out.URLs = []string{}
	}
	if out.SelectedEpisodes == nil {
		out.SelectedEpisodes = []int{}
	}
	return out
}
