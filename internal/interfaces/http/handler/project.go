package handler

import (
	"github.com/gin-gonic/gin"

	"podbook/internal/application/project"
	"podbook/internal/domain/entity"
	"podbook/internal/domain/repository"
	"podbook/internal/interfaces/http/dto"
	"podbook/internal/interfaces/http/middleware"
	"podbook/pkg/logger"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *project.Service
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *project.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Save 自动保存草稿
// @Summary 保存项目草稿
// @Description 无 id 时新建项目；有 id 时覆盖保存当前用户的草稿
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body project.SaveInput true "草稿"
// @Success 200 {object} dto.Response[dto.SaveProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/project/save [post]
func (h *ProjectHandler) Save(c *gin.Context) {
	var req project.SaveInput
	if !dto.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Save(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.fail(c, "failed to save project", err)
		return
	}
	dto.Success(c, dto.ToSaveProjectResponse(p))
}

// List 项目列表
// @Summary 获取项目列表
// @Tags Projects
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Success 200 {object} dto.Response[[]dto.ProjectResponse]
// @Router /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	h.list(c, middleware.CurrentUserID(c))
}

// ListAll 管理员查看全部项目
func (h *ProjectHandler) ListAll(c *gin.Context) {
	h.list(c, c.Query("owner_id"))
}

func (h *ProjectHandler) list(c *gin.Context, ownerID string) {
	filter := repository.BookProjectFilter{
		Type:   entity.BookType(c.Query("type")),
		Status: entity.ProjectStatus(c.Query("status")),
	}
	result, err := h.svc.List(c.Request.Context(), ownerID, filter, dto.BindPagination(c))
	if err != nil {
		h.fail(c, "failed to list projects", err)
		return
	}

	items := make([]*dto.ProjectResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, dto.ToProjectResponse(p))
	}
	dto.SuccessWithPage(c, items, dto.PageMetaOf(result))
}

// Get 项目详情
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{pid} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), dto.BindProjectID(c))
	if err != nil {
		h.fail(c, "failed to get project", err)
		return
	}
	dto.Success(c, dto.ToProjectDetailResponse(detail))
}

// Estimate 概览页估价
// @Summary 项目估价
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Param policy query string false "flat 或 duration"
// @Success 200 {object} dto.Response[wizard.Estimate]
// @Router /api/projects/{pid}/estimate [get]
func (h *ProjectHandler) Estimate(c *gin.Context) {
	est, err := h.svc.Estimate(c.Request.Context(), middleware.CurrentUserID(c), dto.BindProjectID(c), c.DefaultQuery("policy", "duration"))
	if err != nil {
		h.fail(c, "failed to estimate project", err)
		return
	}
	dto.Success(c, est)
}

// RegisterEpisodes 登记已选单集
// @Summary 登记 RSS 单集
// @Tags Uploads
// @Accept json
// @Produce json
// @Param body body dto.RegisterEpisodesRequest true "单集"
// @Success 200 {object} dto.Response[dto.RegisterResponse]
// @Router /api/uploads/rss [post]
func (h *ProjectHandler) RegisterEpisodes(c *gin.Context) {
	var req dto.RegisterEpisodesRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	n, err := h.svc.RegisterEpisodes(c.Request.Context(), middleware.CurrentUserID(c), req.ProjectID, req.Episodes)
	if err != nil {
		h.fail(c, "failed to register episodes", err)
		return
	}
	dto.Success(c, &dto.RegisterResponse{ProjectID: req.ProjectID, Registered: n})
}

// RegisterFiles 登记已上传文件
// @Summary 登记上传文件
// @Tags Uploads
// @Accept json
// @Produce json
// @Param body body dto.RegisterFilesRequest true "文件"
// @Success 200 {object} dto.Response[dto.RegisterResponse]
// @Router /api/uploads/files [post]
func (h *ProjectHandler) RegisterFiles(c *gin.Context) {
	var req dto.RegisterFilesRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	n, err := h.svc.RegisterFiles(c.Request.Context(), middleware.CurrentUserID(c), req.ProjectID, req.Files)
	if err != nil {
		h.fail(c, "failed to register files", err)
		return
	}
	dto.Success(c, &dto.RegisterResponse{ProjectID: req.ProjectID, Registered: n})
}

func (h *ProjectHandler) fail(c *gin.Context, msg string, err error) {
	logger.Warn(c.Request.Context(), msg, "error", err.Error())
	dto.FromError(c, err)
}
