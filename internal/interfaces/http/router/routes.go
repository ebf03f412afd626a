package router

import (
	"github.com/gin-gonic/gin"

	"podbook/internal/domain/entity"
	"podbook/internal/interfaces/http/middleware"
)

// RegisterAPIRoutes 注册 /api 下的业务路由
func RegisterAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	// 向导自动保存
	api.POST("/project/save", h.Project.Save)

	projects := api.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.GET("/:pid", h.Project.Get)
		projects.GET("/:pid/estimate", h.Project.Estimate)
	}

	uploads := api.Group("/uploads")
	{
		uploads.POST("/rss", h.Project.RegisterEpisodes)
		uploads.POST("/files", h.Project.RegisterFiles)
	}

	api.GET("/rss/episodes", h.RSS.Episodes)

	admin := api.Group("/admin", middleware.RequireRole(entity.UserRoleAdmin))
	{
		admin.GET("/projects", h.Project.ListAll)
	}
}
