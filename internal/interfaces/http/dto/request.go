package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"podbook/internal/domain/repository"
	apperrors "podbook/pkg/errors"
)

// BindJSON 绑定请求体，失败时已写出 400 响应
func BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		FromError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
		return false
	}
	return true
}

// BindPagination 从查询参数绑定分页
func BindPagination(c *gin.Context) repository.Pagination {
	return repository.NewPagination(
		parseIntWithDefault(c.Query("page"), 1),
		parseIntWithDefault(c.Query("page_size"), repository.DefaultPageSize),
	)
}

func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindProjectID 从 URI 绑定项目 ID
func BindProjectID(c *gin.Context) string {
	return c.Param("pid")
}
