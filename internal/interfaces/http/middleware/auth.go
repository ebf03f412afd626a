// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"podbook/internal/interfaces/http/dto"
	apperrors "podbook/pkg/errors"
	"podbook/pkg/logger"
	"podbook/pkg/utils"
)

// gin.Context 中的身份键
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthConfig 认证配置
type AuthConfig struct {
	Secret string
	Issuer string
	// SkipPaths 跳过认证的路径前缀
	SkipPaths []string
	Enabled   bool
}

// Auth 认证中间件，校验 Bearer AccessToken 并注入用户身份
func Auth(cfg AuthConfig) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)

	return func(c *gin.Context) {
		if !cfg.Enabled || skipped(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			dto.Abort(c, apperrors.ErrTokenMissing)
			return
		}

		claims, err := jwtManager.Verify(strings.TrimSpace(token), utils.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				dto.Abort(c, apperrors.ErrTokenExpired)
			} else {
				dto.Abort(c, apperrors.ErrTokenInvalid)
			}
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)

		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func skipped(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// CurrentUserID 当前请求的用户 ID
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// CurrentEmail 当前请求的用户邮箱
func CurrentEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/api/auth/",
}
