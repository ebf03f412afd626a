package middleware

import (
	"github.com/gin-gonic/gin"

	"podbook/internal/domain/entity"
	"podbook/internal/interfaces/http/dto"
	apperrors "podbook/pkg/errors"
)

// RequireRole 仅允许指定角色访问
func RequireRole(roles ...entity.UserRole) gin.HandlerFunc {
	allowed := make(map[entity.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := entity.UserRole(c.GetString(ContextRole))
		if _, ok := allowed[role]; !ok {
			dto.Abort(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
