package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"podbook/internal/config"
	"podbook/internal/interfaces/http/dto"
	apperrors "podbook/pkg/errors"
	"podbook/pkg/logger"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 滑动窗口限流，按用户（未登录按客户端 IP）与路由计数
//
// 自动保存会在输入间隙频繁触发，窗口上限取 Burst 与 RequestsPerSecond 中较大者。
func RateLimit(cfg config.RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	limit := max(cfg.RequestsPerSecond, cfg.Burst)
	if limit <= 0 {
		limit = 100
	}

	return func(c *gin.Context) {
		subject := CurrentUserID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		allowed, err := limiter.Allow(c.Request.Context(), "ratelimit:"+subject+":"+route, limit, time.Second)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			dto.Abort(c, apperrors.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
