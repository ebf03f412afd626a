package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"podbook/pkg/logger"
	"podbook/pkg/tracer"
)

// Tracing 返回 otelgin 中间件与 trace_id 注入中间件，需按顺序挂载
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), traceContext}
}

func traceContext(c *gin.Context) {
	traceID, spanID := tracer.IDs(c.Request.Context())
	if traceID != "" {
		c.Set("trace_id", traceID)

		ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
		ctx = logger.WithContext(ctx, logger.SpanIDKey, spanID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-ID", traceID)
	}
	c.Next()
}
