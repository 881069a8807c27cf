package middleware

import (
	"time"

	"github.com/System-rat/mcsmp/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

/**
 * 请求ID及访问日志中间件
 * @description
 * - 沿用请求头中的 X-Request-ID，没有则生成 UUID
 * - 响应头回写同一个ID
 * - 请求结束后记录一条结构化访问日志
 */
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String(requestIDKey, rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.L().Info("http request", fields...)
	}
}

// RequestID 返回当前请求的ID
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
