package middleware

import (
	"time"

	"github.com/System-rat/mcsmp/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP请求统计中间件
 * @description
 * - 按路由模板统计请求数、处理时长
 * - 状态码 >= 400 的请求计入错误数
 * - 未匹配路由的请求统一记为 "unmatched"，避免路径基数膨胀
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		services.IncrementRequestCount(path)
		services.RecordRequestDuration(path, time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			services.IncrementErrorCount(path)
		}
	}
}

// GetTotalRequests 健康检查使用的总请求数
func GetTotalRequests() int64 {
	return services.GetTotalRequestCount()
}

// GetErrorRequests 健康检查使用的出错请求数
func GetErrorRequests() int64 {
	return services.GetTotalErrorCount()
}
