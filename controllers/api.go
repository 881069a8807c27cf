package controllers

import (
	"github.com/System-rat/mcsmp/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIController struct {
	connector *services.Connector
}

/**
 * Create new API controller instance
 * @param {*services.Connector} connector - Connector owning the managed servers
 * @returns {*APIController} New API controller instance
 */
func NewAPIController(connector *services.Connector) *APIController {
	return &APIController{
		connector: connector,
	}
}

/**
 * Register health and metrics routes
 * @param {*gin.Engine} r - Gin router instance
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// @Summary 业务就绪探针
// @Description 返回服务版本、启动时间、健康状态和关键指标统计结果
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	c.JSON(200, a.connector.GetHealthz())
}
