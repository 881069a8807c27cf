package controllers

import (
	"net/http"

	"github.com/System-rat/mcsmp/internal/models"

	"github.com/gin-gonic/gin"
)

var codeStatus = map[string]int{
	models.CodeNotFound:      http.StatusNotFound,
	models.CodeExists:        http.StatusConflict,
	models.CodeServerRunning: http.StatusConflict,
	models.CodeServerStopped: http.StatusConflict,
	models.CodePropertyError: http.StatusUnprocessableEntity,
	models.CodeChecksum:      http.StatusBadGateway,
	models.CodeTransport:     http.StatusBadGateway,
	models.CodeProcessSpawn:  http.StatusInternalServerError,
}

// 错误分类到 HTTP 状态码和错误代码的映射
func classify(err error) (int, string) {
	code := models.CodeForError(err)
	if status, ok := codeStatus[code]; ok {
		return status, code
	}
	return http.StatusInternalServerError, code
}

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	c.JSON(status, &models.ErrorResponse{Code: code, Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, &models.ErrorResponse{Code: models.CodeInvalidRequest, Error: err.Error()})
}
