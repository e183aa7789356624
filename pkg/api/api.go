// Package api 定义 HTTP 服务的路由分组.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/configs"
	"github.com/yeisme/uplink/pkg/internal/router"
)

// RegisterGroup 注册 /api/v1 路由组到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine) *gin.Engine {
	// 存活探针，不依赖任何后端
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": configs.AppVersion})
	})

	v1 := e.Group("/api/v1")

	router.RegisterFilesRoutes(v1)
	router.RegisterHealthCheckRoute(v1)

	return e
}
