package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件上传链路相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		// 批量签发上传链接，按文件哈希返回
		filesRoutes.POST("/links", handle.GetFileLinks)
		// 单文件签发上传链接，额外返回记录 uid
		filesRoutes.POST("/link", handle.GetUploadLink)
		// 接收上传字节流，token 在查询参数
		filesRoutes.POST("/upload", handle.UploadFile)
		// 批量提交审核
		filesRoutes.PUT("/submitted", handle.SubmittedFiles)

		// 单个文件操作
		singleGroup := filesRoutes.Group("/:uid")
		{
			// 下载文件字节流
			singleGroup.GET("/download", handle.DownloadFile)
		}
	}
}
