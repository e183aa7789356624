package handle

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/internal/service"
	"github.com/yeisme/uplink/pkg/log"
)

// DownloadFile 按 uid 流式返回文件字节，附件名为申报的原始文件名.
func DownloadFile(c *gin.Context) {
	l := log.Logger()

	apiKey, err := storageKeyOrQuery(c)
	if err != nil {
		respondValidationError(c, err)

		return
	}

	uid := c.Param("uid")
	if uid == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"uid": "required"}})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	stream, err := svc.DownloadAsStream(c.Request.Context(), apiKey, uid)
	if err != nil {
		l.Warn().Err(err).Str("uid", uid).Msg("download failed")
		respondServiceError(c, err)

		return
	}
	// 任何退出路径都要释放底层句柄
	defer stream.Close()

	contentType := mime.TypeByExtension(filepath.Ext(stream.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stream.FileName))
	c.Header("Content-Type", contentType)

	if stream.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", stream.Size))
	}

	if _, err := io.Copy(c.Writer, stream); err != nil {
		// 头已发出，只能记录传输中断
		l.Warn().Err(err).Str("uid", uid).Msg("download stream interrupted")
	}
}
