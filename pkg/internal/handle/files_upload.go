package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/internal/service"
	"github.com/yeisme/uplink/pkg/log"
)

// UploadFile 接收上传字节流，token 从查询参数取.
// 请求体支持 multipart 表单（字段名 file）或原始字节流.
func UploadFile(c *gin.Context) {
	l := log.Logger()

	apiKey, err := storageKey(c)
	if err != nil {
		respondValidationError(c, err)

		return
	}

	tok := c.Query("token")
	if tok == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"token": "required"}})

		return
	}

	// multipart 优先，退化到原始 body
	var (
		reader = c.Request.Body
		size   = c.Request.ContentLength
	)

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			l.Error().Err(err).Msg("open multipart file failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})

			return
		}
		defer f.Close()

		reader = f
		size = fh.Size
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.Upload(c.Request.Context(), apiKey, tok, reader, size)
	if err != nil {
		l.Warn().Err(err).Msg("upload failed")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
