package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/internal/service"
	"github.com/yeisme/uplink/pkg/internal/types"
	"github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/rule"
)

// SubmittedFiles 批量提交审核，返回实际完成迁移的 uid 列表.
func SubmittedFiles(c *gin.Context) {
	l := log.Logger()

	apiKey, err := storageKey(c)
	if err != nil {
		respondValidationError(c, err)

		return
	}

	var req types.SubmittedFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid request body")
		respondValidationError(c, err)

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		respondValidationError(c, err)

		return
	}

	svc := service.NewFileService(c.Request.Context())

	resp, err := svc.SubmittedFiles(c.Request.Context(), apiKey, &req)
	if err != nil {
		l.Warn().Err(err).Msg("submit files failed")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
