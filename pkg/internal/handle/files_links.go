package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/internal/service"
	"github.com/yeisme/uplink/pkg/internal/types"
	"github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/rule"
)

// GetFileLinks 批量签发上传链接，返回 fileHash 到 URL 的映射.
func GetFileLinks(c *gin.Context) {
	l := log.Logger()

	apiKey, err := storageKey(c)
	if err != nil {
		respondValidationError(c, err)

		return
	}

	var req types.GetLinksRequest
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

	resp, err := svc.GetLinks(c.Request.Context(), apiKey, &req)
	if err != nil {
		l.Warn().Err(err).Msg("get links failed")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUploadLink 签发单个上传链接，响应额外携带记录 uid.
func GetUploadLink(c *gin.Context) {
	l := log.Logger()

	apiKey, err := storageKey(c)
	if err != nil {
		respondValidationError(c, err)

		return
	}

	var req types.GetUploadLinkRequest
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

	resp, err := svc.GetUploadLink(c.Request.Context(), apiKey, &req)
	if err != nil {
		l.Warn().Err(err).Msg("get upload link failed")
		respondServiceError(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
