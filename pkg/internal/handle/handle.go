// Package handle 提供HTTP请求处理器的实现.
//
// 错误映射约定：
//   - 输入校验失败  -> 422，带字段级错误字典
//   - 领域错误      -> 400（下载记录不存在为 404），短消息，不泄露内部细节
//   - 存储/IO 失败  -> 500
package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/service"
	"github.com/yeisme/uplink/pkg/internal/token"
	"github.com/yeisme/uplink/pkg/rule"
)

// StorageKeyHeader 调用方 API Key 请求头.
const StorageKeyHeader = "X-Storage-Key"

// storageKey 提取并校验 API Key 请求头.
func storageKey(c *gin.Context) (string, error) {
	key := strings.TrimSpace(c.GetHeader(StorageKeyHeader))

	if err := rule.ValidateVar(key, "required,min=8"); err != nil {
		return "", err
	}

	return key, nil
}

// storageKeyOrQuery 优先取请求头，浏览器直链下载场景退化到 apiKey 查询参数.
func storageKeyOrQuery(c *gin.Context) (string, error) {
	key := strings.TrimSpace(c.GetHeader(StorageKeyHeader))
	if key == "" {
		key = strings.TrimSpace(c.Query("apiKey"))
	}

	if err := rule.ValidateVar(key, "required,min=8"); err != nil {
		return "", err
	}

	return key, nil
}

// respondValidationError 422，字段级错误字典.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": rule.Errors(err)})
}

// respondServiceError 按领域错误类型映射状态码，未识别的错误按 500 处理.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
	case errors.Is(err, service.ErrUnknownProject):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown project"})
	case errors.Is(err, token.ErrMalformedToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed token"})
	case errors.Is(err, service.ErrNoMatchingUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no matching upload"})
	case errors.Is(err, model.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file state"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
