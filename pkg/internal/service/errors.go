package service

import "errors"

// 服务层的领域错误，边界层据此映射 HTTP 状态码.
var (
	// ErrUnknownProject API Key 解析不到租户.
	ErrUnknownProject = errors.New("unknown project")
	// ErrNoMatchingUpload 令牌定位不到处于 created 状态的待上传记录.
	ErrNoMatchingUpload = errors.New("no matching upload")
	// ErrFileNotFound 按 uid 查不到本租户的文件记录.
	ErrFileNotFound = errors.New("file not found")
)
