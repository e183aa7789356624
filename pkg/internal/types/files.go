// Package types 定义 HTTP 层的请求与响应结构体.
package types

// FileSpec 调用方申报的单个文件描述，签发上传链接时提交.
type FileSpec struct {
	FileHash     string `json:"file_hash"     binding:"required" rule:"required"`
	FileName     string `json:"file_name"     binding:"required" rule:"required"`
	FileSize     int64  `json:"file_size"     rule:"min=0"`
	FileExt      string `json:"file_ext"`
	LastModified int64  `json:"last_modified" rule:"min=0"`
}

// EntityLinkage 业务对象挂载点，四个字段与租户一起构成待上传记录的自然键.
type EntityLinkage struct {
	EntityName string `json:"entity_name" binding:"required" rule:"required"`
	EntityUID  string `json:"entity_uid"  binding:"required" rule:"required"`
	Action     string `json:"action"      binding:"required" rule:"required"`
	UserUID    string `json:"user_uid"    binding:"required" rule:"required"`
}

// GetLinksRequest 批量签发上传链接.
type GetLinksRequest struct {
	EntityLinkage

	Files []FileSpec `json:"files" binding:"required" rule:"required,min=1,dive"`
}

// GetLinksResponse 以内容指纹为键的上传链接映射.
type GetLinksResponse struct {
	Links map[string]string `json:"links"`
}

// GetUploadLinkRequest 签发单个上传链接.
type GetUploadLinkRequest struct {
	EntityLinkage

	File FileSpec `json:"file" binding:"required"`
}

// GetUploadLinkResponse 单链接响应额外暴露记录 uid.
type GetUploadLinkResponse struct {
	UID  string `json:"uid"`
	Link string `json:"link"`
}

// UploadResponse 上传完成后的响应，Hash 为服务端实算的内容哈希.
type UploadResponse struct {
	UID  string `json:"uid"`
	Hash string `json:"hash"`
}

// SubmittedFilesRequest 批量提交审核.
type SubmittedFilesRequest struct {
	UIDs []string `json:"uids" binding:"required" rule:"required,min=1"`
}

// SubmittedFilesResponse 实际完成迁移的 uid 列表.
type SubmittedFilesResponse struct {
	UIDs []string `json:"uids"`
}
