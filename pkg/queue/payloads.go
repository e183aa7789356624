package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识一条文件记录及其业务挂载点.
// 不携带上传令牌，事件流中永远不暴露秘密.
type FileRef struct {
	UID        string `json:"uid"`
	ProjectID  uint   `json:"project_id"`
	EntityName string `json:"entity_name,omitempty"`
	EntityUID  string `json:"entity_uid,omitempty"`
	Action     string `json:"action,omitempty"`
	UserUID    string `json:"user_uid,omitempty"`
	FileHash   string `json:"file_hash,omitempty"`
	State      string `json:"state"`
}

// FileLinkIssuedPayload 上传链接已签发.
type FileLinkIssuedPayload struct {
	File     FileRef `json:"file"`
	FileName string  `json:"file_name,omitempty"`
	FileSize int64   `json:"file_size,omitempty"`
}

// FileUploadedPayload 字节已接收并落盘.
type FileUploadedPayload struct {
	File       FileRef `json:"file"`
	ObjectName string  `json:"object_name"`
	Size       int64   `json:"size,omitempty"`
	Hash       string  `json:"hash,omitempty"` // 服务端实算的内容哈希
}

// FileSubmittedPayload 调用方已提交审核，下游审核服务消费此事件.
type FileSubmittedPayload struct {
	File FileRef `json:"file"`
}

// FileAccessedPayload 文件被下载.
type FileAccessedPayload struct {
	File       FileRef `json:"file"`
	ObjectName string  `json:"object_name,omitempty"`
}

// FileStaleLoadingPayload 巡检发现停留在 loading 的记录.
type FileStaleLoadingPayload struct {
	Count     int       `json:"count"`
	Threshold string    `json:"threshold"` // 判定为滞留的时长，如 "30m"
	CheckedAt time.Time `json:"checked_at"`
}
