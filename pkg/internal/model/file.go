// Package model 定义数据库实体与文件生命周期状态机.
package model

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileState 文件生命周期状态.
// 状态只能沿 created → loading → preload → ready_for_check 单向推进.
type FileState string

const (
	// StateCreated 链接已签发，还没有收到字节.
	StateCreated FileState = "created"
	// StateLoading 上传进行中，即将接收字节.
	StateLoading FileState = "loading"
	// StatePreload 字节已接收并落盘.
	StatePreload FileState = "preload"
	// StateReadyForCheck 调用方已提交，等待下游审核.
	StateReadyForCheck FileState = "ready_for_check"
)

// ErrInvalidTransition 状态机拒绝非法迁移，包括并发竞争中落败的一方.
var ErrInvalidTransition = errors.New("invalid file state transition")

// uploadTokenBytes 上传令牌随机熵长度，256 bit.
const uploadTokenBytes = 32

// FileMeta 调用方申报的文件元数据，创建后不再修改.
type FileMeta struct {
	FileName     string `gorm:"size:512" json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileExt      string `gorm:"size:32" json:"file_ext"`
	LastModified int64  `json:"last_modified"` // Unix 秒
}

// File 文件记录，核心实体.
// 五元组 (ProjectID, EntityName, UserUID, Action, EntityUID) 加上 UploadToken
// 唯一定位一次待完成的上传；所有查询都必须带 ProjectID 以隔离租户.
type File struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UID       string `gorm:"size:36;uniqueIndex" json:"uid"`
	ProjectID uint   `gorm:"index;index:idx_pending_upload" json:"project_id"`
	// 业务对象挂载点：哪个实体、谁、出于什么动作上传
	EntityName string `gorm:"size:255;index:idx_pending_upload" json:"entity_name"`
	EntityUID  string `gorm:"size:255;index:idx_pending_upload" json:"entity_uid"`
	Action     string `gorm:"size:255;index:idx_pending_upload" json:"action"`
	UserUID    string `gorm:"size:255;index:idx_pending_upload" json:"user_uid"`
	// FileHash 调用方申报的内容指纹，签发批量链接时作为结果键
	FileHash string `gorm:"size:128;index" json:"file_hash"`
	// UploadToken 创建时一次性生成的秘密，持有者才能完成这一次上传
	UploadToken string `gorm:"size:64;uniqueIndex" json:"-"`
	// FileName 物理存储名，只有收到字节后才会赋值
	FileName string `gorm:"size:512" json:"file_name"`
	// Size 实际落盘的字节数，与 Meta.FileSize 的申报值无关，收到字节后赋值
	Size  int64     `json:"size"`
	State FileState `gorm:"size:32;index" json:"state"`
	Meta  FileMeta  `gorm:"embedded;embeddedPrefix:meta_" json:"meta"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFile 创建一条处于 created 状态的文件记录，生成 UID 与一次性上传令牌.
func NewFile(projectID uint, entityName, userUID, action, entityUID, fileHash string, meta FileMeta) (*File, error) {
	token, err := newUploadToken()
	if err != nil {
		return nil, err
	}

	return &File{
		UID:         uuid.NewString(),
		ProjectID:   projectID,
		EntityName:  entityName,
		EntityUID:   entityUID,
		Action:      action,
		UserUID:     userUID,
		FileHash:    fileHash,
		UploadToken: token,
		State:       StateCreated,
		Meta:        meta,
	}, nil
}

// newUploadToken 生成 256 bit 随机令牌，URL 安全编码.
// 令牌的不可伪造性完全依赖这里的熵，长度不可缩短.
func newUploadToken() (string, error) {
	buf := make([]byte, uploadTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate upload token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MoveToLoading 进入上传中状态，仅允许从 created 迁移.
func (f *File) MoveToLoading() error {
	if f.State != StateCreated {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.State, StateLoading)
	}

	f.State = StateLoading

	return nil
}

// MoveToPreload 字节已接收，仅允许从 loading 迁移，且要求物理存储名已赋值.
func (f *File) MoveToPreload() error {
	if f.State != StateLoading {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.State, StatePreload)
	}

	if f.FileName == "" {
		return fmt.Errorf("%w: file name must be set before preload", ErrInvalidTransition)
	}

	f.State = StatePreload

	return nil
}

// MoveToReadyForCheck 调用方提交审核，仅允许从 preload 迁移.
func (f *File) MoveToReadyForCheck() error {
	if f.State != StatePreload {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.State, StateReadyForCheck)
	}

	f.State = StateReadyForCheck

	return nil
}
