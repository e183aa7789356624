// Package repository 提供数据库实体的查询与持久化，查询条件是一等公民.
//
// 每个 Condition 结构体封装一类业务查询的全部过滤字段，所有条件都强制
// 携带 ProjectID，租户隔离在这一层兜底.
package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/uplink/pkg/internal/model"
)

// Condition 把业务查询意图翻译为 GORM scope.
type Condition interface {
	Scope() func(*gorm.DB) *gorm.DB
}

// UploadFileCondition 定位一条待上传记录.
// 五元组 + 上传令牌全部来自解码后的令牌载荷，State 由调用方指定（上传入口恒为 created）.
// 所有字段都逐一精确匹配，空字符串同样参与比较，载荷缺字段不会放宽查询.
type UploadFileCondition struct {
	ProjectID   uint
	EntityName  string
	UserUID     string
	Action      string
	EntityUID   string
	UploadToken string
	State       model.FileState
}

func (c UploadFileCondition) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"project_id = ? AND entity_name = ? AND user_uid = ? AND action = ? AND entity_uid = ? AND upload_token = ? AND state = ?",
			c.ProjectID, c.EntityName, c.UserUID, c.Action, c.EntityUID, c.UploadToken, c.State,
		)
	}
}

// SubmittedFilesCondition 定位一批待提交记录.
// UID 不在结果中的调用方输入被静默跳过，状态过滤保证只有 preload 记录被提交.
type SubmittedFilesCondition struct {
	ProjectID uint
	UIDs      []string
	State     model.FileState
}

func (c SubmittedFilesCondition) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ? AND state = ? AND uid IN ?", c.ProjectID, c.State, c.UIDs)
	}
}

// DownloadFileCondition 定位一条可下载记录，按 UID 查但仍限定租户.
type DownloadFileCondition struct {
	ProjectID uint
	UID       string
}

func (c DownloadFileCondition) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ? AND uid = ?", c.ProjectID, c.UID)
	}
}

// StaleLoadingCondition 定位长时间停留在 loading 的记录，巡检任务用.
// 跨租户查询，只读，不提供给请求路径.
type StaleLoadingCondition struct {
	UpdatedBefore time.Time
}

func (c StaleLoadingCondition) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("state = ? AND updated_at < ?", model.StateLoading, c.UpdatedBefore)
	}
}
