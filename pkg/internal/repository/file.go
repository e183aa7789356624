package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/uplink/pkg/internal/model"
)

// ErrNotFound 查询无匹配记录.
var ErrNotFound = errors.New("record not found")

// FileRepository 文件记录的持久化接口.
type FileRepository interface {
	// Create 插入一条新记录.
	Create(ctx context.Context, f *model.File) error
	// CreateBatch 批量插入，签发批量上传链接时一次落库.
	CreateBatch(ctx context.Context, fs []*model.File) error
	// GetOneBy 按条件取一条记录，无匹配返回 ErrNotFound.
	GetOneBy(ctx context.Context, cond Condition) (*model.File, error)
	// FindBy 按条件取全部匹配记录.
	FindBy(ctx context.Context, cond Condition) ([]*model.File, error)
	// CountBy 按条件计数.
	CountBy(ctx context.Context, cond Condition) (int64, error)
	// Save 全量保存记录.
	Save(ctx context.Context, f *model.File) error
	// SaveTransition 带状态前置条件的保存，并发竞争中只有一方成功，
	// 落败方收到 model.ErrInvalidTransition.
	SaveTransition(ctx context.Context, f *model.File, from model.FileState) error
}

// gormFileRepository 基于 GORM 的实现.
type gormFileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建文件仓储.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &gormFileRepository{db: db}
}

func (r *gormFileRepository) Create(ctx context.Context, f *model.File) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("create file record: %w", err)
	}

	return nil
}

func (r *gormFileRepository) CreateBatch(ctx context.Context, fs []*model.File) error {
	if len(fs) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Create(fs).Error; err != nil {
		return fmt.Errorf("create file records: %w", err)
	}

	return nil
}

func (r *gormFileRepository) GetOneBy(ctx context.Context, cond Condition) (*model.File, error) {
	var f model.File

	err := r.db.WithContext(ctx).Scopes(cond.Scope()).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query file record: %w", err)
	}

	return &f, nil
}

func (r *gormFileRepository) FindBy(ctx context.Context, cond Condition) ([]*model.File, error) {
	var fs []*model.File

	if err := r.db.WithContext(ctx).Scopes(cond.Scope()).Find(&fs).Error; err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}

	return fs, nil
}

func (r *gormFileRepository) CountBy(ctx context.Context, cond Condition) (int64, error) {
	var n int64

	if err := r.db.WithContext(ctx).Model(&model.File{}).Scopes(cond.Scope()).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count file records: %w", err)
	}

	return n, nil
}

func (r *gormFileRepository) Save(ctx context.Context, f *model.File) error {
	if err := r.db.WithContext(ctx).Save(f).Error; err != nil {
		return fmt.Errorf("save file record: %w", err)
	}

	return nil
}

// SaveTransition 用 UPDATE ... WHERE id = ? AND state = ? 做乐观并发控制.
// RowsAffected 为零说明别的请求已经抢先推进了状态.
func (r *gormFileRepository) SaveTransition(ctx context.Context, f *model.File, from model.FileState) error {
	res := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ? AND state = ?", f.ID, from).
		Updates(map[string]any{
			"state":     f.State,
			"file_name": f.FileName,
			"size":      f.Size,
		})
	if res.Error != nil {
		return fmt.Errorf("save file transition: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: state already advanced past %s", model.ErrInvalidTransition, from)
	}

	return nil
}
