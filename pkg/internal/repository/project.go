package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/uplink/pkg/internal/model"
)

// ProjectRepository 租户记录的查询接口.
type ProjectRepository interface {
	// GetByAPIKey 按 API Key 解析租户，无匹配返回 ErrNotFound.
	GetByAPIKey(ctx context.Context, apiKey string) (*model.Project, error)
	// GetByID 按主键取租户.
	GetByID(ctx context.Context, id uint) (*model.Project, error)
	// List 返回全部租户，缓存预热用.
	List(ctx context.Context) ([]*model.Project, error)
}

// gormProjectRepository 基于 GORM 的实现.
type gormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建租户仓储.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

func (r *gormProjectRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.Project, error) {
	var p model.Project

	err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query project by api key: %w", err)
	}

	return &p, nil
}

func (r *gormProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	var ps []*model.Project

	if err := r.db.WithContext(ctx).Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return ps, nil
}

func (r *gormProjectRepository) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	var p model.Project

	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query project by id: %w", err)
	}

	return &p, nil
}
