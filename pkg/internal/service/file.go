package service

import (
	"context"
	"io"
	"time"

	"github.com/yeisme/uplink/pkg/configs"
	ctxPkg "github.com/yeisme/uplink/pkg/context"
	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/repository"
	nlog "github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/queue"
)

// ByteStore 物理字节存储的最小接口，s3.Client 满足该接口.
type ByteStore interface {
	// SaveStream 写入字节流，返回实际写入的字节数.
	SaveStream(ctx context.Context, objectName string, r io.Reader, size int64) (int64, error)
	// OpenForRead 打开读取流，调用方负责 Close.
	OpenForRead(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// FileService 负责文件生命周期业务逻辑（链接签发、上传、提交、下载），不处理 HTTP 细节.
// 状态机迁移只在这里与持久化组合，仓储条件保证所有查询按租户隔离.
type FileService struct {
	files    repository.FileRepository
	projects repository.ProjectRepository
	store    ByteStore
	pub      queue.Publisher
	link     configs.LinkConfig
}

// NewFileService 从 context 获取依赖实例.
func NewFileService(c context.Context) *FileService {
	mgr := ctxPkg.GetManager(c)

	// 为了安全起见，应该直接 panic 而不是返回 nil，依赖此服务就不需要再检查
	if mgr == nil || mgr.DB == nil || mgr.DB.DB == nil || mgr.S3 == nil || mgr.S3.Client == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	cfg := configs.GetConfig()

	projects := repository.NewProjectRepository(mgr.DB.DB)
	if mgr.KV != nil {
		ttl := time.Duration(cfg.KV.TTLSeconds) * time.Second
		projects = repository.NewCachedProjectRepository(projects, mgr.KV, ttl)
	}

	var pub queue.Publisher
	if mgr.MQ != nil {
		pub = mgr.MQ
	}

	return &FileService{
		files:    repository.NewFileRepository(mgr.DB.DB),
		projects: projects,
		store:    mgr.S3,
		pub:      pub,
		link:     cfg.Link,
	}
}

// newFileService 显式注入依赖，测试用.
func newFileService(
	files repository.FileRepository,
	projects repository.ProjectRepository,
	store ByteStore,
	pub queue.Publisher,
	link configs.LinkConfig,
) *FileService {
	return &FileService{files: files, projects: projects, store: store, pub: pub, link: link}
}

// resolveProject 按 API Key 解析租户，查不到时返回 ErrUnknownProject.
func (fs *FileService) resolveProject(ctx context.Context, apiKey string) (*model.Project, error) {
	p, err := fs.projects.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, ErrUnknownProject
	}

	return p, nil
}

// fileRef 把文件记录转为事件引用，不带上传令牌.
func fileRef(f *model.File) queue.FileRef {
	return queue.FileRef{
		UID:        f.UID,
		ProjectID:  f.ProjectID,
		EntityName: f.EntityName,
		EntityUID:  f.EntityUID,
		Action:     f.Action,
		UserUID:    f.UserUID,
		FileHash:   f.FileHash,
		State:      string(f.State),
	}
}
