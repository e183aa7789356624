package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/repository"
)

// newTestDB 打开内存 sqlite 并建表.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.Project{}, &model.File{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// newStoredFile 建一条落库的测试记录.
func newStoredFile(t *testing.T, repo repository.FileRepository, projectID uint) *model.File {
	t.Helper()

	f, err := model.NewFile(projectID, "order", "user-1", "attach", "order-42", "deadbeef", model.FileMeta{
		FileName: "invoice.pdf",
		FileExt:  "pdf",
	})
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	if err := repo.Create(context.Background(), f); err != nil {
		t.Fatalf("Create: %v", err)
	}

	return f
}

// TestGetOneByUploadCondition 测试令牌五元组定位与租户隔离.
func TestGetOneByUploadCondition(t *testing.T) {
	repo := repository.NewFileRepository(newTestDB(t))
	ctx := context.Background()

	f := newStoredFile(t, repo, 1)

	cond := repository.UploadFileCondition{
		ProjectID:   1,
		EntityName:  f.EntityName,
		UserUID:     f.UserUID,
		Action:      f.Action,
		EntityUID:   f.EntityUID,
		UploadToken: f.UploadToken,
		State:       model.StateCreated,
	}

	got, err := repo.GetOneBy(ctx, cond)
	if err != nil {
		t.Fatalf("GetOneBy: %v", err)
	}

	if got.UID != f.UID {
		t.Errorf("Expected uid %q, got %q", f.UID, got.UID)
	}

	// 换一个租户 ID，同样的令牌查不到
	crossTenant := cond
	crossTenant.ProjectID = 2

	if _, err := repo.GetOneBy(ctx, crossTenant); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other project, got %v", err)
	}

	// 错误的令牌查不到
	wrongToken := cond
	wrongToken.UploadToken = "not-the-token"

	if _, err := repo.GetOneBy(ctx, wrongToken); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for wrong token, got %v", err)
	}
}

// TestGetOneByUploadConditionBlankLinkage 测试挂载点字段被篡改为空时定位失败.
// 空字符串必须作为条件参与匹配，仅凭令牌和租户不足以命中记录.
func TestGetOneByUploadConditionBlankLinkage(t *testing.T) {
	repo := repository.NewFileRepository(newTestDB(t))
	ctx := context.Background()

	f := newStoredFile(t, repo, 1)

	blank := repository.UploadFileCondition{
		ProjectID:   1,
		UploadToken: f.UploadToken,
		State:       model.StateCreated,
	}

	if _, err := repo.GetOneBy(ctx, blank); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for blank linkage fields, got %v", err)
	}

	// 只抹掉其中一个字段同样查不到
	oneBlank := repository.UploadFileCondition{
		ProjectID:   1,
		EntityName:  f.EntityName,
		UserUID:     f.UserUID,
		Action:      "",
		EntityUID:   f.EntityUID,
		UploadToken: f.UploadToken,
		State:       model.StateCreated,
	}

	if _, err := repo.GetOneBy(ctx, oneBlank); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for blank action, got %v", err)
	}
}

// TestSaveTransitionCAS 测试状态迁移的乐观并发控制.
func TestSaveTransitionCAS(t *testing.T) {
	repo := repository.NewFileRepository(newTestDB(t))
	ctx := context.Background()

	f := newStoredFile(t, repo, 1)

	if err := f.MoveToLoading(); err != nil {
		t.Fatalf("MoveToLoading: %v", err)
	}

	if err := repo.SaveTransition(ctx, f, model.StateCreated); err != nil {
		t.Fatalf("SaveTransition: %v", err)
	}

	// 数据库里的状态已经推进
	got, err := repo.GetOneBy(ctx, repository.DownloadFileCondition{ProjectID: 1, UID: f.UID})
	if err != nil {
		t.Fatalf("GetOneBy: %v", err)
	}

	if got.State != model.StateLoading {
		t.Errorf("Expected state %q, got %q", model.StateLoading, got.State)
	}

	// 以同样的前置状态再保存一次，模拟并发落败方
	err = repo.SaveTransition(ctx, f, model.StateCreated)
	if !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for lost race, got %v", err)
	}
}

// TestSaveTransitionPersistsFileName 测试迁移时物理存储名与实际字节数一并落库.
func TestSaveTransitionPersistsFileName(t *testing.T) {
	repo := repository.NewFileRepository(newTestDB(t))
	ctx := context.Background()

	f := newStoredFile(t, repo, 1)

	if err := f.MoveToLoading(); err != nil {
		t.Fatalf("MoveToLoading: %v", err)
	}

	if err := repo.SaveTransition(ctx, f, model.StateCreated); err != nil {
		t.Fatalf("SaveTransition: %v", err)
	}

	f.FileName = "01jexample.pdf"
	f.Size = 12345

	if err := f.MoveToPreload(); err != nil {
		t.Fatalf("MoveToPreload: %v", err)
	}

	if err := repo.SaveTransition(ctx, f, model.StateLoading); err != nil {
		t.Fatalf("SaveTransition: %v", err)
	}

	got, err := repo.GetOneBy(ctx, repository.DownloadFileCondition{ProjectID: 1, UID: f.UID})
	if err != nil {
		t.Fatalf("GetOneBy: %v", err)
	}

	if got.FileName != "01jexample.pdf" {
		t.Errorf("Expected persisted file name, got %q", got.FileName)
	}

	if got.Size != 12345 {
		t.Errorf("Expected persisted size 12345, got %d", got.Size)
	}

	if got.State != model.StatePreload {
		t.Errorf("Expected state %q, got %q", model.StatePreload, got.State)
	}
}

// TestFindBySubmittedCondition 测试提交查询只命中本租户的 preload 记录.
func TestFindBySubmittedCondition(t *testing.T) {
	repo := repository.NewFileRepository(newTestDB(t))
	ctx := context.Background()

	// 一条 preload，一条 created，一条别的租户的 preload
	ready := newStoredFile(t, repo, 1)
	pending := newStoredFile(t, repo, 1)
	foreign := newStoredFile(t, repo, 2)

	for _, f := range []*model.File{ready, foreign} {
		f.State = model.StatePreload
		f.FileName = "x.pdf"

		if err := repo.Save(ctx, f); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := repo.FindBy(ctx, repository.SubmittedFilesCondition{
		ProjectID: 1,
		UIDs:      []string{ready.UID, pending.UID, foreign.UID, "no-such-uid"},
		State:     model.StatePreload,
	})
	if err != nil {
		t.Fatalf("FindBy: %v", err)
	}

	if len(got) != 1 || got[0].UID != ready.UID {
		t.Errorf("Expected only %q, got %d records", ready.UID, len(got))
	}
}

// TestCountByStaleLoading 测试滞留 loading 记录的巡检计数.
func TestCountByStaleLoading(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewFileRepository(db)
	ctx := context.Background()

	stale := newStoredFile(t, repo, 1)
	fresh := newStoredFile(t, repo, 1)

	for _, f := range []*model.File{stale, fresh} {
		f.State = model.StateLoading

		if err := repo.Save(ctx, f); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	// 人为把一条记录的更新时间拨回一小时前
	old := time.Now().Add(-time.Hour)
	if err := db.Model(&model.File{}).Where("id = ?", stale.ID).
		Update("updated_at", old).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	n, err := repo.CountBy(ctx, repository.StaleLoadingCondition{
		UpdatedBefore: time.Now().Add(-30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("CountBy: %v", err)
	}

	if n != 1 {
		t.Errorf("Expected 1 stale record, got %d", n)
	}
}
