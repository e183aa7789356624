package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/yeisme/uplink/pkg/configs"
	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/repository"
	"github.com/yeisme/uplink/pkg/internal/types"
)

// fakeFileRepo 内存文件仓储，行为对齐 gorm 实现：
// 查询返回副本，SaveTransition 按 (id, from) 做 CAS.
type fakeFileRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{nextID: 1, rows: make(map[uint]*model.File)}
}

func (r *fakeFileRepo) Create(_ context.Context, f *model.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f.ID = r.nextID
	r.nextID++

	cp := *f
	r.rows[f.ID] = &cp

	return nil
}

func (r *fakeFileRepo) CreateBatch(ctx context.Context, fs []*model.File) error {
	for _, f := range fs {
		if err := r.Create(ctx, f); err != nil {
			return err
		}
	}

	return nil
}

func (r *fakeFileRepo) match(f *model.File, cond repository.Condition) bool {
	switch c := cond.(type) {
	case repository.UploadFileCondition:
		return f.ProjectID == c.ProjectID &&
			f.EntityName == c.EntityName &&
			f.UserUID == c.UserUID &&
			f.Action == c.Action &&
			f.EntityUID == c.EntityUID &&
			f.UploadToken == c.UploadToken &&
			f.State == c.State
	case repository.SubmittedFilesCondition:
		if f.ProjectID != c.ProjectID || f.State != c.State {
			return false
		}

		for _, uid := range c.UIDs {
			if f.UID == uid {
				return true
			}
		}

		return false
	case repository.DownloadFileCondition:
		return f.ProjectID == c.ProjectID && f.UID == c.UID
	default:
		return false
	}
}

func (r *fakeFileRepo) GetOneBy(_ context.Context, cond repository.Condition) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.rows {
		if r.match(f, cond) {
			cp := *f

			return &cp, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r *fakeFileRepo) FindBy(_ context.Context, cond repository.Condition) ([]*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.File

	for _, f := range r.rows {
		if r.match(f, cond) {
			cp := *f
			out = append(out, &cp)
		}
	}

	return out, nil
}

func (r *fakeFileRepo) CountBy(ctx context.Context, cond repository.Condition) (int64, error) {
	fs, err := r.FindBy(ctx, cond)

	return int64(len(fs)), err
}

func (r *fakeFileRepo) Save(_ context.Context, f *model.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *f
	r.rows[f.ID] = &cp

	return nil
}

func (r *fakeFileRepo) SaveTransition(_ context.Context, f *model.File, from model.FileState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rows[f.ID]
	if !ok || stored.State != from {
		return fmt.Errorf("save transition: %w", model.ErrInvalidTransition)
	}

	stored.State = f.State
	stored.FileName = f.FileName
	stored.Size = f.Size

	return nil
}

// fakeProjectRepo 内存项目仓储.
type fakeProjectRepo struct {
	byKey map[string]*model.Project
}

func (r *fakeProjectRepo) GetByAPIKey(_ context.Context, apiKey string) (*model.Project, error) {
	p, ok := r.byKey[apiKey]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return p, nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id uint) (*model.Project, error) {
	for _, p := range r.byKey {
		if p.ID == id {
			return p, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepo) List(_ context.Context) ([]*model.Project, error) {
	ps := make([]*model.Project, 0, len(r.byKey))
	for _, p := range r.byKey {
		ps = append(ps, p)
	}

	return ps, nil
}

// fakeByteStore 内存字节存储.
type fakeByteStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeByteStore() *fakeByteStore {
	return &fakeByteStore{objects: make(map[string][]byte)}
}

func (s *fakeByteStore) SaveStream(_ context.Context, objectName string, r io.Reader, _ int64) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data

	return int64(len(data)), nil
}

func (s *fakeByteStore) OpenForRead(_ context.Context, objectName string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[objectName]
	if !ok {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

const (
	testAPIKey      = "test-api-key-0001"
	otherAPIKey     = "other-api-key-0002"
	testProjectID   = uint(1)
	otherProjectID  = uint(2)
	testUploadPath  = "/api/v1/files/upload"
	testLinkBaseURL = "http://localhost:8080"
)

// newTestService 组装一个全内存依赖的服务实例.
func newTestService() (*FileService, *fakeFileRepo, *fakeByteStore) {
	files := newFakeFileRepo()
	store := newFakeByteStore()
	projects := &fakeProjectRepo{byKey: map[string]*model.Project{
		testAPIKey:  {ID: testProjectID, Name: "test", APIKey: testAPIKey},
		otherAPIKey: {ID: otherProjectID, Name: "other", APIKey: otherAPIKey},
	}}

	svc := newFileService(files, projects, store, nil, configs.LinkConfig{
		BaseURL:    testLinkBaseURL,
		UploadPath: testUploadPath,
	})

	return svc, files, store
}

func testLinkage() types.EntityLinkage {
	return types.EntityLinkage{
		EntityName: "order",
		EntityUID:  "order-42",
		Action:     "attach",
		UserUID:    "user-1",
	}
}

// issueTestLink 签发一个上传链接并取出其中的 token.
func issueTestLink(t *testing.T, svc *FileService, hash string) (uid, tok string) {
	t.Helper()

	resp, err := svc.GetUploadLink(context.Background(), testAPIKey, &types.GetUploadLinkRequest{
		EntityLinkage: testLinkage(),
		File: types.FileSpec{
			FileHash: hash,
			FileName: "invoice.pdf",
			FileExt:  "pdf",
			FileSize: 1024,
		},
	})
	if err != nil {
		t.Fatalf("GetUploadLink failed: %v", err)
	}

	idx := strings.Index(resp.Link, "token=")
	if idx < 0 {
		t.Fatalf("Expected token query in link, got %q", resp.Link)
	}

	return resp.UID, resp.Link[idx+len("token="):]
}

// TestGetLinksIssuesFreshRecords 测试批量签发：按 hash 返回链接，重复调用产生新记录.
func TestGetLinksIssuesFreshRecords(t *testing.T) {
	svc, files, _ := newTestService()
	ctx := context.Background()

	req := &types.GetLinksRequest{
		EntityLinkage: testLinkage(),
		Files: []types.FileSpec{
			{FileHash: "hash-a", FileName: "a.pdf", FileExt: "pdf"},
			{FileHash: "hash-b", FileName: "b.pdf", FileExt: "pdf"},
		},
	}

	resp, err := svc.GetLinks(ctx, testAPIKey, req)
	if err != nil {
		t.Fatalf("GetLinks failed: %v", err)
	}

	if len(resp.Links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(resp.Links))
	}

	for _, hash := range []string{"hash-a", "hash-b"} {
		link, ok := resp.Links[hash]
		if !ok {
			t.Errorf("Expected link for hash %q", hash)

			continue
		}

		if !strings.HasPrefix(link, testLinkBaseURL+testUploadPath+"?token=") {
			t.Errorf("Unexpected link format: %q", link)
		}
	}

	if len(files.rows) != 2 {
		t.Fatalf("Expected 2 records after first call, got %d", len(files.rows))
	}

	// 同一 hash 再签发一次会新建记录而不是复用
	if _, err := svc.GetLinks(ctx, testAPIKey, req); err != nil {
		t.Fatalf("GetLinks (second call) failed: %v", err)
	}

	if len(files.rows) != 4 {
		t.Errorf("Expected 4 records after second call, got %d", len(files.rows))
	}
}

// TestGetLinksUnknownProject 测试无效 API Key.
func TestGetLinksUnknownProject(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetLinks(context.Background(), "bogus-key", &types.GetLinksRequest{
		EntityLinkage: testLinkage(),
		Files:         []types.FileSpec{{FileHash: "h", FileName: "f.pdf"}},
	})
	if !errors.Is(err, ErrUnknownProject) {
		t.Errorf("Expected ErrUnknownProject, got %v", err)
	}
}

// TestUploadHappyPath 测试完整上传：令牌定位记录、两段式状态迁移、实算哈希.
func TestUploadHappyPath(t *testing.T) {
	svc, files, store := newTestService()
	ctx := context.Background()

	uid, tok := issueTestLink(t, svc, "declared-hash")

	content := []byte("hello upload")

	resp, err := svc.Upload(ctx, testAPIKey, tok, bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if resp.UID != uid {
		t.Errorf("Expected uid %q, got %q", uid, resp.UID)
	}

	sum := sha256.Sum256(content)
	if resp.Hash != hex.EncodeToString(sum[:]) {
		t.Errorf("Expected server-side hash %x, got %s", sum, resp.Hash)
	}

	f, err := files.GetOneBy(ctx, repository.DownloadFileCondition{ProjectID: testProjectID, UID: uid})
	if err != nil {
		t.Fatalf("record lookup failed: %v", err)
	}

	if f.State != model.StatePreload {
		t.Errorf("Expected state %q after upload, got %q", model.StatePreload, f.State)
	}

	if f.FileName == "" {
		t.Error("Expected storage file name to be assigned")
	}

	stored, ok := store.objects[f.FileName]
	if !ok {
		t.Fatalf("Expected object %q in store", f.FileName)
	}

	if !bytes.Equal(stored, content) {
		t.Error("Stored bytes differ from uploaded content")
	}
}

// TestUploadTokenSingleUse 测试同一令牌第二次上传失败.
func TestUploadTokenSingleUse(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, tok := issueTestLink(t, svc, "h")

	if _, err := svc.Upload(ctx, testAPIKey, tok, strings.NewReader("first"), 5); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}

	_, err := svc.Upload(ctx, testAPIKey, tok, strings.NewReader("second"), 6)
	if !errors.Is(err, ErrNoMatchingUpload) {
		t.Errorf("Expected ErrNoMatchingUpload for reused token, got %v", err)
	}
}

// TestUploadConcurrentSingleWinner 测试并发上传同一令牌只有一个成功.
func TestUploadConcurrentSingleWinner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, tok := issueTestLink(t, svc, "h")

	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := range workers {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			body := fmt.Sprintf("payload-%d", n)

			_, err := svc.Upload(ctx, testAPIKey, tok, strings.NewReader(body), int64(len(body)))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()

				return
			}

			// 落败方只允许这两种错误
			if !errors.Is(err, ErrNoMatchingUpload) && !errors.Is(err, model.ErrInvalidTransition) {
				t.Errorf("Unexpected loser error: %v", err)
			}
		}(i)
	}

	wg.Wait()

	if successes != 1 {
		t.Errorf("Expected exactly 1 successful upload, got %d", successes)
	}
}

// TestUploadCrossProject 测试别的租户拿着令牌也定位不到记录.
func TestUploadCrossProject(t *testing.T) {
	svc, _, _ := newTestService()

	_, tok := issueTestLink(t, svc, "h")

	_, err := svc.Upload(context.Background(), otherAPIKey, tok, strings.NewReader("x"), 1)
	if !errors.Is(err, ErrNoMatchingUpload) {
		t.Errorf("Expected ErrNoMatchingUpload for cross-project upload, got %v", err)
	}
}

// TestSubmittedFilesSilentOmission 测试提交时静默跳过不存在或状态不符的 uid.
func TestSubmittedFilesSilentOmission(t *testing.T) {
	svc, files, _ := newTestService()
	ctx := context.Background()

	// 一条完成上传的记录
	uidDone, tok := issueTestLink(t, svc, "hash-done")
	if _, err := svc.Upload(ctx, testAPIKey, tok, strings.NewReader("bytes"), 5); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	// 一条还停留在 created 的记录
	uidPending, _ := issueTestLink(t, svc, "hash-pending")

	resp, err := svc.SubmittedFiles(ctx, testAPIKey, &types.SubmittedFilesRequest{
		UIDs: []string{uidDone, uidPending, "no-such-uid"},
	})
	if err != nil {
		t.Fatalf("SubmittedFiles failed: %v", err)
	}

	if len(resp.UIDs) != 1 || resp.UIDs[0] != uidDone {
		t.Fatalf("Expected only %q to be submitted, got %v", uidDone, resp.UIDs)
	}

	f, err := files.GetOneBy(ctx, repository.DownloadFileCondition{ProjectID: testProjectID, UID: uidDone})
	if err != nil {
		t.Fatalf("record lookup failed: %v", err)
	}

	if f.State != model.StateReadyForCheck {
		t.Errorf("Expected state %q after submit, got %q", model.StateReadyForCheck, f.State)
	}

	// 重复提交同一批 uid，已经是终态的记录不再出现在结果里
	resp, err = svc.SubmittedFiles(ctx, testAPIKey, &types.SubmittedFilesRequest{
		UIDs: []string{uidDone},
	})
	if err != nil {
		t.Fatalf("SubmittedFiles (repeat) failed: %v", err)
	}

	if len(resp.UIDs) != 0 {
		t.Errorf("Expected empty result for repeated submit, got %v", resp.UIDs)
	}
}

// TestDownloadAsStream 测试下载返回原始字节与申报文件名.
func TestDownloadAsStream(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	uid, tok := issueTestLink(t, svc, "h")
	content := []byte("download me")

	if _, err := svc.Upload(ctx, testAPIKey, tok, bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	stream, err := svc.DownloadAsStream(ctx, testAPIKey, uid)
	if err != nil {
		t.Fatalf("DownloadAsStream failed: %v", err)
	}
	defer stream.Close()

	if stream.FileName != "invoice.pdf" {
		t.Errorf("Expected declared file name, got %q", stream.FileName)
	}

	got, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream failed: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Error("Downloaded bytes differ from uploaded content")
	}
}

// TestDownloadSizeIsActualBytes 测试下载流报告的大小来自实际落盘字节数.
// 签发链接时申报的大小是调用方随口说的，不能进响应头.
func TestDownloadSizeIsActualBytes(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// issueTestLink 申报 1024 字节，实际只传 11 字节
	uid, tok := issueTestLink(t, svc, "h")
	content := []byte("short bytes")

	if _, err := svc.Upload(ctx, testAPIKey, tok, bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	stream, err := svc.DownloadAsStream(ctx, testAPIKey, uid)
	if err != nil {
		t.Fatalf("DownloadAsStream failed: %v", err)
	}
	defer stream.Close()

	if stream.Size != int64(len(content)) {
		t.Errorf("Expected stream size %d, got %d", len(content), stream.Size)
	}
}

// TestDownloadTenancyIsolation 测试跨租户下载表现为文件不存在.
func TestDownloadTenancyIsolation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	uid, tok := issueTestLink(t, svc, "h")
	if _, err := svc.Upload(ctx, testAPIKey, tok, strings.NewReader("secret"), 6); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	_, err := svc.DownloadAsStream(ctx, otherAPIKey, uid)
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound for cross-project download, got %v", err)
	}
}

// TestDownloadUnfinishedUpload 测试未完成上传的记录不可下载.
func TestDownloadUnfinishedUpload(t *testing.T) {
	svc, _, _ := newTestService()

	uid, _ := issueTestLink(t, svc, "h")

	_, err := svc.DownloadAsStream(context.Background(), testAPIKey, uid)
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound before upload completes, got %v", err)
	}
}
