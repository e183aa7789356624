package model_test

import (
	"errors"
	"testing"

	"github.com/yeisme/uplink/pkg/internal/model"
)

// newTestFile 创建一条测试记录.
func newTestFile(t *testing.T) *model.File {
	t.Helper()

	f, err := model.NewFile(1, "order", "user-1", "attach", "order-42", "deadbeef", model.FileMeta{
		FileName: "invoice.pdf",
		FileSize: 1024,
		FileExt:  "pdf",
	})
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	return f
}

// TestNewFile 测试新建记录的初始状态与字段.
func TestNewFile(t *testing.T) {
	f := newTestFile(t)

	if f.State != model.StateCreated {
		t.Errorf("Expected initial state %q, got %q", model.StateCreated, f.State)
	}

	if f.UID == "" {
		t.Error("Expected non-empty UID")
	}

	if f.UploadToken == "" {
		t.Error("Expected non-empty upload token")
	}

	if f.FileName != "" {
		t.Errorf("Expected empty storage file name before upload, got %q", f.FileName)
	}

	if f.Meta.FileName != "invoice.pdf" {
		t.Errorf("Expected declared file name to be kept, got %q", f.Meta.FileName)
	}
}

// TestUploadTokenUniqueness 测试令牌不重复，熵不足会在这里暴露.
func TestUploadTokenUniqueness(t *testing.T) {
	const n = 1000

	seen := make(map[string]struct{}, n)

	for range n {
		f := newTestFile(t)

		if _, dup := seen[f.UploadToken]; dup {
			t.Fatalf("Duplicate upload token generated: %s", f.UploadToken)
		}

		seen[f.UploadToken] = struct{}{}
	}
}

// TestStateTransitionsHappyPath 测试完整生命周期迁移.
func TestStateTransitionsHappyPath(t *testing.T) {
	f := newTestFile(t)

	if err := f.MoveToLoading(); err != nil {
		t.Fatalf("MoveToLoading failed: %v", err)
	}

	if f.State != model.StateLoading {
		t.Errorf("Expected state %q, got %q", model.StateLoading, f.State)
	}

	f.FileName = "01j0example.pdf"

	if err := f.MoveToPreload(); err != nil {
		t.Fatalf("MoveToPreload failed: %v", err)
	}

	if f.State != model.StatePreload {
		t.Errorf("Expected state %q, got %q", model.StatePreload, f.State)
	}

	if err := f.MoveToReadyForCheck(); err != nil {
		t.Fatalf("MoveToReadyForCheck failed: %v", err)
	}

	if f.State != model.StateReadyForCheck {
		t.Errorf("Expected state %q, got %q", model.StateReadyForCheck, f.State)
	}
}

// TestInvalidTransitions 测试所有非法迁移都被拒绝.
func TestInvalidTransitions(t *testing.T) {
	// created 不能直接 preload 或提交
	f := newTestFile(t)
	f.FileName = "x.pdf"

	if err := f.MoveToPreload(); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for created -> preload, got %v", err)
	}

	if err := f.MoveToReadyForCheck(); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for created -> ready_for_check, got %v", err)
	}

	// loading 不能重复进入
	if err := f.MoveToLoading(); err != nil {
		t.Fatalf("MoveToLoading failed: %v", err)
	}

	if err := f.MoveToLoading(); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for loading -> loading, got %v", err)
	}

	// 终态之后一切迁移都失败
	if err := f.MoveToPreload(); err != nil {
		t.Fatalf("MoveToPreload failed: %v", err)
	}

	if err := f.MoveToReadyForCheck(); err != nil {
		t.Fatalf("MoveToReadyForCheck failed: %v", err)
	}

	if err := f.MoveToLoading(); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition after final state, got %v", err)
	}

	if err := f.MoveToReadyForCheck(); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for repeated submit, got %v", err)
	}
}

// TestMoveToPreloadRequiresFileName 测试没有物理存储名时拒绝进入 preload.
func TestMoveToPreloadRequiresFileName(t *testing.T) {
	f := newTestFile(t)

	if err := f.MoveToLoading(); err != nil {
		t.Fatalf("MoveToLoading failed: %v", err)
	}

	if err := f.MoveToPreload(); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition without file name, got %v", err)
	}

	f.FileName = "01j0example.pdf"

	if err := f.MoveToPreload(); err != nil {
		t.Errorf("Expected success after setting file name, got %v", err)
	}
}
