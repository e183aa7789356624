package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/repository"
	"github.com/yeisme/uplink/pkg/internal/storage/s3"
	"github.com/yeisme/uplink/pkg/internal/token"
	"github.com/yeisme/uplink/pkg/internal/types"
	nlog "github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/metrics"
	"github.com/yeisme/uplink/pkg/queue"
)

// Upload 接收一次上传：解码令牌、定位待上传记录、两段式推进状态机并落盘字节.
//
// loading 状态先于字节传输持久化，传输中途崩溃会留下一条可被巡检发现的
// loading 记录，而不是停在 created 装作什么都没发生.
func (fs *FileService) Upload(ctx context.Context, apiKey, tokenStr string,
	r io.Reader, size int64,
) (*types.UploadResponse, error) {
	payload, err := token.Decode(tokenStr)
	if err != nil {
		return nil, err
	}

	project, err := fs.resolveProject(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	f, err := fs.files.GetOneBy(ctx, repository.UploadFileCondition{
		ProjectID:   project.ID,
		EntityName:  payload.EntityName,
		UserUID:     payload.UserUID,
		Action:      payload.Action,
		EntityUID:   payload.EntityUID,
		UploadToken: payload.UploadToken,
		State:       model.StateCreated,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoMatchingUpload
	}

	if err != nil {
		return nil, err
	}

	// 第一段：created -> loading，并发竞争的落败方在这里收到 ErrInvalidTransition
	if err := f.MoveToLoading(); err != nil {
		return nil, err
	}

	if err := fs.files.SaveTransition(ctx, f, model.StateCreated); err != nil {
		return nil, err
	}

	// 字节落盘，顺路实算内容哈希供调用方比对申报的 fileHash
	objectName := s3.NewObjectName(f.Meta.FileExt)
	hasher := sha256.New()

	written, err := fs.store.SaveStream(ctx, objectName, io.TeeReader(r, hasher), size)
	if err != nil {
		return nil, err
	}

	// 第二段：loading -> preload，物理存储名与实际字节数只在这里赋值一次
	f.FileName = objectName
	f.Size = written

	if err := f.MoveToPreload(); err != nil {
		return nil, err
	}

	if err := fs.files.SaveTransition(ctx, f, model.StateLoading); err != nil {
		return nil, err
	}

	hash := hex.EncodeToString(hasher.Sum(nil))

	metrics.UploadsCompleted.Inc()
	fs.publishUploaded(ctx, f, written, hash)

	return &types.UploadResponse{UID: f.UID, Hash: hash}, nil
}

func (fs *FileService) publishUploaded(ctx context.Context, f *model.File, size int64, hash string) {
	if fs.pub == nil {
		return
	}

	err := queue.PublishFileUploaded(ctx, fs.pub, queue.FileUploadedPayload{
		File:       fileRef(f),
		ObjectName: f.FileName,
		Size:       size,
		Hash:       hash,
	}, queue.WithProducer("uplink"))
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("uid", f.UID).Msg("publish uploaded event failed")
	}
}
