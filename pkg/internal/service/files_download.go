package service

import (
	"context"
	"errors"
	"io"

	"github.com/yeisme/uplink/pkg/internal/repository"
	nlog "github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/metrics"
	"github.com/yeisme/uplink/pkg/queue"
)

// DownloadStream 下载流与附件提示名，调用方负责 Close.
type DownloadStream struct {
	io.ReadCloser

	// FileName 调用方申报的原始文件名，作为附件下载提示
	FileName string
	// Size 实际落盘的字节数，0 表示未知；申报的大小不可信，不用于响应头
	Size int64
}

// DownloadAsStream 按 uid 打开文件字节流.
// uid 查询强制限定租户，别的项目的 uid 在这里表现为 ErrFileNotFound.
// 记录还没有物理存储名（未完成上传）时同样视为不存在.
func (fs *FileService) DownloadAsStream(ctx context.Context, apiKey, uid string) (*DownloadStream, error) {
	project, err := fs.resolveProject(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	f, err := fs.files.GetOneBy(ctx, repository.DownloadFileCondition{
		ProjectID: project.ID,
		UID:       uid,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFileNotFound
	}

	if err != nil {
		return nil, err
	}

	if f.FileName == "" {
		return nil, ErrFileNotFound
	}

	rc, err := fs.store.OpenForRead(ctx, f.FileName)
	if err != nil {
		return nil, err
	}

	metrics.DownloadsServed.Inc()

	if fs.pub != nil {
		perr := queue.PublishFileAccessed(ctx, fs.pub, queue.FileAccessedPayload{
			File:       fileRef(f),
			ObjectName: f.FileName,
		}, queue.WithProducer("uplink"))
		if perr != nil {
			nlog.Logger().Warn().Err(perr).Str("uid", f.UID).Msg("publish accessed event failed")
		}
	}

	return &DownloadStream{
		ReadCloser: rc,
		FileName:   f.Meta.FileName,
		Size:       f.Size,
	}, nil
}
