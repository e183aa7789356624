package service

import (
	"context"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/repository"
	"github.com/yeisme/uplink/pkg/internal/types"
	nlog "github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/metrics"
	"github.com/yeisme/uplink/pkg/queue"
)

// SubmittedFiles 批量提交审核，返回实际完成 preload -> ready_for_check 迁移的 uid.
// 查询只命中本租户处于 preload 的记录，不存在或状态不符的 uid 被静默跳过.
func (fs *FileService) SubmittedFiles(ctx context.Context, apiKey string,
	req *types.SubmittedFilesRequest,
) (*types.SubmittedFilesResponse, error) {
	project, err := fs.resolveProject(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	files, err := fs.files.FindBy(ctx, repository.SubmittedFilesCondition{
		ProjectID: project.ID,
		UIDs:      req.UIDs,
		State:     model.StatePreload,
	})
	if err != nil {
		return nil, err
	}

	submitted := make([]string, 0, len(files))

	for _, f := range files {
		if err := f.MoveToReadyForCheck(); err != nil {
			// 并发提交时另一个请求已经推进了状态，跳过即可
			continue
		}

		if err := fs.files.SaveTransition(ctx, f, model.StatePreload); err != nil {
			nlog.Logger().Warn().Err(err).Str("uid", f.UID).Msg("submit transition lost race")

			continue
		}

		submitted = append(submitted, f.UID)
		fs.publishSubmitted(ctx, f)
	}

	metrics.FilesSubmitted.Add(float64(len(submitted)))

	return &types.SubmittedFilesResponse{UIDs: submitted}, nil
}

func (fs *FileService) publishSubmitted(ctx context.Context, f *model.File) {
	if fs.pub == nil {
		return
	}

	err := queue.PublishFileSubmitted(ctx, fs.pub, queue.FileSubmittedPayload{
		File: fileRef(f),
	}, queue.WithProducer("uplink"))
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("uid", f.UID).Msg("publish submitted event failed")
	}
}
