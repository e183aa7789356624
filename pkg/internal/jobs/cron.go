// Package jobs 注册上传链路的后台定时任务.
package jobs

import (
	"context"
	"time"

	"github.com/yeisme/uplink/pkg/configs"
	ctxPkg "github.com/yeisme/uplink/pkg/context"
	"github.com/yeisme/uplink/pkg/internal/repository"
	"github.com/yeisme/uplink/pkg/internal/storage"
	"github.com/yeisme/uplink/pkg/log"
	"github.com/yeisme/uplink/pkg/metrics"
	"github.com/yeisme/uplink/pkg/queue"
	"github.com/yeisme/uplink/pkg/scheduler"
)

// 超过该时长仍处于 loading 视为滞留，多为传输中断或进程崩溃残留.
const staleLoadingThreshold = 30 * time.Minute

// RegisterCronJobs 注册所有定时任务.
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if err := sched.AddCron(JobStaleLoadingSweep, cronStaleLoadingSweep, staleLoadingSweep, baseCtx); err != nil {
		return err
	}

	if err := sched.AddCron(JobProjectCacheWarmup, cronProjectCacheWarmup, projectCacheWarmup, baseCtx); err != nil {
		return err
	}

	return nil
}

// projectCacheWarmup 把租户表预写进 KV 缓存，避免 TTL 到期后的首请求抖动.
func projectCacheWarmup(ctx context.Context) {
	l := log.Logger()

	mgr := ctxPkg.GetManager(ctx)
	if mgr == nil || mgr.KV == nil {
		return
	}

	ttl := time.Duration(configs.GetConfig().KV.TTLSeconds) * time.Second

	repo := repository.NewProjectRepository(mgr.GetDBClient().DB)

	warmed, err := repository.WarmProjectCache(ctx, repo, mgr.KV, ttl)
	if err != nil {
		l.Error().Err(err).Msg("project cache warmup failed")

		return
	}

	l.Debug().Int("projects", warmed).Msg("project cache warmed")
}

// staleLoadingSweep 统计长时间停留在 loading 状态的记录.
// 只观测不修复：记录可能仍在慢速传输中，清理策略由运维按事件决定.
func staleLoadingSweep(ctx context.Context) {
	l := log.Logger()

	mgr := ctxPkg.GetManager(ctx)
	if mgr == nil {
		l.Error().Msg("storage manager not available, skip stale loading sweep")

		return
	}

	repo := repository.NewFileRepository(mgr.GetDBClient().DB)
	cutoff := time.Now().Add(-staleLoadingThreshold)

	n, err := repo.CountBy(ctx, repository.StaleLoadingCondition{UpdatedBefore: cutoff})
	if err != nil {
		l.Error().Err(err).Msg("count stale loading files failed")

		return
	}

	metrics.StaleLoadingFiles.Set(float64(n))

	if n == 0 {
		l.Debug().Msg("no stale loading files found")

		return
	}

	l.Warn().Int64("count", n).Dur("threshold", staleLoadingThreshold).Msg("stale loading files detected")

	mqClient := mgr.GetMQClient()
	if mqClient == nil {
		return
	}

	payload := queue.FileStaleLoadingPayload{
		Count:     int(n),
		Threshold: staleLoadingThreshold.String(),
		CheckedAt: time.Now(),
	}

	if err := queue.PublishFileStaleLoading(ctx, mqClient, payload); err != nil {
		l.Warn().Err(err).Msg("publish stale loading event failed")
	}
}
