package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/uplink/pkg/internal/model"
	"github.com/yeisme/uplink/pkg/internal/storage/kv"
	nlog "github.com/yeisme/uplink/pkg/log"
)

// cachedProjectRepository 在 KV 缓存前置的租户仓储装饰器.
// API Key 解析发生在每个请求上，缓存把热路径上的数据库查询摊平.
// 缓存键只存 key 的 xxhash，原始 API Key 不落缓存.
type cachedProjectRepository struct {
	inner ProjectRepository
	store kv.KVStore
	ttl   time.Duration
}

// NewCachedProjectRepository 用 KV 缓存包装租户仓储.
// ttl 为零时退化为直查.
func NewCachedProjectRepository(inner ProjectRepository, store kv.KVStore, ttl time.Duration) ProjectRepository {
	return &cachedProjectRepository{inner: inner, store: store, ttl: ttl}
}

// cacheKey 生成缓存键，xxhash 避免把 API Key 明文写进缓存后端.
func cacheKey(apiKey string) string {
	return fmt.Sprintf("uplink:project:%x", xxhash.Sum64String(apiKey))
}

func (r *cachedProjectRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.Project, error) {
	if r.store == nil || r.ttl <= 0 {
		return r.inner.GetByAPIKey(ctx, apiKey)
	}

	key := cacheKey(apiKey)

	if raw, err := r.store.Get(ctx, key); err == nil {
		var p model.Project
		if err := sonic.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		// 缓存内容损坏，清掉走直查
		_ = r.store.Delete(ctx, key)
	}

	p, err := r.inner.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if raw, err := sonic.Marshal(p); err == nil {
		if err := r.store.Set(ctx, key, raw, r.ttl); err != nil {
			nlog.Logger().Warn().Err(err).Msg("cache project failed")
		}
	}

	return p, nil
}

func (r *cachedProjectRepository) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedProjectRepository) List(ctx context.Context) ([]*model.Project, error) {
	return r.inner.List(ctx)
}

// WarmProjectCache 把全部租户预写进 KV 缓存，返回写入条数.
// 服务启动或周期任务调用，让首个请求不必等一次数据库往返.
func WarmProjectCache(ctx context.Context, inner ProjectRepository, store kv.KVStore, ttl time.Duration) (int, error) {
	if store == nil || ttl <= 0 {
		return 0, nil
	}

	ps, err := inner.List(ctx)
	if err != nil {
		return 0, err
	}

	warmed := 0

	for _, p := range ps {
		raw, err := sonic.Marshal(p)
		if err != nil {
			continue
		}

		if err := store.Set(ctx, cacheKey(p.APIKey), raw, ttl); err != nil {
			nlog.Logger().Warn().Err(err).Uint("project_id", p.ID).Msg("warm project cache failed")

			continue
		}

		warmed++
	}

	return warmed, nil
}
