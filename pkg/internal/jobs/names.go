package jobs

// 定时任务名称常量.
const (
	// JobStaleLoadingSweep 巡检长时间停留在 loading 状态的上传记录.
	JobStaleLoadingSweep = "stale_loading_sweep"
	// JobProjectCacheWarmup 预热 API Key 到租户的查询缓存.
	JobProjectCacheWarmup = "project_cache_warmup"
)

// cron 表达式.
const (
	// 每 10 分钟巡检一次
	cronStaleLoadingSweep = "*/10 * * * *"
	// 整点预热，TTL 到期前把租户表重新铺进缓存
	cronProjectCacheWarmup = "0 * * * *"
)
