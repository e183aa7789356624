// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/yeisme/uplink/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.LinksIssued.Add(3)
//	metrics.UploadsCompleted.Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/uplink/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// LinksIssued 已签发上传链接总数.
	LinksIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uplink_links_issued_total",
			Help: "Total number of upload links issued",
		},
	)

	// UploadsCompleted 已完成上传总数（created→preload 全程成功）.
	UploadsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uplink_uploads_completed_total",
			Help: "Total number of uploads completed through to preload",
		},
	)

	// FilesSubmitted 已提交审核的文件总数.
	FilesSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uplink_files_submitted_total",
			Help: "Total number of files submitted for check",
		},
	)

	// DownloadsServed 已响应的下载流总数.
	DownloadsServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uplink_downloads_served_total",
			Help: "Total number of download streams served",
		},
	)

	// StaleLoadingFiles 长时间停留在 loading 状态的文件数量，由巡检任务刷新.
	StaleLoadingFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "uplink_stale_loading_files",
			Help: "Number of files stuck in loading state beyond the threshold",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration,
		LinksIssued, UploadsCompleted, FilesSubmitted, DownloadsServed,
		StaleLoadingFiles,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return nil
}

// ServePprof 注册pprof端点到传入的引擎.
func ServePprof(debugEngine *gin.Engine) {
	debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// NewCounter 创建新的计数器指标.
func NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(counter)

	return counter
}

// NewGauge 创建新的仪表盘指标.
func NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(gauge)

	return gauge
}

// NewHistogram 创建新的直方图指标.
func NewHistogram(name, help string, labels []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: prometheus.DefBuckets,
		},
		labels,
	)
	registry.MustRegister(histogram)

	return histogram
}
