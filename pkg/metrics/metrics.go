// Package metrics 提供 Prometheus 指标.
//
// HTTP 指标由中间件记录，业务指标（食材操作、状态巡检、回收站清理、图片上传）由 service 层记录.
// 指标对象在未初始化时也可安全调用，只是不会被导出.
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		return err
//	}
//	metrics.FoodOperations.WithLabelValues("add", "ok").Inc()
package metrics

import (
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/xianshiji/pkg/configs"
)

const namespace = "xianshiji"

var (
	// RequestCounter HTTP 请求计数.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "code"},
	)

	// RequestDuration HTTP 请求耗时.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 处理中的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// FoodOperations 食材写操作计数，op: add/update_quantity/update_min/update/delete.
	FoodOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "food_operations_total",
			Help:      "Food item mutations by operation and result",
		},
		[]string{"op", "result"},
	)

	// JanitorRuns 定时任务执行次数.
	JanitorRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "janitor_runs_total",
			Help:      "Background job runs by job name and result",
		},
		[]string{"job", "result"},
	)

	// StatusTransitions 巡检落库的状态迁移.
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "food_status_transitions_total",
			Help:      "Persisted food status transitions",
		},
		[]string{"from", "to"},
	)

	// TrashPurged 回收站物理删除的行数.
	TrashPurged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trash_purged_total",
			Help:      "Soft-deleted food items removed permanently",
		},
		[]string{"source"},
	)

	// ImageUploads 图片上传计数，kind: food/avatar.
	ImageUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Image uploads by kind and result",
		},
		[]string{"kind", "result"},
	)

	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// Result 把 error 转为 result 标签.
func Result(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

// InitMetrics 注册全部指标，重复调用无副作用.
func InitMetrics(cfg configs.MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(prometheus.Labels(cfg.Labels), registry)

		if cfg.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			FoodOperations, JanitorRuns, StatusTransitions, TrashPurged, ImageUploads,
		} {
			if err = reg.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// Handler 导出本包注册表与默认注册表（gorm 插件、watermill 指标）的合集.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.Gatherers{registry, prometheus.DefaultGatherer}, promhttp.HandlerOpts{})
}

// StartMetricsServer 在 engine 上挂载指标与可选的 pprof 端点.
func StartMetricsServer(cfg configs.MetricsConfig, engine *gin.Engine) {
	if !cfg.Enabled {
		return
	}

	engine.GET(cfg.Path, gin.WrapH(Handler()))

	if cfg.Pprof {
		engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
		engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
		engine.GET("/debug/pprof/:name", func(c *gin.Context) {
			pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
		})
	}
}

// GetRegistry 获取注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
