// Package middleware 提供 gin 中间件：认证、限流、熔断、响应缓存、日志、指标与追踪.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-contrib/gzip"

	"github.com/yeisme/xianshiji/pkg/configs"
)

// Common 返回所有路由共用的中间件，顺序即执行顺序.
func Common(cfg *configs.AppConfig) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		gin.Recovery(),
		CORSMiddleware(cfg.Server),
		GinLoggerMiddleware(),
	}

	if cfg.Tracing.Enabled {
		chain = append(chain, TracingMiddleware())
	}

	if cfg.Metrics.Enabled {
		chain = append(chain, PrometheusMiddleware())
	}

	return append(chain,
		gzip.Gzip(gzip.DefaultCompression),
		CircuitBreakerMiddleware(cfg.CircuitBreaker),
	)
}
