// Package router 把处理器绑定到 gin 路由，业务路由挂在根路径，运维路由挂在 /api/v1.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/middleware"
)

// Options 路由注册所需的可选依赖.
type Options struct {
	// Cache 非 nil 时为 CachedRoutes 中的路由组启用响应缓存
	Cache *cache.Cache
	// Config 为 nil 时使用全局配置
	Config *configs.AppConfig
}

// Register 注册全部业务与运维路由.
func Register(e *gin.Engine, opts Options) {
	cfg := opts.Config
	if cfg == nil {
		cfg = configs.GetConfig()
	}

	root := &e.RouterGroup

	RegisterFoodItemRoutes(root, groupCache(opts.Cache, cfg, "/food-items"))
	RegisterRecipeRoutes(root, groupCache(opts.Cache, cfg, "/recipes"))
	RegisterFamilyRoutes(root, groupCache(opts.Cache, cfg, "/families"))
	RegisterUserRoutes(root)

	v1 := e.Group("/api/v1")
	RegisterHealthCheckRoute(v1)
	RegisterSchedulerRoutes(v1)

	RegisterSwaggerRoute(e, cfg)
}

// groupCache 返回路由组的响应缓存中间件，未启用时为空.
func groupCache(c *cache.Cache, cfg *configs.AppConfig, prefix string) []gin.HandlerFunc {
	if c == nil || !cfg.Cache.Enabled {
		return nil
	}

	for _, route := range cfg.Cache.CachedRoutes {
		if strings.TrimSuffix(route, "/") != prefix {
			continue
		}

		return []gin.HandlerFunc{middleware.ResponseCache(middleware.ResponseCacheOptions{
			Cache:     c,
			Namespace: strings.TrimPrefix(prefix, "/"),
			TTL:       cfg.Cache.ResponseTTL,
			// 不同令牌不共享响应
			VaryHeaders: []string{"Authorization"},
		})}
	}

	return nil
}
