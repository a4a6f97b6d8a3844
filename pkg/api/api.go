// Package api 汇总对外暴露的 HTTP 路由.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/router"
)

// RegisterGroup 注册全部路由到传入的 gin 引擎，respCache 为 nil 时不启用响应缓存.
func RegisterGroup(e *gin.Engine, respCache *cache.Cache, cfg *configs.AppConfig) *gin.Engine {
	router.Register(e, router.Options{Cache: respCache, Config: cfg})

	return e
}
