package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/configs"
)

// CORSMiddleware CORS中间件，允许携带 Authorization 头.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "X-Cache-Bypass")
	config.ExposeHeaders = []string{"X-Cache", "ETag", "Age"}

	origins := cfg.AllowOrigins
	if cfg.Debug || len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	return cors.New(config)
}
