package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/storage"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

// StorageMiddleware 将存储管理器注入请求上下文，service 通过 context 获取 DB/KV/MQ/S3.
// 数据库不可用时直接返回 503.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil || manager.GetDBClient() == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, types.Fail("存储未初始化"))
			return
		}

		c.Request = c.Request.WithContext(context.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
