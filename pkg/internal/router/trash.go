package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/handle"
)

// RegisterTrashRoutes 注册回收站路由，挂在 /food-items 下.
func RegisterTrashRoutes(g *gin.RouterGroup) {
	trashRoutes := g.Group("/trash")
	{
		trashRoutes.GET("", handle.ListTrash)
		trashRoutes.POST("/restore", handle.RestoreTrash)
		// 永久删除指定食材
		trashRoutes.DELETE("", handle.PurgeTrash)
	}
}
