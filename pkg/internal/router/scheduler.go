package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度器运维路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	schedRoutes := g.Group("/scheduler")
	{
		schedRoutes.GET("/jobs", handle.SchedulerJobs)
		schedRoutes.POST("/jobs/:name/run", handle.SchedulerRunJob)
		schedRoutes.POST("/jobs/stop", handle.SchedulerStopJobs)
		schedRoutes.GET("/queue/waiting", handle.SchedulerQueueWaiting)
	}
}
