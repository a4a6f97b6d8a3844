package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/scheduler"
)

const schedulerKey = "scheduler"

// SchedulerMiddleware 把调度器挂到 gin 上下文，供运维接口查询与触发任务.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Set(schedulerKey, sched)
		}

		c.Next()
	}
}

// GetScheduler 返回当前调度器，未注入时为 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	v, ok := c.Get(schedulerKey)
	if !ok {
		return nil
	}

	sched, _ := v.(*scheduler.Scheduler)

	return sched
}
