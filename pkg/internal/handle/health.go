package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
)

const healthTimeout = 2 * time.Second

type healthCheck func(ctx context.Context) (bool, string)

func unhealthy(c *gin.Context, component, msg string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": msg})
}

func checkDB(ctx context.Context) (bool, string) {
	dbc := ctxPkg.GetDBClient(ctx)
	if dbc == nil || dbc.DB == nil {
		return false, "db client not initialized"
	}

	if err := dbc.Ping(ctx); err != nil {
		return false, err.Error()
	}

	return true, ""
}

func checkKV(ctx context.Context) (bool, string) {
	kvc := ctxPkg.GetKVClient(ctx)
	if kvc == nil || kvc.KVStore == nil {
		return false, "kv client not initialized"
	}

	if _, err := kvc.Exists(ctx, "health:probe"); err != nil {
		return false, err.Error()
	}

	return true, ""
}

func checkMQ(ctx context.Context) (bool, string) {
	// publisher 与 subscriber 在 New 中创建，判空即可
	if ctxPkg.GetMQClient(ctx) == nil {
		return false, "mq client not initialized"
	}

	return true, ""
}

func checkS3(ctx context.Context) (bool, string) {
	s3c := ctxPkg.GetS3Client(ctx)
	if s3c == nil || s3c.ObjectStore == nil {
		return false, "s3 client not initialized"
	}

	if err := s3c.HealthCheck(ctx); err != nil {
		return false, err.Error()
	}

	return true, ""
}

func healthHandler(component string, check healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if ok, msg := check(ctx); !ok {
			unhealthy(c, component, msg)
			return
		}

		c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
	}
}

var (
	// HealthDB 数据库健康检查.
	HealthDB = healthHandler("db", checkDB)
	// HealthKV 键值存储健康检查.
	HealthKV = healthHandler("kv", checkKV)
	// HealthMQ 消息队列健康检查.
	HealthMQ = healthHandler("mq", checkMQ)
	// HealthS3 对象存储健康检查.
	HealthS3 = healthHandler("s3", checkS3)
)

// Health 汇总检查，仅数据库不可用时返回 503，其余组件未启用记为 disabled.
//
//	@Summary	健康检查
//	@Tags		运维
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/api/v1/health [get]
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	components := gin.H{}
	status := http.StatusOK

	for _, item := range []struct {
		name  string
		check healthCheck
	}{
		{"db", checkDB},
		{"kv", checkKV},
		{"mq", checkMQ},
		{"s3", checkS3},
	} {
		ok, msg := item.check(ctx)

		switch {
		case ok:
			components[item.name] = "ok"
		case item.name == "db":
			components[item.name] = msg
			status = http.StatusServiceUnavailable
		default:
			components[item.name] = "disabled: " + msg
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{"status": overall, "components": components})
}
