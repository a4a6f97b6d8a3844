// Package app 装配配置、存储、调度器与 HTTP 服务，并负责优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/xianshiji/pkg/api"
	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/jobs"
	"github.com/yeisme/xianshiji/pkg/internal/storage"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/metrics"
	"github.com/yeisme/xianshiji/pkg/middleware"
	"github.com/yeisme/xianshiji/pkg/scheduler"
	"github.com/yeisme/xianshiji/pkg/token"
	"github.com/yeisme/xianshiji/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// App 持有运行期资源.
type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	storage   *storage.Manager
	scheduler *scheduler.Scheduler
	logger    zerolog.Logger
}

// NewApp 按配置路径初始化应用，任一组件失败时释放已创建的资源.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	config := configs.GetConfig()

	log.Init()

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	sched, err := scheduler.NewScheduler(config.Server.Location())
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(sched, manager, config.Janitor); err != nil {
		_ = sched.Shutdown()
		_ = manager.Close()

		return nil, fmt.Errorf("register jobs: %w", err)
	}

	a := &App{
		config:    config,
		storage:   manager,
		scheduler: sched,
		logger:    log.With("app"),
	}
	a.Engine = a.buildEngine()

	return a, nil
}

func (a *App) buildEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Common(a.config)...)

	if a.config.Metrics.Enabled && a.config.Metrics.Endpoint == "" {
		metrics.StartMetricsServer(a.config.Metrics, engine)
	}

	issuer := token.NewIssuer(a.config.Auth.JWTSecret, a.config.Auth.Issuer, a.config.Auth.TokenTTL)

	engine.Use(
		middleware.StorageMiddleware(a.storage),
		middleware.SchedulerMiddleware(a.scheduler),
		middleware.AuthMiddleware(a.config.Auth, issuer),
		middleware.RateLimitMiddleware(a.config.RateLimit),
	)

	var respCache *cache.Cache
	if kvc := a.storage.GetKVClient(); kvc != nil && a.config.Cache.Enabled {
		respCache = cache.NewCache(kvc, a.config.Cache.Prefix)
	}

	return api.RegisterGroup(engine, respCache, a.config)
}

// Run 启动调度器与 HTTP 服务，ctx 取消后优雅退出.
func (a *App) Run(ctx context.Context) error {
	a.scheduler.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	servers := []*http.Server{srv}

	if a.config.Metrics.Enabled && a.config.Metrics.Endpoint != "" {
		mux := http.NewServeMux()
		mux.Handle(a.config.Metrics.Path, metrics.Handler())

		servers = append(servers, &http.Server{
			Addr:              a.config.Metrics.Endpoint,
			Handler:           mux,
			ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
		})
	}

	errCh := make(chan error, len(servers))

	for _, s := range servers {
		go func(s *http.Server) {
			a.logger.Info().Str("addr", s.Addr).Msg("HTTP server listening")

			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(s)
	}

	var runErr error

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		a.logger.Error().Err(runErr).Msg("HTTP server failed")
	}

	return errors.Join(runErr, a.shutdown(servers))
}

func (a *App) shutdown(servers []*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	for _, s := range servers {
		errs = append(errs, s.Shutdown(ctx))
	}

	errs = append(errs,
		a.scheduler.Shutdown(),
		tracing.ShutdownTracer(ctx),
		a.storage.Close(),
	)

	a.logger.Info().Msg("shutdown complete")

	return errors.Join(errs...)
}
