// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/storage"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/scheduler"
)

// RegisterCronJobs 按配置注册定时任务：
//   - status_cron 周期校正食材状态
//   - midnight_cron 跨日后再校正一次，使临期与过期及时落库
//   - trash_cron 清理超过保留天数的回收站食材，保留天数为 0 时不注册
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.JanitorConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	if !cfg.Enabled {
		log.With("jobs").Info().Msg("janitor disabled, no cron jobs registered")
		return nil
	}

	reconcile := func(ctx context.Context) error {
		_, err := RunStatusReconcile(ctx, mgr)
		return err
	}

	if err := sched.AddCron(JobStatusReconcile, cfg.StatusCron, reconcile); err != nil {
		return err
	}

	if err := sched.AddCron(JobStatusReconcileMidnight, cfg.MidnightCron, reconcile); err != nil {
		return err
	}

	if cfg.TrashRetentionDays <= 0 {
		return nil
	}

	return sched.AddCron(JobTrashAutoClean, cfg.TrashCron, func(ctx context.Context) error {
		_, err := RunTrashAutoClean(ctx, mgr, cfg.TrashRetentionDays)
		return err
	})
}

// RunStatusReconcile 执行一次状态校正.
func RunStatusReconcile(ctx context.Context, mgr *storage.Manager) (service.Report, error) {
	ctx = ctxPkg.WithStorageManager(ctx, mgr)

	report, err := service.NewStatusJanitor(ctx).Reconcile(ctx)
	if err != nil {
		log.With("jobs").Error().Err(err).Str("job", JobStatusReconcile).Msg("status reconcile failed")
	}

	return report, err
}

// RunTrashAutoClean 彻底删除 retentionDays 天前进入回收站的食材.
func RunTrashAutoClean(ctx context.Context, mgr *storage.Manager, retentionDays int) (int64, error) {
	ctx = ctxPkg.WithStorageManager(ctx, mgr)
	before := time.Now().AddDate(0, 0, -retentionDays)

	n, err := service.NewTrashService(ctx).AutoClean(ctx, before)
	if err != nil {
		log.With("jobs").Error().Err(err).Str("job", JobTrashAutoClean).Msg("trash auto clean failed")
	}

	return n, err
}
