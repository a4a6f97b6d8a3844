package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/metrics"
	"github.com/yeisme/xianshiji/pkg/queue"
)

// TrashService 回收站：软删除食材的查询、恢复与彻底删除.
type TrashService struct {
	items  *dao.FoodItemDAO
	stats  statsCache
	sink   eventSink
	clock  foodstatus.Clock
	loc    *time.Location
	logger zerolog.Logger
}

// NewTrashServiceWith 直接注入依赖.
func NewTrashServiceWith(items *dao.FoodItemDAO, loc *time.Location, clock foodstatus.Clock) *TrashService {
	if clock == nil {
		clock = time.Now
	}

	t := &TrashService{items: items, clock: clock, loc: loc, logger: log.With("trash")}
	t.sink.logger = t.logger

	return t
}

// NewTrashService 从 context 中的存储管理器构造.
func NewTrashService(c context.Context) *TrashService {
	t := NewTrashServiceWith(
		dao.NewFoodItemDAO(ctxPkg.GetDBClient(c).GetDB()),
		configs.GetConfig().Server.Location(), nil,
	)

	stats, sink := depsFromContext(c)
	t.stats = stats
	t.sink.pub, t.sink.events = sink.pub, sink.events

	return t
}

// List 分页列出用户回收站.
func (t *TrashService) List(ctx context.Context, userID uint, page, size int) (types.TrashListResponse, error) {
	page, size = pageBounds(page, size)

	items, total, err := t.items.FindDeletedByUser(ctx, userID, (page-1)*size, size)
	if err != nil {
		return types.TrashListResponse{}, wrap("list trash", err)
	}

	return types.TrashListResponse{Total: total, Page: page, Size: size, Items: items}, nil
}

// Restore 恢复用户回收站中的食材，并按当前日期重算状态.
func (t *TrashService) Restore(ctx context.Context, userID uint, ids []uint) (int64, error) {
	items, err := t.items.FindDeletedByIDs(ctx, userID, ids)
	if err != nil {
		return 0, wrap("find trash items", err)
	}

	today := t.clock.Today(t.loc)
	now := t.clock()

	var (
		affected int64
		restored []uint
	)

	for i := range items {
		items[i].Refresh(today)
		items[i].UpdatedAt = now

		rows, err := t.items.Restore(ctx, &items[i])
		if err != nil {
			return affected, wrap("restore food item", err)
		}

		if rows > 0 {
			affected += rows
			restored = append(restored, items[i].ID)
		}
	}

	if affected > 0 {
		t.stats.invalidate(ctx, t.logger, userID)
		emit(ctx, t.sink, t.sink.events.Food.Restored, queue.TopicFoodRestored,
			queue.FoodRestoredPayload{UserID: userID, IDs: restored})
	}

	return affected, nil
}

// Purge 彻底删除用户回收站中的食材.
func (t *TrashService) Purge(ctx context.Context, userID uint, ids []uint) (int64, error) {
	rows, err := t.items.Purge(ctx, userID, ids)
	if err != nil {
		return 0, wrap("purge trash", err)
	}

	metrics.TrashPurged.WithLabelValues("user").Add(float64(rows))

	return rows, nil
}

// AutoClean 彻底删除 before 之前进入回收站的食材（全部用户）.
func (t *TrashService) AutoClean(ctx context.Context, before time.Time) (int64, error) {
	rows, err := t.items.PurgeDeletedBefore(ctx, before)
	metrics.JanitorRuns.WithLabelValues("trash", metrics.Result(err)).Inc()

	if err != nil {
		return 0, wrap("auto clean trash", err)
	}

	metrics.TrashPurged.WithLabelValues("auto").Add(float64(rows))

	if rows > 0 {
		t.logger.Info().Int64("purged", rows).Time("before", before).Msg("trash auto cleaned")
	}

	return rows, nil
}
