package service

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/metrics"
	"github.com/yeisme/xianshiji/pkg/queue"
	"github.com/yeisme/xianshiji/pkg/tracing"
)

// Report 一次巡检的结果.
type Report struct {
	Scanned     int            `json:"scanned"`
	Changed     int            `json:"changed"`
	Updated     int64          `json:"updated"`
	Transitions map[string]int `json:"transitions,omitempty"`
	Duration    time.Duration  `json:"duration"`
}

// StatusJanitor 定期重算未删除食材的状态，只回写发生变化的行.
// 只更新 status 列，updated_at 保持不变.
type StatusJanitor struct {
	items     *dao.FoodItemDAO
	sink      eventSink
	clock     foodstatus.Clock
	loc       *time.Location
	batchSize int
	workers   int
	logger    zerolog.Logger
}

// NewStatusJanitorWith 构造巡检器.
func NewStatusJanitorWith(items *dao.FoodItemDAO, cfg configs.JanitorConfig, loc *time.Location, clock foodstatus.Clock) *StatusJanitor {
	if clock == nil {
		clock = time.Now
	}

	if loc == nil {
		loc = time.Local
	}

	j := &StatusJanitor{
		items:     items,
		clock:     clock,
		loc:       loc,
		batchSize: max(cfg.BatchSize, 1),
		workers:   max(cfg.Workers, 1),
		logger:    log.With("janitor"),
	}
	j.sink.logger = j.logger

	return j
}

// WithPublisher 启用状态迁移事件.
func (j *StatusJanitor) WithPublisher(pub message.Publisher, events configs.EventsConfig) *StatusJanitor {
	j.sink.pub, j.sink.events = pub, events
	return j
}

// NewStatusJanitor 从 context 中的存储管理器构造.
func NewStatusJanitor(c context.Context) *StatusJanitor {
	cfg := configs.GetConfig()
	_, sink := depsFromContext(c)

	return NewStatusJanitorWith(
		dao.NewFoodItemDAO(ctxPkg.GetDBClient(c).GetDB()),
		cfg.Janitor, cfg.Server.Location(), nil,
	).WithPublisher(sink.pub, sink.events)
}

type transition struct {
	from, to foodstatus.Status
}

// Reconcile 分批扫描并校正持久化状态.
func (j *StatusJanitor) Reconcile(ctx context.Context) (Report, error) {
	ctx, span := tracing.StartSpan(ctx, "janitor.reconcile")
	defer span.End()

	start := time.Now()
	today := j.clock.Today(j.loc)

	var (
		mu     sync.Mutex
		report = Report{Transitions: map[string]int{}}
	)

	err := j.items.ScanActive(ctx, j.batchSize, func(batch []model.FoodItem) error {
		groups := map[transition][]model.FoodItem{}

		for i := range batch {
			prev := batch[i].Status
			if batch[i].Refresh(today) {
				key := transition{from: prev, to: batch[i].Status}
				groups[key] = append(groups[key], batch[i])
			}
		}

		report.Scanned += len(batch)

		p := pool.New().WithMaxGoroutines(j.workers).WithContext(ctx).WithCancelOnError()

		for tr, items := range groups {
			p.Go(func(ctx context.Context) error {
				ids := make([]uint, len(items))
				for i := range items {
					ids[i] = items[i].ID
				}

				rows, err := j.items.UpdateStatus(ctx, ids, tr.to)
				if err != nil {
					return err
				}

				mu.Lock()
				report.Changed += len(items)
				report.Updated += rows
				report.Transitions[string(tr.from)+"->"+string(tr.to)] += len(items)
				mu.Unlock()

				metrics.StatusTransitions.WithLabelValues(string(tr.from), string(tr.to)).Add(float64(len(items)))

				for i := range items {
					emit(ctx, j.sink, j.sink.events.Food.StatusChanged, queue.TopicFoodStatusChanged,
						queue.FoodStatusChangedPayload{Item: foodRef(&items[i]), From: tr.from.String(), To: tr.to.String()})
				}

				return nil
			})
		}

		return p.Wait()
	})

	report.Duration = time.Since(start)
	metrics.JanitorRuns.WithLabelValues("status", metrics.Result(err)).Inc()

	if err != nil {
		return report, wrap("reconcile food status", err)
	}

	j.logger.Info().
		Int("scanned", report.Scanned).
		Int("changed", report.Changed).
		Int64("updated", report.Updated).
		Dur("took", report.Duration).
		Msg("food status reconciled")

	return report, nil
}
