package service

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/metrics"
	"github.com/yeisme/xianshiji/pkg/queue"
	"github.com/yeisme/xianshiji/pkg/tracing"
)

// FoodItemService 食材生命周期管理.
//
// 读操作只在内存中刷新状态后返回，不回写数据库；持久化的状态由 StatusJanitor 定期校正.
// 写操作先校验归属：食材不存在与不属于请求者不做区分，统一返回 false.
type FoodItemService struct {
	items  dao.FoodItemGateway
	stats  statsCache
	sink   eventSink
	clock  foodstatus.Clock
	loc    *time.Location
	logger zerolog.Logger
}

// FoodItemOption 配置 FoodItemService.
type FoodItemOption func(*FoodItemService)

// WithClock 注入时钟.
func WithClock(clock foodstatus.Clock) FoodItemOption {
	return func(s *FoodItemService) { s.clock = clock }
}

// WithLocation 设置计算日期使用的时区.
func WithLocation(loc *time.Location) FoodItemOption {
	return func(s *FoodItemService) { s.loc = loc }
}

// WithStatsCache 启用统计缓存.
func WithStatsCache(c *cache.Cache, ttl time.Duration) FoodItemOption {
	return func(s *FoodItemService) { s.stats = statsCache{c: c, ttl: ttl} }
}

// WithPublisher 启用领域事件.
func WithPublisher(pub message.Publisher, events configs.EventsConfig) FoodItemOption {
	return func(s *FoodItemService) { s.sink.pub, s.sink.events = pub, events }
}

// NewFoodItemServiceWith 使用给定网关构造.
func NewFoodItemServiceWith(items dao.FoodItemGateway, opts ...FoodItemOption) *FoodItemService {
	s := &FoodItemService{
		items:  items,
		clock:  time.Now,
		loc:    time.Local,
		logger: log.With("food"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sink.logger = s.logger

	return s
}

// NewFoodItemService 从请求 context 中的存储管理器构造.
func NewFoodItemService(c context.Context) *FoodItemService {
	stats, sink := depsFromContext(c)

	s := NewFoodItemServiceWith(
		dao.NewFoodItemDAO(ctxPkg.GetDBClient(c).GetDB()),
		WithLocation(configs.GetConfig().Server.Location()),
	)
	s.stats = stats
	s.sink.pub, s.sink.events = sink.pub, sink.events

	return s
}

func (s *FoodItemService) today() time.Time {
	return s.clock.Today(s.loc)
}

func (s *FoodItemService) now() time.Time {
	return s.clock()
}

func (s *FoodItemService) refresh(list []model.FoodItem) []model.FoodItem {
	today := s.today()
	for i := range list {
		list[i].Refresh(today)
	}

	return list
}

// List 用户全部食材.
func (s *FoodItemService) List(ctx context.Context, userID uint) ([]model.FoodItem, error) {
	list, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, wrap("list food items", err)
	}

	return s.refresh(list), nil
}

// ListByCategory 按分类查询.
func (s *FoodItemService) ListByCategory(ctx context.Context, userID uint, category string) ([]model.FoodItem, error) {
	list, err := s.items.FindByUserIDAndCategory(ctx, userID, category)
	if err != nil {
		return nil, wrap("list food items by category", err)
	}

	return s.refresh(list), nil
}

// Search 按名称关键字查询.
func (s *FoodItemService) Search(ctx context.Context, userID uint, keyword string) ([]model.FoodItem, error) {
	list, err := s.items.FindByUserIDAndKeyword(ctx, userID, keyword)
	if err != nil {
		return nil, wrap("search food items", err)
	}

	return s.refresh(list), nil
}

// ListByStatus 按状态过滤，无法识别的状态返回全部食材.
func (s *FoodItemService) ListByStatus(ctx context.Context, userID uint, status string) ([]model.FoodItem, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	want, ok := foodstatus.Parse(status)
	if !ok {
		return list, nil
	}

	out := make([]model.FoodItem, 0, len(list))
	for _, item := range list {
		if item.Status == want {
			out = append(out, item)
		}
	}

	return out, nil
}

// Get 查询单个食材，不存在或不属于请求者时返回 nil.
func (s *FoodItemService) Get(ctx context.Context, id, requesterID uint) (*model.FoodItem, error) {
	item, err := s.owned(ctx, id, requesterID)
	if err != nil || item == nil {
		return nil, err
	}

	item.Refresh(s.today())

	return item, nil
}

// Statistics 统计分类数与各状态数量，结果按用户缓存.
func (s *FoodItemService) Statistics(ctx context.Context, userID uint) (types.FoodItemStatistics, error) {
	load := func() (types.FoodItemStatistics, error) {
		list, err := s.List(ctx, userID)
		if err != nil {
			return types.FoodItemStatistics{}, err
		}

		return summarize(list), nil
	}

	if s.stats.c == nil {
		return load()
	}

	return cache.GetOrSet(ctx, s.stats.c, statsKey(userID), load, s.stats.ttl)
}

func summarize(list []model.FoodItem) types.FoodItemStatistics {
	categories := make(map[string]struct{}, len(list))
	st := types.FoodItemStatistics{TotalItems: len(list)}

	for _, item := range list {
		categories[item.Category] = struct{}{}

		switch item.Status {
		case foodstatus.NearExpiry:
			st.NearExpiry++
		case foodstatus.Insufficient:
			st.Insufficient++
		case foodstatus.Expired:
			st.Expired++
		}
	}

	st.TotalCategories = len(categories)

	return st
}

// Add 新增食材，返回写入后的记录；数量不大于 0 的食材不入库.
func (s *FoodItemService) Add(ctx context.Context, item *model.FoodItem) (*model.FoodItem, error) {
	if !item.Quantity.IsPositive() {
		return nil, ErrQuantityNotPositive
	}

	ctx, span := tracing.StartSpan(ctx, "food.add")
	defer span.End()

	now := s.now()
	item.ID = 0
	item.IsDeleted = 0
	item.DeletedAt = nil
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Refresh(s.today())

	err := s.items.Insert(ctx, item)
	metrics.FoodOperations.WithLabelValues("add", metrics.Result(err)).Inc()

	if err != nil {
		return nil, wrap("insert food item", err)
	}

	s.stats.invalidate(ctx, s.logger, item.UserID)
	emit(ctx, s.sink, s.sink.events.Food.Added, queue.TopicFoodAdded, queue.FoodAddedPayload{Item: foodRef(item)})

	return item, nil
}

// UpdateQuantity 修改数量；数量不大于 0 时改为软删除.
func (s *FoodItemService) UpdateQuantity(ctx context.Context, id uint, quantity decimal.Decimal, requesterID uint) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "food.update_quantity")
	defer span.End()

	item, err := s.owned(ctx, id, requesterID)
	if err != nil || item == nil {
		return false, err
	}

	prev := item.Status
	item.Quantity = quantity
	item.UpdatedAt = s.now()
	item.Refresh(s.today())

	if !quantity.IsPositive() {
		rows, err := s.items.SoftDeleteByID(ctx, id)
		metrics.FoodOperations.WithLabelValues("delete_zero", metrics.Result(err)).Inc()

		if err != nil {
			return false, wrap("soft delete food item", err)
		}

		if rows > 0 {
			s.stats.invalidate(ctx, s.logger, item.UserID)
			emit(ctx, s.sink, s.sink.events.Food.Deleted, queue.TopicFoodDeleted, queue.FoodDeletedPayload{
				Item: foodRef(item), Reason: queue.DeleteReasonZeroQuantity,
			})
		}

		return rows > 0, nil
	}

	return s.persist(ctx, item, prev, queue.UpdateFieldQuantity, "update_quantity")
}

// UpdateMinQuantity 修改或清除最低库存.
func (s *FoodItemService) UpdateMinQuantity(ctx context.Context, id uint, minQuantity *decimal.Decimal, requesterID uint) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "food.update_min_quantity")
	defer span.End()

	item, err := s.owned(ctx, id, requesterID)
	if err != nil || item == nil {
		return false, err
	}

	prev := item.Status
	item.MinQuantity = minQuantity
	item.UpdatedAt = s.now()
	item.Refresh(s.today())

	return s.persist(ctx, item, prev, queue.UpdateFieldMinQuantity, "update_min")
}

// UpdateFoodItem 覆盖食材的可编辑字段.
func (s *FoodItemService) UpdateFoodItem(ctx context.Context, id uint, patch *model.FoodItem, requesterID uint) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "food.update")
	defer span.End()

	item, err := s.owned(ctx, id, requesterID)
	if err != nil || item == nil {
		return false, err
	}

	prev := item.Status
	item.Name = patch.Name
	item.Category = patch.Category
	item.Quantity = patch.Quantity
	item.Unit = patch.Unit
	item.MinQuantity = patch.MinQuantity
	item.PurchaseDate = patch.PurchaseDate
	item.ExpiryDate = patch.ExpiryDate
	item.ImageURL = patch.ImageURL
	item.UpdatedAt = s.now()
	item.Refresh(s.today())

	return s.persist(ctx, item, prev, queue.UpdateFieldAll, "update")
}

// Delete 软删除食材.
func (s *FoodItemService) Delete(ctx context.Context, id, requesterID uint) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "food.delete")
	defer span.End()

	item, err := s.owned(ctx, id, requesterID)
	if err != nil || item == nil {
		return false, err
	}

	rows, err := s.items.SoftDeleteByID(ctx, id)
	metrics.FoodOperations.WithLabelValues("delete", metrics.Result(err)).Inc()

	if err != nil {
		return false, wrap("soft delete food item", err)
	}

	if rows > 0 {
		s.stats.invalidate(ctx, s.logger, item.UserID)
		emit(ctx, s.sink, s.sink.events.Food.Deleted, queue.TopicFoodDeleted, queue.FoodDeletedPayload{
			Item: foodRef(item), Reason: queue.DeleteReasonUser,
		})
	}

	return rows > 0, nil
}

func (s *FoodItemService) persist(ctx context.Context, item *model.FoodItem, prev foodstatus.Status, field, op string) (bool, error) {
	rows, err := s.items.UpdateByID(ctx, item)
	metrics.FoodOperations.WithLabelValues(op, metrics.Result(err)).Inc()

	if err != nil {
		return false, wrap("update food item", err)
	}

	if rows == 0 {
		return false, nil
	}

	s.stats.invalidate(ctx, s.logger, item.UserID)
	emit(ctx, s.sink, s.sink.events.Food.Updated, queue.TopicFoodUpdated, queue.FoodUpdatedPayload{
		Item: foodRef(item), Field: field, PrevStatus: prev.String(),
	})

	return true, nil
}

// owned 加载食材并校验归属，不存在或不属于 requesterID 时返回 nil, nil.
func (s *FoodItemService) owned(ctx context.Context, id, requesterID uint) (*model.FoodItem, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, wrap("find food item", err)
	}

	if item == nil || item.UserID != requesterID {
		return nil, nil
	}

	return item, nil
}
