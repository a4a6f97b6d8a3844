// Package service 实现食材、回收站、菜谱、家庭组、用户与图片的业务逻辑.
//
// 各 Service 可以从请求 context 中的存储管理器构造（NewXxxService(ctx)），
// 也可以直接注入依赖（NewXxxServiceWith），后者用于测试与后台任务.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/queue"
)

// 业务错误.
var (
	ErrUserExists          = errors.New("用户已存在")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrBadCredentials      = errors.New("账号或密码错误")
	ErrWrongPassword       = errors.New("当前密码错误")
	ErrAccountRequired     = errors.New("手机号或邮箱至少填写一个")
	ErrRecipeNotFound      = errors.New("菜谱不存在")
	ErrQuantityNotPositive = errors.New("数量必须大于0")
	ErrInviteCodeExhausted = errors.New("邀请码生成失败，请重试")
	ErrStorageDisabled     = errors.New("对象存储未启用")
	ErrInvalidImage        = errors.New("只支持图片文件")
	ErrImageTooLarge       = errors.New("图片超过大小限制")
	ErrDBNotInitialized    = errors.New("db not initialized")
)

const producer = "xianshiji"

// eventSink 按开关发布领域事件，失败只记日志.
type eventSink struct {
	pub    message.Publisher
	events configs.EventsConfig
	logger zerolog.Logger
}

func (s eventSink) enabled() bool {
	return s.pub != nil && s.events.Enabled
}

func emit[T any](ctx context.Context, s eventSink, on bool, topic string, payload T) {
	if !on || !s.enabled() {
		return
	}

	opts := []queue.HeaderOption{queue.WithProducer(producer)}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	if err := queue.Publish(s.pub, topic, payload, opts...); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

func foodRef(item *model.FoodItem) queue.FoodItemRef {
	return queue.FoodItemRef{
		ID:       item.ID,
		UserID:   item.UserID,
		Name:     item.Name,
		Category: item.Category,
		Quantity: item.Quantity.String(),
		Status:   item.Status.String(),
	}
}

// statsCache 用户食材统计缓存.
type statsCache struct {
	c   *cache.Cache
	ttl time.Duration
}

func statsKey(userID uint) string {
	return "stats:food:" + strconv.FormatUint(uint64(userID), 10)
}

func (s statsCache) invalidate(ctx context.Context, logger zerolog.Logger, userID uint) {
	if s.c == nil {
		return
	}

	if err := s.c.Delete(ctx, statsKey(userID)); err != nil {
		logger.Warn().Err(err).Uint("user_id", userID).Msg("invalidate statistics cache failed")
	}
}

// depsFromContext 读取请求 context 中的缓存与发布端.
func depsFromContext(c context.Context) (statsCache, eventSink) {
	cfg := configs.GetConfig()

	var sc statsCache
	if kvc := ctxPkg.GetKVClient(c); kvc != nil && cfg.Cache.Enabled {
		sc = statsCache{c: cache.NewCache(kvc, cfg.Cache.Prefix), ttl: cfg.Cache.StatsTTL}
	}

	es := eventSink{events: cfg.Events}
	if mqc := ctxPkg.GetMQClient(c); mqc != nil {
		es.pub = mqc.Publisher()
	}

	return sc, es
}

// pageBounds 规范化分页参数.
func pageBounds(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}

	if size <= 0 || size > 200 {
		size = 50
	}

	return page, size
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", op, err)
}
