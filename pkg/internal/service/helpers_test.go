package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/xianshiji/pkg/internal/model"
)

// fixedNow 测试统一使用的当前时间.
var fixedNow = time.Date(2026, time.May, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func day(offset int) *model.Date {
	return model.DatePtr(model.DateOf(fixedNow.AddDate(0, 0, offset)))
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// newTestDB 返回迁移完成的内存 SQLite.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}

	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

// newPubSub 返回持久化的进程内 pubsub，订阅前发布的消息不会丢失.
func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()

	ps := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })

	return ps
}

// receive 读取 topic 上的下一条消息.
func receive(t *testing.T, ps *gochannel.GoChannel, topic string) *message.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, err := ps.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("subscribe %s: %v", topic, err)
	}

	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-ctx.Done():
		t.Fatalf("no message on %s", topic)
		return nil
	}
}

// fakeGateway 内存实现的食材网关，记录写调用次数.
type fakeGateway struct {
	mu      sync.Mutex
	items   map[uint]model.FoodItem
	nextID  uint
	updates int
	deletes int
}

func newFakeGateway(items ...model.FoodItem) *fakeGateway {
	g := &fakeGateway{items: map[uint]model.FoodItem{}}
	for _, it := range items {
		g.nextID++
		it.ID = g.nextID
		g.items[it.ID] = it
	}

	return g
}

func (g *fakeGateway) FindByID(_ context.Context, id uint) (*model.FoodItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	it, ok := g.items[id]
	if !ok || it.Deleted() {
		return nil, nil
	}

	return &it, nil
}

func (g *fakeGateway) filter(keep func(model.FoodItem) bool) []model.FoodItem {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []model.FoodItem
	for _, it := range g.items {
		if !it.Deleted() && keep(it) {
			out = append(out, it)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (g *fakeGateway) FindByUserID(_ context.Context, userID uint) ([]model.FoodItem, error) {
	return g.filter(func(it model.FoodItem) bool { return it.UserID == userID }), nil
}

func (g *fakeGateway) FindByUserIDAndCategory(_ context.Context, userID uint, category string) ([]model.FoodItem, error) {
	return g.filter(func(it model.FoodItem) bool { return it.UserID == userID && it.Category == category }), nil
}

func (g *fakeGateway) FindByUserIDAndKeyword(_ context.Context, userID uint, keyword string) ([]model.FoodItem, error) {
	return g.filter(func(it model.FoodItem) bool {
		return it.UserID == userID && containsFold(it.Name, keyword)
	}), nil
}

func (g *fakeGateway) Insert(_ context.Context, item *model.FoodItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	item.ID = g.nextID
	g.items[item.ID] = *item

	return nil
}

func (g *fakeGateway) UpdateByID(_ context.Context, item *model.FoodItem) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.updates++

	cur, ok := g.items[item.ID]
	if !ok || cur.Deleted() {
		return 0, nil
	}

	g.items[item.ID] = *item

	return 1, nil
}

func (g *fakeGateway) SoftDeleteByID(_ context.Context, id uint) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.deletes++

	cur, ok := g.items[id]
	if !ok || cur.Deleted() {
		return 0, nil
	}

	cur.IsDeleted = 1
	now := fixedNow
	cur.DeletedAt = &now
	g.items[id] = cur

	return 1, nil
}

func (g *fakeGateway) stored(id uint) model.FoodItem {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.items[id]
}

func (g *fakeGateway) writes() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.updates, g.deletes
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
