package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/storage/kv"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/queue"
)

func food(userID uint, name, category string, qty int64, minQty *int64, expiry *model.Date, stored foodstatus.Status) model.FoodItem {
	it := model.FoodItem{
		UserID:     userID,
		Name:       name,
		Category:   category,
		Quantity:   dec(qty),
		Unit:       "个",
		ExpiryDate: expiry,
		Status:     stored,
		CreatedAt:  fixedNow,
		UpdatedAt:  fixedNow,
	}
	if minQty != nil {
		it.MinQuantity = decp(*minQty)
	}

	return it
}

func ptr(v int64) *int64 { return &v }

func newFoodService(g *fakeGateway, opts ...service.FoodItemOption) *service.FoodItemService {
	opts = append([]service.FoodItemOption{service.WithClock(fixedClock), service.WithLocation(time.UTC)}, opts...)
	return service.NewFoodItemServiceWith(g, opts...)
}

func TestReadsRefreshStatusWithoutPersisting(t *testing.T) {
	// 临期且低于最低库存，库存不足优先
	g := newFakeGateway(food(1, "牛奶", "乳制品", 1, ptr(2), day(2), foodstatus.NearExpiry))
	svc := newFoodService(g)
	ctx := context.Background()

	list, err := svc.List(ctx, 1)
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %v, %v", list, err)
	}

	if list[0].Status != foodstatus.Insufficient {
		t.Errorf("status = %s, want INSUFFICIENT", list[0].Status)
	}

	got, err := svc.Get(ctx, list[0].ID, 1)
	if err != nil || got == nil || got.Status != foodstatus.Insufficient {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	if _, err := svc.Statistics(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if updates, deletes := g.writes(); updates != 0 || deletes != 0 {
		t.Errorf("reads wrote to the gateway: updates=%d deletes=%d", updates, deletes)
	}

	if stored := g.stored(list[0].ID); stored.Status != foodstatus.NearExpiry {
		t.Errorf("stored status = %s, want unchanged NEAR_EXPIRY", stored.Status)
	}
}

func seedStatistics() *fakeGateway {
	return newFakeGateway(
		food(1, "白菜", "蔬菜", 3, nil, day(10), foodstatus.Normal),
		food(1, "菠菜", "蔬菜", 2, nil, day(2), foodstatus.Normal),
		food(1, "苹果", "水果", 1, ptr(5), nil, foodstatus.Normal),
		food(1, "猪肉", "肉类", 1, nil, day(-1), foodstatus.Normal),
		food(1, "香蕉", "水果", 6, nil, nil, foodstatus.Normal),
		food(2, "别人的鸡蛋", "蛋类", 12, nil, day(-3), foodstatus.Normal),
	)
}

func TestStatistics(t *testing.T) {
	svc := newFoodService(seedStatistics())

	got, err := svc.Statistics(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}

	want := types.FoodItemStatistics{TotalCategories: 3, NearExpiry: 1, Insufficient: 1, Expired: 1, TotalItems: 5}
	if got != want {
		t.Errorf("Statistics() = %+v, want %+v", got, want)
	}
}

func TestListByStatus(t *testing.T) {
	svc := newFoodService(seedStatistics())
	ctx := context.Background()

	expired, err := svc.ListByStatus(ctx, 1, "EXPIRED")
	if err != nil || len(expired) != 1 || expired[0].Name != "猪肉" {
		t.Fatalf("ListByStatus(EXPIRED) = %v, %v", expired, err)
	}

	all, err := svc.ListByStatus(ctx, 1, "UNKNOWN")
	if err != nil || len(all) != 5 {
		t.Errorf("ListByStatus(UNKNOWN) returned %d items, want 5", len(all))
	}

	byCategory, _ := svc.ListByCategory(ctx, 1, "水果")
	if len(byCategory) != 2 {
		t.Errorf("ListByCategory(水果) returned %d items, want 2", len(byCategory))
	}

	found, _ := svc.Search(ctx, 1, "菜")
	if len(found) != 2 {
		t.Errorf("Search(菜) returned %d items, want 2", len(found))
	}
}

func TestUpdateQuantityToZeroSoftDeletes(t *testing.T) {
	g := newFakeGateway(food(1, "鸡蛋", "蛋类", 6, nil, nil, foodstatus.Normal))
	ps := newPubSub(t)
	svc := newFoodService(g, service.WithPublisher(ps, configs.EventsConfig{
		Enabled: true,
		Food:    configs.FoodEventsConfig{Deleted: true},
	}))
	ctx := context.Background()

	ok, err := svc.UpdateQuantity(ctx, 1, dec(0), 1)
	if err != nil || !ok {
		t.Fatalf("UpdateQuantity(0) = %v, %v", ok, err)
	}

	if got, _ := svc.Get(ctx, 1, 1); got != nil {
		t.Errorf("item still visible after zero quantity: %+v", got)
	}

	ok, err = svc.UpdateQuantity(ctx, 1, dec(3), 1)
	if err != nil || ok {
		t.Errorf("UpdateQuantity on deleted item = %v, %v, want false", ok, err)
	}

	evt, err := queue.ParseFoodDeleted(receive(t, ps, queue.TopicFoodDeleted))
	if err != nil {
		t.Fatal(err)
	}

	if evt.Payload.Reason != queue.DeleteReasonZeroQuantity || evt.Payload.Item.ID != 1 {
		t.Errorf("deleted event = %+v", evt.Payload)
	}
}

func TestForeignRequesterIsRejected(t *testing.T) {
	g := newFakeGateway(food(1, "鸡蛋", "蛋类", 6, nil, nil, foodstatus.Normal))
	svc := newFoodService(g)
	ctx := context.Background()

	if got, _ := svc.Get(ctx, 1, 2); got != nil {
		t.Errorf("Get by foreign user = %+v, want nil", got)
	}

	if ok, err := svc.UpdateQuantity(ctx, 1, dec(1), 2); ok || err != nil {
		t.Errorf("UpdateQuantity by foreign user = %v, %v", ok, err)
	}

	if ok, err := svc.UpdateMinQuantity(ctx, 1, decp(1), 2); ok || err != nil {
		t.Errorf("UpdateMinQuantity by foreign user = %v, %v", ok, err)
	}

	if ok, err := svc.Delete(ctx, 1, 2); ok || err != nil {
		t.Errorf("Delete by foreign user = %v, %v", ok, err)
	}

	if ok, err := svc.Delete(ctx, 99, 1); ok || err != nil {
		t.Errorf("Delete missing = %v, %v", ok, err)
	}

	if stored := g.stored(1); !stored.Quantity.Equal(dec(6)) || stored.Deleted() {
		t.Errorf("foreign request changed the item: %+v", stored)
	}
}

func TestUpdateMinQuantityRecomputesStatus(t *testing.T) {
	g := newFakeGateway(food(1, "米", "主食", 2, nil, nil, foodstatus.Normal))
	svc := newFoodService(g)
	ctx := context.Background()

	if ok, err := svc.UpdateMinQuantity(ctx, 1, decp(5), 1); !ok || err != nil {
		t.Fatalf("UpdateMinQuantity = %v, %v", ok, err)
	}

	if s := g.stored(1).Status; s != foodstatus.Insufficient {
		t.Errorf("status = %s, want INSUFFICIENT", s)
	}

	// 重复设置结果不变
	if ok, err := svc.UpdateMinQuantity(ctx, 1, decp(5), 1); !ok || err != nil {
		t.Fatalf("second UpdateMinQuantity = %v, %v", ok, err)
	}

	if s := g.stored(1).Status; s != foodstatus.Insufficient {
		t.Errorf("status after repeat = %s", s)
	}

	if ok, _ := svc.UpdateMinQuantity(ctx, 1, nil, 1); !ok {
		t.Fatal("clearing min quantity failed")
	}

	if s := g.stored(1); s.Status != foodstatus.Normal || s.MinQuantity != nil {
		t.Errorf("after clearing: status=%s min=%v", s.Status, s.MinQuantity)
	}
}

func TestAddComputesStatusAndInvalidatesStatistics(t *testing.T) {
	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	g := newFakeGateway()
	svc := newFoodService(g, service.WithStatsCache(cache.NewCache(store, "test"), time.Minute))
	ctx := context.Background()

	before, err := svc.Statistics(ctx, 1)
	if err != nil || before.TotalItems != 0 {
		t.Fatalf("Statistics() = %+v, %v", before, err)
	}

	item := food(1, "酸奶", "乳制品", 4, nil, day(1), foodstatus.Expired)
	item.ID = 42

	added, err := svc.Add(ctx, &item)
	if err != nil {
		t.Fatal(err)
	}

	if added.ID == 42 || added.Status != foodstatus.NearExpiry || added.IsDeleted != 0 {
		t.Errorf("Add() = %+v", added)
	}

	after, err := svc.Statistics(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}

	if after.TotalItems != 1 || after.NearExpiry != 1 {
		t.Errorf("cached statistics not invalidated: %+v", after)
	}
}

func TestUpdateFoodItem(t *testing.T) {
	g := newFakeGateway(food(1, "土豆", "蔬菜", 3, nil, nil, foodstatus.Normal))
	svc := newFoodService(g)

	patch := food(0, "小土豆", "根茎", 5, nil, day(-2), foodstatus.Normal)

	ok, err := svc.UpdateFoodItem(context.Background(), 1, &patch, 1)
	if err != nil || !ok {
		t.Fatalf("UpdateFoodItem = %v, %v", ok, err)
	}

	got := g.stored(1)
	if got.Name != "小土豆" || got.Category != "根茎" || got.UserID != 1 || got.Status != foodstatus.Expired {
		t.Errorf("stored = %+v", got)
	}
}

func TestUpdateQuantityRepeatedKeepsStoredStatus(t *testing.T) {
	items := dao.NewFoodItemDAO(newTestDB(t))
	svc := service.NewFoodItemServiceWith(items, service.WithClock(fixedClock), service.WithLocation(time.UTC))
	ctx := context.Background()

	it := food(1, "鸡蛋", "蛋类", 6, ptr(4), day(10), foodstatus.Normal)
	if err := items.Insert(ctx, &it); err != nil {
		t.Fatal(err)
	}

	for i := range 2 {
		ok, err := svc.UpdateQuantity(ctx, it.ID, dec(3), 1)
		if !ok || err != nil {
			t.Fatalf("call %d: UpdateQuantity = %v, %v", i+1, ok, err)
		}

		stored, err := items.FindByID(ctx, it.ID)
		if err != nil || stored == nil {
			t.Fatalf("call %d: FindByID = %v, %v", i+1, stored, err)
		}

		if stored.Status != foodstatus.Insufficient || !stored.Quantity.Equal(dec(3)) {
			t.Errorf("call %d: stored status=%s quantity=%s", i+1, stored.Status, stored.Quantity)
		}
	}

	if ok, err := svc.UpdateQuantity(ctx, it.ID, dec(0), 1); !ok || err != nil {
		t.Fatalf("zero quantity = %v, %v", ok, err)
	}

	if ok, err := svc.UpdateQuantity(ctx, it.ID, dec(5), 1); ok || err != nil {
		t.Errorf("update after soft delete = %v, %v, want false", ok, err)
	}
}

func TestMinQuantityOverridesNearExpiry(t *testing.T) {
	items := dao.NewFoodItemDAO(newTestDB(t))
	svc := service.NewFoodItemServiceWith(items, service.WithClock(fixedClock), service.WithLocation(time.UTC))
	ctx := context.Background()

	it := food(1, "豆腐", "豆制品", 10, nil, day(2), foodstatus.Normal)
	if err := items.Insert(ctx, &it); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx, 1)
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %v, %v", list, err)
	}

	if list[0].Status != foodstatus.NearExpiry {
		t.Fatalf("listed status = %s, want NEAR_EXPIRY", list[0].Status)
	}

	if ok, err := svc.UpdateMinQuantity(ctx, it.ID, decp(12), 1); !ok || err != nil {
		t.Fatalf("UpdateMinQuantity = %v, %v", ok, err)
	}

	stored, err := items.FindByID(ctx, it.ID)
	if err != nil || stored == nil {
		t.Fatalf("FindByID = %v, %v", stored, err)
	}

	if stored.Status != foodstatus.Insufficient {
		t.Errorf("stored status = %s, want INSUFFICIENT", stored.Status)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	g := newFakeGateway()
	svc := newFoodService(g)
	ctx := context.Background()

	for _, qty := range []int64{0, -2} {
		item := food(1, "空瓶", "杂项", qty, nil, nil, foodstatus.Normal)

		if _, err := svc.Add(ctx, &item); !errors.Is(err, service.ErrQuantityNotPositive) {
			t.Errorf("Add(quantity=%d) err = %v, want ErrQuantityNotPositive", qty, err)
		}
	}

	if list, _ := svc.List(ctx, 1); len(list) != 0 {
		t.Errorf("rejected items stored: %v", list)
	}
}
