package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/queue"
)

func TestStatusJanitorReconcile(t *testing.T) {
	db := newTestDB(t)
	items := dao.NewFoodItemDAO(db)
	ctx := context.Background()

	seed := []struct {
		name   string
		expiry int
		stored foodstatus.Status
	}{
		{"过期牛奶", -1, foodstatus.Normal},
		{"临期面包", 1, foodstatus.Normal},
		{"新鲜鸡蛋", 20, foodstatus.Normal},
		{"已标记过期", -5, foodstatus.Expired},
		{"回收站里的", -9, foodstatus.Normal},
	}

	ids := make([]uint, len(seed))
	for i, s := range seed {
		it := food(1, s.name, "杂项", 2, nil, day(s.expiry), s.stored)
		if err := items.Insert(ctx, &it); err != nil {
			t.Fatal(err)
		}

		ids[i] = it.ID
	}

	if _, err := items.SoftDeleteByID(ctx, ids[4]); err != nil {
		t.Fatal(err)
	}

	ps := newPubSub(t)
	j := service.NewStatusJanitorWith(items, configs.JanitorConfig{BatchSize: 2, Workers: 3}, time.UTC, fixedClock).
		WithPublisher(ps, configs.EventsConfig{Enabled: true, Food: configs.FoodEventsConfig{StatusChanged: true}})

	report, err := j.Reconcile(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if report.Scanned != 4 || report.Changed != 2 || report.Updated != 2 {
		t.Errorf("report = %+v, want scanned=4 changed=2 updated=2", report)
	}

	if report.Transitions["NORMAL->EXPIRED"] != 1 || report.Transitions["NORMAL->NEAR_EXPIRY"] != 1 {
		t.Errorf("transitions = %v", report.Transitions)
	}

	want := map[uint]foodstatus.Status{
		ids[0]: foodstatus.Expired,
		ids[1]: foodstatus.NearExpiry,
		ids[2]: foodstatus.Normal,
		ids[3]: foodstatus.Expired,
	}

	for id, status := range want {
		got, err := items.FindByID(ctx, id)
		if err != nil || got == nil {
			t.Fatalf("FindByID(%d) = %v, %v", id, got, err)
		}

		if got.Status != status {
			t.Errorf("item %d status = %s, want %s", id, got.Status, status)
		}

		if !got.UpdatedAt.Equal(fixedNow) {
			t.Errorf("item %d updated_at changed to %v", id, got.UpdatedAt)
		}
	}

	again, err := j.Reconcile(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if again.Changed != 0 || again.Updated != 0 {
		t.Errorf("second run changed rows: %+v", again)
	}

	evt, err := queue.ParseFoodStatusChanged(receive(t, ps, queue.TopicFoodStatusChanged))
	if err != nil {
		t.Fatal(err)
	}

	if evt.Payload.From != "NORMAL" || evt.Payload.Item.UserID != 1 {
		t.Errorf("status changed event = %+v", evt.Payload)
	}
}
