package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/internal/storage/kv"
)

type stats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
}

func newCache(t *testing.T) (*cache.Cache, kv.KVStore) {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("new memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return cache.NewCache(store, "xs:"), store
}

func TestCache_SetGet(t *testing.T) {
	c, store := newCache(t)
	ctx := context.Background()

	if _, err := cache.Get[stats](ctx, c, "stats:1"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := stats{Total: 5, Expired: 1}
	if err := cache.Set(ctx, c, "stats:1", want, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "xs:stats:1"); !ok {
		t.Error("key should be stored with prefix")
	}

	got, err := cache.Get[stats](ctx, c, "stats:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCache_Delete(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, c, "k", 1, 0)

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("key should be gone")
	}

	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestGetOrSet(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	calls := 0
	getter := func() (stats, error) {
		calls++
		return stats{Total: 3}, nil
	}

	for range 2 {
		v, err := cache.GetOrSet(ctx, c, "stats:2", getter, time.Minute)
		if err != nil {
			t.Fatalf("get or set: %v", err)
		}

		if v.Total != 3 {
			t.Errorf("total = %d, want 3", v.Total)
		}
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}
}

func TestGetOrSet_GetterError(t *testing.T) {
	c, _ := newCache(t)

	_, err := cache.GetOrSet(context.Background(), c, "bad", func() (stats, error) {
		return stats{}, errors.New("getter error")
	}, 0)
	if err == nil || err.Error() != "getter error" {
		t.Fatalf("expected getter error, got %v", err)
	}

	if ok, _ := c.Exists(context.Background(), "bad"); ok {
		t.Error("failed load must not be cached")
	}
}

func TestGetOrSet_Concurrent(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	var calls atomic.Int32

	release := make(chan struct{})
	getter := func() (int, error) {
		calls.Add(1)
		<-release

		return 42, nil
	}

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if v, err := cache.GetOrSet(ctx, c, "hot", getter, time.Minute); err != nil || v != 42 {
				t.Errorf("got %d, %v", v, err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 8 {
		t.Errorf("unexpected getter calls: %d", n)
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c, store := newCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, c, "stats:1", 1, 0)
	_ = cache.Set(ctx, c, "stats:2", 2, 0)
	_ = cache.Set(ctx, c, "recipes:all", 3, 0)
	_ = store.Set(ctx, "other:stats:1", []byte("x"), 0)

	if err := c.DeletePrefix(ctx, "stats:"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}

	for _, k := range []string{"stats:1", "stats:2"} {
		if ok, _ := c.Exists(ctx, k); ok {
			t.Errorf("%s should be deleted", k)
		}
	}

	if ok, _ := c.Exists(ctx, "recipes:all"); !ok {
		t.Error("recipes:all should survive")
	}

	if ok, _ := store.Exists(ctx, "other:stats:1"); !ok {
		t.Error("keys outside the prefix should survive")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if ok, _ := c.Exists(ctx, "recipes:all"); ok {
		t.Error("clear should remove prefixed keys")
	}
}
