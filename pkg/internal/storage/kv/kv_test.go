package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/storage/kv"
)

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), &configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

func BenchmarkGroupcacheKV(b *testing.B) {
	cfg := &configs.KVConfig{
		Type: configs.KVTypeGroupcache,
		Groupcache: configs.GroupcacheKVConfig{
			Name:       "bench-groupcache",
			CacheBytes: 32 << 20,
		},
	}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Fatalf("create groupcache kv: %v", err)
	}

	benchKV(b, "groupcache", store)
	benchKVParallel(b, "groupcache", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_REDIS_BENCH=1 and REDIS_ADDR set (default 127.0.0.1:6379).
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.KVConfig{Type: configs.KVTypeRedis, Redis: configs.RedisKVConfig{Addr: addr}}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_NATS_BENCH=1 and NATS_URL set (default nats://127.0.0.1:4222)
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := &configs.KVConfig{Type: configs.KVTypeNATS, NATS: configs.NATSKVConfig{URL: url, Bucket: bucket}}

	store, err := kv.NewKVStore(context.Background(), cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

func newStores(t *testing.T) map[string]kv.KVStore {
	t.Helper()

	ctx := context.Background()

	mem, err := kv.NewKVStore(ctx, &configs.KVConfig{Type: configs.KVTypeMemory})
	if err != nil {
		t.Fatal(err)
	}

	gc, err := kv.NewKVStore(ctx, &configs.KVConfig{
		Type:       configs.KVTypeGroupcache,
		Groupcache: configs.GroupcacheKVConfig{Name: "test-" + t.Name(), CacheBytes: 1 << 20},
	})
	if err != nil {
		t.Fatal(err)
	}

	return map[string]kv.KVStore{"memory": mem, "groupcache": gc}
}

func TestStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "xs:stats:1"); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}

			if err := store.Set(ctx, "xs:stats:1", []byte("v1"), 0); err != nil {
				t.Fatal(err)
			}

			got, err := store.Get(ctx, "xs:stats:1")
			if err != nil || string(got) != "v1" {
				t.Fatalf("Get() = %q, %v", got, err)
			}

			// 覆盖写后不能读到旧值
			if err := store.Set(ctx, "xs:stats:1", []byte("v2"), 0); err != nil {
				t.Fatal(err)
			}

			if got, _ := store.Get(ctx, "xs:stats:1"); string(got) != "v2" {
				t.Fatalf("Get() after overwrite = %q, want v2", got)
			}

			if err := store.Delete(ctx, "xs:stats:1"); err != nil {
				t.Fatal(err)
			}

			if ok, _ := store.Exists(ctx, "xs:stats:1"); ok {
				t.Error("Exists() after Delete = true")
			}
		})
	}
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "short", []byte("x"), 20*time.Millisecond); err != nil {
				t.Fatal(err)
			}

			if ok, _ := store.Exists(ctx, "short"); !ok {
				t.Fatal("key should exist before expiry")
			}

			time.Sleep(1100 * time.Millisecond)

			if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrNotFound) {
				t.Errorf("Get() after ttl error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreKeysPattern(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"xs:stats:1", "xs:stats:2", "xs:resp:abc"} {
				if err := store.Set(ctx, k, []byte("1"), 0); err != nil {
					t.Fatal(err)
				}
			}

			keys, err := store.Keys(ctx, "xs:stats:*")
			if err != nil {
				t.Fatal(err)
			}

			if len(keys) != 2 {
				t.Errorf("Keys() = %v, want 2 stats keys", keys)
			}
		})
	}
}

// randBytes returns n random bytes, seeded reproducibly for bench.
func randBytes(n int) []byte {
	b := make([]byte, n)
	// Try crypto/rand; if it fails (unlikely in tests), fallback to deterministic PRNG.
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				// ensure clean
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// Use hyphens to ensure keys are valid for NATS KV
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				// Use hyphens to ensure keys are valid for NATS KV
				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
