// Package cache 提供基于键值存储的泛型缓存.
//
// 值以 JSON（sonic）编码写入 KV，支持 TTL.未命中时 GetOrSet 通过 singleflight
// 合并同一键的并发加载，避免统计等聚合查询被击穿.
//
//	c := cache.NewCache(kvStore, "xs:")
//	stats, err := cache.GetOrSet(ctx, c, "stats:1", func() (Stats, error) {
//	    return loadStats(ctx, 1)
//	}, time.Minute)
//
// 缓存写入失败不影响返回值.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/xianshiji/pkg/internal/storage/kv"
)

// Cache 基于 KV 存储的缓存.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	group   singleflight.Group
}

// NewCache 创建缓存，prefix 会加在所有键前.
func NewCache(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{kvStore: kvStore, prefix: prefix}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get 泛型获取缓存值，未命中返回 kv.ErrNotFound.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kvStore.Delete(ctx, c.key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}

	return err
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// GetOrSet 命中直接返回，否则调用 getter 并写回缓存.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return value, err
		}

		// 写缓存失败仍返回新值
		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// DeletePrefix 删除以 prefix 开头的全部键.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := c.kvStore.Keys(ctx, c.key(prefix)+"*")
	if err != nil {
		return err
	}

	for _, k := range keys {
		if err := c.kvStore.Delete(ctx, k); err != nil && !errors.Is(err, kv.ErrNotFound) {
			return err
		}
	}

	return nil
}

// Clear 清空本缓存前缀下的所有键.
func (c *Cache) Clear(ctx context.Context) error {
	return c.DeletePrefix(ctx, "")
}
