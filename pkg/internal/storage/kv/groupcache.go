package kv

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/xianshiji/pkg/configs"
)

// GroupcacheKV 以本地 map 为数据源、groupcache 为读缓存的 KV 实现.
// groupcache 的条目不可变，每次 Set/Delete 递增键的版本号，旧版本缓存自然失效.
type GroupcacheKV struct {
	cache *groupcache.Group
	peers *groupcache.HTTPPool

	mu   sync.RWMutex
	data map[string][]byte
	gens map[string]uint64
	now  func() time.Time
}

var (
	groupsMu sync.Mutex
	groups   = map[string]*GroupcacheKV{}
)

// NewGroupcacheKV 创建 Groupcache KV 实例，同名分组在进程内复用.
func NewGroupcacheKV(_ context.Context, cfg *configs.KVConfig) (KVStore, error) {
	gc := cfg.Groupcache
	if gc.Name == "" {
		return nil, fmt.Errorf("groupcache name is required")
	}

	groupsMu.Lock()
	defer groupsMu.Unlock()

	if existing, ok := groups[gc.Name]; ok {
		return existing, nil
	}

	kv := &GroupcacheKV{
		data: make(map[string][]byte),
		gens: make(map[string]uint64),
		now:  time.Now,
	}

	kv.cache = groupcache.NewGroup(gc.Name, gc.CacheBytes, groupcache.GetterFunc(kv.load))

	if len(gc.Peers) > 0 {
		kv.peers = groupcache.NewHTTPPoolOpts(gc.Self, &groupcache.HTTPPoolOptions{})
		kv.peers.Set(gc.Peers...)
	}

	groups[gc.Name] = kv

	return kv, nil
}

// versioned 缓存键格式：<gen>|<key>.
func versioned(key string, gen uint64) string {
	return strconv.FormatUint(gen, 10) + "|" + key
}

// load 是 groupcache 的回源函数.
func (g *GroupcacheKV) load(_ context.Context, cacheKey string, dest groupcache.Sink) error {
	_, key, ok := strings.Cut(cacheKey, "|")
	if !ok {
		return notFound(cacheKey)
	}

	g.mu.RLock()
	value, exists := g.data[key]
	g.mu.RUnlock()

	if !exists {
		return notFound(key)
	}

	return dest.SetBytes(value)
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	gen, ok := g.gens[key]
	_, present := g.data[key]
	g.mu.RUnlock()

	if !ok || !present {
		return nil, notFound(key)
	}

	var raw []byte
	if err := g.cache.Get(ctx, versioned(key, gen), groupcache.AllocatingByteSliceSink(&raw)); err != nil {
		return nil, fmt.Errorf("groupcache get %s: %w", key, err)
	}

	val, expired, err := decodeWithTTL(raw, g.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)

		return nil, notFound(key)
	}

	return val, nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(append([]byte(nil), value...), ttl, g.now())
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.data[key] = encoded
	g.gens[key]++

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.data[key]; ok {
		delete(g.data, key)
		g.gens[key]++
	}

	return nil
}

// Exists 检查键是否存在且未过期.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := g.Get(ctx, key); err != nil {
		return false, nil //nolint:nilerr // 不存在即 false
	}

	return true, nil
}

// Keys 获取匹配的键.
func (g *GroupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	now := g.now()
	keys := make([]string, 0, len(g.data))

	for key, raw := range g.data {
		if _, expired, err := decodeWithTTL(raw, now); err != nil || expired {
			continue
		}

		if matchKey(pattern, key) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close groupcache 没有显式关闭方法.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeGroupcache, NewGroupcacheKV)
}
