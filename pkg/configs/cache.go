package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CacheConfig 业务缓存配置（基于 KV 存储）.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Prefix       string        `mapstructure:"prefix"`
	StatsTTL     time.Duration `mapstructure:"stats_ttl"`     // 食材统计结果缓存时间
	ResponseTTL  time.Duration `mapstructure:"response_ttl"`  // 菜谱查询接口响应缓存时间
	CachedRoutes []string      `mapstructure:"cached_routes"` // 启用响应缓存的路由前缀
}

func (c *CacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.prefix", "xs:")
	v.SetDefault("cache.stats_ttl", "60s")
	v.SetDefault("cache.response_ttl", "5m")
	v.SetDefault("cache.cached_routes", []string{"/recipes"})
}
