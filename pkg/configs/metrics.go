package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	ServiceName    string            `mapstructure:"service_name"`
	Endpoint       string            `mapstructure:"endpoint"` // 独立指标服务监听地址，为空时挂在主服务 /metrics
	Path           string            `mapstructure:"path"`
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"`
	Pprof          bool              `mapstructure:"pprof"`
	DBMetrics      bool              `mapstructure:"db_metrics"` // 启用 gorm prometheus 插件
	Labels         map[string]string `mapstructure:"labels"`
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "xianshiji")
	v.SetDefault("metrics.endpoint", "")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.db_metrics", true)
	v.SetDefault("metrics.labels", map[string]string{})
}
