package configs

import "github.com/spf13/viper"

// JanitorConfig 后台定时任务配置.
type JanitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// StatusCron 食材状态巡检周期.
	StatusCron string `mapstructure:"status_cron"`
	// MidnightCron 跨日后的状态刷新.
	MidnightCron string `mapstructure:"midnight_cron"`
	TrashCron    string `mapstructure:"trash_cron"`
	// TrashRetentionDays 回收站保留天数，0 表示不自动清理.
	TrashRetentionDays int `mapstructure:"trash_retention_days" rule:"min=0"`
	BatchSize          int `mapstructure:"batch_size"           rule:"min=1,max=10000"`
	Workers            int `mapstructure:"workers"              rule:"min=1,max=64"`
}

func (c *JanitorConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("janitor.enabled", true)
	v.SetDefault("janitor.status_cron", "*/30 * * * *")
	v.SetDefault("janitor.midnight_cron", "1 0 * * *")
	v.SetDefault("janitor.trash_cron", "30 3 * * *")
	v.SetDefault("janitor.trash_retention_days", 30)
	v.SetDefault("janitor.batch_size", 200)
	v.SetDefault("janitor.workers", 4)
}
