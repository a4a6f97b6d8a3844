package configs

import "github.com/spf13/viper"

// EventsConfig 控制领域事件发布的开关（全局与分主题）.
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Food    FoodEventsConfig `mapstructure:"food"`
	Recipe  bool             `mapstructure:"recipe"`
	Family  bool             `mapstructure:"family"`
}

// FoodEventsConfig 食材相关事件开关.
type FoodEventsConfig struct {
	Added         bool `mapstructure:"added"`
	Updated       bool `mapstructure:"updated"`
	Deleted       bool `mapstructure:"deleted"`
	Restored      bool `mapstructure:"restored"`
	StatusChanged bool `mapstructure:"status_changed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.food.added", true)
	v.SetDefault("events.food.deleted", true)
	v.SetDefault("events.food.status_changed", true)

	// 更新类事件量较大，按需开启
	v.SetDefault("events.food.updated", false)
	v.SetDefault("events.food.restored", false)
	v.SetDefault("events.recipe", false)
	v.SetDefault("events.family", true)
}
