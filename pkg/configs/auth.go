package configs

import (
	"time"

	"github.com/spf13/viper"
)

// AuthConfig 控制 JWT 认证.
// 关闭时沿用请求体/查询参数中的 userId 作为请求者.
type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost" rule:"min=4,max=31"`
	SkipPaths  []string      `mapstructure:"skip_paths"` // 跳过认证的路径前缀
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.issuer", "xianshiji")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.skip_paths", []string{
		"/users/login",
		"/users/register",
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
