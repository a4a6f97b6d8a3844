package configs

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// S3Type 对象存储客户端实现.
type S3Type string

const (
	S3TypeMinio S3Type = "minio"
	S3TypeAWS   S3Type = "aws"
)

const (
	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3BucketName      = "xianshiji"      // 默认存储桶名称
	DefaultS3Region          = "us-east-1"      // 默认区域
	DefaultS3MaxUploadMB     = 10               // 单张图片上传上限（MB）
)

// S3Config 对象存储配置，用于食材图片与用户头像.
type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Type            S3Type `mapstructure:"type"              rule:"oneof=minio aws"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"       rule:"required"`
	Region          string `mapstructure:"region"`
	PublicURL       string `mapstructure:"public_url"` // 对外访问地址，为空时使用 endpoint
	MaxUploadMB     int    `mapstructure:"max_upload_mb"     rule:"min=1,max=100"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// ObjectURL 返回对象的外部访问地址.
func (c *S3Config) ObjectURL(key string) string {
	base := c.PublicURL
	if base == "" {
		base = c.GetEndpointURL()
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), c.BucketName, strings.TrimLeft(key, "/"))
}

// MaxUploadBytes 返回上传大小上限（字节）.
func (c *S3Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// setDefaults 设置 S3 配置的默认值.
func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.type", S3TypeMinio)
	v.SetDefault("s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("s3.use_ssl", false)
	v.SetDefault("s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("s3.region", DefaultS3Region)
	v.SetDefault("s3.public_url", "")
	v.SetDefault("s3.max_upload_mb", DefaultS3MaxUploadMB)
}
