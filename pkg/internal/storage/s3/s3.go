// Package s3 封装对象存储，用于保存食材图片与用户头像.
// 默认使用 MinIO 客户端，也可切换为 AWS SDK（兼容任意 S3 端点）.
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yeisme/xianshiji/pkg/configs"
	nlog "github.com/yeisme/xianshiji/pkg/log"
)

// ObjectStore 对象存储的最小能力集合.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	HealthCheck(ctx context.Context) error
}

// Factory 按配置创建 ObjectStore.
type Factory func(ctx context.Context, cfg *configs.S3Config) (ObjectStore, error)

var factories = map[configs.S3Type]Factory{}

// RegisterFactory 注册对象存储实现.
func RegisterFactory(t configs.S3Type, f Factory) {
	factories[t] = f
}

// Client 对象存储客户端.
type Client struct {
	ObjectStore
	cfg configs.S3Config
}

// New 按配置创建客户端，并确保 bucket 存在.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported s3 type: %s", cfg.Type)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	nlog.Logger().Info().
		Str("type", string(cfg.Type)).
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.BucketName).
		Msg("s3 connected")

	return &Client{ObjectStore: store, cfg: *cfg}, nil
}

// NewWithStore 使用给定实现构造客户端.
func NewWithStore(store ObjectStore, cfg configs.S3Config) *Client {
	return &Client{ObjectStore: store, cfg: cfg}
}

// URL 返回对象的外部访问地址.
func (c *Client) URL(key string) string {
	return c.cfg.ObjectURL(key)
}

// MaxUploadBytes 单个对象上传上限.
func (c *Client) MaxUploadBytes() int64 {
	return c.cfg.MaxUploadBytes()
}

// Close 对象存储客户端无需显式关闭.
func (c *Client) Close() error {
	return nil
}
