// Package storage 聚合存储资源：数据库、KV、消息队列与对象存储.
//
// 数据库为必需组件，其余组件按配置开关初始化，未启用时对应字段为 nil.
//
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // 处理错误
//	}
//	db := mgr.GetDBClient()
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	dbc "github.com/yeisme/xianshiji/pkg/internal/storage/db"
	kvc "github.com/yeisme/xianshiji/pkg/internal/storage/kv"
	mqc "github.com/yeisme/xianshiji/pkg/internal/storage/mq"
	s3c "github.com/yeisme/xianshiji/pkg/internal/storage/s3"
	nlog "github.com/yeisme/xianshiji/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB *dbc.Client
	KV *kvc.Client
	MQ *mqc.Client
	S3 *s3c.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 使用全局配置初始化存储，重复调用返回同一实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = New(ctx, configs.GetConfig())
	})

	return mgr, mgrErr
}

// New 按配置创建 Manager，任一组件失败时关闭已打开的组件.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	db, err := dbc.New(ctx, &cfg.DB)
	if err != nil {
		return nil, err
	}

	m.DB = db

	if cfg.DB.AutoMigrate {
		if err := m.DB.Migrate(ctx, model.All()...); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	if m.KV, err = kvc.NewKVClient(ctx, &cfg.KV); err != nil {
		_ = m.Close()
		return nil, err
	}

	if cfg.MQ.Enabled {
		if m.MQ, err = mqc.New(ctx, &cfg.MQ); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	if cfg.S3.Enabled {
		if m.S3, err = s3c.New(ctx, &cfg.S3); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	nlog.Logger().Info().
		Bool("mq", m.MQ != nil).
		Bool("s3", m.S3 != nil).
		Str("kv", string(cfg.KV.Type)).
		Msg("storage manager initialized")

	return m, nil
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端，未启用时为 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetS3Client 获取 S3 客户端，未启用时为 nil.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// Close 关闭所有已打开的资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
