// Package dao 封装基于 gorm 的数据访问.
// 每个 DAO 持有一个 *gorm.DB，事务中用 tx 重新构造即可复用同一套方法.
package dao

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repo 提供按主键读写的通用方法.
type Repo[T any] struct {
	Db *gorm.DB
}

// NewRepo 构造通用仓储.
func NewRepo[T any](db *gorm.DB) Repo[T] {
	return Repo[T]{Db: db}
}

// FindByID 按主键查询，记录不存在时返回 nil, nil.
func (r *Repo[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var v T

	err := r.Db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &v, nil
}

// Create 插入记录，主键回填到 v.
func (r *Repo[T]) Create(ctx context.Context, v *T) error {
	return r.Db.WithContext(ctx).Create(v).Error
}

// FindAll 按条件查询，按主键升序.
func (r *Repo[T]) FindAll(ctx context.Context, query any, args ...any) ([]T, error) {
	var list []T

	tx := r.Db.WithContext(ctx)
	if query != nil {
		tx = tx.Where(query, args...)
	}

	err := tx.Order("id ASC").Find(&list).Error

	return list, err
}

// Count 按条件计数.
func (r *Repo[T]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	var (
		n int64
		v T
	)

	err := r.Db.WithContext(ctx).Model(&v).Where(query, args...).Count(&n).Error

	return n, err
}

// likePattern 构造包含匹配模式.
func likePattern(keyword string) string {
	return "%" + strings.TrimSpace(keyword) + "%"
}
