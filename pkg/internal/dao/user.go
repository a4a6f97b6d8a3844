package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/internal/model"
)

// UserDAO 用户数据访问.
type UserDAO struct {
	Repo[model.User]
}

// NewUserDAO 构造用户 DAO.
func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{Repo: NewRepo[model.User](db)}
}

// FindByAccount 按手机号或邮箱查询.
func (d *UserDAO) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	var u model.User

	err := d.Db.WithContext(ctx).Where("phone = ? OR email = ?", account, account).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// ExistsAccount 手机号或邮箱是否已被其他用户占用，excludeID 为 0 时不排除.
func (d *UserDAO) ExistsAccount(ctx context.Context, phone, email *string, excludeID uint) (bool, error) {
	if phone == nil && email == nil {
		return false, nil
	}

	q := d.Db.WithContext(ctx).Model(&model.User{})

	switch {
	case phone != nil && email != nil:
		q = q.Where("phone = ? OR email = ?", *phone, *email)
	case phone != nil:
		q = q.Where("phone = ?", *phone)
	default:
		q = q.Where("email = ?", *email)
	}

	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	err := q.Count(&n).Error

	return n > 0, err
}

// List 返回全部用户.
func (d *UserDAO) List(ctx context.Context) ([]model.User, error) {
	return d.FindAll(ctx, nil)
}

// UpdateFields 更新指定列.
func (d *UserDAO) UpdateFields(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	res := d.Db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)

	return res.RowsAffected, res.Error
}
