package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/internal/model"
)

// FamilyDAO 家庭组与成员关系的数据访问.
type FamilyDAO struct {
	Repo[model.Family]
}

// NewFamilyDAO 构造家庭组 DAO.
func NewFamilyDAO(db *gorm.DB) *FamilyDAO {
	return &FamilyDAO{Repo: NewRepo[model.Family](db)}
}

// FindByInviteCode 按邀请码查询.
func (d *FamilyDAO) FindByInviteCode(ctx context.Context, code string) (*model.Family, error) {
	var f model.Family

	err := d.Db.WithContext(ctx).Where("invite_code = ?", code).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &f, nil
}

// InviteCodeExists 邀请码是否已被使用.
func (d *FamilyDAO) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	n, err := d.Count(ctx, "invite_code = ?", code)

	return n > 0, err
}

// AddMember 写入成员关系.
func (d *FamilyDAO) AddMember(ctx context.Context, m *model.UserFamily) error {
	return d.Db.WithContext(ctx).Create(m).Error
}

// IsMember 用户是否已在家庭组中.
func (d *FamilyDAO) IsMember(ctx context.Context, userID, familyID uint) (bool, error) {
	var n int64
	err := d.Db.WithContext(ctx).
		Model(&model.UserFamily{}).
		Where("user_id = ? AND family_id = ?", userID, familyID).
		Count(&n).Error

	return n > 0, err
}

// ListByUser 返回用户所在的全部家庭组.
func (d *FamilyDAO) ListByUser(ctx context.Context, userID uint) ([]model.Family, error) {
	var list []model.Family
	err := d.Db.WithContext(ctx).
		Joins("JOIN user_families uf ON uf.family_id = families.id").
		Where("uf.user_id = ?", userID).
		Order("families.id ASC").
		Find(&list).Error

	return list, err
}

// Members 返回家庭组成员关系，按加入时间排序.
func (d *FamilyDAO) Members(ctx context.Context, familyID uint) ([]model.UserFamily, error) {
	var list []model.UserFamily
	err := d.Db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("joined_at ASC").Order("id ASC").
		Find(&list).Error

	return list, err
}
