package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/model"
)

// FoodItemGateway 食材生命周期所需的持久化能力.
// 查询只返回未删除的记录.
type FoodItemGateway interface {
	// FindByID 不存在或已删除时返回 nil, nil.
	FindByID(ctx context.Context, id uint) (*model.FoodItem, error)
	FindByUserID(ctx context.Context, userID uint) ([]model.FoodItem, error)
	FindByUserIDAndCategory(ctx context.Context, userID uint, category string) ([]model.FoodItem, error)
	// FindByUserIDAndKeyword 按名称模糊匹配.
	FindByUserIDAndKeyword(ctx context.Context, userID uint, keyword string) ([]model.FoodItem, error)
	// Insert 写入并回填 ID.
	Insert(ctx context.Context, item *model.FoodItem) error
	// UpdateByID 覆盖可变字段，返回影响行数.
	UpdateByID(ctx context.Context, item *model.FoodItem) (int64, error)
	SoftDeleteByID(ctx context.Context, id uint) (int64, error)
}

// updatableColumns UpdateByID 覆盖的列，空值同样写入.
var updatableColumns = []string{
	"name", "category", "quantity", "unit", "min_quantity",
	"purchase_date", "expiry_date", "image_url", "status", "updated_at",
}

// FoodItemDAO 基于 gorm 的 FoodItemGateway 实现，附带巡检与回收站查询.
type FoodItemDAO struct {
	Repo[model.FoodItem]
	now func() time.Time
}

var _ FoodItemGateway = (*FoodItemDAO)(nil)

// NewFoodItemDAO 构造食材 DAO.
func NewFoodItemDAO(db *gorm.DB) *FoodItemDAO {
	return &FoodItemDAO{Repo: NewRepo[model.FoodItem](db), now: time.Now}
}

func (d *FoodItemDAO) active(ctx context.Context) *gorm.DB {
	return d.Db.WithContext(ctx).Where("is_deleted = ?", 0)
}

// FindByID 查询未删除的食材.
func (d *FoodItemDAO) FindByID(ctx context.Context, id uint) (*model.FoodItem, error) {
	var item model.FoodItem

	err := d.active(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &item, nil
}

// FindByUserID 查询用户全部食材.
func (d *FoodItemDAO) FindByUserID(ctx context.Context, userID uint) ([]model.FoodItem, error) {
	var list []model.FoodItem
	err := d.active(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&list).Error

	return list, err
}

// FindByUserIDAndCategory 按分类查询.
func (d *FoodItemDAO) FindByUserIDAndCategory(ctx context.Context, userID uint, category string) ([]model.FoodItem, error) {
	var list []model.FoodItem
	err := d.active(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("id ASC").
		Find(&list).Error

	return list, err
}

// FindByUserIDAndKeyword 按名称关键字查询.
func (d *FoodItemDAO) FindByUserIDAndKeyword(ctx context.Context, userID uint, keyword string) ([]model.FoodItem, error) {
	var list []model.FoodItem
	err := d.active(ctx).
		Where("user_id = ? AND name LIKE ?", userID, likePattern(keyword)).
		Order("id ASC").
		Find(&list).Error

	return list, err
}

// Insert 写入新食材.
func (d *FoodItemDAO) Insert(ctx context.Context, item *model.FoodItem) error {
	return d.Db.WithContext(ctx).Create(item).Error
}

// UpdateByID 覆盖可变字段.
func (d *FoodItemDAO) UpdateByID(ctx context.Context, item *model.FoodItem) (int64, error) {
	if item.ID == 0 {
		return 0, nil
	}

	res := d.Db.WithContext(ctx).
		Model(item).
		Where("is_deleted = ?", 0).
		Select(updatableColumns).
		Updates(item)

	return res.RowsAffected, res.Error
}

// SoftDeleteByID 标记删除.
func (d *FoodItemDAO) SoftDeleteByID(ctx context.Context, id uint) (int64, error) {
	now := d.now()
	res := d.Db.WithContext(ctx).
		Model(&model.FoodItem{}).
		Where("id = ? AND is_deleted = ?", id, 0).
		Updates(map[string]any{
			"is_deleted": 1,
			"deleted_at": now,
			"updated_at": now,
		})

	return res.RowsAffected, res.Error
}

// ScanActive 按主键顺序分批遍历未删除的食材，fn 返回错误时停止.
func (d *FoodItemDAO) ScanActive(ctx context.Context, batchSize int, fn func(batch []model.FoodItem) error) error {
	var batch []model.FoodItem

	return d.active(ctx).FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

// UpdateStatus 只更新状态列，不改动 updated_at.
func (d *FoodItemDAO) UpdateStatus(ctx context.Context, ids []uint, status foodstatus.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := d.active(ctx).
		Model(&model.FoodItem{}).
		Where("id IN ?", ids).
		UpdateColumn("status", status)

	return res.RowsAffected, res.Error
}

// FindDeletedByUser 分页查询用户回收站中的食材，按删除时间倒序.
func (d *FoodItemDAO) FindDeletedByUser(ctx context.Context, userID uint, offset, limit int) ([]model.FoodItem, int64, error) {
	var (
		list  []model.FoodItem
		total int64
	)

	q := d.Db.WithContext(ctx).
		Model(&model.FoodItem{}).
		Where("user_id = ? AND is_deleted = ?", userID, 1).
		Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("deleted_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error

	return list, total, err
}

// FindDeletedByIDs 查询用户回收站中指定的食材.
func (d *FoodItemDAO) FindDeletedByIDs(ctx context.Context, userID uint, ids []uint) ([]model.FoodItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var list []model.FoodItem
	err := d.Db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ? AND id IN ?", userID, 1, ids).
		Find(&list).Error

	return list, err
}

// Restore 撤销软删除并写入重新计算的状态.
func (d *FoodItemDAO) Restore(ctx context.Context, item *model.FoodItem) (int64, error) {
	res := d.Db.WithContext(ctx).
		Model(&model.FoodItem{}).
		Where("id = ? AND is_deleted = ?", item.ID, 1).
		Updates(map[string]any{
			"is_deleted": 0,
			"deleted_at": nil,
			"status":     item.Status,
			"updated_at": item.UpdatedAt,
		})

	return res.RowsAffected, res.Error
}

// Purge 彻底删除用户回收站中的食材.
func (d *FoodItemDAO) Purge(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := d.Db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ? AND id IN ?", userID, 1, ids).
		Delete(&model.FoodItem{})

	return res.RowsAffected, res.Error
}

// PurgeDeletedBefore 彻底删除早于 before 进入回收站的食材（全部用户）.
func (d *FoodItemDAO) PurgeDeletedBefore(ctx context.Context, before time.Time) (int64, error) {
	res := d.Db.WithContext(ctx).
		Where("is_deleted = ? AND deleted_at < ?", 1, before).
		Delete(&model.FoodItem{})

	return res.RowsAffected, res.Error
}
