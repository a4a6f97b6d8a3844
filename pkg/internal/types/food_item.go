package types

import (
	"github.com/shopspring/decimal"

	"github.com/yeisme/xianshiji/pkg/internal/model"
)

// FoodItemRequest 新增或整体更新食材.
type FoodItemRequest struct {
	UserID       uint             `json:"userId"`
	Name         string           `json:"name"         rule:"required,max=128"`
	Category     string           `json:"category"     rule:"max=64"`
	Quantity     decimal.Decimal  `json:"quantity"     rule:"gt=0"`
	Unit         string           `json:"unit"         rule:"max=32"`
	MinQuantity  *decimal.Decimal `json:"minQuantity"  rule:"omitempty,gte=0"`
	PurchaseDate *model.Date      `json:"purchaseDate"`
	ExpiryDate   *model.Date      `json:"expiryDate"`
	ImageURL     string           `json:"imageUrl"     rule:"max=512"`
}

// ToModel 转换为实体，不设置 ID 与状态.
func (r *FoodItemRequest) ToModel() *model.FoodItem {
	return &model.FoodItem{
		UserID:       r.UserID,
		Name:         r.Name,
		Category:     r.Category,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		MinQuantity:  r.MinQuantity,
		PurchaseDate: r.PurchaseDate,
		ExpiryDate:   r.ExpiryDate,
		ImageURL:     r.ImageURL,
	}
}

// UpdateQuantityRequest 修改库存数量，数量不大于 0 时食材被删除.
type UpdateQuantityRequest struct {
	UserID   uint             `json:"userId"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// UpdateMinQuantityRequest 修改最低库存，minQuantity 为 null 表示取消预警.
type UpdateMinQuantityRequest struct {
	UserID      uint             `json:"userId"`
	MinQuantity *decimal.Decimal `json:"minQuantity" rule:"omitempty,gte=0"`
}

// FoodItemStatistics 用户食材统计.
type FoodItemStatistics struct {
	TotalCategories int `json:"totalCategories"`
	NearExpiry      int `json:"nearExpiry"`
	Insufficient    int `json:"insufficient"`
	Expired         int `json:"expired"`
	TotalItems      int `json:"totalItems"`
}
