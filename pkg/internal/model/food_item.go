package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
)

func init() {
	// 数量以 JSON 数字输出
	decimal.MarshalJSONWithoutQuotes = true
}

// FoodItem 食材库存记录.
// 软删除使用 is_deleted 标记，deleted_at 记录删除时间供回收站清理.
type FoodItem struct {
	ID       uint   `gorm:"primaryKey"                      json:"id"`
	UserID   uint   `gorm:"not null;index:idx_food_user"    json:"userId"`
	Name     string `gorm:"size:128;not null"               json:"name"`
	Category string `gorm:"size:64;index:idx_food_category" json:"category"`
	// Quantity 当前库存，非负
	Quantity decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	Unit     string          `gorm:"size:32"                     json:"unit"`
	// MinQuantity 最低库存，为空表示不做库存预警
	MinQuantity  *decimal.Decimal  `gorm:"type:decimal(10,2)"        json:"minQuantity"`
	PurchaseDate *Date             `json:"purchaseDate"`
	ExpiryDate   *Date             `gorm:"index"                     json:"expiryDate"`
	ImageURL     string            `gorm:"size:512"                  json:"imageUrl"`
	Status       foodstatus.Status `gorm:"size:16;index"             json:"status"`
	IsDeleted    int8              `gorm:"not null;default:0;index"  json:"isDeleted"`
	DeletedAt    *time.Time        `gorm:"index"                     json:"deletedAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// TableName 表名.
func (FoodItem) TableName() string { return "food_items" }

// StatusInput 提取计算状态所需字段.
func (f *FoodItem) StatusInput() foodstatus.Input {
	in := foodstatus.Input{Quantity: f.Quantity, MinQuantity: f.MinQuantity}
	if f.ExpiryDate != nil && !f.ExpiryDate.IsZero() {
		t := f.ExpiryDate.Time()
		in.ExpiryDate = &t
	}

	return in
}

// Refresh 按 today 重新计算状态，返回状态是否变化.
func (f *FoodItem) Refresh(today time.Time) bool {
	next := foodstatus.Compute(f.StatusInput(), today)
	changed := next != f.Status
	f.Status = next

	return changed
}

// Deleted 是否已软删除.
func (f *FoodItem) Deleted() bool { return f.IsDeleted != 0 }
