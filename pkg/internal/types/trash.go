package types

import "github.com/yeisme/xianshiji/pkg/internal/model"

// TrashListResponse 回收站分页结果.
type TrashListResponse struct {
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
	Items []model.FoodItem `json:"items"`
}

// TrashBatchRequest 批量恢复或彻底删除.
type TrashBatchRequest struct {
	UserID uint   `json:"userId"`
	IDs    []uint `json:"ids"    rule:"required,min=1,max=500,dive,gt=0"`
}
