package queue

import "time"

// EventHeader 所有事件的通用头部.
type EventHeader struct {
	// Topic 冗余记录主题，离线转储后仍可定位来源.
	Topic    string `json:"topic"`
	TraceID  string `json:"trace_id,omitempty"`
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	Version    string    `json:"version,omitempty"`
}

// Message 统一消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 食材领域 --------------------------

// FoodItemRef 事件中携带的食材快照.
type FoodItemRef struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Quantity string `json:"quantity"`
	Status   string `json:"status"`
}

// 食材删除原因.
const (
	DeleteReasonUser         = "user"
	DeleteReasonZeroQuantity = "zero_quantity"
)

// 食材更新字段.
const (
	UpdateFieldQuantity    = "quantity"
	UpdateFieldMinQuantity = "min_quantity"
	UpdateFieldAll         = "all"
)

// FoodAddedPayload 新增食材.
type FoodAddedPayload struct {
	Item FoodItemRef `json:"item"`
}

// FoodUpdatedPayload 食材被修改.
type FoodUpdatedPayload struct {
	Item       FoodItemRef `json:"item"`
	Field      string      `json:"field"`
	PrevStatus string      `json:"prev_status,omitempty"`
}

// FoodDeletedPayload 食材被软删除.
type FoodDeletedPayload struct {
	Item   FoodItemRef `json:"item"`
	Reason string      `json:"reason"`
}

// FoodRestoredPayload 回收站恢复.
type FoodRestoredPayload struct {
	UserID uint   `json:"user_id"`
	IDs    []uint `json:"ids"`
}

// FoodStatusChangedPayload 巡检落库的状态迁移.
type FoodStatusChangedPayload struct {
	Item FoodItemRef `json:"item"`
	From string      `json:"from"`
	To   string      `json:"to"`
}

// -------------------------- 菜谱领域 --------------------------

// 菜谱变更动作.
const (
	RecipeActionCreated = "created"
	RecipeActionUpdated = "updated"
	RecipeActionDeleted = "deleted"
)

// RecipeChangedPayload 菜谱变更.
type RecipeChangedPayload struct {
	RecipeID    uint   `json:"recipe_id"`
	Name        string `json:"name,omitempty"`
	Action      string `json:"action"`
	Ingredients int    `json:"ingredients,omitempty"`
}

// -------------------------- 家庭领域 --------------------------

// FamilyJoinedPayload 成员加入家庭.
type FamilyJoinedPayload struct {
	FamilyID uint   `json:"family_id"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
}
