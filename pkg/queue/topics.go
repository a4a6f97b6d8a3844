// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：xs.<域>.<动作>[.<子动作>]，发布后不再改名.
const (
	// 食材领域.
	TopicFoodAdded         = "xs.food.added"          // 新增食材
	TopicFoodUpdated       = "xs.food.updated"        // 数量、阈值或整体信息被修改
	TopicFoodDeleted       = "xs.food.deleted"        // 软删除（用户删除或数量归零）
	TopicFoodRestored      = "xs.food.restored"       // 从回收站恢复
	TopicFoodStatusChanged = "xs.food.status.changed" // 巡检发现状态变化并已落库

	// 菜谱领域.
	TopicRecipeChanged = "xs.recipe.changed" // 菜谱新增、修改或删除

	// 家庭领域.
	TopicFamilyJoined = "xs.family.joined" // 成员加入家庭（含创建者）
)

// 主题分组.
var (
	FoodTopics = []string{
		TopicFoodAdded, TopicFoodUpdated, TopicFoodDeleted,
		TopicFoodRestored, TopicFoodStatusChanged,
	}

	AllTopics = append(append([]string{}, FoodTopics...), TopicRecipeChanged, TopicFamilyJoined)
)
