// Package model 定义持久化实体.
package model

// All 返回需要自动迁移的全部模型.
func All() []any {
	return []any{
		&User{},
		&Family{},
		&UserFamily{},
		&FoodItem{},
		&Recipe{},
		&RecipeIngredient{},
	}
}
