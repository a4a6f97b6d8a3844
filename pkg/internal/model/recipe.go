package model

import "time"

// Recipe 菜谱.
type Recipe struct {
	ID          uint   `gorm:"primaryKey"         json:"id"`
	Name        string `gorm:"size:128;not null"  json:"name"`
	CuisineType string `gorm:"size:32;index"      json:"cuisineType"`
	// PrepTime 与 CookTime 单位为分钟
	PrepTime    int       `json:"prepTime"`
	CookTime    int       `json:"cookTime"`
	Difficulty  string    `gorm:"size:16"  json:"difficulty"`
	Servings    int       `json:"servings"`
	Description string    `gorm:"type:text" json:"description"`
	Steps       string    `gorm:"type:text" json:"steps"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 表名.
func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient 菜谱所需食材.
type RecipeIngredient struct {
	ID             uint   `gorm:"primaryKey"        json:"id"`
	RecipeID       uint   `gorm:"not null;index"    json:"recipeId"`
	IngredientName string `gorm:"size:64;not null"  json:"ingredientName"`
	Amount         string `gorm:"size:32"           json:"amount"`
}

// TableName 表名.
func (RecipeIngredient) TableName() string { return "recipe_ingredients" }
