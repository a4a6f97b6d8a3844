package types

import "github.com/yeisme/xianshiji/pkg/internal/model"

// RecipeRequest 新增或更新菜谱，食材清单整体替换.
type RecipeRequest struct {
	Recipe      RecipeBody       `json:"recipe"`
	Ingredients []IngredientBody `json:"ingredients" rule:"max=100,dive"`
}

// RecipeBody 菜谱字段.
type RecipeBody struct {
	Name        string `json:"name"        rule:"required,max=128"`
	CuisineType string `json:"cuisineType" rule:"max=32"`
	PrepTime    int    `json:"prepTime"    rule:"gte=0"`
	CookTime    int    `json:"cookTime"    rule:"gte=0"`
	Difficulty  string `json:"difficulty"  rule:"max=16"`
	Servings    int    `json:"servings"    rule:"gte=0"`
	Description string `json:"description"`
	Steps       string `json:"steps"`
	ImageURL    string `json:"imageUrl"    rule:"max=512"`
}

// IngredientBody 菜谱食材.
type IngredientBody struct {
	IngredientName string `json:"ingredientName" rule:"required,max=64"`
	Amount         string `json:"amount"         rule:"max=32"`
}

// ToModel 转换为实体.
func (r *RecipeRequest) ToModel() (*model.Recipe, []model.RecipeIngredient) {
	recipe := &model.Recipe{
		Name:        r.Recipe.Name,
		CuisineType: r.Recipe.CuisineType,
		PrepTime:    r.Recipe.PrepTime,
		CookTime:    r.Recipe.CookTime,
		Difficulty:  r.Recipe.Difficulty,
		Servings:    r.Recipe.Servings,
		Description: r.Recipe.Description,
		Steps:       r.Recipe.Steps,
		ImageURL:    r.Recipe.ImageURL,
	}

	ings := make([]model.RecipeIngredient, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		ings = append(ings, model.RecipeIngredient{IngredientName: in.IngredientName, Amount: in.Amount})
	}

	return recipe, ings
}

// RecipeDetail 菜谱及其食材.
type RecipeDetail struct {
	Recipe      *model.Recipe            `json:"recipe"`
	Ingredients []model.RecipeIngredient `json:"ingredients"`
}
