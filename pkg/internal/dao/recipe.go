package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/internal/model"
)

var recipeColumns = []string{
	"name", "cuisine_type", "prep_time", "cook_time", "difficulty",
	"servings", "description", "steps", "image_url", "updated_at",
}

// RecipeDAO 菜谱与菜谱食材的数据访问.
type RecipeDAO struct {
	Repo[model.Recipe]
}

// NewRecipeDAO 构造菜谱 DAO.
func NewRecipeDAO(db *gorm.DB) *RecipeDAO {
	return &RecipeDAO{Repo: NewRepo[model.Recipe](db)}
}

// List 返回全部菜谱.
func (d *RecipeDAO) List(ctx context.Context) ([]model.Recipe, error) {
	return d.FindAll(ctx, nil)
}

// ListByCuisine 按菜系查询.
func (d *RecipeDAO) ListByCuisine(ctx context.Context, cuisineType string) ([]model.Recipe, error) {
	return d.FindAll(ctx, "cuisine_type = ?", cuisineType)
}

// Search 按名称或描述模糊查询.
func (d *RecipeDAO) Search(ctx context.Context, keyword string) ([]model.Recipe, error) {
	p := likePattern(keyword)

	return d.FindAll(ctx, "name LIKE ? OR description LIKE ?", p, p)
}

// Update 覆盖菜谱字段.
func (d *RecipeDAO) Update(ctx context.Context, r *model.Recipe) (int64, error) {
	if r.ID == 0 {
		return 0, nil
	}

	res := d.Db.WithContext(ctx).Model(r).Select(recipeColumns).Updates(r)

	return res.RowsAffected, res.Error
}

// Delete 删除菜谱.
func (d *RecipeDAO) Delete(ctx context.Context, id uint) (int64, error) {
	res := d.Db.WithContext(ctx).Delete(&model.Recipe{}, id)

	return res.RowsAffected, res.Error
}

// Ingredients 返回菜谱的食材清单.
func (d *RecipeDAO) Ingredients(ctx context.Context, recipeID uint) ([]model.RecipeIngredient, error) {
	var list []model.RecipeIngredient
	err := d.Db.WithContext(ctx).Where("recipe_id = ?", recipeID).Order("id ASC").Find(&list).Error

	return list, err
}

// InsertIngredients 批量写入食材，RecipeID 统一设为 recipeID.
func (d *RecipeDAO) InsertIngredients(ctx context.Context, recipeID uint, list []model.RecipeIngredient) error {
	if len(list) == 0 {
		return nil
	}

	for i := range list {
		list[i].ID = 0
		list[i].RecipeID = recipeID
	}

	return d.Db.WithContext(ctx).Create(&list).Error
}

// DeleteIngredients 删除菜谱的全部食材.
func (d *RecipeDAO) DeleteIngredients(ctx context.Context, recipeID uint) error {
	return d.Db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error
}
