package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/queue"
)

// RecipeService 菜谱管理，菜谱与食材清单的写入在同一事务内完成.
type RecipeService struct {
	db     *gorm.DB
	sink   eventSink
	now    func() time.Time
	logger zerolog.Logger
}

// NewRecipeServiceWith 直接注入 gorm 连接.
func NewRecipeServiceWith(db *gorm.DB) *RecipeService {
	r := &RecipeService{db: db, now: time.Now, logger: log.With("recipe")}
	r.sink.logger = r.logger

	return r
}

// NewRecipeService 从 context 中的存储管理器构造.
func NewRecipeService(c context.Context) *RecipeService {
	r := NewRecipeServiceWith(ctxPkg.GetDBClient(c).GetDB())

	_, sink := depsFromContext(c)
	r.sink.pub, r.sink.events = sink.pub, sink.events

	return r
}

func (r *RecipeService) dao() *dao.RecipeDAO {
	return dao.NewRecipeDAO(r.db)
}

// List 全部菜谱.
func (r *RecipeService) List(ctx context.Context) ([]model.Recipe, error) {
	list, err := r.dao().List(ctx)
	return list, wrap("list recipes", err)
}

// ListByCuisine 按菜系查询.
func (r *RecipeService) ListByCuisine(ctx context.Context, cuisineType string) ([]model.Recipe, error) {
	list, err := r.dao().ListByCuisine(ctx, cuisineType)
	return list, wrap("list recipes by cuisine", err)
}

// Search 按名称或描述查询.
func (r *RecipeService) Search(ctx context.Context, keyword string) ([]model.Recipe, error) {
	list, err := r.dao().Search(ctx, keyword)
	return list, wrap("search recipes", err)
}

// Get 按 ID 查询，不存在时返回 nil.
func (r *RecipeService) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	recipe, err := r.dao().FindByID(ctx, id)
	return recipe, wrap("get recipe", err)
}

// Ingredients 菜谱的食材清单.
func (r *RecipeService) Ingredients(ctx context.Context, recipeID uint) ([]model.RecipeIngredient, error) {
	list, err := r.dao().Ingredients(ctx, recipeID)
	return list, wrap("list recipe ingredients", err)
}

// Add 新增菜谱及食材清单.
func (r *RecipeService) Add(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient) (*model.Recipe, error) {
	now := r.now()
	recipe.ID = 0
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := dao.NewRecipeDAO(tx)
		if err := d.Create(ctx, recipe); err != nil {
			return err
		}

		return d.InsertIngredients(ctx, recipe.ID, ingredients)
	})
	if err != nil {
		recipe.ID = 0
		return nil, wrap("add recipe", err)
	}

	r.changed(ctx, recipe, queue.RecipeActionCreated, len(ingredients))

	return recipe, nil
}

// Update 覆盖菜谱字段并整体替换食材清单.
func (r *RecipeService) Update(ctx context.Context, id uint, recipe *model.Recipe, ingredients []model.RecipeIngredient) (*model.Recipe, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := dao.NewRecipeDAO(tx)

		existing, err := d.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if existing == nil {
			return ErrRecipeNotFound
		}

		recipe.ID = id
		recipe.CreatedAt = existing.CreatedAt
		recipe.UpdatedAt = r.now()

		if _, err := d.Update(ctx, recipe); err != nil {
			return err
		}

		if err := d.DeleteIngredients(ctx, id); err != nil {
			return err
		}

		return d.InsertIngredients(ctx, id, ingredients)
	})
	if err != nil {
		return nil, wrap("update recipe", err)
	}

	r.changed(ctx, recipe, queue.RecipeActionUpdated, len(ingredients))

	return recipe, nil
}

// Delete 删除菜谱及其食材清单.
func (r *RecipeService) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := dao.NewRecipeDAO(tx)
		if err := d.DeleteIngredients(ctx, id); err != nil {
			return err
		}

		rows, err := d.Delete(ctx, id)
		if err != nil {
			return err
		}

		if rows == 0 {
			return ErrRecipeNotFound
		}

		return nil
	})
	if err != nil {
		return wrap("delete recipe", err)
	}

	r.changed(ctx, &model.Recipe{ID: id}, queue.RecipeActionDeleted, 0)

	return nil
}

func (r *RecipeService) changed(ctx context.Context, recipe *model.Recipe, action string, ingredients int) {
	emit(ctx, r.sink, r.sink.events.Recipe, queue.TopicRecipeChanged, queue.RecipeChangedPayload{
		RecipeID: recipe.ID, Name: recipe.Name, Action: action, Ingredients: ingredients,
	})
}
