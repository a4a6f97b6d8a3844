package service_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/internal/service"
)

func ingredients(names ...string) []model.RecipeIngredient {
	out := make([]model.RecipeIngredient, len(names))
	for i, n := range names {
		out[i] = model.RecipeIngredient{IngredientName: n, Amount: "适量"}
	}

	return out
}

func TestRecipeLifecycle(t *testing.T) {
	svc := service.NewRecipeServiceWith(newTestDB(t))
	ctx := context.Background()

	added, err := svc.Add(ctx, &model.Recipe{Name: "番茄炒蛋", CuisineType: "家常菜", Servings: 2},
		ingredients("番茄", "鸡蛋"))
	if err != nil {
		t.Fatal(err)
	}

	if added.ID == 0 {
		t.Fatal("recipe id not assigned")
	}

	list, err := svc.Ingredients(ctx, added.ID)
	if err != nil || len(list) != 2 || list[0].RecipeID != added.ID {
		t.Fatalf("Ingredients() = %+v, %v", list, err)
	}

	if _, err := svc.Update(ctx, added.ID, &model.Recipe{Name: "西红柿炒鸡蛋", CuisineType: "家常菜"},
		ingredients("西红柿", "鸡蛋", "葱")); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, added.ID)
	if err != nil || got == nil || got.Name != "西红柿炒鸡蛋" || !got.CreatedAt.Equal(added.CreatedAt) {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	if list, _ := svc.Ingredients(ctx, added.ID); len(list) != 3 {
		t.Errorf("ingredients after update = %d, want 3", len(list))
	}

	if found, _ := svc.Search(ctx, "鸡蛋"); len(found) != 1 {
		t.Errorf("Search() = %d results", len(found))
	}

	if byCuisine, _ := svc.ListByCuisine(ctx, "川菜"); len(byCuisine) != 0 {
		t.Errorf("ListByCuisine(川菜) = %d results", len(byCuisine))
	}

	if err := svc.Delete(ctx, added.ID); err != nil {
		t.Fatal(err)
	}

	if list, _ := svc.Ingredients(ctx, added.ID); len(list) != 0 {
		t.Errorf("ingredients left after delete: %d", len(list))
	}

	if err := svc.Delete(ctx, added.ID); !errors.Is(err, service.ErrRecipeNotFound) {
		t.Errorf("Delete(missing) = %v", err)
	}

	if _, err := svc.Update(ctx, added.ID, &model.Recipe{Name: "x"}, nil); !errors.Is(err, service.ErrRecipeNotFound) {
		t.Errorf("Update(missing) = %v", err)
	}
}

func TestRecipeAddRollsBack(t *testing.T) {
	db := newTestDB(t)

	boom := errors.New("ingredient insert failed")
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_ingredients", func(tx *gorm.DB) {
		if tx.Statement.Table == "recipe_ingredients" {
			_ = tx.AddError(boom)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := service.NewRecipeServiceWith(db)
	ctx := context.Background()

	if _, err := svc.Add(ctx, &model.Recipe{Name: "失败的菜"}, ingredients("盐")); !errors.Is(err, boom) {
		t.Fatalf("Add() error = %v, want %v", err, boom)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(list) != 0 {
		t.Errorf("recipe persisted despite failed ingredients: %+v", list)
	}
}
