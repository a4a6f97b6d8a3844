package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/handle"
)

// RegisterRecipeRoutes 注册菜谱路由.
func RegisterRecipeRoutes(g *gin.RouterGroup, mws []gin.HandlerFunc) {
	recipeRoutes := g.Group("/recipes", mws...)
	{
		recipeRoutes.GET("", handle.ListRecipes)
		recipeRoutes.GET("/cuisine/:cuisineType", handle.ListRecipesByCuisine)
		recipeRoutes.GET("/search", handle.SearchRecipes)
		recipeRoutes.POST("", handle.AddRecipe)

		single := recipeRoutes.Group("/:id")
		{
			single.GET("", handle.GetRecipe)
			single.GET("/ingredients", handle.RecipeIngredients)
			single.PUT("", handle.UpdateRecipe)
			single.DELETE("", handle.DeleteRecipe)
		}
	}
}
