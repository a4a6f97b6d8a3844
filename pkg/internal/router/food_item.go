package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/handle"
)

// RegisterFoodItemRoutes 注册食材、回收站与食材图片路由.
func RegisterFoodItemRoutes(g *gin.RouterGroup, mws []gin.HandlerFunc) {
	foodRoutes := g.Group("/food-items", mws...)
	{
		userGroup := foodRoutes.Group("/user/:userId")
		{
			userGroup.GET("", handle.ListFoodItems)
			userGroup.GET("/category/:category", handle.ListFoodItemsByCategory)
			userGroup.GET("/search", handle.SearchFoodItems)
			userGroup.GET("/status/:status", handle.ListFoodItemsByStatus)
			userGroup.GET("/statistics", handle.FoodItemStatistics)
		}

		foodRoutes.POST("", handle.AddFoodItem)
		foodRoutes.POST("/image", handle.UploadFoodImage)

		RegisterTrashRoutes(foodRoutes)

		itemGroup := foodRoutes.Group("/:id")
		{
			itemGroup.GET("", handle.GetFoodItem)
			itemGroup.PUT("", handle.UpdateFoodItem)
			itemGroup.PUT("/quantity", handle.UpdateFoodQuantity)
			itemGroup.PUT("/min-quantity", handle.UpdateFoodMinQuantity)
			itemGroup.DELETE("", handle.DeleteFoodItem)
		}
	}
}
