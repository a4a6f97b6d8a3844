package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/handle"
)

// RegisterUserRoutes 注册用户路由.
func RegisterUserRoutes(g *gin.RouterGroup) {
	userRoutes := g.Group("/users")
	{
		userRoutes.GET("", handle.ListUsers)
		userRoutes.POST("/register", handle.Register)
		userRoutes.POST("/login", handle.Login)

		single := userRoutes.Group("/:id")
		{
			single.GET("", handle.GetUser)
			single.PUT("", handle.UpdateUser)
			single.POST("/avatar", handle.UploadAvatar)
		}
	}
}
