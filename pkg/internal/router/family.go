package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/handle"
)

// RegisterFamilyRoutes 注册家庭组路由.
func RegisterFamilyRoutes(g *gin.RouterGroup, mws []gin.HandlerFunc) {
	familyRoutes := g.Group("/families", mws...)
	{
		familyRoutes.POST("/create", handle.CreateFamily)
		familyRoutes.POST("/join", handle.JoinFamily)
		familyRoutes.GET("/my", handle.MyFamilies)
		familyRoutes.GET("/:id/members", handle.FamilyMembers)
	}
}
